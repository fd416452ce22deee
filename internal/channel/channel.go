// Package channel describes notification destinations: where to send,
// which wire schema to use, and how the endpoint signals success.
package channel

import (
	"fmt"
	"sort"
)

// Schema selects the wire payload shape for a channel.
type Schema string

const (
	SchemaStructuredHook Schema = "structured_hook"
	SchemaGenericPush    Schema = "generic_push"
	SchemaPlainText      Schema = "plain_text"
	SchemaRichCard       Schema = "rich_card"
)

// Valid reports whether s is a known schema.
func (s Schema) Valid() bool {
	switch s {
	case SchemaStructuredHook, SchemaGenericPush, SchemaPlainText, SchemaRichCard:
		return true
	}
	return false
}

// SuccessMarker names the application-level success indicator in the
// endpoint's response body. Different push services use different markers.
type SuccessMarker string

const (
	// MarkerSuccessBool: response carries {"success": true}.
	MarkerSuccessBool SuccessMarker = "success_bool"
	// MarkerCodeZero: response carries {"code": 0} (Feishu style).
	MarkerCodeZero SuccessMarker = "code_zero"
)

// Descriptor identifies one notification destination. It is loaded from
// configuration once per process and read-only afterwards.
type Descriptor struct {
	Name          string        `yaml:"name"`
	Endpoint      string        `yaml:"endpoint"`
	Schema        Schema        `yaml:"schema"`
	Token         string        `yaml:"token"`
	Channel       string        `yaml:"channel"`
	SuccessMarker SuccessMarker `yaml:"success_marker"`
}

// Validate checks the descriptor and fills schema-appropriate defaults:
// the generic push service answers with a success boolean, everything
// else with a numeric code.
func (d *Descriptor) Validate() error {
	if d.Endpoint == "" {
		return fmt.Errorf("channel %q: endpoint is required", d.Name)
	}
	if d.Schema == "" {
		d.Schema = SchemaStructuredHook
	}
	if !d.Schema.Valid() {
		return fmt.Errorf("channel %q: unknown schema %q", d.Name, d.Schema)
	}
	if d.SuccessMarker == "" {
		if d.Schema == SchemaGenericPush {
			d.SuccessMarker = MarkerSuccessBool
		} else {
			d.SuccessMarker = MarkerCodeZero
		}
	}
	if d.SuccessMarker != MarkerSuccessBool && d.SuccessMarker != MarkerCodeZero {
		return fmt.Errorf("channel %q: unknown success marker %q", d.Name, d.SuccessMarker)
	}
	return nil
}

// Resolver maps channel names to descriptors.
type Resolver struct {
	channels    map[string]Descriptor
	defaultName string
}

// NewResolver builds a resolver over validated descriptors.
func NewResolver(channels map[string]Descriptor, defaultName string) (*Resolver, error) {
	validated := make(map[string]Descriptor, len(channels))
	for name, d := range channels {
		d.Name = name
		if err := d.Validate(); err != nil {
			return nil, err
		}
		validated[name] = d
	}
	if defaultName != "" {
		if _, ok := validated[defaultName]; !ok {
			return nil, fmt.Errorf("default channel %q is not configured", defaultName)
		}
	}
	return &Resolver{channels: validated, defaultName: defaultName}, nil
}

// Resolve returns the descriptor for name. An empty name resolves to the
// default channel.
func (r *Resolver) Resolve(name string) (Descriptor, error) {
	if name == "" {
		name = r.defaultName
	}
	if name == "" {
		return Descriptor{}, fmt.Errorf("no channel requested and no default configured")
	}
	d, ok := r.channels[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("channel %q is not configured", name)
	}
	return d, nil
}

// Names lists configured channel names, sorted.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
