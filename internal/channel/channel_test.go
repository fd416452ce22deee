package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorValidate_DefaultsMarkerBySchema(t *testing.T) {
	t.Parallel()

	d := Descriptor{Name: "feishu", Endpoint: "https://example.com/hook", Schema: SchemaRichCard}
	require.NoError(t, d.Validate())
	assert.Equal(t, MarkerCodeZero, d.SuccessMarker)

	g := Descriptor{Name: "pusher", Endpoint: "https://example.com/push", Schema: SchemaGenericPush}
	require.NoError(t, g.Validate())
	assert.Equal(t, MarkerSuccessBool, g.SuccessMarker)
}

func TestDescriptorValidate_RejectsMissingEndpoint(t *testing.T) {
	t.Parallel()

	d := Descriptor{Name: "broken"}
	assert.Error(t, d.Validate())
}

func TestDescriptorValidate_RejectsUnknownSchema(t *testing.T) {
	t.Parallel()

	d := Descriptor{Name: "x", Endpoint: "https://example.com", Schema: "carrier_pigeon"}
	assert.Error(t, d.Validate())
}

func TestResolver_ResolvesDefaultForEmptyName(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(map[string]Descriptor{
		"feishu": {Endpoint: "https://example.com/hook", Schema: SchemaStructuredHook},
	}, "feishu")
	require.NoError(t, err)

	d, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "feishu", d.Name)
}

func TestResolver_UnknownChannelErrors(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(map[string]Descriptor{
		"feishu": {Endpoint: "https://example.com/hook"},
	}, "")
	require.NoError(t, err)

	_, err = r.Resolve("nope")
	assert.Error(t, err)

	_, err = r.Resolve("")
	assert.Error(t, err, "no default configured")
}

func TestNewResolver_RejectsBadDefault(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(map[string]Descriptor{
		"a": {Endpoint: "https://example.com"},
	}, "missing")
	assert.Error(t, err)
}
