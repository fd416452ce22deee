// Package dispatch performs the only I/O in the engine: it sends an
// encoded payload to a channel endpoint and interprets the response.
//
// A dispatch is a two-state machine: Sending(primary) → Success, or
// Sending(primary) → Sending(fallback) → Success | Failed. The fallback
// leg exists only for the rich-card schema, runs exactly once, and
// downgrades to the generic push schema. A single call therefore makes
// at most two network attempts. Errors never escape as panics or raw
// error returns — every failure is folded into the Outcome.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"taskbeacon/internal/channel"
	"taskbeacon/internal/codec"
	"taskbeacon/internal/signal"
)

// DefaultTimeout bounds each HTTP attempt.
const DefaultTimeout = 10 * time.Second

// FailureKind classifies a failed outcome.
type FailureKind string

const (
	// FailureTransport: the endpoint was not reached (network, timeout).
	FailureTransport FailureKind = "transport"
	// FailureChannel: the endpoint answered but rejected the payload
	// (non-200 or application-level failure marker).
	FailureChannel FailureKind = "channel"
)

// Outcome is the terminal result of one dispatch call.
type Outcome struct {
	OK         bool
	Failure    FailureKind // empty when OK
	Diagnostic string      // one-line human-readable detail
	FellBack   bool        // the fallback leg was attempted
	Attempts   int         // network attempts made (1 or 2)
}

// Dispatcher sends payloads over HTTP. Safe for concurrent use; each
// call owns its own payload and outcome.
type Dispatcher struct {
	client *http.Client
}

// New creates a Dispatcher with the given per-attempt timeout
// (DefaultTimeout when zero).
func New(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{client: &http.Client{Timeout: timeout}}
}

// Dispatch encodes sig for the descriptor's schema and sends it. On a
// rich-card failure it re-encodes with the generic push schema and tries
// once more; the returned diagnostic then describes the fallback attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, sig signal.TaskSignal, desc channel.Descriptor) Outcome {
	payload, err := codec.Encode(sig, desc)
	if err != nil {
		return Outcome{Failure: FailureChannel, Diagnostic: err.Error()}
	}

	out := d.send(ctx, payload, desc)
	out.Attempts = 1
	if out.OK || desc.Schema != channel.SchemaRichCard {
		return out
	}

	slog.Warn("rich card dispatch failed, falling back to generic schema",
		"channel", desc.Name,
		"diagnostic", out.Diagnostic)

	fb := desc
	fb.Schema = channel.SchemaGenericPush
	retry := d.send(ctx, codec.EncodeGeneric(sig, fb), fb)
	retry.FellBack = true
	retry.Attempts = 2
	return retry
}

// send performs one HTTP POST and interprets the response against the
// channel's success marker.
func (d *Dispatcher) send(ctx context.Context, payload any, desc channel.Descriptor) Outcome {
	data, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Failure: FailureChannel, Diagnostic: fmt.Sprintf("encoding payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, desc.Endpoint, bytes.NewReader(data))
	if err != nil {
		return Outcome{Failure: FailureTransport, Diagnostic: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return Outcome{Failure: FailureTransport, Diagnostic: fmt.Sprintf("sending to %s: %v", desc.Name, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return Outcome{Failure: FailureChannel, Diagnostic: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, desc.Name)}
	}

	if ok, detail := checkMarker(body, desc.SuccessMarker); !ok {
		return Outcome{Failure: FailureChannel, Diagnostic: detail}
	}
	return Outcome{OK: true}
}

// checkMarker reads the application-level success indicator. The body is
// otherwise opaque to the engine.
func checkMarker(body []byte, marker channel.SuccessMarker) (bool, string) {
	switch marker {
	case channel.MarkerSuccessBool:
		if gjson.GetBytes(body, "success").Bool() {
			return true, ""
		}
		return false, "endpoint reported failure: " + firstNonEmpty(
			gjson.GetBytes(body, "message").String(), "no message")
	default: // MarkerCodeZero
		code := gjson.GetBytes(body, "code")
		if code.Exists() && code.Int() == 0 {
			return true, ""
		}
		return false, fmt.Sprintf("endpoint returned code %d: %s",
			code.Int(), firstNonEmpty(gjson.GetBytes(body, "msg").String(), "no message"))
	}
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
