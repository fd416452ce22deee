// Package notify ties the engine together: extract a signal from raw
// text, resolve the destination channel, dispatch the payload, and
// record the outcome in the delivery log. The HTTP API, the MCP tools
// and the CLI all funnel through this package.
package notify

import (
	"context"
	"log/slog"

	"taskbeacon/internal/channel"
	"taskbeacon/internal/dispatch"
	"taskbeacon/internal/signal"
	"taskbeacon/internal/store"
)

// Service orchestrates one notification end to end.
type Service struct {
	Resolver   *channel.Resolver
	Dispatcher *dispatch.Dispatcher
	// Store receives the delivery audit records. Nil disables logging
	// of deliveries; dispatch still happens.
	Store store.Store
	// Fine selects the fine-grained category profile for extraction.
	Fine bool
}

// Request describes one notification. Text drives extraction; Signal,
// when non-nil, skips extraction and is dispatched as-is.
type Request struct {
	Text     string
	Response string

	// Status short-circuits status classification when set.
	Status signal.Status
	// Duration is a human-readable duration ("2分钟", "90s"). Ignored
	// when DurationSec is set.
	Duration    string
	DurationSec int

	// Channel names the destination; empty means the default channel.
	Channel string
	Context map[string]string

	Signal *signal.TaskSignal
}

// Result is what the caller gets back. Dispatch failures live inside
// Outcome; the error return is reserved for request-level problems
// (unknown channel).
type Result struct {
	Signal  signal.TaskSignal
	Channel string
	Schema  channel.Schema
	Outcome dispatch.Outcome
}

// Notify resolves the channel, builds the signal and dispatches it.
func (s *Service) Notify(ctx context.Context, req Request) (Result, error) {
	desc, err := s.Resolver.Resolve(req.Channel)
	if err != nil {
		return Result{}, err
	}

	var sig signal.TaskSignal
	if req.Signal != nil {
		sig = *req.Signal
	} else {
		durationSec := req.DurationSec
		if durationSec == 0 && req.Duration != "" {
			durationSec = signal.ParseDuration(req.Duration)
		}
		sig = signal.Extract(req.Text, req.Response, signal.Options{
			Fine:        s.Fine,
			Status:      req.Status,
			DurationSec: durationSec,
			Context:     req.Context,
		})
	}

	out := s.Dispatcher.Dispatch(ctx, sig, desc)

	logFn := slog.Info
	if !out.OK {
		logFn = slog.Warn
	}
	logFn("notification dispatched",
		"channel", desc.Name,
		"schema", desc.Schema,
		"task_name", sig.TaskName,
		"status", sig.Status,
		"ok", out.OK,
		"fell_back", out.FellBack,
		"attempts", out.Attempts)

	s.record(sig, desc, out)

	return Result{Signal: sig, Channel: desc.Name, Schema: desc.Schema, Outcome: out}, nil
}

// record persists the dispatch outcome. Storage errors are logged, not
// returned: the notification already went out (or didn't) either way.
func (s *Service) record(sig signal.TaskSignal, desc channel.Descriptor, out dispatch.Outcome) {
	if s.Store == nil {
		return
	}
	rec := &store.DeliveryRecord{
		Channel:     desc.Name,
		Schema:      string(desc.Schema),
		TaskName:    sig.TaskName,
		Status:      string(sig.Status),
		TaskType:    string(sig.CoarseType()),
		DurationSec: sig.DurationSec,
		OK:          out.OK,
		Failure:     string(out.Failure),
		Diagnostic:  out.Diagnostic,
		FellBack:    out.FellBack,
		Attempts:    out.Attempts,
	}
	if err := s.Store.RecordDelivery(rec); err != nil {
		slog.Error("recording delivery", "error", err)
	}
}
