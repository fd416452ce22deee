// Package session tracks one unit of work across multiple interactions
// and distills it into a TaskSignal when it finishes.
//
// A Session is created explicitly by the caller and finished explicitly
// with Finish — there is no ambient singleton and no process-exit hook.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"taskbeacon/internal/signal"
)

// Interaction is one request/response exchange recorded on a session.
type Interaction struct {
	At       time.Time
	Request  string
	Response string
}

// analyzedInteractions bounds how much of the tail of a long session
// feeds the summary.
const analyzedInteractions = 3

// Session accumulates interactions and raw output for one unit of work.
// Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	startedAt  time.Time
	finishedAt time.Time

	interactions []Interaction
	output       []byte
	maxOutput    int

	fine    bool
	context map[string]string

	finished bool
	result   signal.TaskSignal
}

// New starts a session. maxOutputBytes bounds the raw output buffer
// (0 = unlimited); fine selects the fine-grained classification profile.
func New(maxOutputBytes int, fine bool, context map[string]string) *Session {
	return &Session{
		startedAt: time.Now(),
		maxOutput: maxOutputBytes,
		fine:      fine,
		context:   context,
	}
}

// AddInteraction records one request/response exchange.
func (s *Session) AddInteraction(request, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, Interaction{
		At:       time.Now(),
		Request:  request,
		Response: response,
	})
}

// AppendOutput appends raw captured output. When the buffer exceeds the
// configured bound only the most recent bytes are kept.
func (s *Session) AppendOutput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.output = append(s.output, text...)
	if s.maxOutput > 0 && len(s.output) > s.maxOutput {
		s.output = s.output[len(s.output)-s.maxOutput:]
	}
}

// Output returns the current output buffer contents.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.output)
}

// Elapsed returns the session duration so far (or total once finished).
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	end := s.finishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.startedAt)
}

// Finish closes the session and distills it into a TaskSignal. Calling
// Finish again returns the signal from the first call.
func (s *Session) Finish() signal.TaskSignal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return s.result
	}
	s.finishedAt = time.Now()
	s.finished = true
	s.result = s.distillLocked()
	return s.result
}

func (s *Session) distillLocked() signal.TaskSignal {
	durationSec := int(s.elapsedLocked().Seconds())

	if len(s.interactions) == 0 && len(s.output) == 0 {
		return signal.TaskSignal{
			TaskName:    "work session",
			Status:      signal.StatusRunning,
			TaskType:    signal.TypeCustom,
			Summary:     "session in progress",
			DurationSec: durationSec,
			Timestamp:   time.Now(),
			Context:     s.context,
		}
	}

	var request, response string
	if n := len(s.interactions); n > 0 {
		latest := s.interactions[n-1]
		request = latest.Request
		response = latest.Response
	}
	if len(s.output) > 0 {
		response = strings.TrimSpace(response + "\n" + string(s.output))
	}
	if request == "" {
		request = response
	}

	sig := signal.Extract(request, response, signal.Options{
		Fine:        s.fine,
		DurationSec: durationSec,
		Context:     s.context,
	})

	// Type classification looks at the whole transcript, not just the
	// latest exchange.
	transcript := s.transcriptLocked()
	if s.fine {
		sig.Category = signal.ClassifyFine(transcript)
	} else {
		sig.TaskType = signal.ClassifyCoarse(transcript)
	}

	if n := len(s.interactions); n > 0 {
		stats := fmt.Sprintf("session: %d interactions", n)
		sig.Summary = signal.BuildSummary([]string{sig.Summary, stats}, signal.MaxSummaryLen)
	}
	return sig
}

// transcriptLocked joins the analyzed tail of the conversation plus the
// output buffer into one classification text.
func (s *Session) transcriptLocked() string {
	start := 0
	if len(s.interactions) > analyzedInteractions {
		start = len(s.interactions) - analyzedInteractions
	}

	var b strings.Builder
	for _, it := range s.interactions[start:] {
		b.WriteString(it.Request)
		b.WriteString(" ")
		b.WriteString(it.Response)
		b.WriteString(" ")
	}
	b.Write(s.output)
	return b.String()
}
