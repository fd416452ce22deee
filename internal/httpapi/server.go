// Package httpapi exposes the notification engine over HTTP: a notify
// endpoint for hook scripts, a read-only view of the delivery log, and
// an optional mock receiver for local development.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"taskbeacon/internal/notify"
	"taskbeacon/internal/signal"
	"taskbeacon/internal/store"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	Service *notify.Service
	Store   store.Store
	// Tokens guard the /v1 API. Empty means open access.
	Tokens []string
	// MockReceiver mounts /mock/webhook when true.
	MockReceiver bool
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(s.Tokens))
		r.Post("/v1/notify", s.handleNotify)
		r.Get("/v1/deliveries", s.handleDeliveries)
	})

	if s.MockReceiver {
		r.Post("/mock/webhook", handleMockWebhook)
	}

	return r
}

// notifyRequest is the JSON body of POST /v1/notify.
type notifyRequest struct {
	Text     string `json:"text"`
	Response string `json:"response"`
	// Status overrides classification when set. Must be one of
	// success, failed, running.
	Status string `json:"status"`
	// Duration is a human-readable duration string ("2分钟", "90s").
	Duration    string            `json:"duration"`
	DurationSec int               `json:"duration_sec"`
	Channel     string            `json:"channel"`
	Context     map[string]string `json:"context"`
}

type notifyResponse struct {
	OK         bool   `json:"ok"`
	Channel    string `json:"channel"`
	Schema     string `json:"schema"`
	TaskName   string `json:"task_name"`
	Status     string `json:"status"`
	TaskType   string `json:"task_type"`
	Summary    string `json:"summary"`
	Failure    string `json:"failure,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
	FellBack   bool   `json:"fell_back"`
	Attempts   int    `json:"attempts"`
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Status != "" && !signal.Status(req.Status).Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	res, err := s.Service.Notify(r.Context(), notify.Request{
		Text:        req.Text,
		Response:    req.Response,
		Status:      signal.Status(req.Status),
		Duration:    req.Duration,
		DurationSec: req.DurationSec,
		Channel:     req.Channel,
		Context:     req.Context,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, notifyResponse{
		OK:         res.Outcome.OK,
		Channel:    res.Channel,
		Schema:     string(res.Schema),
		TaskName:   res.Signal.TaskName,
		Status:     string(res.Signal.Status),
		TaskType:   string(res.Signal.CoarseType()),
		Summary:    res.Signal.Summary,
		Failure:    string(res.Outcome.Failure),
		Diagnostic: res.Outcome.Diagnostic,
		FellBack:   res.Outcome.FellBack,
		Attempts:   res.Outcome.Attempts,
	})
}

type deliveryView struct {
	ID          int64     `json:"id"`
	Channel     string    `json:"channel"`
	Schema      string    `json:"schema"`
	TaskName    string    `json:"task_name"`
	Status      string    `json:"status"`
	TaskType    string    `json:"task_type"`
	DurationSec int       `json:"duration_sec"`
	OK          bool      `json:"ok"`
	Failure     string    `json:"failure,omitempty"`
	Diagnostic  string    `json:"diagnostic,omitempty"`
	FellBack    bool      `json:"fell_back"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, http.StatusNotImplemented, "delivery log is disabled")
		return
	}

	filter := store.DeliveryFilter{
		Channel: r.URL.Query().Get("channel"),
		Limit:   50,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("ok"); v != "" {
		ok, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ok must be true or false")
			return
		}
		filter.OK = &ok
	}

	recs, err := s.Store.ListDeliveries(filter)
	if err != nil {
		slog.Error("listing deliveries", "error", err)
		writeError(w, http.StatusInternalServerError, "listing deliveries failed")
		return
	}

	views := make([]deliveryView, 0, len(recs))
	for _, d := range recs {
		views = append(views, deliveryView{
			ID:          d.ID,
			Channel:     d.Channel,
			Schema:      d.Schema,
			TaskName:    d.TaskName,
			Status:      d.Status,
			TaskType:    d.TaskType,
			DurationSec: d.DurationSec,
			OK:          d.OK,
			Failure:     d.Failure,
			Diagnostic:  d.Diagnostic,
			FellBack:    d.FellBack,
			Attempts:    d.Attempts,
			CreatedAt:   d.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deliveries": views,
		"count":      len(views),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
