package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"
)

// handleMockWebhook is a stand-in push endpoint for local development.
// It accepts any JSON payload, logs what it understood about it, and
// answers with both success markers so every channel schema passes.
func handleMockWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body failed")
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "body is not valid JSON")
		return
	}

	slog.Info("mock webhook received",
		"bytes", len(body),
		"msg_type", gjson.GetBytes(body, "msg_type").String(),
		"task_name", gjson.GetBytes(body, "task_name").String(),
		"title", gjson.GetBytes(body, "title").String())

	writeJSON(w, http.StatusOK, map[string]any{
		"code":    0,
		"msg":     "success",
		"success": true,
	})
}
