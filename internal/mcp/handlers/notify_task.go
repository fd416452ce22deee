package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/notify"
	"taskbeacon/internal/signal"
)

// NotifyTask returns a handler that dispatches an already-structured
// report. No extraction runs; the caller's fields are clamped to the
// engine's limits and sent as-is.
func NotifyTask(svc *notify.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		taskName, _ := args["task_name"].(string)
		if taskName == "" {
			return mcp.NewToolResultError("task_name is required"), nil
		}

		status, _ := args["status"].(string)
		if !signal.Status(status).Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("status must be success, failed or running, got %q", status)), nil
		}

		taskType := signal.TypeCustom
		if tt, ok := args["task_type"].(string); ok && tt != "" {
			switch t := signal.TaskType(tt); t {
			case signal.TypeBash, signal.TypeWrite, signal.TypeEdit, signal.TypeCustom:
				taskType = t
			default:
				return mcp.NewToolResultError(fmt.Sprintf("unknown task_type %q", tt)), nil
			}
		}

		result, _ := args["result"].(string)
		durationSec := 0
		if d, ok := args["duration_sec"].(float64); ok && d > 0 {
			durationSec = int(d)
		}
		channelName, _ := args["channel"].(string)

		sig := signal.TaskSignal{
			TaskName:    signal.Truncate(taskName, signal.MaxTaskNameLen),
			Status:      signal.Status(status),
			TaskType:    taskType,
			Summary:     signal.Truncate(result, signal.MaxSummaryLen),
			DurationSec: durationSec,
			Timestamp:   time.Now(),
		}

		res, err := svc.Notify(ctx, notify.Request{Signal: &sig, Channel: channelName})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return formatDispatchResult(res), nil
	}
}
