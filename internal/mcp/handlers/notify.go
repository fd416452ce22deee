package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/notify"
	"taskbeacon/internal/signal"
)

// Notify returns a handler that extracts a signal from free text and
// dispatches it. Dispatch failures come back as tool errors so the
// calling agent can react (retry, tell the user).
func Notify(svc *notify.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		text, _ := args["text"].(string)
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("text is required"), nil
		}

		response, _ := args["response"].(string)
		status, _ := args["status"].(string)
		duration, _ := args["duration"].(string)
		channelName, _ := args["channel"].(string)

		if status != "" && !signal.Status(status).Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", status)), nil
		}

		res, err := svc.Notify(ctx, notify.Request{
			Text:     text,
			Response: response,
			Status:   signal.Status(status),
			Duration: duration,
			Channel:  channelName,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return formatDispatchResult(res), nil
	}
}

// formatDispatchResult renders a dispatch outcome for the agent.
func formatDispatchResult(res notify.Result) *mcp.CallToolResult {
	var b strings.Builder

	if res.Outcome.OK {
		fmt.Fprintf(&b, "Notification delivered to %q (%s schema).\n", res.Channel, res.Schema)
	} else {
		fmt.Fprintf(&b, "Notification to %q FAILED (%s failure).\n", res.Channel, res.Outcome.Failure)
		if res.Outcome.Diagnostic != "" {
			fmt.Fprintf(&b, "Diagnostic: %s\n", res.Outcome.Diagnostic)
		}
	}
	if res.Outcome.FellBack {
		b.WriteString("Rich card was rejected; fell back to the generic schema.\n")
	}

	fmt.Fprintf(&b, "\nTask: %s\n", res.Signal.TaskName)
	fmt.Fprintf(&b, "Status: %s\n", res.Signal.Status)
	fmt.Fprintf(&b, "Type: %s\n", res.Signal.CoarseType())
	if res.Signal.DurationSec > 0 {
		fmt.Fprintf(&b, "Duration: %ds\n", res.Signal.DurationSec)
	}
	fmt.Fprintf(&b, "Attempts: %d\n", res.Outcome.Attempts)

	if !res.Outcome.OK {
		return mcp.NewToolResultError(b.String())
	}
	return mcp.NewToolResultText(b.String())
}
