package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/store"
)

const defaultDeliveryLimit = 10

// ListDeliveries returns a handler that reads the delivery log.
func ListDeliveries(db store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if db == nil {
			return mcp.NewToolResultError("delivery log is disabled"), nil
		}

		args := req.GetArguments()

		filter := store.DeliveryFilter{Limit: defaultDeliveryLimit}
		if ch, ok := args["channel"].(string); ok {
			filter.Channel = ch
		}
		if okArg, present := args["ok"].(bool); present {
			filter.OK = &okArg
		}
		if n, ok := args["limit"].(float64); ok && n > 0 {
			filter.Limit = int(n)
		}

		recs, err := db.ListDeliveries(filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing deliveries: %v", err)), nil
		}
		if len(recs) == 0 {
			return mcp.NewToolResultText("No deliveries recorded."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d deliveries (newest first):\n\n", len(recs))
		for _, d := range recs {
			mark := "OK"
			if !d.OK {
				mark = "FAILED"
			}
			fmt.Fprintf(&b, "[%d] %s — %s\n", d.ID, d.TaskName, mark)
			fmt.Fprintf(&b, "    channel=%s schema=%s status=%s type=%s attempts=%d\n",
				d.Channel, d.Schema, d.Status, d.TaskType, d.Attempts)
			if d.FellBack {
				b.WriteString("    fell back to generic schema\n")
			}
			if !d.OK {
				fmt.Fprintf(&b, "    %s failure: %s\n", d.Failure, d.Diagnostic)
			}
			fmt.Fprintf(&b, "    at %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		return mcp.NewToolResultText(b.String()), nil
	}
}
