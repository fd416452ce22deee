package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"taskbeacon/internal/mcp/handlers"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// notify — Extract a task signal from free text and push it
	s.AddTool(
		mcp.NewTool("notify",
			mcp.WithDescription("Send a notification from raw task text. The engine extracts a task name, status, category and summary, then pushes it to the configured channel. Call this after finishing a unit of work."),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("The original request or command that was worked on"),
			),
			mcp.WithString("response",
				mcp.Description("The resulting output. Status is classified from this when present."),
			),
			mcp.WithString("status",
				mcp.Description("Explicit outcome, skips classification"),
				mcp.Enum("success", "failed", "running"),
			),
			mcp.WithString("duration",
				mcp.Description("How long the work took, e.g. '2分钟', '1.5 hours', '90s'"),
			),
			mcp.WithString("channel",
				mcp.Description("Channel name from configuration. If omitted, uses the default channel."),
			),
		),
		handlers.Notify(deps.Notifier),
	)

	// notify_task — Push an already-structured task report
	s.AddTool(
		mcp.NewTool("notify_task",
			mcp.WithDescription("Send a notification with explicit fields, bypassing text extraction. Use when the caller already knows the task name, status and result."),
			mcp.WithString("task_name",
				mcp.Required(),
				mcp.Description("Short task title"),
			),
			mcp.WithString("status",
				mcp.Required(),
				mcp.Description("Task outcome"),
				mcp.Enum("success", "failed", "running"),
			),
			mcp.WithString("result",
				mcp.Description("Result summary shown in the notification body"),
			),
			mcp.WithString("task_type",
				mcp.Description("Coarse task category"),
				mcp.Enum("Bash", "Write", "Edit", "Custom"),
			),
			mcp.WithNumber("duration_sec",
				mcp.Description("Task duration in whole seconds"),
			),
			mcp.WithString("channel",
				mcp.Description("Channel name from configuration. If omitted, uses the default channel."),
			),
		),
		handlers.NotifyTask(deps.Notifier),
	)

	// list_deliveries — Inspect the delivery log
	s.AddTool(
		mcp.NewTool("list_deliveries",
			mcp.WithDescription("List recent notification deliveries with their outcomes, newest first."),
			mcp.WithString("channel",
				mcp.Description("Filter by channel name"),
			),
			mcp.WithBoolean("ok",
				mcp.Description("Filter by outcome: true for delivered, false for failed"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of deliveries to return (default: 10)"),
			),
		),
		handlers.ListDeliveries(deps.Store),
	)
}
