// Package codec renders a TaskSignal into one of the supported wire
// payload shapes. Encoding is pure: whatever the signal carries, the
// payload that leaves here satisfies the target schema's closed enums
// and length caps.
package codec

import (
	"fmt"
	"strings"

	"taskbeacon/internal/channel"
	"taskbeacon/internal/signal"
)

// StructuredPayload is the strict machine-consumed hook shape.
type StructuredPayload struct {
	TaskName    string `json:"task_name"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	TaskType    string `json:"task_type"`
	DurationSec int    `json:"duration_sec"`
}

// GenericPayload is the push-service shape (title/description/content
// plus passthrough credentials).
type GenericPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Token       string `json:"token"`
	Channel     string `json:"channel"`
}

// TextPayload is the plain Feishu text message.
type TextPayload struct {
	MsgType string      `json:"msg_type"`
	Content TextContent `json:"content"`
}

type TextContent struct {
	Text string `json:"text"`
}

// CardPayload is the Feishu interactive card.
type CardPayload struct {
	MsgType string `json:"msg_type"`
	Card    Card   `json:"card"`
}

type Card struct {
	Header   CardHeader    `json:"header"`
	Elements []CardElement `json:"elements"`
}

type CardHeader struct {
	Title    CardText `json:"title"`
	Template string   `json:"template"`
}

type CardElement struct {
	Tag  string   `json:"tag"`
	Text CardText `json:"text"`
}

type CardText struct {
	Content string `json:"content"`
	Tag     string `json:"tag"`
}

// StatusMarker returns the icon and card color for a status. The mapping
// is total and identical across every schema: success is green, failed
// red, running blue, anything else the neutral blue.
func StatusMarker(s signal.Status) (icon, color string) {
	switch s {
	case signal.StatusSuccess:
		return "✅", "green"
	case signal.StatusFailed:
		return "❌", "red"
	case signal.StatusRunning:
		return "🔄", "blue"
	default:
		return "📋", "blue"
	}
}

// Encode renders sig for the descriptor's schema.
func Encode(sig signal.TaskSignal, d channel.Descriptor) (any, error) {
	switch d.Schema {
	case channel.SchemaStructuredHook:
		return EncodeStructured(sig), nil
	case channel.SchemaGenericPush:
		return EncodeGeneric(sig, d), nil
	case channel.SchemaPlainText:
		return EncodeText(sig), nil
	case channel.SchemaRichCard:
		return EncodeCard(sig), nil
	default:
		return nil, fmt.Errorf("unknown schema %q", d.Schema)
	}
}

// EncodeStructured clamps the signal onto the closed enums of the hook
// schema: any fine-grained category maps down to Bash/Write/Edit/Custom,
// an out-of-range status becomes success, and the result is re-capped.
func EncodeStructured(sig signal.TaskSignal) StructuredPayload {
	status := sig.Status
	if !status.Valid() {
		status = signal.StatusSuccess
	}
	return StructuredPayload{
		TaskName:    signal.Truncate(sig.TaskName, signal.MaxTaskNameLen),
		Status:      string(status),
		Result:      signal.Truncate(sig.Summary, signal.MaxSummaryLen),
		TaskType:    string(sig.CoarseType()),
		DurationSec: max(sig.DurationSec, 0),
	}
}

// EncodeGeneric renders the push-service shape. Token and channel come
// straight from the descriptor.
func EncodeGeneric(sig signal.TaskSignal, d channel.Descriptor) GenericPayload {
	icon, _ := StatusMarker(sig.Status)
	return GenericPayload{
		Title:       icon + " " + signal.Truncate(sig.TaskName, signal.MaxTaskNameLen),
		Description: oneLine(sig),
		Content:     contentBlock(sig, false),
		Token:       d.Token,
		Channel:     d.Channel,
	}
}

// EncodeText renders the plain-text message.
func EncodeText(sig signal.TaskSignal) TextPayload {
	return TextPayload{
		MsgType: "text",
		Content: TextContent{Text: contentBlock(sig, false)},
	}
}

// EncodeCard renders the interactive card with a status-colored header.
func EncodeCard(sig signal.TaskSignal) CardPayload {
	typeIcon := signal.CategoryIcon(sig.Category)
	_, color := StatusMarker(sig.Status)

	return CardPayload{
		MsgType: "interactive",
		Card: Card{
			Header: CardHeader{
				Title: CardText{
					Content: typeIcon + " " + signal.Truncate(sig.TaskName, signal.MaxTaskNameLen),
					Tag:     "plain_text",
				},
				Template: color,
			},
			Elements: []CardElement{
				{
					Tag:  "div",
					Text: CardText{Content: contentBlock(sig, true), Tag: "lark_md"},
				},
			},
		},
	}
}

// oneLine is the single-line status summary used as the generic
// description field.
func oneLine(sig signal.TaskSignal) string {
	icon, _ := StatusMarker(sig.Status)
	line := fmt.Sprintf("%s %s — %s", icon, signal.Truncate(sig.TaskName, signal.MaxTaskNameLen), displayStatus(sig))
	if sig.DurationSec > 0 {
		line += fmt.Sprintf(" (%s)", formatDuration(sig.DurationSec))
	}
	return line
}

// contentBlock builds the multi-line human-readable body shared by the
// generic, plain-text and card schemas. markdown switches the lark_md
// bold markers on.
func contentBlock(sig signal.TaskSignal, markdown bool) string {
	icon, _ := StatusMarker(sig.Status)
	typeName := displayType(sig)

	field := func(label, value string) string {
		if markdown {
			return fmt.Sprintf("**%s**: %s\n", label, value)
		}
		return fmt.Sprintf("%s: %s\n", label, value)
	}

	var b strings.Builder
	b.WriteString(field("Task", signal.Truncate(sig.TaskName, signal.MaxTaskNameLen)))
	b.WriteString(field("Type", typeName))
	b.WriteString(field("Status", icon+" "+displayStatus(sig)))
	if !sig.Timestamp.IsZero() {
		b.WriteString(field("Time", sig.Timestamp.Format("2006-01-02 15:04:05")))
	}
	if sig.DurationSec > 0 {
		b.WriteString(field("Duration", formatDuration(sig.DurationSec)))
	}
	if sig.Summary != "" {
		b.WriteString("\n")
		b.WriteString(field("Details", "\n"+signal.Truncate(sig.Summary, signal.MaxSummaryLen)))
	}
	for _, key := range []string{"project_name", "project_path"} {
		if v, ok := sig.Context[key]; ok && v != "" {
			b.WriteString(field(key, v))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayStatus(sig signal.TaskSignal) string {
	if sig.Status.Valid() {
		return string(sig.Status)
	}
	return string(signal.StatusSuccess)
}

func displayType(sig signal.TaskSignal) string {
	if sig.Category != "" {
		return sig.Category
	}
	return string(sig.CoarseType())
}

func formatDuration(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("%dm %ds", sec/60, sec%60)
}
