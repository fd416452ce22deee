package signal

import (
	"time"
)

// Status is the execution outcome of a unit of work.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusRunning Status = "running"
)

// Valid reports whether s is one of the three closed statuses.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusRunning
}

// TaskType is the coarse task category used by the structured hook schema.
type TaskType string

const (
	TypeBash   TaskType = "Bash"
	TypeWrite  TaskType = "Write"
	TypeEdit   TaskType = "Edit"
	TypeCustom TaskType = "Custom"
)

// Limits applied by the extractor and the summary builder.
const (
	MaxTaskNameLen = 50
	MaxSummaryLen  = 900
)

// TaskSignal is the structured record derived from raw task output.
// It is built once per notification event and never mutated afterwards;
// its only destination is serialization into a wire payload.
type TaskSignal struct {
	TaskName    string
	Status      Status
	TaskType    TaskType // coarse profile
	Category    string   // fine-grained profile, empty when coarse only
	Summary     string
	DurationSec int
	Timestamp   time.Time

	// Context carries caller annotations (project name, path, ...)
	// passed through to payloads unmodified.
	Context map[string]string
}

// CoarseType returns the closed-enum type for the structured hook schema.
// Fine-grained categories are mapped down; anything unknown is Custom.
func (s TaskSignal) CoarseType() TaskType {
	if s.TaskType != "" {
		return s.TaskType
	}
	if t, ok := categoryToCoarse[s.Category]; ok {
		return t
	}
	return TypeCustom
}

// categoryToCoarse maps fine-grained categories onto the structured hook's
// closed enum. Categories without a natural home map to Custom.
var categoryToCoarse = map[string]TaskType{
	CategoryScripting:     TypeBash,
	CategoryDeployment:    TypeBash,
	CategoryGeneration:    TypeWrite,
	CategoryDocumentation: TypeWrite,
	CategoryRefactoring:   TypeEdit,
	CategoryBugFix:        TypeEdit,
	CategoryConfiguration: TypeEdit,
}
