package signal

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Extraction must stay total: any input text yields a non-empty name
// within the title cap.
func TestProperty_TaskNameBoundedAndNonEmpty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		name := ExtractTaskName(text)
		if name == "" {
			rt.Fatalf("empty task name for input %q", text)
		}
		if n := len([]rune(name)); n > MaxTaskNameLen {
			rt.Fatalf("task name %d runes long for input %q", n, text)
		}
	})
}

func TestProperty_StatusAlwaysClosedEnum(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.String().Draw(rt, "text")

		if s := ClassifyStatus(text); !s.Valid() {
			rt.Fatalf("status %q outside the closed enum for input %q", s, text)
		}
	})
}

func TestProperty_SummaryRespectsCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "num_fragments")
		fragments := make([]string, n)
		for i := range fragments {
			fragments[i] = rapid.StringN(-1, 120, -1).Draw(rt, "fragment")
		}
		max := rapid.IntRange(10, 1000).Draw(rt, "cap")

		out := BuildSummary(fragments, max)
		runes := []rune(out)
		if len(runes) > max {
			rt.Fatalf("summary %d runes long, cap %d", len(runes), max)
		}

		joined := strings.Join(fragments, " | ")
		if len([]rune(joined)) > max {
			if len(runes) != max {
				rt.Fatalf("truncated summary is %d runes, want exactly %d", len(runes), max)
			}
			if !strings.HasSuffix(out, Ellipsis) {
				rt.Fatalf("truncated summary missing ellipsis: %q", out)
			}
		}
	})
}

func TestProperty_ExtractSignalInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		request := rapid.String().Draw(rt, "request")
		response := rapid.String().Draw(rt, "response")
		fine := rapid.Bool().Draw(rt, "fine")

		sig := Extract(request, response, Options{Fine: fine})

		if sig.TaskName == "" {
			rt.Fatal("task name empty")
		}
		if !sig.Status.Valid() {
			rt.Fatalf("invalid status %q", sig.Status)
		}
		if !fine && sig.TaskType == "" {
			rt.Fatal("coarse profile left task type unset")
		}
		if fine && sig.Category == "" {
			rt.Fatal("fine profile left category unset")
		}
		if n := len([]rune(sig.Summary)); n > MaxSummaryLen {
			rt.Fatalf("summary %d runes long", n)
		}
		if sig.DurationSec < 0 {
			rt.Fatalf("negative duration %d", sig.DurationSec)
		}
	})
}
