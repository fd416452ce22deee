package signal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Options controls extraction. The zero value gives the coarse profile
// with no overrides.
type Options struct {
	// Fine selects the fine-grained category profile instead of the
	// coarse Bash/Write/Edit/Custom one.
	Fine bool

	// Status, when set, short-circuits status classification.
	Status Status

	// DurationSec, when > 0, short-circuits duration detection.
	DurationSec int

	// Context annotations copied onto the signal unmodified.
	Context map[string]string
}

// Extract turns a (request, response) text pair into a TaskSignal.
// request is the user's input or a combined command output; response is the
// assistant/tool output and may be empty, in which case request stands in
// for it. Extraction is deterministic, never fails, and degrades to fixed
// fallbacks when nothing matches.
func Extract(request, response string, opts Options) TaskSignal {
	statusText := response
	if statusText == "" {
		statusText = request
	}
	combined := request + " " + response

	sig := TaskSignal{
		TaskName:    ExtractTaskName(request),
		Status:      opts.Status,
		DurationSec: opts.DurationSec,
		Timestamp:   time.Now(),
		Context:     opts.Context,
	}
	if !sig.Status.Valid() {
		sig.Status = ClassifyStatus(statusText)
	}

	var category string
	if opts.Fine {
		category = ClassifyFine(combined)
		sig.Category = category
	} else {
		sig.TaskType = ClassifyCoarse(combined)
	}

	fragments := KeyDetails(statusText, 3)
	fragments = append(fragments, NumericDetails(combined, category)...)
	if len(fragments) == 0 {
		fragments = append(fragments, "request: "+truncateRunes(strings.TrimSpace(request), MaxTaskNameLen))
	}
	if sig.DurationSec > 0 {
		fragments = append(fragments, fmt.Sprintf("duration: %ds", sig.DurationSec))
	}
	sig.Summary = BuildSummary(fragments, MaxSummaryLen)

	return sig
}

// Intent patterns, tried in order. The capture must be longer than five
// runes or the rule is skipped.
var intentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`帮我(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`请(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`我想(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`需要(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`能否(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`如何(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`配置(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`测试(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`运行(.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`(?i)help me (.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`(?i)please (.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`(?i)i want to (.{1,45}?)(?:[，。！？,.!?]|$)`),
	regexp.MustCompile(`(?i)how do i (.{1,45}?)(?:[，。！？,.!?]|$)`),
}

// ExtractTaskName derives a short task title from the request text.
// Rules are tried in order, first match wins:
//  1. intent patterns ("help me ...", "帮我..."), capture > 5 runes;
//  2. action verb + the following 30 runes;
//  3. domain keyword + " task";
//  4. the text itself, truncated to 50 runes.
//
// The result is never empty and never longer than MaxTaskNameLen runes.
func ExtractTaskName(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "task"
	}

	for _, p := range intentPatterns {
		m := p.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		capture := strings.TrimSpace(m[1])
		if len([]rune(capture)) > 5 {
			return truncateRunes(capture, MaxTaskNameLen)
		}
	}

	// Lowercasing can change byte lengths (ToLower is not length
	// preserving for every rune), so the verb offset is only valid
	// inside lower itself. Slice lower, never trimmed.
	lower := strings.ToLower(trimmed)
	for _, verb := range actionVerbs {
		idx := strings.Index(lower, verb)
		if idx < 0 {
			continue
		}
		// Verb plus the following 30 runes, spacing preserved.
		candidate := strings.TrimSpace(lower[idx:])
		limit := len([]rune(verb)) + 30
		if r := []rune(candidate); len(r) > limit {
			candidate = strings.TrimSpace(string(r[:limit]))
		}
		return truncateRunes(candidate, MaxTaskNameLen)
	}

	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			return kw + " task"
		}
	}

	return truncateRunes(trimmed, MaxTaskNameLen)
}

// ClassifyStatus maps response text to a status. Failure indicators are
// checked before running and success ones: text mentioning both "started"
// and "error" is failed. When nothing matches the status defaults to
// success — assistants and tools overwhelmingly report success-shaped
// text, so the ambiguous case is deliberately biased that way. A
// misclassified failure therefore reads as success; callers that know
// better should pass an override.
func ClassifyStatus(text string) Status {
	lower := strings.ToLower(text)

	if containsAny(lower, failureIndicators) {
		return StatusFailed
	}
	if containsAny(lower, runningIndicators) {
		return StatusRunning
	}
	if containsAny(lower, successIndicators) {
		return StatusSuccess
	}
	return StatusSuccess
}

// ClassifyCoarse assigns one of the four closed task types. Categories are
// tested in Bash → Write → Edit order; no match means Custom.
func ClassifyCoarse(text string) TaskType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, bashKeywords):
		return TypeBash
	case containsAny(lower, writeKeywords):
		return TypeWrite
	case containsAny(lower, editKeywords):
		return TypeEdit
	default:
		return TypeCustom
	}
}

// ClassifyFine scores every lexicon category by the number of its distinct
// keywords present in the text. Highest nonzero score wins; ties go to the
// first-declared category. No keyword anywhere means CategoryOther.
func ClassifyFine(text string) string {
	lower := strings.ToLower(text)

	best := CategoryOther
	bestScore := 0
	for _, rule := range categoryRules {
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = rule.Name
			bestScore = score
		}
	}
	return best
}

var integerRe = regexp.MustCompile(`\d+`)

// NumericDetails turns number-bearing phrases into structured detail
// fragments ("analyzed 50 files") keyed by the category and nearby nouns.
func NumericDetails(text, category string) []string {
	nums := integerRe.FindAllString(text, -1)
	if len(nums) == 0 {
		return nil
	}
	lower := strings.ToLower(text)

	var details []string
	switch category {
	case CategoryAnalysis:
		if strings.Contains(lower, "文件") || strings.Contains(lower, "file") {
			details = append(details, "analyzed "+nums[0]+" files")
		}
		if (strings.Contains(lower, "问题") || strings.Contains(lower, "错误") || strings.Contains(lower, "issue")) && len(nums) > 1 {
			details = append(details, "found "+nums[1]+" issues")
		}
	case CategoryGeneration:
		if strings.Contains(lower, "文件") || strings.Contains(lower, "file") {
			details = append(details, "generated "+nums[0]+" files")
		}
		if (strings.Contains(lower, "行") || strings.Contains(lower, "line")) && len(nums) > 1 {
			details = append(details, nums[1]+" lines of code")
		}
	case CategoryTesting:
		details = append(details, "ran "+nums[0]+" tests")
		if len(nums) > 1 {
			details = append(details, nums[1]+" passed")
		}
	case CategoryData:
		details = append(details, "processed "+nums[0]+" records")
	case CategoryFiles:
		details = append(details, "processed "+nums[0]+" files")
	}
	return details
}

// KeyDetails picks up to max transcript lines worth surfacing: lines inside
// a 10–200 rune window, not matching the noise denylist, containing at
// least one value keyword.
func KeyDetails(text string, max int) []string {
	var details []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		n := len([]rune(line))
		if n < 10 || n > 200 {
			continue
		}
		lower := strings.ToLower(line)
		if containsAny(lower, noiseMarkers) {
			continue
		}
		if containsAny(lower, valueKeywords) {
			details = append(details, line)
			if len(details) == max {
				break
			}
		}
	}
	return details
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
