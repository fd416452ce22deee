package signal

import (
	"regexp"
	"strconv"
	"strings"
)

var decimalRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

var (
	minuteUnits = []string{"分", "min"}
	hourUnits   = []string{"时", "hour", "hr"}
	secondUnits = []string{"秒", "sec", "s"}
)

// ParseDuration converts a human-readable duration ("2分钟", "1.5 hours",
// "45s") into whole seconds. Units are checked minutes → hours → seconds:
// the seconds marker ("s") is a substring of the other unit words, so it
// must come last to avoid false matches. A string with no number or no
// recognizable unit yields 0; ParseDuration never fails.
func ParseDuration(text string) int {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	num := decimalRe.FindString(lower)
	if num == "" {
		return 0
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	switch {
	case containsAny(lower, minuteUnits):
		return int(value * 60)
	case containsAny(lower, hourUnits):
		return int(value * 3600)
	case containsAny(lower, secondUnits):
		return int(value)
	}
	return 0
}
