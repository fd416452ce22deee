package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration_Table(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"2分钟", 120},
		{"2 minutes", 120},
		{"45秒", 45},
		{"45 seconds", 45},
		{"1.5小时", 5400},
		{"1.5 hours", 5400},
		{"90s", 90},
		{"3 min", 180},
		{"2hr", 7200},
		{"", 0},
		{"garbage", 0},
		{"42", 0},      // number without a unit
		{"minutes", 0}, // unit without a number
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseDuration(tc.in), "input %q", tc.in)
	}
}

func TestParseDuration_MinutesCheckedBeforeSeconds(t *testing.T) {
	t.Parallel()

	// "minutes" contains the seconds marker "s"; the unit priority
	// (minutes, hours, seconds) keeps this from parsing as 2 seconds.
	assert.Equal(t, 120, ParseDuration("2 minutes"))
	assert.Equal(t, 5400, ParseDuration("1.5 hours"))
}

func TestParseDuration_TruncatesFractionalSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, ParseDuration("2.7秒"))
	assert.Equal(t, 150, ParseDuration("2.5分钟"))
}
