package signal

// Separator between summary fragments.
const fragmentSeparator = " | "

// Ellipsis appended to every truncated string.
const Ellipsis = "..."

// BuildSummary joins fragments with " | " and truncates the result to max
// runes. Every payload-producing path routes its summary through this
// truncation, so nothing longer than max ever crosses the wire.
func BuildSummary(fragments []string, max int) string {
	var joined string
	for i, f := range fragments {
		if i > 0 {
			joined += fragmentSeparator
		}
		joined += f
	}
	return Truncate(joined, max)
}

// Truncate caps s at max runes. A truncated result keeps the first max-3
// runes, ends with the ellipsis marker, and is exactly max runes long.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(Ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(Ellipsis)]) + Ellipsis
}

func truncateRunes(s string, max int) string {
	return Truncate(s, max)
}
