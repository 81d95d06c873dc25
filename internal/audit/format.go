package audit

import (
	"math"
	"strconv"
	"strings"
)

// Display units as produced by the formatters below.
const (
	UnitSeconds      = "s"
	UnitMilliseconds = "ms"
	UnitNone         = ""
)

// FormatSeconds renders a millisecond timing as seconds with one decimal, e.g. "1.2 s".
func FormatSeconds(ms float64) string {
	return formatNumber(roundTo(ms/1000, 0.1), 1) + " s"
}

// FormatMilliseconds renders a timing rounded to 10ms, e.g. "1,200 ms".
func FormatMilliseconds(ms float64) string {
	return formatNumber(roundTo(ms, 10), 0) + " ms"
}

// FormatUnitless renders a score with at most three decimals, e.g. "0.053".
func FormatUnitless(v float64) string {
	s := formatNumber(roundTo(v, 0.001), 3)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

func roundTo(v, granularity float64) float64 {
	return math.Round(v/granularity) * granularity
}

// formatNumber prints v with fixed decimals and comma thousands separators.
func formatNumber(v float64, decimals int) string {
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// ParseDisplayValue turns "1.2 s", "1,200 ms" or "0.053" back into a number.
// Timings come back in milliseconds.
func ParseDisplayValue(s string) (float64, string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	unit := UnitNone
	switch {
	case strings.HasSuffix(s, " ms"):
		unit = UnitMilliseconds
		s = strings.TrimSuffix(s, " ms")
	case strings.HasSuffix(s, " s"):
		unit = UnitSeconds
		s = strings.TrimSuffix(s, " s")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, unit, false
	}
	if unit == UnitSeconds {
		v *= 1000
	}
	return v, unit, true
}
