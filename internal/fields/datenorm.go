package fields

import (
	"strings"
	"time"
)

// NormalizeDate converts a day-month-year date with "/" or "-" separators to
// ISO8601 ("2006-01-02T15:04:05"). Two-digit years expand to 20YY. Anything
// that does not build a real calendar date comes back unchanged; this
// function never fails.
func NormalizeDate(s string) string {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "-", "/")
	parts := strings.Split(norm, "/")
	if len(parts) != 3 {
		return s
	}
	if len(parts[2]) == 2 {
		parts[2] = "20" + parts[2]
	}
	t, err := time.Parse("2/1/2006", strings.Join(parts, "/"))
	if err != nil {
		return s
	}
	return t.Format("2006-01-02T15:04:05")
}
