package web

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

// FormatTime renders timestamps the same way across the dashboard.
func FormatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format("15:04:05")
}

// Percent is value as a share of goal, clamped to 0..100.
func Percent(value, goal int) int {
	if goal <= 0 || value <= 0 {
		return 0
	}
	pct := value * 100 / goal
	if pct > 100 {
		return 100
	}
	return pct
}
