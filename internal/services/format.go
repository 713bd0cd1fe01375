package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with thousands separators, e.g. 20,000.
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// ParseAmount accepts a positive integer that may contain thousands separators.
func ParseAmount(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

var durationToken = regexp.MustCompile(`^(\d+)(s|m|h|d)$`)

var durationUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
}

// ParseDuration reads "<integer><unit>" with unit one of s, m, h, d.
func ParseDuration(token string) (time.Duration, error) {
	m := durationToken.FindStringSubmatch(strings.ToLower(strings.TrimSpace(token)))
	if m == nil {
		return 0, ErrInvalidDuration
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	unit := durationUnits[m[2]]
	if n > int64(1<<62)/int64(unit) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * unit, nil
}

// FormatDuration prints d largest unit first, dropping leading zero units:
// "1h 2m 3s", "2m 3s", "3s". Sub-second remainders are truncated.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
