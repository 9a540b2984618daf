package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Delay grammars, tried in order. Each numeric group is 1-2 digits.
var delayGrammars = []struct {
	re      *regexp.Regexp
	hours   int // capture index, 0 = absent
	minutes int
}{
	{re: regexp.MustCompile(`^(\d{1,2}):(\d{2})$`), hours: 1, minutes: 2},            // 12:45
	{re: regexp.MustCompile(`^(\d{1,2})h(\d{1,2})(?:m|mn)?$`), hours: 1, minutes: 2}, // 1h40, 1h45mn
	{re: regexp.MustCompile(`^(\d{1,2})h$`), hours: 1},                               // 2h
	{re: regexp.MustCompile(`^(\d{1,2})(?:m|mn)$`), minutes: 1},                      // 3m, 3mn
}

var reDailyTime = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseDelay parses a free-form postponement like "1h30", "2h", "45m" or "12:45".
// Magnitudes are not range-checked: "99h" is 99 hours.
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, g := range delayGrammars {
		m := g.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var d time.Duration
		if g.hours > 0 {
			h, _ := strconv.Atoi(m[g.hours])
			d += time.Duration(h) * time.Hour
		}
		if g.minutes > 0 {
			mins, _ := strconv.Atoi(m[g.minutes])
			d += time.Duration(mins) * time.Minute
		}
		return d, nil
	}
	return 0, ErrInvalidDelayFormat
}

// ParseDailyTime parses "HH:MM" (hour 0..23, minute 0..59).
func ParseDailyTime(s string) (DailyTime, error) {
	m := reDailyTime.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DailyTime{}, ErrInvalidTimeFormat
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if h > 23 || mins > 59 {
		return DailyTime{}, ErrInvalidTimeFormat
	}
	return DailyTime{Hour: h, Minute: mins}, nil
}

// FormatDelay renders a delay in the same shorthand ParseDelay accepts:
// "45m", "2h", "1h30".
func FormatDelay(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h == 0:
		return strconv.Itoa(m) + "m"
	case m == 0:
		return strconv.Itoa(h) + "h"
	default:
		return strconv.Itoa(h) + "h" + fmt.Sprintf("%02d", m)
	}
}
