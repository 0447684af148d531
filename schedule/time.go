package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a canonical wall-clock time (no date, no zone).
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// String formats the time as "HH:MM", the form stored and served.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is strictly earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour < o.Hour
	}
	return t.Minute < o.Minute
}

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// ParseTime converts a free-form time string into a canonical time of day.
// Client times come from a mix of native pickers and free-text inputs, so the
// parser accepts 12-hour forms with or without a space before AM/PM, plain
// 24-hour "HH:MM", and as a last resort the first clock-looking fragment
// anywhere in the string. ok is false when nothing parseable remains; an
// empty string is also not parseable (callers check presence separately to
// report a distinct error).
func ParseTime(raw string) (TimeOfDay, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return TimeOfDay{}, false
	}

	if strings.Contains(s, "AM") || strings.Contains(s, "PM") {
		if t, err := time.Parse("3:04 PM", s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
		}
		if t, err := time.Parse("3:04PM", s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
		}

		// Mangled widget output ("14:00 PM", "2 : 30PM"): drop the meridiem
		// tokens and rebuild a 24-hour string by hand.
		clean := strings.ReplaceAll(s, "AM", "")
		clean = strings.TrimSpace(strings.ReplaceAll(clean, "PM", ""))
		if !strings.Contains(clean, ":") {
			return TimeOfDay{}, false
		}
		parts := strings.SplitN(clean, ":", 2)
		hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return TimeOfDay{}, false
		}
		if strings.Contains(s, "PM") && hour < 12 {
			hour += 12
		}
		if strings.Contains(s, "AM") && hour == 12 {
			hour = 0
		}
		return parse24(fmt.Sprintf("%02d:%s", hour, strings.TrimSpace(parts[1])))
	}

	if t, ok := parse24(s); ok {
		return t, true
	}

	// Free text ("de 9:30 hrs"): take the first clock fragment.
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	return parse24(fmt.Sprintf("%02d:%s", hour, m[2]))
}

func parse24(s string) (TimeOfDay, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
}
