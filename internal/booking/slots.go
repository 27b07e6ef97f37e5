package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxSlotChoices caps how many times are offered for a single date.
const maxSlotChoices = 24

var timePattern = regexp.MustCompile(`(\d{1,2}):(\d{1,2})`)

// NormalizeTime reduces a time string to canonical 24-hour "HH:MM" using the
// first H:MM pattern found: "19:00:00" becomes "19:00", "7:5" becomes
// "07:05", out-of-range hours and minutes are clamped. Input with no such
// pattern is returned trimmed but otherwise untouched so the backend can
// reject it.
func NormalizeTime(t string) string {
	s := strings.TrimSpace(t)
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", clamp(hh, 0, 23), clamp(mm, 0, 59))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UniqueAvailableTimes reduces a raw slot list to the times a visitor may
// pick: available only, trimmed, non-empty, first-seen order, no duplicates,
// at most maxSlotChoices entries.
func UniqueAvailableTimes(slots []AvailabilitySlot) []string {
	seen := make(map[string]struct{}, len(slots))
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		if !s.Available {
			continue
		}
		t := strings.TrimSpace(s.Time)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxSlotChoices {
			break
		}
	}
	return out
}
