package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Song durations are stored canonically as "H:MM:SS" (hours not padded,
// e.g. "0:05:30") and rendered for display with zero hours dropped
// ("5:30"). ParseDuration also accepts the two-part "MM:SS" form so that
// values written by older imports keep working.

// ParseDuration converts a stored duration string to whole seconds.
func ParseDuration(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed duration %q", s)
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed duration %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatCanonical renders seconds in the stored "H:MM:SS" form.
func FormatCanonical(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatDisplay renders seconds for the UI: "M:SS", or "H:MM:SS" once
// the track is an hour or longer.
func FormatDisplay(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// DisplayDuration re-renders a stored duration string for the UI.
// Unparseable input is returned unchanged rather than erased.
func DisplayDuration(stored string) string {
	secs, err := ParseDuration(stored)
	if err != nil {
		return stored
	}
	return FormatDisplay(secs)
}
