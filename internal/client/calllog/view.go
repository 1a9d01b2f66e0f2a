package calllog

import (
	"fmt"
	"strings"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/models"
)

// Filter keeps entries whose phone number or call type contains term,
// ignoring case. An empty term keeps everything.
func Filter(entries []models.CallLogEntry, term string) []models.CallLogEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	out := make([]models.CallLogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.PhoneNumber), term) ||
			strings.Contains(strings.ToLower(string(e.CallType)), term) {
			out = append(out, e)
		}
	}
	return out
}

// WithLocation counts entries that carry both coordinates.
func WithLocation(entries []models.CallLogEntry) int {
	n := 0
	for _, e := range entries {
		if e.HasLocation() {
			n++
		}
	}
	return n
}

// FormatDuration renders seconds as m:ss, or "-" when unknown or zero.
func FormatDuration(seconds *int) string {
	if seconds == nil || *seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", *seconds/60, *seconds%60)
}
