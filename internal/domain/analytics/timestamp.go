package analytics

import "time"

// DisplayLayout is how recent activity timestamps are shown.
const DisplayLayout = "2006-01-02 15:04:05"

// Stored timestamps are RFC 3339; older records were written without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// FormatTimestamp renders a stored timestamp for display, returning raw
// unchanged when it cannot be parsed.
func FormatTimestamp(raw string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(DisplayLayout)
		}
	}
	return raw
}
