package engine

import "time"

// LedgerTimeLayout is the timestamp format persisted in the ledger
// (RFC 1123 with numeric zone).
const LedgerTimeLayout = time.RFC1123Z

// feedTimeLayouts are the formats remote sources are known to emit:
// RFC3339 from Atom feeds, RFC1123(Z) from RSS 2.0, a date-only form from
// yt-dlp upload dates.
var feedTimeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"20060102",
}

// ParseFeedTime parses a raw source timestamp.
func ParseFeedTime(s string) (time.Time, bool) {
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTimestamp converts a raw source timestamp into the ledger form,
// adjusted to loc. Unparseable input is kept verbatim rather than dropped so
// the observation is never lost.
func NormalizeTimestamp(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	t, ok := ParseFeedTime(raw)
	if !ok {
		return raw
	}
	return FormatLedgerTime(t, loc)
}

// FormatLedgerTime renders t in the ledger timestamp form, adjusted to loc.
func FormatLedgerTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(LedgerTimeLayout)
}
