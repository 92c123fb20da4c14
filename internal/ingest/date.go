package ingest

import (
	"strconv"
	"strings"
	"time"
)

// spreadsheetEpoch anchors numeric date serials. Serials count days since
// 1900-01-01, minus two days to absorb the historical 1900 leap-year bug
// carried by every spreadsheet application since.
var spreadsheetEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const serialDayOffset = 2

// fallbackLayouts are tried, in order, after every structured format fails.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseFlexibleDate converts a raw spreadsheet cell into an instant.
//
// The cell may hold a numeric serial (days since the 1900 epoch) or a date
// string. String formats are tried in a fixed priority order: ISO
// YYYY-MM-DD, MM/DD/YYYY, DD/MM/YYYY, MM-DD-YYYY, DD-MM-YYYY, then the
// generic fallback layouts. Candidate slash/dash formats are accepted only
// when month, day and year land in their valid ranges; otherwise the next
// format is tried.
//
// The function is total: when every attempt fails (or the cell is empty) it
// returns now with ok=false so the caller can record the data-quality
// problem instead of aborting ingestion.
func ParseFlexibleDate(value string, now time.Time) (parsed time.Time, ok bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return now, false
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		days := serial - serialDayOffset
		return spreadsheetEpoch.Add(time.Duration(days * 24 * float64(time.Hour))), true
	}

	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t, true
	}

	if t, ok := parseThreePart(trimmed, "/", true); ok {
		return t, true
	}
	if t, ok := parseThreePart(trimmed, "/", false); ok {
		return t, true
	}
	if t, ok := parseThreePart(trimmed, "-", true); ok {
		return t, true
	}
	if t, ok := parseThreePart(trimmed, "-", false); ok {
		return t, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}

	return now, false
}

// parseThreePart handles MM/DD/YYYY-style strings. monthFirst selects
// whether the first component is the month or the day.
func parseThreePart(value, sep string, monthFirst bool) (time.Time, bool) {
	parts := strings.Split(value, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, false
	}
	second, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, false
	}

	month, day := first, second
	if !monthFirst {
		month, day = second, first
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
