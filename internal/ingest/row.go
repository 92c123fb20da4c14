package ingest

import (
	"strconv"
	"strings"
	"time"
)

// Row is one spreadsheet row as delivered by the codec, before
// reconciliation. Raw cells are kept as strings; Normalize derives the
// typed fields. Rows are discarded once folded into canonical records.
type Row struct {
	ID            string
	Label         string // combined "client-license" cell
	Product       string
	ActivationRaw string
	ExpiryRaw     string
	LicenseKey    string
	ActivationsRaw string
	HardwareRaw   string
	License       string

	Activation   time.Time
	Expiry       time.Time
	ActivationOK bool
	ExpiryOK     bool
	Activations  int
}

// Normalize parses the raw date and count cells in place. Unparseable
// dates fall back to now (flagged via the OK fields); unparseable or
// missing activation counts default to zero.
func (r *Row) Normalize(now time.Time) {
	r.Activation, r.ActivationOK = ParseFlexibleDate(r.ActivationRaw, now)
	r.Expiry, r.ExpiryOK = ParseFlexibleDate(r.ExpiryRaw, now)

	r.Activations = 0
	if trimmed := strings.TrimSpace(r.ActivationsRaw); trimmed != "" {
		if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
			r.Activations = n
		}
	}
}

// SplitHardwareIDs turns the comma-separated hardware cell into trimmed,
// de-duplicated tokens. Discovery order is preserved; empty tokens are
// dropped.
func SplitHardwareIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	ids := []string{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		ids = append(ids, token)
	}
	return ids
}

// mergeHardwareIDs unions extra tokens into existing, keeping discovery order.
func mergeHardwareIDs(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing)+len(extra))
	for _, id := range existing {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range extra {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}
