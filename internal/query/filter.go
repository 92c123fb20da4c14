// Package query implements the dashboard's filter and sort pipeline over
// the in-memory dataset. Filters apply in a fixed order so counts shown
// next to each control stay stable as controls combine.
package query

import (
	"strings"
	"time"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

// unboundedActivations is the sentinel upper bound used when no explicit
// activation ceiling was requested.
const unboundedActivations = 999999

// Filters captures every dashboard control in one request-scoped value.
// Zero values mean "not filtering on this axis".
type Filters struct {
	// Status toggles. All false means show everything.
	ActiveOnly       bool
	ExpiringSoonOnly bool
	ExpiredOnly      bool

	// Client-type exclusions.
	ExcludeDuplicates  bool // keep only the latest record per client name
	ExcludeHighValue   bool
	ExcludeLowActivity bool

	// Search is a case-insensitive substring matched against client name,
	// license name, product and license key.
	Search string

	// Products is an allow-list of product names. Empty means all.
	Products []string

	// Expiry date range, inclusive on both ends. Zero times are open ends.
	ExpiryFrom time.Time
	ExpiryTo   time.Time

	// Activation count range. MaxActivations zero means unbounded.
	MinActivations int
	MaxActivations int

	// Device count range. MaxDevices zero means unbounded.
	MinDevices int
	MaxDevices int

	// ExpiringInDays keeps records expiring between now and now+N days.
	// Zero disables the horizon filter.
	ExpiringInDays int

	// Wildcard patterns. A single "*" is stripped before substring
	// matching, so "ACME*2024" matches any value containing "ACME2024".
	NamePattern string
	KeyPattern  string

	Sort Sort
}

// statusFiltered reports whether any status toggle is set.
func (f Filters) statusFiltered() bool {
	return f.ActiveOnly || f.ExpiringSoonOnly || f.ExpiredOnly
}

func (f Filters) matchesStatus(s dataset.Status) bool {
	switch s {
	case dataset.StatusActive:
		return f.ActiveOnly
	case dataset.StatusExpiringSoon:
		return f.ExpiringSoonOnly
	case dataset.StatusExpired:
		return f.ExpiredOnly
	}
	return false
}

// stripOneWildcard removes the first "*" from a pattern and lowercases it.
func stripOneWildcard(pattern string) string {
	return strings.ToLower(strings.Replace(pattern, "*", "", 1))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Apply runs the full filter pipeline and returns a new slice; the input
// is never mutated. The result is sorted per f.Sort.
func Apply(clients []dataset.Client, f Filters, now time.Time, sorter *Sorter) []dataset.Client {
	out := make([]dataset.Client, len(clients))
	copy(out, clients)

	if f.statusFiltered() {
		out = keep(out, func(c dataset.Client) bool {
			return f.matchesStatus(c.Status(now))
		})
	}

	if f.ExcludeDuplicates {
		out = latestPerClientName(out)
	}
	if f.ExcludeHighValue {
		out = keep(out, func(c dataset.Client) bool { return !c.HighValue() })
	}
	if f.ExcludeLowActivity {
		out = keep(out, func(c dataset.Client) bool { return !c.LowActivity() })
	}

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		out = keep(out, func(c dataset.Client) bool {
			return containsFold(c.ClientName, search) ||
				containsFold(c.LicenseName, search) ||
				containsFold(c.Product, search) ||
				containsFold(c.LicenseKey, search)
		})
	}

	if len(f.Products) > 0 {
		allowed := make(map[string]struct{}, len(f.Products))
		for _, p := range f.Products {
			allowed[p] = struct{}{}
		}
		out = keep(out, func(c dataset.Client) bool {
			_, ok := allowed[c.Product]
			return ok
		})
	}

	if !f.ExpiryFrom.IsZero() {
		out = keep(out, func(c dataset.Client) bool { return !c.ExpiryDate.Before(f.ExpiryFrom) })
	}
	if !f.ExpiryTo.IsZero() {
		out = keep(out, func(c dataset.Client) bool { return !c.ExpiryDate.After(f.ExpiryTo) })
	}

	maxActivations := f.MaxActivations
	if maxActivations <= 0 {
		maxActivations = unboundedActivations
	}
	out = keep(out, func(c dataset.Client) bool {
		return c.Activations >= f.MinActivations && c.Activations <= maxActivations
	})

	if f.MinDevices > 0 || f.MaxDevices > 0 {
		out = keep(out, func(c dataset.Client) bool {
			n := c.DeviceCount()
			if n < f.MinDevices {
				return false
			}
			if f.MaxDevices > 0 && n > f.MaxDevices {
				return false
			}
			return true
		})
	}

	if f.ExpiringInDays > 0 {
		cutoff := now.Add(time.Duration(f.ExpiringInDays) * 24 * time.Hour)
		out = keep(out, func(c dataset.Client) bool {
			return !c.ExpiryDate.Before(now) && !c.ExpiryDate.After(cutoff)
		})
	}

	if pattern := strings.TrimSpace(f.NamePattern); pattern != "" {
		needle := stripOneWildcard(pattern)
		out = keep(out, func(c dataset.Client) bool { return containsFold(c.ClientName, needle) })
	}
	if pattern := strings.TrimSpace(f.KeyPattern); pattern != "" {
		needle := stripOneWildcard(pattern)
		out = keep(out, func(c dataset.Client) bool { return containsFold(c.LicenseKey, needle) })
	}

	sorter.Sort(out, f.Sort, now)
	return out
}

// keep filters in place over the already-copied slice.
func keep(clients []dataset.Client, pred func(dataset.Client) bool) []dataset.Client {
	out := clients[:0]
	for _, c := range clients {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// latestPerClientName keeps, for each client name, the record with the
// latest activation date. Relative order of the survivors is preserved.
func latestPerClientName(clients []dataset.Client) []dataset.Client {
	latest := make(map[string]int, len(clients))
	for i, c := range clients {
		best, seen := latest[c.ClientName]
		if !seen || c.ActivationDate.After(clients[best].ActivationDate) {
			latest[c.ClientName] = i
		}
	}

	out := clients[:0]
	for i, c := range clients {
		if latest[c.ClientName] == i {
			out = append(out, c)
		}
	}
	return out
}
