package query

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

// SortField names a sortable column.
type SortField string

const (
	SortByExpiry      SortField = "expiryDate"
	SortByClientName  SortField = "clientName"
	SortByProduct     SortField = "product"
	SortByLicenseKey  SortField = "licenseKey"
	SortByActivations SortField = "activations"
	SortByStatus      SortField = "status"
	SortByDaysLeft    SortField = "daysLeft"
)

// Sort is the requested ordering. The zero value sorts by expiry ascending.
type Sort struct {
	Field      SortField
	Descending bool
}

// statusRank orders expired before expiring before active, matching the
// urgency ordering the dashboard shows.
var statusRank = map[dataset.Status]int{
	dataset.StatusExpired:      0,
	dataset.StatusExpiringSoon: 1,
	dataset.StatusActive:       2,
}

// Sorter sorts records with locale-aware string comparison. Client and
// product names are frequently Arabic, where byte order and collation
// order disagree.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter builds a sorter for the given BCP 47 locale tag. Unparseable
// tags fall back to Arabic.
func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Arabic
	}
	return &Sorter{collator: collate.New(tag, collate.IgnoreCase)}
}

// Compare collates two strings per the sorter's locale.
func (s *Sorter) Compare(a, b string) int {
	return s.collator.CompareString(a, b)
}

// Sort orders clients in place, stably, per the requested sort. Ties keep
// their filter-pipeline order.
func (s *Sorter) Sort(clients []dataset.Client, by Sort, now time.Time) {
	less := s.lessFunc(by.Field, now)
	if by.Descending {
		inner := less
		less = func(a, b dataset.Client) bool { return inner(b, a) }
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return less(clients[i], clients[j])
	})
}

func (s *Sorter) lessFunc(field SortField, now time.Time) func(a, b dataset.Client) bool {
	switch field {
	case SortByClientName:
		return func(a, b dataset.Client) bool {
			return s.Compare(a.ClientName, b.ClientName) < 0
		}
	case SortByProduct:
		return func(a, b dataset.Client) bool {
			return s.Compare(a.Product, b.Product) < 0
		}
	case SortByLicenseKey:
		return func(a, b dataset.Client) bool {
			return s.Compare(a.LicenseKey, b.LicenseKey) < 0
		}
	case SortByActivations:
		return func(a, b dataset.Client) bool {
			return a.Activations < b.Activations
		}
	case SortByStatus:
		return func(a, b dataset.Client) bool {
			return statusRank[a.Status(now)] < statusRank[b.Status(now)]
		}
	case SortByDaysLeft:
		return func(a, b dataset.Client) bool {
			return a.DaysRemaining(now) < b.DaysRemaining(now)
		}
	default:
		return func(a, b dataset.Client) bool {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
	}
}
