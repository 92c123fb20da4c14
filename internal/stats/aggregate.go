// Package stats derives dashboard aggregates from the canonical dataset.
// Everything is computed in one pass against a caller-supplied clock so
// the numbers stay consistent with each other within a single response.
package stats

import (
	"time"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

// Windows parameterizes the expiry horizons. Zero values fall back to the
// defaults the dashboard has always used (7 and 30 days).
type Windows struct {
	Urgent time.Duration
	Soon   time.Duration
}

const (
	defaultUrgentWindow = 7 * 24 * time.Hour
	defaultSoonWindow   = 30 * 24 * time.Hour
)

func (w Windows) normalized() Windows {
	if w.Urgent <= 0 {
		w.Urgent = defaultUrgentWindow
	}
	if w.Soon <= 0 {
		w.Soon = defaultSoonWindow
	}
	return w
}

// Summary is the full aggregate block rendered on the dashboard.
type Summary struct {
	TotalClients     int `json:"totalClients"`
	TotalActivations int `json:"totalActivations"`
	TotalDevices     int `json:"totalDevices"`
	UniqueProducts   int `json:"uniqueProducts"`

	Active       int `json:"active"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`

	// Expiry horizon buckets. ExpiringInWeek is a subset of ExpiringSoon;
	// the two-week and month bands partition the remainder of the window.
	ExpiringInWeek     int `json:"expiringInWeek"`
	ExpiringInTwoWeeks int `json:"expiringInTwoWeeks"`
	ExpiringInMonth    int `json:"expiringInMonth"`

	// DuplicateEntries counts every record after the first that shares a
	// client name, i.e. the rows the no-duplicates view would hide.
	DuplicateEntries int `json:"duplicateEntries"`
	HighValue        int `json:"highValue"`
	LowActivity      int `json:"lowActivity"`
}

// Compute aggregates the dataset against now.
func Compute(clients []dataset.Client, now time.Time, windows Windows) Summary {
	windows = windows.normalized()

	urgentCutoff := now.Add(windows.Urgent)
	twoWeekCutoff := now.Add(2 * windows.Urgent)
	soonCutoff := now.Add(windows.Soon)

	summary := Summary{TotalClients: len(clients)}
	products := make(map[string]struct{})
	seenNames := make(map[string]struct{})

	for _, c := range clients {
		summary.TotalActivations += c.Activations
		summary.TotalDevices += c.DeviceCount()

		if c.Product != "" {
			products[c.Product] = struct{}{}
		}

		switch {
		case !c.ExpiryDate.After(now):
			summary.Expired++
		case !c.ExpiryDate.After(soonCutoff):
			summary.ExpiringSoon++
		default:
			summary.Active++
		}

		if c.ExpiryDate.After(now) && !c.ExpiryDate.After(soonCutoff) {
			switch {
			case !c.ExpiryDate.After(urgentCutoff):
				summary.ExpiringInWeek++
			case !c.ExpiryDate.After(twoWeekCutoff):
				summary.ExpiringInTwoWeeks++
			default:
				summary.ExpiringInMonth++
			}
		}

		if _, dup := seenNames[c.ClientName]; dup {
			summary.DuplicateEntries++
		} else {
			seenNames[c.ClientName] = struct{}{}
		}

		if c.HighValue() {
			summary.HighValue++
		}
		if c.LowActivity() {
			summary.LowActivity++
		}
	}

	summary.UniqueProducts = len(products)
	return summary
}
