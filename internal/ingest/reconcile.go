package ingest

import (
	"sort"
	"time"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

// reconcileKey identifies raw rows that belong to the same canonical
// record: the original combined label plus the license key. Empty or
// sentinel keys intentionally collide so that multiple "unknown" rows
// merge together.
type reconcileKey struct {
	label      string
	licenseKey string
}

// Result carries the canonical records plus counters for observability.
type Result struct {
	Clients []dataset.Client

	// Merged counts rows folded into an existing record (same-or-older
	// activation). Replaced counts wholesale replacements by a strictly
	// later activation, which the pre-sort makes unreachable.
	Merged   int
	Replaced int

	// DateFallbacks counts cells that failed every date parse attempt.
	DateFallbacks int
}

// Reconcile folds raw rows into one canonical record per (label, license
// key) pair.
//
// Rows are first stably sorted by activation date, latest first, so the
// first row seen per key is the most recently activated one. Later rows
// with the same key merge their auxiliary data into the canonical record:
// expiry extends to the maximum observed, activations to the maximum
// observed, and hardware ids union in. A row with a strictly later
// activation than the stored record replaces it wholesale; with the
// pre-sort in place that path only fires on exact activation-date ties.
func Reconcile(rows []Row, now time.Time) Result {
	for i := range rows {
		rows[i].Normalize(now)
	}

	res := Result{}
	for i := range rows {
		if !rows[i].ActivationOK {
			res.DateFallbacks++
		}
		if !rows[i].ExpiryOK {
			res.DateFallbacks++
		}
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Activation.After(sorted[j].Activation)
	})

	index := make(map[reconcileKey]int)
	clients := []dataset.Client{}

	for _, row := range sorted {
		key := reconcileKey{label: row.Label, licenseKey: row.LicenseKey}

		pos, seen := index[key]
		if !seen {
			index[key] = len(clients)
			clients = append(clients, materialize(row))
			continue
		}

		existing := &clients[pos]
		if row.Activation.After(existing.ActivationDate) {
			// Unreachable given the descending pre-sort; kept as a safety
			// net for equal-date ties resolved in file order.
			clients[pos] = materialize(row)
			res.Replaced++
			continue
		}

		if row.Expiry.After(existing.ExpiryDate) {
			existing.ExpiryDate = row.Expiry
		}
		if row.Activations > existing.Activations {
			existing.Activations = row.Activations
		}
		existing.HardwareIDs = mergeHardwareIDs(existing.HardwareIDs, SplitHardwareIDs(row.HardwareRaw))
		res.Merged++
	}

	res.Clients = clients
	return res
}

// materialize builds a canonical record from a single raw row.
func materialize(row Row) dataset.Client {
	clientName, licenseName := SplitLabel(row.Label)
	return dataset.Client{
		ID:             row.ID,
		RawLabel:       row.Label,
		ClientName:     clientName,
		LicenseName:    licenseName,
		Product:        row.Product,
		LicenseKey:     row.LicenseKey,
		ActivationDate: row.Activation,
		ExpiryDate:     row.Expiry,
		Activations:    row.Activations,
		HardwareIDs:    SplitHardwareIDs(row.HardwareRaw),
		License:        row.License,
	}
}
