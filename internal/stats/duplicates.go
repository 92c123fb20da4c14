package stats

import (
	"sort"
	"time"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

// DuplicateGroup collects every canonical record sharing one client name.
type DuplicateGroup struct {
	ClientName       string           `json:"clientName"`
	Count            int              `json:"count"`
	LatestActivation time.Time        `json:"latestActivation"`
	OldestActivation time.Time        `json:"oldestActivation"`
	Records          []dataset.Client `json:"records"`
}

// Duplicates returns the groups of clients whose name appears more than
// once, largest group first. Records inside a group are ordered newest
// activation first.
func Duplicates(clients []dataset.Client) []DuplicateGroup {
	byName := make(map[string][]dataset.Client)
	for _, c := range clients {
		byName[c.ClientName] = append(byName[c.ClientName], c)
	}

	groups := make([]DuplicateGroup, 0)
	for name, records := range byName {
		if len(records) < 2 {
			continue
		}

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ActivationDate.After(records[j].ActivationDate)
		})

		groups = append(groups, DuplicateGroup{
			ClientName:       name,
			Count:            len(records),
			LatestActivation: records[0].ActivationDate,
			OldestActivation: records[len(records)-1].ActivationDate,
			Records:          records,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].ClientName < groups[j].ClientName
	})
	return groups
}
