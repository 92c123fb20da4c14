package stats

import (
	"testing"
	"time"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
)

func TestDuplicatesGroupsByClientName(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	clients := []dataset.Client{
		{ID: "1", ClientName: "Acme", ActivationDate: day(-30, now)},
		{ID: "2", ClientName: "Globex", ActivationDate: day(-5, now)},
		{ID: "3", ClientName: "Acme", ActivationDate: day(-10, now)},
		{ID: "4", ClientName: "Acme", ActivationDate: day(-20, now)},
		{ID: "5", ClientName: "Initech", ActivationDate: day(-1, now)},
	}

	groups := Duplicates(clients)

	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.ClientName != "Acme" || g.Count != 3 {
		t.Fatalf("group = %s/%d, want Acme/3", g.ClientName, g.Count)
	}
	if !g.LatestActivation.Equal(day(-10, now)) {
		t.Fatalf("latest = %v, want %v", g.LatestActivation, day(-10, now))
	}
	if !g.OldestActivation.Equal(day(-30, now)) {
		t.Fatalf("oldest = %v, want %v", g.OldestActivation, day(-30, now))
	}
	if g.Records[0].ID != "3" || g.Records[2].ID != "1" {
		t.Fatalf("records not ordered newest first: %v", g.Records)
	}
}

func TestDuplicatesOrdersLargestGroupFirst(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	clients := []dataset.Client{
		{ID: "1", ClientName: "B", ActivationDate: day(-1, now)},
		{ID: "2", ClientName: "B", ActivationDate: day(-2, now)},
		{ID: "3", ClientName: "A", ActivationDate: day(-1, now)},
		{ID: "4", ClientName: "A", ActivationDate: day(-2, now)},
		{ID: "5", ClientName: "A", ActivationDate: day(-3, now)},
	}

	groups := Duplicates(clients)

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].ClientName != "A" || groups[1].ClientName != "B" {
		t.Fatalf("order = %s,%s, want A,B", groups[0].ClientName, groups[1].ClientName)
	}
}

func TestDuplicatesEmptyWhenAllNamesUnique(t *testing.T) {
	clients := []dataset.Client{
		{ID: "1", ClientName: "A"},
		{ID: "2", ClientName: "B"},
	}
	if groups := Duplicates(clients); len(groups) != 0 {
		t.Fatalf("groups = %d, want 0", len(groups))
	}
}
