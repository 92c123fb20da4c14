package ingest

import (
	"testing"
	"time"
)

func TestReconcileMergesDuplicateRows(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		{
			ID:             "1",
			Label:          "Acme-Pro",
			Product:        "Widget",
			ActivationRaw:  "2024-01-15",
			ExpiryRaw:      "2024-12-31",
			LicenseKey:     "KEY1",
			ActivationsRaw: "2",
			HardwareRaw:    "aa",
		},
		{
			ID:             "2",
			Label:          "Acme-Pro",
			Product:        "Widget",
			ActivationRaw:  "2024-06-01",
			ExpiryRaw:      "2025-06-30",
			LicenseKey:     "KEY1",
			ActivationsRaw: "3",
			HardwareRaw:    "bb",
		},
	}

	res := Reconcile(rows, now)
	if len(res.Clients) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Clients))
	}
	if res.Merged != 1 {
		t.Fatalf("merged = %d, want 1", res.Merged)
	}

	c := res.Clients[0]
	if c.ClientName != "Acme" || c.LicenseName != "-Pro" {
		t.Fatalf("split label = %q / %q", c.ClientName, c.LicenseName)
	}
	wantActivation := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !c.ActivationDate.Equal(wantActivation) {
		t.Fatalf("activation = %v, want latest %v", c.ActivationDate, wantActivation)
	}
	wantExpiry := time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)
	if !c.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want max %v", c.ExpiryDate, wantExpiry)
	}
	if c.Activations != 3 {
		t.Fatalf("activations = %d, want max 3", c.Activations)
	}
	if len(c.HardwareIDs) != 2 || c.HardwareIDs[0] != "bb" || c.HardwareIDs[1] != "aa" {
		t.Fatalf("hardware ids = %v, want union in discovery order", c.HardwareIDs)
	}
}

func TestReconcileOlderRowExtendsExpiry(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		{ID: "1", Label: "Acme-Pro", ActivationRaw: "2024-06-01", ExpiryRaw: "2024-09-01", LicenseKey: "KEY1"},
		{ID: "2", Label: "Acme-Pro", ActivationRaw: "2024-01-01", ExpiryRaw: "2026-01-01", LicenseKey: "KEY1"},
	}

	res := Reconcile(rows, now)
	if len(res.Clients) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Clients))
	}

	c := res.Clients[0]
	if c.ID != "1" {
		t.Fatalf("canonical row id = %q, want the latest activation's row", c.ID)
	}
	wantExpiry := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !c.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want extended %v", c.ExpiryDate, wantExpiry)
	}
}

func TestReconcileTiedActivationKeepsFirstRow(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		{ID: "1", Label: "Acme-Pro", ActivationRaw: "2024-06-01", ExpiryRaw: "2025-01-01", LicenseKey: "KEY1", ActivationsRaw: "1"},
		{ID: "2", Label: "Acme-Pro", ActivationRaw: "2024-06-01", ExpiryRaw: "2025-03-01", LicenseKey: "KEY1", ActivationsRaw: "4"},
	}

	res := Reconcile(rows, now)
	if len(res.Clients) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Clients))
	}
	if res.Replaced != 0 {
		t.Fatalf("replaced = %d, want 0 on exact ties", res.Replaced)
	}

	c := res.Clients[0]
	if c.ID != "1" {
		t.Fatalf("canonical row id = %q, want file-order winner", c.ID)
	}
	wantExpiry := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !c.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want max %v", c.ExpiryDate, wantExpiry)
	}
	if c.Activations != 4 {
		t.Fatalf("activations = %d, want max 4", c.Activations)
	}
}

func TestReconcileDistinctKeysStaySeparate(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		{ID: "1", Label: "Acme-Pro", ActivationRaw: "2024-06-01", ExpiryRaw: "2025-01-01", LicenseKey: "KEY1"},
		{ID: "2", Label: "Acme-Pro", ActivationRaw: "2024-06-01", ExpiryRaw: "2025-01-01", LicenseKey: "KEY2"},
		{ID: "3", Label: "Acme-Lite", ActivationRaw: "2024-06-01", ExpiryRaw: "2025-01-01", LicenseKey: "KEY1"},
	}

	res := Reconcile(rows, now)
	if len(res.Clients) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Clients))
	}
	if res.Merged != 0 || res.Replaced != 0 {
		t.Fatalf("merged/replaced = %d/%d, want 0/0", res.Merged, res.Replaced)
	}
}

func TestReconcileCountsDateFallbacks(t *testing.T) {
	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := []Row{
		{ID: "1", Label: "Acme", ActivationRaw: "not a date", ExpiryRaw: "2025-01-01", LicenseKey: "KEY1"},
	}

	res := Reconcile(rows, now)
	if res.DateFallbacks != 1 {
		t.Fatalf("date fallbacks = %d, want 1", res.DateFallbacks)
	}
	if !res.Clients[0].ActivationDate.Equal(now) {
		t.Fatalf("activation = %v, want fallback to now", res.Clients[0].ActivationDate)
	}
}
