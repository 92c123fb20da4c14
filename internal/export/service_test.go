package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/internal/query"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
)

type stubRepo struct {
	clients []dataset.Client
	err     error
}

func (s *stubRepo) Load(context.Context) ([]dataset.Client, error) { return s.clients, s.err }
func (s *stubRepo) Save(context.Context, []dataset.Client) error   { return nil }
func (s *stubRepo) Clear(context.Context) error                    { return nil }

var exportNow = time.Date(2026, time.September, 1, 14, 30, 45, 0, time.UTC)

func testService(t *testing.T, repo dataset.Repository) Service {
	t.Helper()
	svc, err := NewService(repo, query.NewSorter("ar"), Config{
		BaseName:  "نظام_إدارة_التراخيص",
		SheetName: "تراخيص العملاء",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestExportRendersFilteredRows(t *testing.T) {
	repo := &stubRepo{clients: []dataset.Client{
		{
			ID: "1", ClientName: "Acme", LicenseName: "-Pro", Product: "Widget",
			LicenseKey:     "KEY1",
			ActivationDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			ExpiryDate:     exportNow.Add(-24 * time.Hour),
			Activations:    2,
			HardwareIDs:    []string{"aa", "bb"},
			License:        "Pro",
		},
		{
			ID: "2", ClientName: "Globex", LicenseName: "-Lite", Product: "Gadget",
			LicenseKey:     "KEY2",
			ActivationDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			ExpiryDate:     exportNow.Add(100 * 24 * time.Hour),
			Activations:    1,
		},
	}}
	svc := testService(t, repo)

	file, err := svc.Export(context.Background(), query.Filters{ExpiredOnly: true}, exportNow)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("تراخيص العملاء")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1 filtered record", len(rows))
	}
	if rows[0][1] != "اسم العميل" {
		t.Fatalf("header B1 = %q", rows[0][1])
	}

	record := rows[1]
	if record[0] != "1" || record[1] != "Acme" {
		t.Fatalf("row = %v", record)
	}
	if record[8] != "aa, bb" {
		t.Fatalf("hardware cell = %q", record[8])
	}
	if record[10] != "منتهي" {
		t.Fatalf("status cell = %q, want expired label", record[10])
	}
}

func TestExportStatusLabelForActiveLicense(t *testing.T) {
	repo := &stubRepo{clients: []dataset.Client{
		{ID: "1", ClientName: "Acme", ExpiryDate: exportNow.Add(48 * time.Hour)},
	}}
	svc := testService(t, repo)

	file, err := svc.Export(context.Background(), query.Filters{}, exportNow)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("تراخيص العملاء")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if rows[1][10] != "نشط" {
		t.Fatalf("status cell = %q, want active label", rows[1][10])
	}
	if rows[1][11] != "2" {
		t.Fatalf("days left cell = %q, want 2", rows[1][11])
	}
}

func TestExportEmptySlotIsNotFound(t *testing.T) {
	svc := testService(t, &stubRepo{})

	_, err := svc.Export(context.Background(), query.Filters{}, exportNow)
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFilename(t *testing.T) {
	cases := []struct {
		name    string
		filters query.Filters
		want    string
	}{
		{
			name:    "no filters",
			filters: query.Filters{},
			want:    "نظام_إدارة_التراخيص_2026-09-01_14-30-45.xlsx",
		},
		{
			name:    "status and exclusion tokens",
			filters: query.Filters{ActiveOnly: true, ExcludeDuplicates: true},
			want:    "نظام_إدارة_التراخيص_نشط_بدون_مكرر_2026-09-01_14-30-45.xlsx",
		},
		{
			name:    "search term truncated to ten runes",
			filters: query.Filters{Search: "abcdefghijklmnop"},
			want:    "نظام_إدارة_التراخيص_abcdefghij_2026-09-01_14-30-45.xlsx",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filename("نظام_إدارة_التراخيص", tc.filters, exportNow)
			if got != tc.want {
				t.Fatalf("filename = %q, want %q", got, tc.want)
			}
		})
	}
}
