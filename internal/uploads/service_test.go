package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/pkg/db/models"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
)

type stubDatasets struct {
	saved   []dataset.Client
	saveErr error
}

func (s *stubDatasets) Load(context.Context) ([]dataset.Client, error) { return s.saved, nil }
func (s *stubDatasets) Save(_ context.Context, clients []dataset.Client) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = clients
	return nil
}
func (s *stubDatasets) Clear(context.Context) error { return nil }

type stubAudit struct {
	created []*models.Upload
	err     error
}

func (s *stubAudit) Create(_ context.Context, upload *models.Upload) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, upload)
	return nil
}

func newTestService(t *testing.T, datasets *stubDatasets, audit *stubAudit) Service {
	t.Helper()
	svc, err := NewService(datasets, audit, nil, Config{MaxUploadBytes: 1 << 20})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("code = %s, want %s", appErr.Code(), code)
	}
}

func TestIngestHappyPath(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		standardHeader(),
		{"1", "Acme-Pro", "Widget", "2024-01-15", "2030-12-31", "KEY1", "2", "aa", "Pro"},
		{"2", "Acme-Pro", "Widget", "2024-06-01", "2030-06-30", "KEY1", "3", "bb", "Pro"},
		{"3", "Globex-Lite", "Gadget", "2024-03-01", "2030-03-01", "KEY2", "1", "", "Lite"},
	})

	datasets := &stubDatasets{}
	audit := &stubAudit{}
	svc := newTestService(t, datasets, audit)

	res, err := svc.Ingest(context.Background(), IngestInput{Filename: "licenses.xlsx", Content: content})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if res.RowCount != 3 {
		t.Fatalf("row count = %d, want 3", res.RowCount)
	}
	if res.ClientCount != 2 {
		t.Fatalf("client count = %d, want 2 after reconciliation", res.ClientCount)
	}
	if res.Merged != 1 {
		t.Fatalf("merged = %d, want 1", res.Merged)
	}
	if len(datasets.saved) != 2 {
		t.Fatalf("saved %d records, want 2", len(datasets.saved))
	}
	if len(audit.created) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(audit.created))
	}
	if audit.created[0].Filename != "licenses.xlsx" || audit.created[0].RowCount != 3 {
		t.Fatalf("audit row = %+v", audit.created[0])
	}
}

func TestIngestGate(t *testing.T) {
	datasets := &stubDatasets{}
	svc := newTestService(t, datasets, &stubAudit{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, IngestInput{Filename: "a.xlsx"})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Ingest(ctx, IngestInput{Filename: "a.csv", Content: []byte("x")})
	expectCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Ingest(ctx, IngestInput{Filename: "a.xlsx", Content: []byte("plain text, not a zip")})
	expectCode(t, err, pkgerrors.CodeValidation)

	huge, err2 := NewService(datasets, &stubAudit{}, nil, Config{MaxUploadBytes: 4})
	if err2 != nil {
		t.Fatalf("new service: %v", err2)
	}
	_, err = huge.Ingest(ctx, IngestInput{Filename: "a.xlsx", Content: []byte("12345")})
	expectCode(t, err, pkgerrors.CodeTooLarge)

	if len(datasets.saved) != 0 {
		t.Fatal("gate failures must not touch the dataset")
	}
}

func TestIngestAnnotatesProblems(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		standardHeader(),
		// missing id, product and license type, expired, no expiry problems
		{"", "Acme-Pro", "", "2020-01-01", "2020-12-31", "KEY1", "1", "", ""},
		// duplicate license key pair on distinct records
		{"2", "Globex", "Widget", "2024-01-01", "2030-01-01", "KEY9", "1", "", "Pro"},
		{"3", "Initech", "Widget", "2024-01-01", "2030-01-01", "KEY9", "1", "", "Pro"},
		// missing activation date cell
		{"4", "Umbrella", "Widget", "", "2030-01-01", "KEY4", "1", "", "Pro"},
	})

	datasets := &stubDatasets{}
	svc := newTestService(t, datasets, &stubAudit{})

	res, err := svc.Ingest(context.Background(), IngestInput{Filename: "licenses.xlsx", Content: content})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	byID := map[string]dataset.Client{}
	for _, c := range datasets.saved {
		byID[c.ID] = c
	}

	first := byID[""]
	wantFirst := []string{problemMissingID, problemMissingProduct, problemMissingLicenseType, problemExpired}
	for _, want := range wantFirst {
		if !containsProblem(first.Problems, want) {
			t.Fatalf("first record problems = %v, missing %q", first.Problems, want)
		}
	}

	if !containsProblem(byID["2"].Problems, problemDuplicateKey) || !containsProblem(byID["3"].Problems, problemDuplicateKey) {
		t.Fatalf("duplicate key not flagged: %v / %v", byID["2"].Problems, byID["3"].Problems)
	}

	if !containsProblem(byID["4"].Problems, problemMissingActivation) {
		t.Fatalf("missing activation not flagged: %v", byID["4"].Problems)
	}

	if res.ProblemRows != 4 {
		t.Fatalf("problem rows = %d, want 4", res.ProblemRows)
	}
}

func TestIngestWarnsOnMissingColumnsAndDuplicateNames(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		{"ID", "Client", "Product", "Activation Date", "Expiry Date", "License Key"},
		{"1", "Acme-Pro", "Widget", "2024-01-01", "2030-01-01", "KEY1"},
		{"2", "Acme-Lite", "Widget", "2024-01-01", "2030-01-01", "KEY2"},
	})

	svc := newTestService(t, &stubDatasets{}, &stubAudit{})

	res, err := svc.Ingest(context.Background(), IngestInput{Filename: "licenses.xlsx", Content: content})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	var sawMissingColumns, sawDuplicateName bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "أعمدة مفقودة") {
			sawMissingColumns = true
		}
		if strings.Contains(w, "اسم عميل مكرر") && strings.Contains(w, "Acme") {
			sawDuplicateName = true
		}
	}
	if !sawMissingColumns {
		t.Fatalf("expected missing-columns warning, got %v", res.Warnings)
	}
	if !sawDuplicateName {
		t.Fatalf("expected duplicate-name warning, got %v", res.Warnings)
	}
}

func TestIngestEmptySheetSavesEmptyDataset(t *testing.T) {
	content := buildWorkbook(t, nil)

	datasets := &stubDatasets{}
	audit := &stubAudit{}
	svc := newTestService(t, datasets, audit)

	res, err := svc.Ingest(context.Background(), IngestInput{Filename: "empty.xlsx", Content: content})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if res.RowCount != 0 || res.ClientCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", res.RowCount, res.ClientCount)
	}
	if len(datasets.saved) != 0 {
		t.Fatalf("saved %d records, want none", len(datasets.saved))
	}

	var sawMissingColumns bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "أعمدة مفقودة") {
			sawMissingColumns = true
		}
	}
	if !sawMissingColumns {
		t.Fatalf("expected missing-columns warning, got %v", res.Warnings)
	}
	if len(audit.created) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(audit.created))
	}
}

func TestIngestDependencyFailures(t *testing.T) {
	content := buildWorkbook(t, [][]any{
		standardHeader(),
		{"1", "Acme", "Widget", "2024-01-01", "2030-01-01", "KEY1", "1", "", "Pro"},
	})
	ctx := context.Background()

	svc := newTestService(t, &stubDatasets{saveErr: errors.New("redis down")}, &stubAudit{})
	if _, err := svc.Ingest(ctx, IngestInput{Filename: "a.xlsx", Content: content}); err == nil {
		t.Fatal("expected save error to propagate")
	}

	svc = newTestService(t, &stubDatasets{}, &stubAudit{err: errors.New("db down")})
	_, err := svc.Ingest(ctx, IngestInput{Filename: "a.xlsx", Content: content})
	expectCode(t, err, pkgerrors.CodeDependency)
}

func containsProblem(problems []string, want string) bool {
	for _, p := range problems {
		if p == want {
			return true
		}
	}
	return false
}
