package uploads

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/internal/ingest"
	"github.com/obadatech/tarkhees-backend/pkg/db/models"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
	"github.com/obadatech/tarkhees-backend/pkg/metrics"
)

// Data-quality annotations attached to canonical records. They are shown
// verbatim in the dashboard, hence the Arabic.
const (
	problemMissingID          = "معرف مفقود"
	problemMissingClientName  = "اسم العميل مفقود"
	problemMissingProduct     = "المنتج مفقود"
	problemMissingLicenseKey  = "مفتاح الترخيص مفقود"
	problemMissingActivation  = "تاريخ التفعيل مفقود"
	problemMissingExpiry      = "تاريخ الانتهاء مفقود"
	problemMissingLicenseType = "نوع الترخيص مفقود"
	problemDuplicateID        = "معرف مكرر"
	problemDuplicateKey       = "مفتاح ترخيص مكرر"
	problemExpired            = "ترخيص منتهي الصلاحية"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// IngestInput is one uploaded workbook.
type IngestInput struct {
	Filename string
	Content  []byte
}

// IngestResult summarizes what a processed upload did to the dataset.
type IngestResult struct {
	UploadID    uuid.UUID `json:"uploadId"`
	Filename    string    `json:"filename"`
	RowCount    int       `json:"rowCount"`
	ClientCount int       `json:"clientCount"`
	ProblemRows int       `json:"problemRows"`
	Merged      int       `json:"merged"`
	Warnings    []string  `json:"warnings,omitempty"`
}

// Service ingests uploaded workbooks into the canonical dataset slot.
type Service interface {
	Ingest(ctx context.Context, input IngestInput) (*IngestResult, error)
}

type auditRecorder interface {
	Create(ctx context.Context, upload *models.Upload) error
}

// Config carries the ingestion limits.
type Config struct {
	MaxUploadBytes int64
}

type service struct {
	datasets dataset.Repository
	audit    auditRecorder
	metrics  *metrics.IngestMetrics
	cfg      Config
	now      func() time.Time
}

// NewService wires the upload ingestion pipeline. metrics may be nil.
func NewService(datasets dataset.Repository, audit auditRecorder, m *metrics.IngestMetrics, cfg Config) (Service, error) {
	if datasets == nil {
		return nil, fmt.Errorf("dataset repository required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload size required")
	}
	return &service{
		datasets: datasets,
		audit:    audit,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Ingest gates, decodes, reconciles and persists one workbook. The dataset
// slot is replaced wholesale; partial rows never land.
func (s *service) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	start := s.now()
	now := start

	if err := s.gate(input); err != nil {
		s.metrics.IncUpload("rejected")
		return nil, err
	}

	sheet, err := DecodeWorkbook(bytes.NewReader(input.Content))
	if err != nil {
		s.metrics.IncUpload("rejected")
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode workbook")
	}

	warnings := []string{}
	if len(sheet.MissingColumns) > 0 {
		warnings = append(warnings, fmt.Sprintf("أعمدة مفقودة: %s", strings.Join(sheet.MissingColumns, ", ")))
	}

	res := ingest.Reconcile(sheet.Rows, now)
	annotate(res.Clients, sheet.Rows, now)
	warnings = append(warnings, duplicateNameWarnings(res.Clients)...)

	problemRows := 0
	for _, c := range res.Clients {
		if len(c.Problems) > 0 {
			problemRows++
		}
	}

	if err := s.datasets.Save(ctx, res.Clients); err != nil {
		s.metrics.IncUpload("failed")
		return nil, err
	}

	audit := &models.Upload{
		ID:           uuid.New(),
		Filename:     input.Filename,
		SizeBytes:    int64(len(input.Content)),
		RowCount:     len(sheet.Rows),
		ClientCount:  len(res.Clients),
		ProblemRows:  problemRows,
		WarningCount: len(warnings),
	}
	if err := s.audit.Create(ctx, audit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record upload")
	}

	s.metrics.IncUpload("accepted")
	s.metrics.AddRows(len(sheet.Rows))
	s.metrics.AddDateFallbacks(res.DateFallbacks)
	s.metrics.AddReconcileMerges(res.Merged + res.Replaced)
	s.metrics.ObserveDuration("accepted", s.now().Sub(start))

	return &IngestResult{
		UploadID:    audit.ID,
		Filename:    input.Filename,
		RowCount:    len(sheet.Rows),
		ClientCount: len(res.Clients),
		ProblemRows: problemRows,
		Merged:      res.Merged + res.Replaced,
		Warnings:    warnings,
	}, nil
}

// gate rejects uploads before any parsing work happens.
func (s *service) gate(input IngestInput) error {
	if len(input.Content) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "empty upload")
	}
	if int64(len(input.Content)) > s.cfg.MaxUploadBytes {
		return pkgerrors.New(pkgerrors.CodeTooLarge, "upload exceeds size limit").
			WithDetails(map[string]any{"maxBytes": s.cfg.MaxUploadBytes})
	}

	if ext := strings.ToLower(filepath.Ext(input.Filename)); ext != ".xlsx" {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported file extension").
			WithDetails(map[string]any{"extension": ext})
	}

	detected := mimetype.Detect(input.Content)
	if !detected.Is(xlsxMIME) && !detected.Is("application/zip") {
		return pkgerrors.New(pkgerrors.CodeValidation, "file content is not a spreadsheet").
			WithDetails(map[string]any{"detected": detected.String()})
	}
	return nil
}

type rowKey struct {
	label      string
	licenseKey string
}

// annotate attaches data-quality problems to each canonical record.
// Missing-cell problems come from the raw rows, duplicate and expiry
// problems from the canonical set itself.
func annotate(clients []dataset.Client, rows []ingest.Row, now time.Time) {
	missingActivation := map[rowKey]bool{}
	missingExpiry := map[rowKey]bool{}
	for _, row := range rows {
		key := rowKey{label: row.Label, licenseKey: row.LicenseKey}
		if strings.TrimSpace(row.ActivationRaw) == "" {
			missingActivation[key] = true
		}
		if strings.TrimSpace(row.ExpiryRaw) == "" {
			missingExpiry[key] = true
		}
	}

	idCounts := map[string]int{}
	keyCounts := map[string]int{}
	for _, c := range clients {
		if c.ID != "" {
			idCounts[c.ID]++
		}
		if c.LicenseKey != "" {
			keyCounts[c.LicenseKey]++
		}
	}

	for i := range clients {
		c := &clients[i]
		key := rowKey{label: c.RawLabel, licenseKey: c.LicenseKey}

		var problems []string
		if c.ID == "" {
			problems = append(problems, problemMissingID)
		} else if idCounts[c.ID] > 1 {
			problems = append(problems, problemDuplicateID)
		}
		if c.ClientName == ingest.NotAvailable {
			problems = append(problems, problemMissingClientName)
		}
		if c.Product == "" {
			problems = append(problems, problemMissingProduct)
		}
		if c.LicenseKey == "" {
			problems = append(problems, problemMissingLicenseKey)
		} else if keyCounts[c.LicenseKey] > 1 {
			problems = append(problems, problemDuplicateKey)
		}
		if missingActivation[key] {
			problems = append(problems, problemMissingActivation)
		}
		if missingExpiry[key] {
			problems = append(problems, problemMissingExpiry)
		}
		if c.License == "" {
			problems = append(problems, problemMissingLicenseType)
		}
		if c.Status(now) == dataset.StatusExpired {
			problems = append(problems, problemExpired)
		}
		c.Problems = problems
	}
}

// duplicateNameWarnings reports client names that appear on more than one
// canonical record. Those are legitimate rows, just worth flagging.
func duplicateNameWarnings(clients []dataset.Client) []string {
	counts := map[string]int{}
	order := []string{}
	for _, c := range clients {
		if c.ClientName == ingest.NotAvailable {
			continue
		}
		if counts[c.ClientName] == 0 {
			order = append(order, c.ClientName)
		}
		counts[c.ClientName]++
	}

	warnings := []string{}
	for _, name := range order {
		if counts[name] > 1 {
			warnings = append(warnings, fmt.Sprintf("اسم عميل مكرر: %s (%d سجلات)", name, counts[name]))
		}
	}
	return warnings
}
