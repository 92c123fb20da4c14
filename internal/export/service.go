// Package export renders the filtered dataset as an Excel workbook with
// the Arabic column layout the dashboard users expect.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/obadatech/tarkhees-backend/internal/dataset"
	"github.com/obadatech/tarkhees-backend/internal/query"
	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
)

// File is a rendered workbook ready to stream to the client.
type File struct {
	Name    string
	Content []byte
}

// Service renders dataset exports.
type Service interface {
	Export(ctx context.Context, filters query.Filters, now time.Time) (*File, error)
}

// Config carries the export naming knobs.
type Config struct {
	BaseName  string
	SheetName string
}

type service struct {
	repo   dataset.Repository
	sorter *query.Sorter
	cfg    Config
}

// NewService wires the export renderer.
func NewService(repo dataset.Repository, sorter *query.Sorter, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dataset repository required")
	}
	if sorter == nil {
		return nil, fmt.Errorf("sorter required")
	}
	if cfg.BaseName == "" || cfg.SheetName == "" {
		return nil, fmt.Errorf("export naming config required")
	}
	return &service{repo: repo, sorter: sorter, cfg: cfg}, nil
}

// headers is the fixed Arabic column layout, column A through L.
var headers = []string{
	"ID",
	"اسم العميل",
	"اسم الترخيص",
	"المنتج",
	"تاريخ التفعيل",
	"تاريخ الانتهاء",
	"مفتاح الترخيص",
	"عدد التفعيلات",
	"الأجهزة",
	"الترخيص",
	"حالة الترخيص",
	"الأيام المتبقية",
}

// columnWidths mirrors headers one to one.
var columnWidths = []float64{8, 25, 30, 20, 15, 15, 35, 12, 40, 20, 12, 15}

const (
	statusLabelActive  = "نشط"
	statusLabelExpired = "منتهي"

	dateLayout = "2006-01-02"
)

// Export applies the exact dashboard filter pipeline and renders the
// survivors, so the workbook matches what the user sees on screen.
func (s *service) Export(ctx context.Context, filters query.Filters, now time.Time) (*File, error) {
	clients, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no dataset uploaded")
	}

	rows := query.Apply(clients, filters, now, s.sorter)

	content, err := s.render(rows, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook")
	}

	return &File{
		Name:    Filename(s.cfg.BaseName, filters, now),
		Content: content,
	}, nil
}

func (s *service) render(rows []dataset.Client, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := s.cfg.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, c := range rows {
		statusLabel := statusLabelActive
		if c.ExpiryDate.Before(now) {
			statusLabel = statusLabelExpired
		}

		values := []any{
			c.ID,
			c.ClientName,
			c.LicenseName,
			c.Product,
			c.ActivationDate.Format(dateLayout),
			c.ExpiryDate.Format(dateLayout),
			c.LicenseKey,
			c.Activations,
			strings.Join(c.HardwareIDs, ", "),
			c.License,
			statusLabel,
			c.DaysRemaining(now),
		}
		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
