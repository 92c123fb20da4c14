package uploads

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/obadatech/tarkhees-backend/internal/ingest"
)

// column identifies one logical spreadsheet column.
type column string

const (
	columnID          column = "id"
	columnClient      column = "client"
	columnProduct     column = "product"
	columnActivation  column = "activation date"
	columnExpiry      column = "expiry date"
	columnLicenseKey  column = "license key"
	columnActivations column = "activations"
	columnHardware    column = "hardware ids"
	columnLicense     column = "license"
)

// headerAliases maps normalized header cells to logical columns. Sheets in
// the wild use several spellings for the same column, so matching is loose.
var headerAliases = map[string]column{
	"id":             columnID,
	"client":         columnClient,
	"clientname":     columnClient,
	"product":        columnProduct,
	"activationdate": columnActivation,
	"activation":     columnActivation,
	"expirydate":     columnExpiry,
	"expiry":         columnExpiry,
	"expiration":     columnExpiry,
	"licensekey":     columnLicenseKey,
	"key":            columnLicenseKey,
	"activations":    columnActivations,
	"hardwareids":    columnHardware,
	"hardware":       columnHardware,
	"devices":        columnHardware,
	"license":        columnLicense,
	"licensetype":    columnLicense,
	"type":           columnLicense,
}

// requiredColumns must be present for a sheet to decode without warnings.
var requiredColumns = []column{
	columnID,
	columnClient,
	columnProduct,
	columnActivation,
	columnExpiry,
	columnLicenseKey,
	columnLicense,
}

// Sheet is the decoded workbook: raw rows plus any columns the header row
// was missing. Missing columns are warnings, not failures; decoding
// continues with empty cells for them.
type Sheet struct {
	Rows           []ingest.Row
	MissingColumns []string
}

// normalizeHeader lowercases and strips separators so "License_Key",
// "license key" and "LicenseKey" all collapse to the same alias.
func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.Join(strings.Fields(s), "")
}

// DecodeWorkbook reads the first sheet of an xlsx workbook into raw rows.
// The first row is the header; every later row becomes one ingest.Row.
// Rows that are entirely blank are skipped.
func DecodeWorkbook(r io.Reader) (*Sheet, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	// An empty sheet decodes like a header-only sheet: every required
	// column is reported missing and the row set stays empty.
	if len(rows) == 0 {
		missing := make([]string, 0, len(requiredColumns))
		for _, col := range requiredColumns {
			missing = append(missing, string(col))
		}
		return &Sheet{MissingColumns: missing}, nil
	}

	colIndex := map[column]int{}
	for i, cell := range rows[0] {
		if logical, ok := headerAliases[normalizeHeader(cell)]; ok {
			if _, dup := colIndex[logical]; !dup {
				colIndex[logical] = i
			}
		}
	}

	missing := []string{}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, string(col))
		}
	}

	cell := func(row []string, col column) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := &Sheet{MissingColumns: missing}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		out.Rows = append(out.Rows, ingest.Row{
			ID:             cell(row, columnID),
			Label:          cell(row, columnClient),
			Product:        cell(row, columnProduct),
			ActivationRaw:  cell(row, columnActivation),
			ExpiryRaw:      cell(row, columnExpiry),
			LicenseKey:     cell(row, columnLicenseKey),
			ActivationsRaw: cell(row, columnActivations),
			HardwareRaw:    cell(row, columnHardware),
			License:        cell(row, columnLicense),
		})
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
