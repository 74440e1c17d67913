// Package parsers loads the reconciliation inputs: purchase-order ledger
// files (CSV or XLSX) and invoice documents extracted by the AI document
// service (JSON, possibly wrapped in markdown fences).
//
// Ledger parsing is all-or-nothing: a single structurally invalid row
// rejects the whole batch before reconciliation begins. Field-level
// sloppiness inside a structurally valid value (currency symbols,
// thousand separators) is normalized, not rejected.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// LedgerColumns maps the six required ledger fields to header names.
type LedgerColumns struct {
	PONumber    string
	Quantity    string
	UnitPrice   string
	Date        string
	ItemCode    string
	Description string
}

// DefaultLedgerColumns returns the header names used by the standard
// purchase-order ledger export.
func DefaultLedgerColumns() LedgerColumns {
	return LedgerColumns{
		PONumber:    "PurchaseOrderID",
		Quantity:    "PurchaseQty",
		UnitPrice:   "PurchasePrice",
		Date:        "DateRequired",
		ItemCode:    "PurchaseSupplierItem",
		Description: "PurchaseSupplierDescription",
	}
}

// Validate checks that every column name is set.
func (c LedgerColumns) Validate() error {
	for _, col := range []struct{ name, value string }{
		{"po number", c.PONumber},
		{"quantity", c.Quantity},
		{"unit price", c.UnitPrice},
		{"date", c.Date},
		{"item code", c.ItemCode},
		{"description", c.Description},
	} {
		if strings.TrimSpace(col.value) == "" {
			return fmt.Errorf("%s column name cannot be empty", col.name)
		}
	}
	return nil
}

// LoadLedgerFile loads a purchase-order ledger, picking the parser by
// file extension (.csv or .xlsx).
func LoadLedgerFile(path string) ([]models.PurchaseOrderRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		return nil, apperrors.FileError(apperrors.CodeFileRead, path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseLedgerCSV(f, DefaultLedgerColumns())
	case ".xlsx":
		return ParseLedgerXLSX(f, DefaultLedgerColumns())
	default:
		return nil, apperrors.LedgerError(apperrors.CodeUnsupportedFile,
			fmt.Sprintf("unsupported ledger file type: %s", filepath.Ext(path)), nil)
	}
}

// ParseLedgerCSV parses a header-mapped CSV ledger into validated
// purchase-order records, preserving row order.
func ParseLedgerCSV(r io.Reader, columns LedgerColumns) ([]models.PurchaseOrderRecord, error) {
	if err := columns.Validate(); err != nil {
		return nil, apperrors.ConfigError("invalid ledger column mapping", err)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []models.PurchaseOrderRecord{}, nil
	}
	if err != nil {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat, "failed to read ledger header", err)
	}

	index, err := mapLedgerHeader(header, columns)
	if err != nil {
		return nil, err
	}

	var rows []models.PurchaseOrderRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat,
				fmt.Sprintf("failed to read ledger line %d", line), err)
		}
		rows = append(rows, buildLedgerRow(record, index))
	}

	return buildRecords(rows)
}

// ledgerIndex holds the resolved column position of each required field.
type ledgerIndex struct {
	poNumber, quantity, unitPrice, date, itemCode, description int
}

func mapLedgerHeader(header []string, columns LedgerColumns) (ledgerIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	index := ledgerIndex{}
	for _, col := range []struct {
		name string
		dest *int
	}{
		{columns.PONumber, &index.poNumber},
		{columns.Quantity, &index.quantity},
		{columns.UnitPrice, &index.unitPrice},
		{columns.Date, &index.date},
		{columns.ItemCode, &index.itemCode},
		{columns.Description, &index.description},
	} {
		pos, ok := positions[strings.ToLower(col.name)]
		if !ok {
			return index, apperrors.LedgerError(apperrors.CodeMissingColumn,
				fmt.Sprintf("missing required column '%s'", col.name), nil)
		}
		*col.dest = pos
	}
	return index, nil
}

func buildLedgerRow(record []string, index ledgerIndex) models.PurchaseOrderRow {
	cell := func(i int) *string {
		if i >= len(record) {
			return nil
		}
		s := strings.TrimSpace(record[i])
		return &s
	}
	flexCell := func(i int) *models.FlexNumber {
		s := cell(i)
		if s == nil {
			return nil
		}
		n := models.ParseFlexNumber(*s)
		return &n
	}

	return models.PurchaseOrderRow{
		PurchaseOrderID:             cell(index.poNumber),
		PurchaseQty:                 flexCell(index.quantity),
		PurchasePrice:               flexCell(index.unitPrice),
		DateRequired:                cell(index.date),
		PurchaseSupplierItem:        cell(index.itemCode),
		PurchaseSupplierDescription: cell(index.description),
	}
}

func buildRecords(rows []models.PurchaseOrderRow) ([]models.PurchaseOrderRecord, error) {
	records, err := models.BuildPurchaseOrderRecords(rows)
	if err != nil {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat, "invalid ledger batch", err)
	}
	if records == nil {
		records = []models.PurchaseOrderRecord{}
	}
	return records, nil
}
