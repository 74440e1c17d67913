package parsers

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"invoice-reconciliation-service/internal/models"
	apperrors "invoice-reconciliation-service/pkg/errors"
)

// ParseLedgerXLSX parses the first sheet of an XLSX workbook as a
// header-mapped ledger. Rows shorter than the header are padded with
// empty cells, matching how spreadsheet exports trim trailing blanks.
func ParseLedgerXLSX(r io.Reader, columns LedgerColumns) ([]models.PurchaseOrderRecord, error) {
	if err := columns.Validate(); err != nil {
		return nil, apperrors.ConfigError("invalid ledger column mapping", err)
	}

	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat, "failed to open workbook", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat, "workbook has no sheets", nil)
	}

	cells, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.LedgerError(apperrors.CodeLedgerFormat,
			fmt.Sprintf("failed to read sheet '%s'", sheets[0]), err)
	}
	if len(cells) == 0 {
		return []models.PurchaseOrderRecord{}, nil
	}

	header := cells[0]
	index, err := mapLedgerHeader(header, columns)
	if err != nil {
		return nil, err
	}

	var rows []models.PurchaseOrderRow
	for _, record := range cells[1:] {
		if isBlankRow(record) {
			continue
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		rows = append(rows, buildLedgerRow(record, index))
	}

	return buildRecords(rows)
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
