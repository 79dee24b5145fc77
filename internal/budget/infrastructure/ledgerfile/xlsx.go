package ledgerfile

import (
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	budget "tryognik-dashboard/internal/budget/domain"
)

// DecodeXLSX reads ledger rows from the first sheet of a workbook.
// The first row is the header and blank rows are skipped.
func DecodeXLSX(r io.Reader) ([]budget.LedgerRow, error) {
	if r == nil {
		return nil, &DecodeError{Err: errors.New("nil reader")}
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Err: errors.New("workbook has no sheets")}
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	rows := make([]budget.LedgerRow, 0)
	if len(records) == 0 {
		return rows, nil
	}
	index := buildHeaderIndex(records[0])
	for _, record := range records[1:] {
		if blankRecord(record) {
			continue
		}
		rows = append(rows, index.row(record))
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
