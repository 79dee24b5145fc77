package ledgerfile

import (
	"encoding/csv"
	"errors"
	"io"

	budget "tryognik-dashboard/internal/budget/domain"
)

// DecodeCSV reads a ledger CSV with a header row.
// Every record must have as many fields as the header.
func DecodeCSV(r io.Reader) ([]budget.LedgerRow, error) {
	if r == nil {
		return nil, &DecodeError{Err: errors.New("nil reader")}
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []budget.LedgerRow{}, nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	index := buildHeaderIndex(header)

	rows := make([]budget.LedgerRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		rows = append(rows, index.row(record))
	}
	return rows, nil
}

func csvError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &DecodeError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return &DecodeError{Err: err}
}
