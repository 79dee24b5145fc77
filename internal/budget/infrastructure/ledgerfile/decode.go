package ledgerfile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	budget "tryognik-dashboard/internal/budget/domain"
)

// Format is a supported ledger file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrUnsupportedFormat is returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("ledgerfile: unsupported format")

// DecodeError reports a structural problem in a ledger file.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ledger line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("ledger: %v", e.Err)
}

// Unwrap exposes the cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches budget.ErrMalformedLedger.
func (e *DecodeError) Is(target error) bool { return target == budget.ErrMalformedLedger }

// ParseFormat validates a format name. Empty means csv.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, value)
	}
}

// FormatFromFilename picks the ledger format from an upload name or content type.
func FormatFromFilename(filename, contentType string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}
	if strings.HasPrefix(strings.ToLower(contentType), xlsxContentType) {
		return FormatXLSX
	}
	return FormatCSV
}

// Decode reads ledger rows in the given format.
func Decode(format Format, r io.Reader) ([]budget.LedgerRow, error) {
	switch format {
	case "", FormatCSV:
		return DecodeCSV(r)
	case FormatXLSX:
		return DecodeXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Decoder adapts Decode to the dashboard service.
type Decoder struct{}

// DecodeLedger picks the format from the upload metadata and decodes r.
func (Decoder) DecodeLedger(filename, contentType string, r io.Reader) ([]budget.LedgerRow, error) {
	return Decode(FormatFromFilename(filename, contentType), r)
}

type headerIndex map[string]int

func buildHeaderIndex(header []string) headerIndex {
	index := make(headerIndex, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

func (h headerIndex) row(record []string) budget.LedgerRow {
	fields := make(map[string]string, len(budget.Columns))
	for _, column := range budget.Columns {
		pos, ok := h[column]
		if !ok || pos >= len(record) {
			continue
		}
		fields[column] = record[pos]
	}
	return budget.NewLedgerRow(fields)
}
