// Package sample provides the bundled demo ledger.
package sample

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// DefaultName is the file name reported for the bundled ledger.
const DefaultName = "sample_budget.csv"

//go:embed sample_budget.csv
var bundled []byte

// ErrNotFound is returned when an override path does not exist.
var ErrNotFound = errors.New("sample: ledger not found")

// Bundled returns a reader over the embedded sample ledger.
func Bundled() io.Reader {
	return bytes.NewReader(bundled)
}

// Open returns the ledger at path, or the embedded ledger when path is empty.
func Open(path string) (io.ReadCloser, string, error) {
	if path == "" {
		return io.NopCloser(Bundled()), DefaultName, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(path), nil
}
