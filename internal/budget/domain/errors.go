package budget

import "errors"

var (
	// ErrMalformedLedger is returned when a ledger file cannot be decoded.
	ErrMalformedLedger = errors.New("budget: malformed ledger")
	// ErrNilSnapshot is returned when a publication carries no snapshot data.
	ErrNilSnapshot = errors.New("budget: nil snapshot")
)
