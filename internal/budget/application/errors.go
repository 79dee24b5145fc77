package application

import "errors"

var (
	ErrNilReader         = errors.New("dashboard service: nil reader")
	ErrSampleUnavailable = errors.New("dashboard service: sample ledger unavailable")
)
