package storage

import (
	"context"
	"errors"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

var (
	// ErrStoreNotFound is returned when the record store does not exist yet
	ErrStoreNotFound = errors.New("record store not found")

	// ErrNoSignal is returned when appending a measurement without signal strength
	ErrNoSignal = errors.New("measurement has no signal strength")
)

// Store provides access to the flat record store shared by the collector and
// the analyzer. A single writer is assumed.
type Store interface {
	// Reset destroys any previous contents and leaves an empty store with a header.
	Reset(ctx context.Context) error

	// Append adds one measurement. Measurements without RSSI are rejected with ErrNoSignal.
	Append(ctx context.Context, m survey.Measurement) error

	// ReadAll returns every stored measurement in insertion order.
	// A missing store yields ErrStoreNotFound.
	ReadAll(ctx context.Context) ([]survey.Measurement, error)
}
