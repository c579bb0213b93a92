package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// Field selects a numeric measurement column
type Field int

const (
	FieldRSSI Field = iota
	FieldNoise
	FieldSNR
)

var fieldColumns = map[Field]string{
	FieldRSSI:  "rssi",
	FieldNoise: "noise",
	FieldSNR:   "snr",
}

func (f Field) String() string {
	if c, ok := fieldColumns[f]; ok {
		return c
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// insertBatchSize keeps the bound parameter count well below SQLite's limit
const insertBatchSize = 100

// Frame is an in-memory SQLite table of measurements used for grouping and
// aggregation at analysis time. Nothing is written to disk.
type Frame struct {
	db *sql.DB

	closeOnce sync.Once
	closeErr  error
}

// NewFrame loads ms into a fresh in-memory database.
// The returned Frame must be closed after use.
func NewFrame(ctx context.Context, ms []survey.Measurement) (*Frame, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening analysis frame: %w", err)
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, initSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	f := &Frame{db: db}
	if err = f.insert(ctx, ms); err != nil {
		_ = db.Close()
		return nil, err
	}
	return f, nil
}

func (f *Frame) insert(ctx context.Context, ms []survey.Measurement) (err error) {
	if len(ms) == 0 {
		return nil
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	const valuesPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"

	for start := 0; start < len(ms); start += insertBatchSize {
		batch := ms[start:min(start+insertBatchSize, len(ms))]

		var sb strings.Builder
		sb.WriteString(insertMeasurementSQL)

		values := make([]any, 0, len(batch)*9)
		for i, m := range batch {
			values = append(values, toMeasurementData(m).values()...)

			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(valuesPlaceholder)
		}

		if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
			return fmt.Errorf("batch inserting measurements: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Len returns the number of measurements in the frame
func (f *Frame) Len(ctx context.Context) (n int, err error) {
	if err = f.db.QueryRowContext(ctx, countMeasurementsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting measurements: %w", err)
	}
	return n, nil
}

// Points returns one sample per unique position carrying the mean of the
// present values of field. Duplicated positions are averaged so that the
// interpolation sees each location once.
func (f *Frame) Points(ctx context.Context, field Field) (samples []survey.Sample, err error) {
	col, ok := fieldColumns[field]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", field)
	}

	rows, err := f.db.QueryContext(ctx, fmt.Sprintf(selectPointsSQL, col))
	if err != nil {
		return nil, fmt.Errorf("querying %s points: %w", field, err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var s survey.Sample
		if err = rows.Scan(&s.X, &s.Y, &s.Value, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning %s point: %w", field, err)
		}
		samples = append(samples, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s points: %w", field, err)
	}
	return samples, nil
}

// CoordinateVariance returns the per-position RSSI statistics ordered by X, then Y
func (f *Frame) CoordinateVariance(ctx context.Context) (stats []survey.CoordinateStats, err error) {
	rows, err := f.db.QueryContext(ctx, selectCoordinateVarianceSQL)
	if err != nil {
		return nil, fmt.Errorf("querying coordinate variance: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var (
			s          survey.CoordinateStats
			sum, sumSq float64
		)
		if err = rows.Scan(&s.X, &s.Y, &s.Count, &sum, &sumSq); err != nil {
			return nil, fmt.Errorf("scanning coordinate variance: %w", err)
		}
		s.Mean = sum / float64(s.Count)
		s.StdDev = survey.StdDevFromSums(s.Count, sum, sumSq)
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating coordinate variance: %w", err)
	}
	return stats, nil
}

// WorstSignal returns the measurement with the lowest RSSI, the earliest one
// on ties. It returns nil if no measurement carries RSSI.
func (f *Frame) WorstSignal(ctx context.Context) (*survey.Measurement, error) {
	var d measurementData
	err := f.db.QueryRowContext(ctx, selectWorstSignalSQL).Scan(d.scanTargets()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying worst signal: %w", err)
	}

	m := d.toMeasurement()
	return &m, nil
}

// Close releases the in-memory database. It is safe to call Close multiple times.
func (f *Frame) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.db.Close()
	})
	return f.closeErr
}
