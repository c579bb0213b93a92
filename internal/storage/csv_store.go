package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// Header is the fixed column layout of the record store
var Header = []string{"timestamp", "x", "y", "rssi_dbm", "snr", "ruido", "frequencia_ghz", "canal", "bssid"}

const (
	colTimestamp = iota
	colX
	colY
	colRSSI
	colSNR
	colNoise
	colFrequency
	colChannel
	colBSSID
)

// CSVStore keeps measurements in a comma separated file. Every operation
// opens and closes the file.
type CSVStore struct {
	path string
}

var _ Store = (*CSVStore)(nil)

// NewCSVStore creates a store backed by the file at path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the location of the backing file
func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) Reset(ctx context.Context) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer closeWithError(f, &err)

	if err = writeRow(f, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

func (s *CSVStore) Append(ctx context.Context, m survey.Measurement) (err error) {
	if m.RSSI == nil {
		return ErrNoSignal
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer closeWithError(f, &err)

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inspecting store: %w", err)
	}
	if info.Size() == 0 {
		if err = writeRow(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err = writeRow(f, toRow(m)); err != nil {
		return fmt.Errorf("appending measurement: %w", err)
	}
	return nil
}

func (s *CSVStore) ReadAll(ctx context.Context) (ms []survey.Measurement, err error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
		}
		return nil, fmt.Errorf("opening store: %w", err)
	}
	defer closeWithError(f, &err)

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected header: %v", header)
	}

	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		row, rErr := r.Read()
		if errors.Is(rErr, io.EOF) {
			break
		}
		if rErr != nil {
			return nil, fmt.Errorf("reading store: %w", rErr)
		}

		line, _ := r.FieldPos(0)

		m, pErr := fromRow(row)
		if pErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, pErr)
		}
		ms = append(ms, m)
	}

	return ms, nil
}

func writeRow(w io.Writer, row []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func toRow(m survey.Measurement) []string {
	return []string{
		colTimestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		colX:         strconv.FormatFloat(m.X, 'f', -1, 64),
		colY:         strconv.FormatFloat(m.Y, 'f', -1, 64),
		colRSSI:      formatOptionalInt(m.RSSI),
		colSNR:       formatOptionalInt(m.SNR),
		colNoise:     formatOptionalInt(m.Noise),
		colFrequency: formatOptionalFloat(m.FrequencyGHz),
		colChannel:   formatOptionalInt(m.Channel),
		colBSSID:     formatOptionalString(m.BSSID),
	}
}

func fromRow(row []string) (m survey.Measurement, err error) {
	if m.Timestamp, err = iso8601.ParseString(row[colTimestamp]); err != nil {
		return m, fmt.Errorf("invalid %s: %w", Header[colTimestamp], err)
	}
	m.Timestamp = m.Timestamp.UTC()

	if m.X, err = strconv.ParseFloat(row[colX], 64); err != nil {
		return m, fmt.Errorf("invalid %s: %w", Header[colX], err)
	}
	if m.Y, err = strconv.ParseFloat(row[colY], 64); err != nil {
		return m, fmt.Errorf("invalid %s: %w", Header[colY], err)
	}

	ints := []struct {
		col int
		dst **int
	}{
		{colRSSI, &m.RSSI},
		{colSNR, &m.SNR},
		{colNoise, &m.Noise},
		{colChannel, &m.Channel},
	}
	for _, c := range ints {
		if *c.dst, err = parseOptionalInt(row[c.col]); err != nil {
			return m, fmt.Errorf("invalid %s %q: %w", Header[c.col], row[c.col], err)
		}
	}

	if m.FrequencyGHz, err = parseOptionalFloat(row[colFrequency]); err != nil {
		return m, fmt.Errorf("invalid %s: %w", Header[colFrequency], err)
	}
	m.BSSID = parseOptionalString(row[colBSSID])

	return m, nil
}
