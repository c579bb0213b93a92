package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// measurementData is a measurement row in the analysis frame
type measurementData struct {
	Timestamp time.Time
	X         float64
	Y         float64
	RSSI      sql.NullInt64
	SNR       sql.NullInt64
	Noise     sql.NullInt64
	Frequency sql.NullFloat64
	Channel   sql.NullInt64
	BSSID     sql.NullString
}

func (d *measurementData) values() []any {
	return []any{d.Timestamp, d.X, d.Y, d.RSSI, d.SNR, d.Noise, d.Frequency, d.Channel, d.BSSID}
}

func (d *measurementData) scanTargets() []any {
	return []any{&d.Timestamp, &d.X, &d.Y, &d.RSSI, &d.SNR, &d.Noise, &d.Frequency, &d.Channel, &d.BSSID}
}

func (d *measurementData) toMeasurement() survey.Measurement {
	return survey.Measurement{
		Timestamp:    d.Timestamp.UTC(),
		Position:     survey.Position{X: d.X, Y: d.Y},
		RSSI:         fromSQLNullInt(d.RSSI),
		SNR:          fromSQLNullInt(d.SNR),
		Noise:        fromSQLNullInt(d.Noise),
		FrequencyGHz: fromSQLNullFloat(d.Frequency),
		Channel:      fromSQLNullInt(d.Channel),
		BSSID:        fromSQLNullString(d.BSSID),
	}
}

func toMeasurementData(m survey.Measurement) *measurementData {
	return &measurementData{
		Timestamp: m.Timestamp.UTC(),
		X:         m.X,
		Y:         m.Y,
		RSSI: sql.NullInt64{
			Int64: toSQLNullType[int64](m.RSSI),
			Valid: m.RSSI != nil,
		},
		SNR: sql.NullInt64{
			Int64: toSQLNullType[int64](m.SNR),
			Valid: m.SNR != nil,
		},
		Noise: sql.NullInt64{
			Int64: toSQLNullType[int64](m.Noise),
			Valid: m.Noise != nil,
		},
		Frequency: sql.NullFloat64{
			Float64: toSQLNullType[float64](m.FrequencyGHz),
			Valid:   m.FrequencyGHz != nil,
		},
		Channel: sql.NullInt64{
			Int64: toSQLNullType[int64](m.Channel),
			Valid: m.Channel != nil,
		},
		BSSID: sql.NullString{
			String: derefString(m.BSSID),
			Valid:  m.BSSID != nil,
		},
	}
}
