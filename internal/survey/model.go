package survey

import (
	"math"
	"time"
)

// Position is an operator supplied location in metres, relative to the
// access point at the origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance of the position from the origin.
func (p Position) Distance() float64 {
	return math.Hypot(p.X, p.Y)
}

// Measurement is a single collection event. Absent metrics are nil.
type Measurement struct {
	Timestamp    time.Time `json:"timestamp"`              // Capture time, UTC
	Position               // Where the operator stood
	RSSI         *int      `json:"rssiDbm,omitempty"`      // Received signal strength in dBm
	SNR          *int      `json:"snr,omitempty"`          // RSSI minus noise in dB
	Noise        *int      `json:"noise,omitempty"`        // Noise floor in dBm, measured or assumed
	FrequencyGHz *float64  `json:"frequencyGHz,omitempty"` // Link centre frequency
	Channel      *int      `json:"channel,omitempty"`      // Channel derived from the frequency
	BSSID        *string   `json:"bssid,omitempty"`        // Access point hardware address
}

// Distance derives the distance of the measurement from the reference point.
// It is never persisted.
func (m Measurement) Distance() float64 {
	return m.Position.Distance()
}

// SNR derives the signal to noise ratio, nil unless both inputs are present.
func SNR(rssi, noise *int) *int {
	if rssi == nil || noise == nil {
		return nil
	}
	snr := *rssi - *noise
	return &snr
}

// Ptr returns a pointer to v, handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// Sample is one value of a metric at a position, averaged over Count readings
type Sample struct {
	Position
	Value float64
	Count int
}
