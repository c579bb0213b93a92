package wifi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

var (
	signalPattern    = regexp.MustCompile(`Signal level\s*=\s*(-?\d+)\s*dBm`)
	noisePattern     = regexp.MustCompile(`Noise level\s*=\s*(-?\d+)\s*dBm`)
	frequencyPattern = regexp.MustCompile(`Frequency:([\d.]+) GHz`)
	bssidPattern     = regexp.MustCompile(`Access Point:\s*([0-9A-Fa-f:]{17})`)
)

// Metrics holds the radio metrics extracted from one link status query.
// Absent values are nil.
type Metrics struct {
	RSSI         *int
	Noise        *int
	NoiseAssumed bool // Noise is the configured floor, not a reading
	SNR          *int
	FrequencyGHz *float64
	Channel      *int
	BSSID        *string
}

// Measurement stamps the metrics with a capture time and position
func (m Metrics) Measurement(ts time.Time, pos survey.Position) survey.Measurement {
	return survey.Measurement{
		Timestamp:    ts.UTC(),
		Position:     pos,
		RSSI:         m.RSSI,
		SNR:          m.SNR,
		Noise:        m.Noise,
		FrequencyGHz: m.FrequencyGHz,
		Channel:      m.Channel,
		BSSID:        m.BSSID,
	}
}

// ParseLinkStatus extracts metrics from link status text. Fields that do not
// match resolve to nil. Missing noise is replaced with noiseFloor and reported
// in the returned warnings.
func ParseLinkStatus(text string, noiseFloor int, mapper *ChannelMapper) (Metrics, []string) {
	var (
		m        Metrics
		warnings []string
	)

	m.RSSI = matchInt(signalPattern, text)
	m.Noise = matchInt(noisePattern, text)

	if m.Noise == nil {
		m.Noise = survey.Ptr(noiseFloor)
		m.NoiseAssumed = true
		warnings = append(warnings, fmt.Sprintf("noise level not reported, assuming %d dBm", noiseFloor))
	}

	m.SNR = survey.SNR(m.RSSI, m.Noise)

	if sm := frequencyPattern.FindStringSubmatch(text); sm != nil {
		if f, err := strconv.ParseFloat(sm[1], 64); err == nil {
			m.FrequencyGHz = &f
		}
	}

	if mapper != nil {
		m.Channel = mapper.Channel(m.FrequencyGHz)
	}

	if sm := bssidPattern.FindStringSubmatch(text); sm != nil {
		m.BSSID = survey.Ptr(sm[1])
	}

	return m, warnings
}

func matchInt(re *regexp.Regexp, text string) *int {
	sm := re.FindStringSubmatch(text)
	if sm == nil {
		return nil
	}
	v, err := strconv.Atoi(sm[1])
	if err != nil {
		return nil
	}
	return &v
}

// WithLogger sets the logger for the extractor
func WithLogger(logger *slog.Logger) func(e *Extractor) {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor queries a link status source and parses its output
type Extractor struct {
	source     LinkStatusSource
	mapper     *ChannelMapper
	noiseFloor int
	logger     *slog.Logger
}

// NewExtractor creates an extractor reading from source
func NewExtractor(source LinkStatusSource, mapper *ChannelMapper, noiseFloor int, options ...func(e *Extractor)) *Extractor {
	e := Extractor{
		source:     source,
		mapper:     mapper,
		noiseFloor: noiseFloor,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&e)
	}

	return &e
}

// Measure queries iface once. A source failure is returned as is and no
// parsing is attempted; output without a signal level yields ErrNoSignal.
func (e *Extractor) Measure(ctx context.Context, iface string) (Metrics, error) {
	text, err := e.source.LinkStatus(ctx, iface)
	if err != nil {
		return Metrics{}, fmt.Errorf("querying %s: %w", iface, err)
	}

	m, warnings := ParseLinkStatus(text, e.noiseFloor, e.mapper)
	for _, w := range warnings {
		e.logger.Warn(w, slog.String("interface", iface))
	}

	if m.RSSI == nil {
		return m, fmt.Errorf("%s: %w", iface, ErrNoSignal)
	}

	attrs := []any{slog.String("interface", iface), slog.Int("rssi", *m.RSSI)}
	if m.FrequencyGHz != nil {
		attrs = append(attrs, slog.String("frequency", humanize.SIWithDigits(*m.FrequencyGHz*1e9, 3, "Hz")))
	}
	if m.Channel != nil {
		attrs = append(attrs, slog.Int("channel", *m.Channel))
	}
	e.logger.Debug("link measured", attrs...)

	return m, nil
}
