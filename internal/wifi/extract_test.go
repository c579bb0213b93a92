package wifi

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/wifi-survey/internal/config"
	"github.com/roman-kulish/wifi-survey/internal/survey"
)

type fakeSource struct {
	text  string
	err   error
	calls []string
}

func (s *fakeSource) LinkStatus(_ context.Context, iface string) (string, error) {
	s.calls = append(s.calls, iface)
	return s.text, s.err
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func mapper() *ChannelMapper {
	return NewChannelMapper(0.005, config.DefaultBands5GHz())
}

func TestParseLinkStatus_Full(t *testing.T) {
	m, warnings := ParseLinkStatus(fixture(t, "iwconfig_full.txt"), -95, mapper())

	assert.Empty(t, warnings)
	require.NotNil(t, m.RSSI)
	assert.Equal(t, -52, *m.RSSI)
	require.NotNil(t, m.Noise)
	assert.Equal(t, -90, *m.Noise)
	assert.False(t, m.NoiseAssumed)
	require.NotNil(t, m.SNR)
	assert.Equal(t, 38, *m.SNR)
	require.NotNil(t, m.FrequencyGHz)
	assert.InDelta(t, 2.437, *m.FrequencyGHz, 1e-9)
	require.NotNil(t, m.Channel)
	assert.Equal(t, 6, *m.Channel)
	require.NotNil(t, m.BSSID)
	assert.Equal(t, "A4:2B:B0:11:22:33", *m.BSSID)
}

func TestParseLinkStatus_NoiseFallback(t *testing.T) {
	m, warnings := ParseLinkStatus(fixture(t, "iwconfig_no_noise.txt"), -95, mapper())

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "-95 dBm")
	assert.True(t, m.NoiseAssumed)
	require.NotNil(t, m.Noise)
	assert.Equal(t, -95, *m.Noise)
	require.NotNil(t, m.SNR)
	assert.Equal(t, 30, *m.SNR)
	require.NotNil(t, m.Channel)
	assert.Equal(t, 36, *m.Channel)
	require.NotNil(t, m.BSSID)
	assert.Equal(t, "a4:2b:b0:11:22:34", *m.BSSID)
}

func TestParseLinkStatus_Unassociated(t *testing.T) {
	m, _ := ParseLinkStatus(fixture(t, "iwconfig_unassociated.txt"), -95, mapper())

	assert.Nil(t, m.RSSI)
	assert.Nil(t, m.SNR)
	assert.Nil(t, m.FrequencyGHz)
	assert.Nil(t, m.Channel)
	assert.Nil(t, m.BSSID)
}

func TestParseLinkStatus_Fragments(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		rssi    *int
		noise   int
		freq    *float64
		channel *int
	}{
		{
			name:  "spaces around equals sign",
			text:  "Signal level = -71 dBm  Noise level = -88 dBm",
			rssi:  survey.Ptr(-71),
			noise: -88,
		},
		{
			name:    "frequency without signal",
			text:    "Frequency:2.462 GHz",
			noise:   -95,
			freq:    survey.Ptr(2.462),
			channel: survey.Ptr(11),
		},
		{
			name:  "frequency off any channel",
			text:  "Signal level=-40 dBm Frequency:2.479 GHz",
			rssi:  survey.Ptr(-40),
			noise: -95,
			freq:  survey.Ptr(2.479),
		},
		{
			name:  "signal in unexpected unit",
			text:  "Signal level=60/100",
			noise: -95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := ParseLinkStatus(tt.text, -95, mapper())

			assert.Equal(t, tt.rssi, m.RSSI)
			require.NotNil(t, m.Noise)
			assert.Equal(t, tt.noise, *m.Noise)
			assert.Equal(t, tt.freq, m.FrequencyGHz)
			assert.Equal(t, tt.channel, m.Channel)
			if tt.rssi == nil {
				assert.Nil(t, m.SNR)
			} else {
				require.NotNil(t, m.SNR)
				assert.Equal(t, *tt.rssi-tt.noise, *m.SNR)
			}
		})
	}
}

func TestMetrics_Measurement(t *testing.T) {
	m, _ := ParseLinkStatus(fixture(t, "iwconfig_full.txt"), -95, mapper())
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	got := m.Measurement(ts, survey.Position{X: 3, Y: 4})

	assert.Equal(t, time.UTC, got.Timestamp.Location())
	assert.True(t, ts.Equal(got.Timestamp))
	assert.InDelta(t, 5.0, got.Distance(), 1e-12)
	assert.Equal(t, m.RSSI, got.RSSI)
	assert.Equal(t, m.BSSID, got.BSSID)
}

func TestExtractor_Measure(t *testing.T) {
	src := &fakeSource{text: fixture(t, "iwconfig_full.txt")}
	e := NewExtractor(src, mapper(), -95)

	m, err := e.Measure(context.Background(), "wlan1")
	require.NoError(t, err)
	assert.Equal(t, []string{"wlan1"}, src.calls)
	require.NotNil(t, m.RSSI)
	assert.Equal(t, -52, *m.RSSI)
}

func TestExtractor_MeasureNoSignal(t *testing.T) {
	e := NewExtractor(&fakeSource{text: fixture(t, "iwconfig_unassociated.txt")}, mapper(), -95)

	_, err := e.Measure(context.Background(), "wlan0")
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestExtractor_MeasureSourceFailure(t *testing.T) {
	cmdErr := &CommandError{Tool: "iwconfig", Interface: "wlan9", Output: "wlan9  No such device", Err: errors.New("exit status 1")}
	e := NewExtractor(&fakeSource{err: cmdErr}, mapper(), -95)

	_, err := e.Measure(context.Background(), "wlan9")
	require.Error(t, err)

	var target *CommandError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "wlan9", target.Interface)
	assert.Contains(t, err.Error(), "No such device")
}

func TestCommandSource_ToolNotFound(t *testing.T) {
	s := NewCommandSource("wifi-survey-no-such-tool")

	_, err := s.LinkStatus(context.Background(), "wlan0")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestCommandSource_NonZeroExit(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("`false` is not available")
	}

	s := NewCommandSource("false")

	_, err := s.LinkStatus(context.Background(), "wlan0")
	var target *CommandError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "false", target.Tool)
	assert.Equal(t, "wlan0", target.Interface)

	var exitErr *exec.ExitError
	assert.ErrorAs(t, err, &exitErr)
}

func TestCommandSource_Output(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("`echo` is not available")
	}

	out, err := NewCommandSource("echo").LinkStatus(context.Background(), "wlan0")
	require.NoError(t, err)
	assert.Equal(t, "wlan0\n", out)
}
