package storage

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func newTestFrame(t *testing.T, ms []survey.Measurement) *Frame {
	t.Helper()
	f, err := NewFrame(context.Background(), ms)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func at(x, y float64, rssi *int, noise *int) survey.Measurement {
	return survey.Measurement{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Position:  survey.Position{X: x, Y: y},
		RSSI:      rssi,
		Noise:     noise,
		SNR:       survey.SNR(rssi, noise),
	}
}

func TestFrame_Points(t *testing.T) {
	f := newTestFrame(t, []survey.Measurement{
		at(1, 1, survey.Ptr(-60), survey.Ptr(-95)),
		at(1, 1, survey.Ptr(-70), nil),
		at(0, 2, survey.Ptr(-55), survey.Ptr(-91)),
		at(3, 0, nil, survey.Ptr(-93)),
	})
	ctx := context.Background()

	n, err := f.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rssi, err := f.Points(ctx, FieldRSSI)
	require.NoError(t, err)
	require.Len(t, rssi, 2)
	assert.Equal(t, survey.Position{X: 0, Y: 2}, rssi[0].Position)
	assert.InDelta(t, -55.0, rssi[0].Value, 1e-9)
	assert.Equal(t, 1, rssi[0].Count)
	assert.Equal(t, survey.Position{X: 1, Y: 1}, rssi[1].Position)
	assert.InDelta(t, -65.0, rssi[1].Value, 1e-9)
	assert.Equal(t, 2, rssi[1].Count)

	noise, err := f.Points(ctx, FieldNoise)
	require.NoError(t, err)
	require.Len(t, noise, 3)
	assert.InDelta(t, -95.0, noise[1].Value, 1e-9, "absent noise is not averaged in")

	snr, err := f.Points(ctx, FieldSNR)
	require.NoError(t, err)
	require.Len(t, snr, 2)
	assert.InDelta(t, 36.0, snr[0].Value, 1e-9)
	assert.InDelta(t, 35.0, snr[1].Value, 1e-9)

	_, err = f.Points(ctx, Field(42))
	assert.Error(t, err)
}

func TestFrame_CoordinateVariance(t *testing.T) {
	f := newTestFrame(t, []survey.Measurement{
		at(1, 1, survey.Ptr(-60), nil),
		at(1, 1, survey.Ptr(-70), nil),
		at(0, 2, survey.Ptr(-55), nil),
		at(4, 4, nil, nil),
	})

	stats, err := f.CoordinateVariance(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, survey.Position{X: 0, Y: 2}, stats[0].Position)
	assert.Zero(t, stats[0].StdDev)

	assert.Equal(t, survey.Position{X: 1, Y: 1}, stats[1].Position)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, -65.0, stats[1].Mean, 1e-9)
	assert.InDelta(t, 7.071, stats[1].StdDev, 0.01)
}

func TestFrame_CoordinateVarianceMatchesInMemory(t *testing.T) {
	ms := []survey.Measurement{
		at(0, 0, survey.Ptr(-40), nil),
		at(0, 0, survey.Ptr(-44), nil),
		at(0, 0, survey.Ptr(-47), nil),
		at(5, 0, survey.Ptr(-70), nil),
		at(10, 0, survey.Ptr(-90), nil),
		at(10, 0, survey.Ptr(-83), nil),
	}
	f := newTestFrame(t, ms)

	got, err := f.CoordinateVariance(context.Background())
	require.NoError(t, err)

	want := groupVariance(ms)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Position, got[i].Position)
		assert.Equal(t, want[i].Count, got[i].Count)
		assert.InDelta(t, want[i].Mean, got[i].Mean, 1e-9)
		assert.InDelta(t, want[i].StdDev, got[i].StdDev, 1e-9)
	}
}

func TestFrame_WorstSignal(t *testing.T) {
	first := at(2, 2, survey.Ptr(-80), survey.Ptr(-95))
	first.BSSID = survey.Ptr("A4:2B:B0:11:22:33")
	first.FrequencyGHz = survey.Ptr(2.437)
	first.Channel = survey.Ptr(6)

	f := newTestFrame(t, []survey.Measurement{
		at(0, 0, survey.Ptr(-40), nil),
		first,
		at(3, 3, survey.Ptr(-80), nil),
		at(1, 1, nil, nil),
	})

	worst, err := f.WorstSignal(context.Background())
	require.NoError(t, err)
	require.NotNil(t, worst)
	assert.Equal(t, first.Position, worst.Position)
	assert.Equal(t, first.RSSI, worst.RSSI)
	assert.Equal(t, first.SNR, worst.SNR)
	assert.Equal(t, first.BSSID, worst.BSSID)
	assert.Equal(t, first.Channel, worst.Channel)
	assert.True(t, first.Timestamp.Equal(worst.Timestamp))
}

func TestFrame_Empty(t *testing.T) {
	f := newTestFrame(t, nil)
	ctx := context.Background()

	worst, err := f.WorstSignal(ctx)
	require.NoError(t, err)
	assert.Nil(t, worst)

	points, err := f.Points(ctx, FieldRSSI)
	require.NoError(t, err)
	assert.Empty(t, points)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}

func TestFrame_LargeBatch(t *testing.T) {
	ms := make([]survey.Measurement, 0, 3*insertBatchSize+7)
	for i := 0; i < cap(ms); i++ {
		ms = append(ms, at(float64(i%10), float64(i/10), survey.Ptr(-40-i%50), nil))
	}
	f := newTestFrame(t, ms)

	n, err := f.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(ms), n)
}

// groupVariance computes the per-position statistics in memory, ordered by X, then Y
func groupVariance(ms []survey.Measurement) []survey.CoordinateStats {
	groups := make(map[survey.Position][]float64)
	for _, m := range ms {
		if m.RSSI != nil {
			groups[m.Position] = append(groups[m.Position], float64(*m.RSSI))
		}
	}

	stats := make([]survey.CoordinateStats, 0, len(groups))
	for p, vs := range groups {
		var sum, sumSq float64
		for _, v := range vs {
			sum += v
			sumSq += v * v
		}
		stats = append(stats, survey.CoordinateStats{
			Position: p,
			Count:    len(vs),
			Mean:     sum / float64(len(vs)),
			StdDev:   survey.StdDevFromSums(len(vs), sum, sumSq),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].X != stats[j].X {
			return stats[i].X < stats[j].X
		}
		return stats[i].Y < stats[j].Y
	})
	return stats
}
