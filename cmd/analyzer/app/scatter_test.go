package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func TestFitLogDistance(t *testing.T) {
	fit, err := fitLogDistance(plotter.XYs{
		{X: 0, Y: -30}, // reference point, excluded
		{X: 1, Y: -40},
		{X: 10, Y: -60},
		{X: 100, Y: -80},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, fit.N)
	assert.InDelta(t, -40.0, fit.Intercept, 1e-9)
	assert.InDelta(t, -20.0, fit.Slope, 1e-9)
	assert.InDelta(t, 2.0, fit.Exponent, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, -50.0, fit.At(3.1622776601683795), 1e-9)
}

func TestFitLogDistance_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		xys  plotter.XYs
	}{
		{name: "empty", xys: nil},
		{name: "reference point only", xys: plotter.XYs{{X: 0, Y: -30}, {X: 0, Y: -31}}},
		{name: "one distance", xys: plotter.XYs{{X: 0, Y: -30}, {X: 5, Y: -60}, {X: 5, Y: -62}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := fitLogDistance(tt.xys)
			assert.ErrorIs(t, err, errFitUnavailable)
			assert.Nil(t, fit)
		})
	}
}

func TestSignalByDistance(t *testing.T) {
	xys := signalByDistance([]survey.Measurement{
		{Position: survey.Position{X: 3, Y: 4}, RSSI: survey.Ptr(-55)},
		{Position: survey.Position{X: 1, Y: 1}},
		{Position: survey.Position{X: 0, Y: 0}, RSSI: survey.Ptr(-35)},
	})

	require.Len(t, xys, 2)
	assert.Equal(t, plotter.XY{X: 5, Y: -55}, xys[0])
	assert.Equal(t, plotter.XY{X: 0, Y: -35}, xys[1])
}

func TestRenderScatter(t *testing.T) {
	xys := plotter.XYs{{X: 0, Y: -40}, {X: 5, Y: -70}, {X: 10, Y: -90}}
	fit, err := fitLogDistance(xys)
	require.NoError(t, err)

	dir := t.TempDir()
	for _, tc := range []struct {
		name string
		fit  *PathLossFit
	}{
		{"with_trend.png", fit},
		{"without_trend.jpeg", nil},
	} {
		path := filepath.Join(dir, tc.name)
		require.NoError(t, renderScatter(path, xys, tc.fit))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
