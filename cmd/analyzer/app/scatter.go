package app

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

const (
	scatterWidth  = 10 * vg.Inch
	scatterHeight = 6 * vg.Inch
)

var errFitUnavailable = errors.New("need at least two distinct non-zero distances")

// PathLossFit is the log-distance model RSSI = Intercept + Slope*log10(d)
type PathLossFit struct {
	Intercept float64 // RSSI in dBm extrapolated to 1 m
	Slope     float64 // dB per decade of distance
	Exponent  float64 // path loss exponent n, -Slope/10
	RSquared  float64
	N         int // readings used for the fit
}

// At evaluates the model at distance d in metres
func (f *PathLossFit) At(d float64) float64 {
	return f.Intercept + f.Slope*math.Log10(d)
}

// signalByDistance pairs the distance of every reading carrying RSSI with its RSSI
func signalByDistance(ms []survey.Measurement) plotter.XYs {
	xys := make(plotter.XYs, 0, len(ms))
	for _, m := range ms {
		if m.RSSI == nil {
			continue
		}
		xys = append(xys, plotter.XY{X: m.Distance(), Y: float64(*m.RSSI)})
	}
	return xys
}

// fitLogDistance regresses RSSI on log10 of distance. Readings at the
// reference point are excluded since log10(0) is undefined.
func fitLogDistance(xys plotter.XYs) (*PathLossFit, error) {
	var xs, ys []float64
	for _, p := range xys {
		if p.X <= 0 {
			continue
		}
		xs = append(xs, math.Log10(p.X))
		ys = append(ys, p.Y)
	}

	distinct := false
	for _, x := range xs {
		if x != xs[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return nil, errFitUnavailable
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return nil, fmt.Errorf("regression diverged: intercept %v, slope %v", alpha, beta)
	}

	return &PathLossFit{
		Intercept: alpha,
		Slope:     beta,
		Exponent:  -beta / 10,
		RSquared:  stat.RSquared(xs, ys, nil, alpha, beta),
		N:         len(xs),
	}, nil
}

// renderScatter plots RSSI against distance into path, with the trend line
// when fit is not nil. The image format follows the path extension.
func renderScatter(path string, xys plotter.XYs, fit *PathLossFit) error {
	p := plot.New()
	p.Title.Text = "RSSI vs distance (path loss)"
	p.X.Label.Text = "Distance from access point (m)"
	p.Y.Label.Text = "RSSI (dBm)"
	p.X.Min = 0
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("creating scatter: %w", err)
	}
	s.GlyphStyle.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xb3}
	s.GlyphStyle.Radius = vg.Points(4)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	p.Legend.Add("Readings", s)

	if fit != nil {
		minD, maxD := math.Inf(1), 0.0
		for _, xy := range xys {
			if xy.X > 0 {
				minD = math.Min(minD, xy.X)
				maxD = math.Max(maxD, xy.X)
			}
		}

		trend := plotter.NewFunction(fit.At)
		trend.XMin = minD
		trend.XMax = maxD
		trend.Samples = 200
		trend.Color = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
		trend.Width = vg.Points(1.5)
		trend.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(trend)
		p.Legend.Add(fmt.Sprintf("Trend (n = %0.2f)", fit.Exponent), trend)
	}
	p.Legend.Top = true

	if err = p.Save(scatterWidth, scatterHeight, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
