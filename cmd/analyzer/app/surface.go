package app

import (
	"errors"
	"fmt"

	"github.com/roman-kulish/wifi-survey/internal/interp"
	"github.com/roman-kulish/wifi-survey/internal/survey"
)

var (
	errNoSamples = errors.New("no valid samples")
	errFlat      = errors.New("all samples have the same value")
	errNoPixels  = errors.New("interpolated surface covers no pixel")
)

// Surface is an interpolated field ready for rendering
type Surface struct {
	Title     string
	Unit      string
	Extent    interp.Extent
	Grid      [][]float64 // rows from Extent.MaxY down to Extent.MinY
	Bounds    ValueBounds
	Samples   []survey.Position
	Reference survey.Position
}

// Width returns the number of grid columns
func (s *Surface) Width() int {
	if len(s.Grid) == 0 {
		return 0
	}
	return len(s.Grid[0])
}

// Height returns the number of grid rows
func (s *Surface) Height() int {
	return len(s.Grid)
}

type surfaceConfig struct {
	Title      string
	Unit       string
	Margin     float64
	GridWidth  int
	GridHeight int
}

// buildSurface interpolates samples over their extent, grown to hold the
// reference point at the origin and padded by the margin. Degenerate input is
// reported as an error and nothing is built.
func buildSurface(samples []survey.Sample, c surfaceConfig) (*Surface, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}

	points := make([]interp.Point, len(samples))
	positions := make([]survey.Position, len(samples))
	flat := true
	for i, s := range samples {
		points[i] = interp.Point{X: s.X, Y: s.Y, Value: s.Value}
		positions[i] = s.Position
		if s.Value != samples[0].Value {
			flat = false
		}
	}
	if flat {
		return nil, errFlat
	}

	cubic, err := interp.NewCubic(points)
	if err != nil {
		return nil, fmt.Errorf("interpolating: %w", err)
	}

	var reference survey.Position
	extent := interp.ExtentOf(points, 0).Include(reference.X, reference.Y).Pad(c.Margin)
	grid := cubic.Grid(extent, c.GridWidth, c.GridHeight)

	bounds, ok := BoundsOf(grid)
	if !ok {
		return nil, errNoPixels
	}

	return &Surface{
		Title:     c.Title,
		Unit:      c.Unit,
		Extent:    extent,
		Grid:      grid,
		Bounds:    bounds,
		Samples:   positions,
		Reference: reference,
	}, nil
}
