// Package interp interpolates scattered samples onto a regular grid using a
// Delaunay triangulation and piecewise cubic triangle patches.
package interp

import (
	"errors"
	"math"
)

var (
	// ErrTooFewPoints is returned when fewer than three distinct positions are given
	ErrTooFewPoints = errors.New("at least three distinct points are required")

	// ErrDegenerate is returned when the points span no area, e.g. all lie on one line
	ErrDegenerate = errors.New("points are collinear")
)

// Point is a sample of a scalar field
type Point struct {
	X, Y  float64
	Value float64
}

// Extent is an axis aligned rectangle
type Extent struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// ExtentOf returns the bounding rectangle of points padded by margin on every side
func ExtentOf(points []Point, margin float64) Extent {
	e := Extent{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
	}
	for _, p := range points {
		e.MinX = math.Min(e.MinX, p.X)
		e.MaxX = math.Max(e.MaxX, p.X)
		e.MinY = math.Min(e.MinY, p.Y)
		e.MaxY = math.Max(e.MaxY, p.Y)
	}
	return e.Pad(margin)
}

// Pad grows the extent by margin on every side
func (e Extent) Pad(margin float64) Extent {
	return Extent{
		MinX: e.MinX - margin,
		MaxX: e.MaxX + margin,
		MinY: e.MinY - margin,
		MaxY: e.MaxY + margin,
	}
}

// Include grows the extent to contain (x, y)
func (e Extent) Include(x, y float64) Extent {
	return Extent{
		MinX: math.Min(e.MinX, x),
		MaxX: math.Max(e.MaxX, x),
		MinY: math.Min(e.MinY, y),
		MaxY: math.Max(e.MaxY, y),
	}
}

func (e Extent) Width() float64  { return e.MaxX - e.MinX }
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// unique merges points sharing a position, averaging their values.
// The order of first appearance is kept.
func unique(points []Point) []Point {
	type key struct{ x, y float64 }

	index := make(map[key]int, len(points))
	counts := make([]int, 0, len(points))
	out := make([]Point, 0, len(points))

	for _, p := range points {
		k := key{p.X, p.Y}
		if i, ok := index[k]; ok {
			counts[i]++
			out[i].Value += (p.Value - out[i].Value) / float64(counts[i])
			continue
		}
		index[k] = len(out)
		out = append(out, p)
		counts = append(counts, 1)
	}
	return out
}
