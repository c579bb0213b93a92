package interp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plane(x, y float64) float64 {
	return 2 + 3*x - y
}

func gridPoints(n int, f func(x, y float64) float64) []Point {
	var pts []Point
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := float64(i), float64(j)
			pts = append(pts, Point{X: x, Y: y, Value: f(x, y)})
		}
	}
	return pts
}

func area(tr *Triangulation) float64 {
	var total float64
	for _, t := range tr.Triangles {
		a, b, c := tr.Points[t[0]], tr.Points[t[1]], tr.Points[t[2]]
		total += orient([2]float64{a.X, a.Y}, [2]float64{b.X, b.Y}, [2]float64{c.X, c.Y}) / 2
	}
	return total
}

func TestTriangulate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   error
	}{
		{name: "empty", points: nil, want: ErrTooFewPoints},
		{name: "two points", points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, want: ErrTooFewPoints},
		{
			name:   "duplicates collapse",
			points: []Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0}},
			want:   ErrTooFewPoints,
		},
		{
			name:   "collinear",
			points: []Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}},
			want:   ErrDegenerate,
		},
		{
			name:   "collinear diagonal",
			points: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2.5, Y: 2.5}, {X: -3, Y: -3}},
			want:   ErrDegenerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Triangulate(tt.points)
			assert.ErrorIs(t, err, tt.want)

			_, err = NewCubic(tt.points)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTriangulate_Grid(t *testing.T) {
	tr, err := Triangulate(gridPoints(3, plane))
	require.NoError(t, err)

	assert.Len(t, tr.Triangles, 8)
	assert.InDelta(t, 4.0, area(tr), 1e-9)

	for _, tri := range tr.Triangles {
		a, b, c := tr.Points[tri[0]], tr.Points[tri[1]], tr.Points[tri[2]]
		assert.Positive(t, orient([2]float64{a.X, a.Y}, [2]float64{b.X, b.Y}, [2]float64{c.X, c.Y}), "counter-clockwise")
	}

	adj := tr.Neighbours()
	for i, p := range tr.Points {
		if p.X == 1 && p.Y == 1 {
			assert.GreaterOrEqual(t, len(adj[i]), 4, "centre touches at least its axis neighbours")
		}
	}
}

func TestTriangulate_Lattices(t *testing.T) {
	for n := 6; n <= 15; n++ {
		for _, offset := range [][2]float64{{0, 0}, {-3.5, 2.25}, {100, -40}} {
			var pts []Point
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					pts = append(pts, Point{X: offset[0] + float64(i)*0.5, Y: offset[1] + float64(j)*0.5})
				}
			}

			tr, err := Triangulate(pts)
			require.NoError(t, err, "%dx%d", n, n)

			side := float64(n-1) * 0.5
			assert.InDelta(t, side*side, area(tr), 1e-6, "%dx%d hull area", n, n)
		}
	}
}

func TestTriangulate_EmptyCircumcircles(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	pts := make([]Point, 60)
	for i := range pts {
		pts[i] = Point{X: rnd.Float64() * 20, Y: rnd.Float64() * 12}
	}

	tr, err := Triangulate(pts)
	require.NoError(t, err)

	xy := make([][2]float64, len(tr.Points))
	for i, p := range tr.Points {
		xy[i] = [2]float64{p.X, p.Y}
	}

	for _, tri := range tr.Triangles {
		assert.Positive(t, orient(xy[tri[0]], xy[tri[1]], xy[tri[2]]), "triangle %v is not counter-clockwise", tri)

		cx, cy, r2 := circumcircle(xy[tri[0]], xy[tri[1]], xy[tri[2]])
		for i, p := range xy {
			if i == tri[0] || i == tri[1] || i == tri[2] {
				continue
			}
			dx, dy := p[0]-cx, p[1]-cy
			assert.GreaterOrEqual(t, dx*dx+dy*dy, r2*(1-1e-9), "point %d inside circumcircle of %v", i, tri)
		}
	}
}

func TestCubic_ReproducesPlane(t *testing.T) {
	rnd := rand.New(rand.NewSource(11))

	pts := gridPoints(4, plane)
	for i := 0; i < 10; i++ {
		x, y := rnd.Float64()*3, rnd.Float64()*3
		pts = append(pts, Point{X: x, Y: y, Value: plane(x, y)})
	}

	c, err := NewCubic(pts)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		x, y := rnd.Float64()*3, rnd.Float64()*3
		assert.InDelta(t, plane(x, y), c.at(x, y), 1e-9, "at (%0.3f, %0.3f)", x, y)
	}
}

func TestCubic_InterpolatesSamples(t *testing.T) {
	f := func(x, y float64) float64 { return -40 - 20*math.Log10(1+math.Hypot(x, y)) }
	pts := gridPoints(5, f)

	c, err := NewCubic(pts)
	require.NoError(t, err)

	for _, p := range pts {
		assert.InDelta(t, p.Value, c.at(p.X, p.Y), 1e-9)
	}

	// smooth field, the patch stays close between samples
	assert.InDelta(t, f(1.5, 2.5), c.at(1.5, 2.5), 0.5)
}

func TestCubic_AveragesDuplicates(t *testing.T) {
	c, err := NewCubic([]Point{
		{X: 0, Y: 0, Value: -60},
		{X: 0, Y: 0, Value: -70},
		{X: 4, Y: 0, Value: -50},
		{X: 0, Y: 4, Value: -50},
	})
	require.NoError(t, err)

	assert.InDelta(t, -65.0, c.at(0, 0), 1e-9)
}

func TestCubic_OutsideHull(t *testing.T) {
	c, err := NewCubic(gridPoints(3, plane))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(c.at(-0.5, 1)))
	assert.True(t, math.IsNaN(c.at(1, 2.5)))
	assert.False(t, math.IsNaN(c.at(2, 2)), "hull corner")
}

func TestCubic_Grid(t *testing.T) {
	pts := gridPoints(3, plane)
	c, err := NewCubic(pts)
	require.NoError(t, err)

	e := ExtentOf(pts, 1)
	assert.Equal(t, Extent{MinX: -1, MaxX: 3, MinY: -1, MaxY: 3}, e)

	grid := c.Grid(e, 41, 21)
	require.Len(t, grid, 21)
	require.Len(t, grid[0], 41)

	assert.True(t, math.IsNaN(grid[0][0]), "padding is outside the hull")
	assert.True(t, math.IsNaN(grid[20][40]))

	var filled int
	for r, row := range grid {
		y := e.MaxY - float64(r)*e.Height()/20
		for col, v := range row {
			if math.IsNaN(v) {
				continue
			}
			filled++
			x := e.MinX + float64(col)*e.Width()/40
			assert.InDelta(t, plane(x, y), v, 1e-9)
		}
	}
	// columns 10..30 and rows 5..15 cover the sampled square
	assert.Equal(t, 21*11, filled)
}

func TestExtent(t *testing.T) {
	e := ExtentOf([]Point{{X: 2, Y: 1}, {X: 5, Y: -3}}, 0.5)
	assert.Equal(t, Extent{MinX: 1.5, MaxX: 5.5, MinY: -3.5, MaxY: 1.5}, e)

	e = e.Include(0, 0)
	assert.Equal(t, 0.0, e.MinX)
	assert.Equal(t, 5.5, e.MaxX)
	assert.InDelta(t, 5.5, e.Width(), 1e-12)
	assert.InDelta(t, 5.0, e.Height(), 1e-12)
}

func circumcircle(a, b, c [2]float64) (cx, cy, r2 float64) {
	d := 2 * (a[0]*(b[1]-c[1]) + b[0]*(c[1]-a[1]) + c[0]*(a[1]-b[1]))
	a2, b2, c2 := a[0]*a[0]+a[1]*a[1], b[0]*b[0]+b[1]*b[1], c[0]*c[0]+c[1]*c[1]
	cx = (a2*(b[1]-c[1]) + b2*(c[1]-a[1]) + c2*(a[1]-b[1])) / d
	cy = (a2*(c[0]-b[0]) + b2*(a[0]-c[0]) + c2*(b[0]-a[0])) / d
	return cx, cy, (a[0]-cx)*(a[0]-cx) + (a[1]-cy)*(a[1]-cy)
}
