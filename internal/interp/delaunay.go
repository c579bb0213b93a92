package interp

import (
	"fmt"
	"math"
	"slices"

	"github.com/fogleman/delaunay"
)

// Triangulation is a Delaunay triangulation of distinct points
type Triangulation struct {
	Points    []Point
	Triangles [][3]int // counter-clockwise vertex indices into Points
}

// Triangulate builds the Delaunay triangulation of points. Points sharing a
// position are merged and their values averaged.
func Triangulate(points []Point) (*Triangulation, error) {
	pts := unique(points)
	if len(pts) < 3 {
		return nil, ErrTooFewPoints
	}
	if collinear(pts) {
		return nil, ErrDegenerate
	}

	in := make([]delaunay.Point, len(pts))
	for i, p := range pts {
		in[i] = delaunay.Point{X: p.X, Y: p.Y}
	}

	d, err := delaunay.Triangulate(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
	}

	tr := &Triangulation{
		Points:    pts,
		Triangles: make([][3]int, 0, len(d.Triangles)/3),
	}
	for i := 0; i+2 < len(d.Triangles); i += 3 {
		t := [3]int{d.Triangles[i], d.Triangles[i+1], d.Triangles[i+2]}

		a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
		o := orient([2]float64{a.X, a.Y}, [2]float64{b.X, b.Y}, [2]float64{c.X, c.Y})
		switch {
		case o == 0:
			continue
		case o < 0:
			t[1], t[2] = t[2], t[1]
		}
		tr.Triangles = append(tr.Triangles, t)
	}

	if len(tr.Triangles) == 0 {
		return nil, ErrDegenerate
	}
	return tr, nil
}

// orient is twice the signed area of abc, positive when counter-clockwise
func orient(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func collinear(pts []Point) bool {
	a := [2]float64{pts[0].X, pts[0].Y}

	// the farthest point from the first one gives a stable reference line
	far, farD := 0, 0.0
	for i, p := range pts[1:] {
		if d := math.Hypot(p.X-a[0], p.Y-a[1]); d > farD {
			far, farD = i+1, d
		}
	}
	b := [2]float64{pts[far].X, pts[far].Y}

	for _, p := range pts {
		// |orient| / |ab| is the distance from the line
		if math.Abs(orient(a, b, [2]float64{p.X, p.Y}))/farD > 1e-9*farD {
			return false
		}
	}
	return true
}

// Neighbours returns, for every point, the indices of the points sharing an
// edge with it, in ascending order.
func (tr *Triangulation) Neighbours() [][]int {
	adj := make([][]int, len(tr.Points))
	for _, t := range tr.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}
	for i := range adj {
		slices.Sort(adj[i])
		adj[i] = slices.Compact(adj[i])
	}
	return adj
}

// barycentric returns the barycentric coordinates of (x, y) in triangle t
func (tr *Triangulation) barycentric(t [3]int, x, y float64) (u, v, w float64) {
	p1, p2, p3 := tr.Points[t[0]], tr.Points[t[1]], tr.Points[t[2]]

	det := (p2.Y-p3.Y)*(p1.X-p3.X) + (p3.X-p2.X)*(p1.Y-p3.Y)
	u = ((p2.Y-p3.Y)*(x-p3.X) + (p3.X-p2.X)*(y-p3.Y)) / det
	v = ((p3.Y-p1.Y)*(x-p3.X) + (p1.X-p3.X)*(y-p3.Y)) / det
	w = 1 - u - v
	return u, v, w
}

// insideTolerance admits points on shared edges despite rounding
const insideTolerance = -1e-9

func inside(u, v, w float64) bool {
	return u >= insideTolerance && v >= insideTolerance && w >= insideTolerance
}
