package interp

import "math"

// Cubic is a C0 piecewise cubic interpolant over a Delaunay triangulation.
// Every triangle carries a cubic Bézier patch built from the vertex values
// and least-squares vertex gradients, so linear fields are reproduced exactly.
type Cubic struct {
	tr      *Triangulation
	patches []patch
}

// patch holds the ten Bézier ordinates of one triangle, b[i][j] with k = 3-i-j
type patch struct {
	b300, b030, b003 float64
	b210, b201       float64
	b120, b021       float64
	b102, b012       float64
	b111             float64
}

// NewCubic triangulates points and builds the interpolant
func NewCubic(points []Point) (*Cubic, error) {
	tr, err := Triangulate(points)
	if err != nil {
		return nil, err
	}

	grads := gradients(tr)

	c := &Cubic{
		tr:      tr,
		patches: make([]patch, len(tr.Triangles)),
	}
	for i, t := range tr.Triangles {
		c.patches[i] = newPatch(tr, grads, t)
	}
	return c, nil
}

// at evaluates the interpolant, NaN outside the convex hull of the samples
func (c *Cubic) at(x, y float64) float64 {
	for i, t := range c.tr.Triangles {
		u, v, w := c.tr.barycentric(t, x, y)
		if inside(u, v, w) {
			return c.patches[i].eval(u, v, w)
		}
	}
	return math.NaN()
}

func newPatch(tr *Triangulation, grads [][2]float64, t [3]int) patch {
	p1, p2, p3 := tr.Points[t[0]], tr.Points[t[1]], tr.Points[t[2]]
	g1, g2, g3 := grads[t[0]], grads[t[1]], grads[t[2]]

	// value plus a third of the directional derivative towards the other vertex
	edge := func(from Point, g [2]float64, to Point) float64 {
		return from.Value + (g[0]*(to.X-from.X)+g[1]*(to.Y-from.Y))/3
	}

	b := patch{
		b300: p1.Value,
		b030: p2.Value,
		b003: p3.Value,
		b210: edge(p1, g1, p2),
		b201: edge(p1, g1, p3),
		b120: edge(p2, g2, p1),
		b021: edge(p2, g2, p3),
		b102: edge(p3, g3, p1),
		b012: edge(p3, g3, p2),
	}

	e := (b.b210 + b.b201 + b.b120 + b.b021 + b.b102 + b.b012) / 6
	v := (b.b300 + b.b030 + b.b003) / 3
	b.b111 = e + (e-v)/2

	return b
}

func (b patch) eval(u, v, w float64) float64 {
	return u*u*u*b.b300 + v*v*v*b.b030 + w*w*w*b.b003 +
		3*u*u*v*b.b210 + 3*u*u*w*b.b201 +
		3*u*v*v*b.b120 + 3*v*v*w*b.b021 +
		3*u*w*w*b.b102 + 3*v*w*w*b.b012 +
		6*u*v*w*b.b111
}

// gradients estimates the gradient at every vertex by least squares over its
// neighbours. A vertex whose neighbours span no area gets a zero gradient.
func gradients(tr *Triangulation) [][2]float64 {
	adj := tr.Neighbours()
	grads := make([][2]float64, len(tr.Points))

	for i, p := range tr.Points {
		var sxx, sxy, syy, sxf, syf float64
		for _, j := range adj[i] {
			q := tr.Points[j]
			dx, dy, df := q.X-p.X, q.Y-p.Y, q.Value-p.Value
			sxx += dx * dx
			sxy += dx * dy
			syy += dy * dy
			sxf += dx * df
			syf += dy * df
		}

		det := sxx*syy - sxy*sxy
		if math.Abs(det) <= 1e-12*sxx*syy {
			continue
		}
		grads[i] = [2]float64{
			(syy*sxf - sxy*syf) / det,
			(sxx*syf - sxy*sxf) / det,
		}
	}
	return grads
}
