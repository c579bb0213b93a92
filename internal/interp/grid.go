package interp

import (
	"math"
)

// Grid samples the interpolant on a w by h lattice spanning e, endpoints
// included. Rows run from MaxY down to MinY, columns from MinX to MaxX.
// Cells outside the convex hull are NaN.
func (c *Cubic) Grid(e Extent, w, h int) [][]float64 {
	grid := make([][]float64, h)
	for r := range grid {
		grid[r] = make([]float64, w)
		for col := range grid[r] {
			grid[r][col] = math.NaN()
		}
	}
	if w < 2 || h < 2 {
		return grid
	}

	dx := e.Width() / float64(w-1)
	dy := e.Height() / float64(h-1)

	colX := func(col int) float64 { return e.MinX + float64(col)*dx }
	rowY := func(r int) float64 { return e.MaxY - float64(r)*dy }

	for i, t := range c.tr.Triangles {
		p1, p2, p3 := c.tr.Points[t[0]], c.tr.Points[t[1]], c.tr.Points[t[2]]

		minX := math.Min(p1.X, math.Min(p2.X, p3.X))
		maxX := math.Max(p1.X, math.Max(p2.X, p3.X))
		minY := math.Min(p1.Y, math.Min(p2.Y, p3.Y))
		maxY := math.Max(p1.Y, math.Max(p2.Y, p3.Y))

		c0 := clamp(int(math.Floor((minX-e.MinX)/dx)), 0, w-1)
		c1 := clamp(int(math.Ceil((maxX-e.MinX)/dx)), 0, w-1)
		r0 := clamp(int(math.Floor((e.MaxY-maxY)/dy)), 0, h-1)
		r1 := clamp(int(math.Ceil((e.MaxY-minY)/dy)), 0, h-1)

		for r := r0; r <= r1; r++ {
			y := rowY(r)
			for col := c0; col <= c1; col++ {
				if !math.IsNaN(grid[r][col]) {
					continue
				}
				x := colX(col)
				u, v, ww := c.tr.barycentric(t, x, y)
				if inside(u, v, ww) {
					grid[r][col] = c.patches[i].eval(u, v, ww)
				}
			}
		}
	}
	return grid
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
