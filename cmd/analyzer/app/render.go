package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

const (
	dpi            = 72.0
	fontSize       = 12.0
	titleFontSize  = 16.0
	tickMarkLength = 5
	pixelsPerTick  = 80.0
	colorBarWidth  = 18
	colorBarGap    = 16
	markerRadius   = 5.0
	starRadius     = 11.0

	// Default border sizes in pixels
	defaultTopBorder    = 48
	defaultLeftBorder   = 64
	defaultBottomBorder = 56
	defaultRightBorder  = 120
)

var (
	sampleColor    = color.RGBA{R: 0xe0, G: 0x1b, B: 0x24, A: 0xff}
	referenceColor = color.RGBA{R: 0xff, G: 0xe0, B: 0x00, A: 0xff}
	edgeColor      = color.Black
)

// BorderConfig defines the sizes of white space around the surface
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the Y scale
	Bottom int // Space for the X scale and its label
	Right  int // Space for the colour bar
}

// RenderConfig holds all configuration options for heatmap rendering
type RenderConfig struct {
	FontSize     float64    // Font size in points
	ColorTheme   ColorTheme // Color scheme for surface values
	ColorMapSize int        // Number of colors in gradient (0 for default)

	BorderConfig BorderConfig
}

// HeatmapRenderer draws interpolated surfaces with scales, sample markers
// and a colour bar
type HeatmapRenderer struct {
	config RenderConfig
	font   *truetype.Font
}

// NewHeatmapRenderer creates a renderer with the given configuration
func NewHeatmapRenderer(config RenderConfig) (*HeatmapRenderer, error) {
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.ColorMapSize == 0 {
		config.ColorMapSize = DefaultColorMapSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	return &HeatmapRenderer{config: config, font: parsedFont}, nil
}

// Render creates an image of the surface with annotations
func (r *HeatmapRenderer) Render(s *Surface) (*image.RGBA, error) {
	if s.Width() < 2 || s.Height() < 2 {
		return nil, fmt.Errorf("surface too small: %dx%d", s.Width(), s.Height())
	}

	b := r.config.BorderConfig
	img := image.NewRGBA(image.Rect(0, 0, s.Width()+b.Left+b.Right, s.Height()+b.Top+b.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(b.Left, b.Top, b.Left+s.Width(), b.Top+s.Height())
	cm := NewColorMapper(r.config.ColorMapSize, r.config.ColorTheme, s.Bounds)

	r.renderSurface(img, area, s, cm)
	drawFrame(img, area)

	proj := newProjection(s, area)
	if x, y, ok := proj.toPixel(s.Reference); ok {
		drawStar(img, x, y, starRadius)
	}
	for _, p := range s.Samples {
		if x, y, ok := proj.toPixel(p); ok {
			drawDisc(img, x, y, markerRadius, sampleColor)
		}
	}

	bar := image.Rect(area.Max.X+colorBarGap, area.Min.Y, area.Max.X+colorBarGap+colorBarWidth, area.Max.Y)
	renderColorBar(img, bar, cm)

	ann, err := r.newAnnotator(img)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	ops := []struct {
		msg string
		fn  func() error
	}{
		{"drawing title", func() error { return ann.drawTitle(s.Title, area) }},
		{"drawing X scale", func() error { return ann.drawXScale(area, proj) }},
		{"drawing Y scale", func() error { return ann.drawYScale(area, proj) }},
		{"drawing colour bar labels", func() error { return ann.drawColorBarLabels(bar, cm.Bounds(), s.Unit) }},
	}
	for _, op := range ops {
		if err = op.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return img, nil
}

func (r *HeatmapRenderer) renderSurface(img *image.RGBA, area image.Rectangle, s *Surface, cm *ColorMapper) {
	for y, row := range s.Grid {
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			img.Set(area.Min.X+x, area.Min.Y+y, cm.Color(v))
		}
	}
}

func renderColorBar(img *image.RGBA, bar image.Rectangle, cm *ColorMapper) {
	bounds := cm.Bounds()
	rows := bar.Dy() - 1
	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		v := bounds.Max - float64(y-bar.Min.Y)/float64(rows)*bounds.Span()
		c := cm.Color(v)
		for x := bar.Min.X; x < bar.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	drawFrame(img, bar)
}

// projection maps survey coordinates to image pixels
type projection struct {
	s    *Surface
	area image.Rectangle
}

func newProjection(s *Surface, area image.Rectangle) projection {
	return projection{s: s, area: area}
}

func (p projection) x(v float64) float64 {
	e := p.s.Extent
	return float64(p.area.Min.X) + (v-e.MinX)/e.Width()*float64(p.area.Dx()-1)
}

func (p projection) y(v float64) float64 {
	e := p.s.Extent
	return float64(p.area.Min.Y) + (e.MaxY-v)/e.Height()*float64(p.area.Dy()-1)
}

func (p projection) toPixel(pos survey.Position) (x, y float64, ok bool) {
	e := p.s.Extent
	if pos.X < e.MinX || pos.X > e.MaxX || pos.Y < e.MinY || pos.Y > e.MaxY {
		return 0, 0, false
	}
	return p.x(pos.X), p.y(pos.Y), true
}

func drawFrame(img *image.RGBA, r image.Rectangle) {
	for x := r.Min.X - 1; x <= r.Max.X; x++ {
		img.Set(x, r.Min.Y-1, edgeColor)
		img.Set(x, r.Max.Y, edgeColor)
	}
	for y := r.Min.Y - 1; y <= r.Max.Y; y++ {
		img.Set(r.Min.X-1, y, edgeColor)
		img.Set(r.Max.X, y, edgeColor)
	}
}

// drawDisc draws a filled circle with a one pixel edge
func drawDisc(img *image.RGBA, cx, cy, radius float64, fill color.Color) {
	for y := int(math.Floor(cy - radius)); y <= int(math.Ceil(cy+radius)); y++ {
		for x := int(math.Floor(cx - radius)); x <= int(math.Ceil(cx+radius)); x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			switch {
			case d <= radius-1.2:
				img.Set(x, y, fill)
			case d <= radius:
				img.Set(x, y, edgeColor)
			}
		}
	}
}

// drawStar draws a filled five-pointed star pointing up
func drawStar(img *image.RGBA, cx, cy, radius float64) {
	var poly [10][2]float64
	for i := range poly {
		r := radius
		if i%2 == 1 {
			r = radius * 0.4
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		poly[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}

	for y := int(math.Floor(cy - radius)); y <= int(math.Ceil(cy+radius)); y++ {
		for x := int(math.Floor(cx - radius)); x <= int(math.Ceil(cx+radius)); x++ {
			px, py := float64(x), float64(y)
			if !insidePolygon(poly[:], px, py) {
				continue
			}
			if distanceToPolygon(poly[:], px, py) < 1.2 {
				img.Set(x, y, edgeColor)
			} else {
				img.Set(x, y, referenceColor)
			}
		}
	}
}

// insidePolygon is an even-odd ray casting test
func insidePolygon(poly [][2]float64, x, y float64) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}

func distanceToPolygon(poly [][2]float64, x, y float64) float64 {
	best := math.Inf(1)
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		best = math.Min(best, distanceToSegment(poly[j], poly[i], x, y))
	}
	return best
}

func distanceToSegment(a, b [2]float64, x, y float64) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	t := ((x-a[0])*dx + (y-a[1])*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(x-(a[0]+t*dx), y-(a[1]+t*dy))
}

type annotator struct {
	img       *image.RGBA
	context   *freetype.Context
	size      float64
	face      font.Face
	titleFace font.Face
}

func (r *HeatmapRenderer) newAnnotator(img *image.RGBA) (*annotator, error) {
	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(r.font)
	ctx.SetFontSize(r.config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)

	return &annotator{
		img:     img,
		context: ctx,
		size:    r.config.FontSize,
		face: truetype.NewFace(r.font, &truetype.Options{
			Size:    r.config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
		titleFace: truetype.NewFace(r.font, &truetype.Options{
			Size:    titleFontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	_ = a.titleFace.Close()
	return a.face.Close()
}

func (a *annotator) fontHeight(face font.Face) int {
	metrics := face.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawString(label string, x, y int) error {
	_, err := a.context.DrawString(label, freetype.Pt(x, y))
	return err
}

func (a *annotator) drawTitle(title string, area image.Rectangle) error {
	if title == "" {
		return nil
	}

	a.context.SetFontSize(titleFontSize)
	defer a.context.SetFontSize(a.size)

	width := font.MeasureString(a.titleFace, title).Round()
	x := area.Min.X + (area.Dx()-width)/2
	y := (area.Min.Y + a.fontHeight(a.titleFace)) / 2
	return a.drawString(title, x, y)
}

func (a *annotator) drawXScale(area image.Rectangle, p projection) error {
	e := p.s.Extent
	step := niceStep(e.Width(), area.Dx())
	textY := area.Max.Y + tickMarkLength + a.fontHeight(a.face) + 2

	for _, v := range ticks(e.MinX, e.MaxX, step) {
		x := int(math.Round(p.x(v)))
		for y := area.Max.Y; y < area.Max.Y+tickMarkLength; y++ {
			a.img.Set(x, y, edgeColor)
		}

		label := formatMetres(v)
		width := font.MeasureString(a.face, label).Round()
		if err := a.drawString(label, x-width/2, textY); err != nil {
			return fmt.Errorf("drawing X label: %w", err)
		}
	}

	caption := "X (metres)"
	width := font.MeasureString(a.face, caption).Round()
	return a.drawString(caption, area.Min.X+(area.Dx()-width)/2, textY+a.fontHeight(a.face)+4)
}

func (a *annotator) drawYScale(area image.Rectangle, p projection) error {
	e := p.s.Extent
	step := niceStep(e.Height(), area.Dy())
	metrics := a.face.Metrics()
	fontHeight := a.fontHeight(a.face)

	for _, v := range ticks(e.MinY, e.MaxY, step) {
		y := int(math.Round(p.y(v)))
		for x := area.Min.X - tickMarkLength; x < area.Min.X; x++ {
			a.img.Set(x, y, edgeColor)
		}

		label := formatMetres(v)
		width := font.MeasureString(a.face, label).Round()
		textY := y + fontHeight/2 - metrics.Descent.Round()
		if err := a.drawString(label, area.Min.X-tickMarkLength-3-width, textY); err != nil {
			return fmt.Errorf("drawing Y label: %w", err)
		}
	}

	return a.drawString("Y (m)", 4, area.Min.Y-6)
}

func (a *annotator) drawColorBarLabels(bar image.Rectangle, b ValueBounds, unit string) error {
	metrics := a.face.Metrics()
	fontHeight := a.fontHeight(a.face)

	labels := []struct {
		v float64
		y int
	}{
		{b.Max, bar.Min.Y},
		{(b.Min + b.Max) / 2, bar.Min.Y + bar.Dy()/2},
		{b.Min, bar.Max.Y - 1},
	}
	for _, l := range labels {
		for x := bar.Max.X; x < bar.Max.X+tickMarkLength; x++ {
			a.img.Set(x, l.y, edgeColor)
		}
		textY := l.y + fontHeight/2 - metrics.Descent.Round()
		if err := a.drawString(fmt.Sprintf("%0.1f", l.v), bar.Max.X+tickMarkLength+3, textY); err != nil {
			return fmt.Errorf("drawing colour bar label: %w", err)
		}
	}

	return a.drawString(unit, bar.Min.X, bar.Min.Y-6)
}

// niceStep picks a 1-2-5 step giving roughly one tick per pixelsPerTick pixels
func niceStep(span float64, pixels int) float64 {
	if span <= 0 {
		return 1
	}
	desired := math.Max(2, float64(pixels)/pixelsPerTick)
	raw := span / desired
	mag := math.Pow(10, math.Floor(math.Log10(raw)))

	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

// ticks returns the multiples of step within [lo, hi]
func ticks(lo, hi, step float64) []float64 {
	var out []float64
	first := math.Ceil(lo/step - 1e-9)
	for i := first; i*step <= hi+step*1e-9; i++ {
		v := i * step
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func formatMetres(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}
