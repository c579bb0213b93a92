package app

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme represents a predefined colour scheme for surface values
type ColorTheme string

const (
	ViridisTheme   ColorTheme = "viridis"   // Dark purple -> teal -> yellow
	PlasmaTheme    ColorTheme = "plasma"    // Dark blue -> magenta -> yellow
	ClassicTheme   ColorTheme = "classic"   // Blue -> red
	GrayscaleTheme ColorTheme = "grayscale" // Black -> white
	JungleTheme    ColorTheme = "jungle"    // Dark green -> yellow
	ThermalTheme   ColorTheme = "thermal"   // Black -> red -> yellow -> white

	DefaultColorMapSize = 256
)

var validColorThemes = map[ColorTheme]struct{}{
	ViridisTheme:   {},
	PlasmaTheme:    {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
}

// ParseColorTheme validates a theme name, case-insensitively
func ParseColorTheme(s string) (ColorTheme, error) {
	t := ColorTheme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validColorThemes[t]; !ok {
		return "", fmt.Errorf("invalid colour theme: %s", s)
	}
	return t, nil
}

// NoDataColor marks cells outside the sampled area
var NoDataColor = color.RGBA{}

// ValueBounds is the closed value range covered by a colour map
type ValueBounds struct {
	Min, Max float64
}

// BoundsOf returns the range of the finite values in grid. ok is false when
// there are none.
func BoundsOf(grid [][]float64) (b ValueBounds, ok bool) {
	b = ValueBounds{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, row := range grid {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			b.Min = math.Min(b.Min, v)
			b.Max = math.Max(b.Max, v)
			ok = true
		}
	}
	return b, ok
}

// Span returns Max - Min
func (b ValueBounds) Span() float64 {
	return b.Max - b.Min
}

// ColorMapper maps values to colours through a pre-computed lookup table
type ColorMapper struct {
	colorMap      []color.Color
	bounds        ValueBounds
	theme         func(float64) color.Color
	size          int
	valuePerIndex float64
}

func NewColorMapper(size int, theme ColorTheme, bounds ValueBounds) *ColorMapper {
	if size < 2 {
		size = DefaultColorMapSize
	}

	cm := &ColorMapper{
		colorMap: make([]color.Color, size),
		theme:    GetColorTheme(theme),
		size:     size,
	}
	for i := 0; i < size; i++ {
		cm.colorMap[i] = cm.theme(float64(i) / float64(size-1))
	}

	cm.UpdateBounds(bounds)
	return cm
}

func (cm *ColorMapper) UpdateBounds(bounds ValueBounds) {
	cm.bounds = bounds
	cm.valuePerIndex = bounds.Span() / float64(cm.size-1)
}

func (cm *ColorMapper) Bounds() ValueBounds {
	return cm.bounds
}

// Color returns the colour for v. Values outside the bounds are clamped,
// NaN yields NoDataColor.
func (cm *ColorMapper) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return NoDataColor
	}
	if cm.valuePerIndex <= 0 {
		return cm.colorMap[cm.size/2]
	}

	v = math.Max(cm.bounds.Min, math.Min(v, cm.bounds.Max))

	index := int(math.Round((v - cm.bounds.Min) / cm.valuePerIndex))
	if index < 0 {
		index = 0
	} else if index >= cm.size {
		index = cm.size - 1
	}
	return cm.colorMap[index]
}

// HSV represents a color in HSV color space
type HSV struct {
	H float64 // Hue [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value [0-1]
}

// RGB converts HSV color space to RGB
func (hsv HSV) RGB() color.Color {
	return colorful.Hsv(math.Mod(hsv.H, 360), hsv.S, hsv.V).Clamped()
}

var (
	viridisStops = mustHexStops(
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	)
	plasmaStops = mustHexStops(
		"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
		"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
	)
)

func mustHexStops(hex ...string) []colorful.Color {
	stops := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		stops[i] = c
	}
	return stops
}

// gradient blends evenly spaced stops in CIE L*a*b* space
func gradient(stops []colorful.Color) func(float64) color.Color {
	return func(t float64) color.Color {
		t = math.Max(0, math.Min(1, t))
		pos := t * float64(len(stops)-1)
		i := int(pos)
		if i >= len(stops)-1 {
			return stops[len(stops)-1].Clamped()
		}
		return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped()
	}
}

// GetColorTheme returns predefined color themes
func GetColorTheme(theme ColorTheme) func(float64) color.Color {
	switch theme {
	case PlasmaTheme:
		return gradient(plasmaStops)

	case ClassicTheme: // Blue -> Red
		return func(v float64) color.Color {
			return HSV{
				H: 240 - (v * 240),
				S: 0.9 + (v * 0.1),
				V: 0.35 + math.Pow(v, 0.7)*0.65,
			}.RGB()
		}

	case GrayscaleTheme: // Black -> White
		return func(v float64) color.Color {
			g := uint8(math.Pow(v, 0.7) * 255)
			return color.RGBA{R: g, G: g, B: g, A: 0xff}
		}

	case JungleTheme: // Dark Green -> Yellow
		return func(v float64) color.Color {
			return HSV{
				H: 120 - (v * 60),
				S: 1.0,
				V: 0.3 + (math.Pow(v, 0.6) * 0.7),
			}.RGB()
		}

	case ThermalTheme: // Black -> Red -> Yellow -> White
		return func(v float64) color.Color {
			if v < 0.33 {
				return color.RGBA{R: uint8(v * 3 * 255), A: 0xff}
			} else if v < 0.66 {
				return color.RGBA{R: 255, G: uint8((v - 0.33) * 3 * 255), A: 0xff}
			}
			return color.RGBA{R: 255, G: 255, B: uint8(math.Min(1, (v-0.66)*3) * 255), A: 0xff}
		}

	default:
		return gradient(viridisStops)
	}
}
