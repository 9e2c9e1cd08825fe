package termview

import "github.com/lucasb-eyer/go-colorful"

// colorMode distinguishes how a Color's value should be interpreted.
type colorMode uint8

const (
	colorDefault colorMode = iota
	colorIndexed
	colorRGB
)

// Color is a terminal SGR color, resolved lazily to RGB for rendering.
type Color struct {
	mode    colorMode
	index   int
	r, g, b uint8
}

// defaultColor renders as whatever the host terminal considers its
// default foreground or background.
var defaultColor = Color{mode: colorDefault}

func indexedColor(idx int) Color {
	return Color{mode: colorIndexed, index: idx}
}

func rgbColor(r, g, b uint8) Color {
	return Color{mode: colorRGB, r: r, g: g, b: b}
}

// IsDefault reports whether c carries no explicit color.
func (c Color) IsDefault() bool { return c.mode == colorDefault }

// Resolve returns the RGB value of c as a go-colorful Color, using the
// standard xterm 256-color palette for indexed colors.
func (c Color) Resolve() colorful.Color {
	switch c.mode {
	case colorRGB:
		return colorful.Color{R: float64(c.r) / 255, G: float64(c.g) / 255, B: float64(c.b) / 255}
	case colorIndexed:
		r, g, b := xterm256Palette[c.index&0xff]
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	default:
		return colorful.Color{R: 0, G: 0, B: 0}
	}
}

// Hex returns c resolved to a "#rrggbb" string, suitable for
// lipgloss.Color, or "" if c carries no explicit color.
func (c Color) Hex() string {
	if c.IsDefault() {
		return ""
	}
	return c.Resolve().Hex()
}

// xterm256Palette maps the 256 standard xterm color indices to RGB.
// Indices 0-15 are the standard/bright 16, 16-231 the 6x6x6 color cube,
// 232-255 the grayscale ramp.
var xterm256Palette = buildXterm256Palette()

func buildXterm256Palette() [256][3]uint8 {
	var p [256][3]uint8
	standard := [16][3]uint8{
		{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
		{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
		{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
		{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
	}
	for i, c := range standard {
		p[i] = c
	}

	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[idx] = [3]uint8{steps[r], steps[g], steps[b]}
				idx++
			}
		}
	}

	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p[232+i] = [3]uint8{v, v, v}
	}
	return p
}
