package math3d

import (
	"image/color"
	"math"
)

// Color is a linear RGBA color with float64 components. Components are not
// clamped, so radiance values above one are representable.
type Color struct {
	R, G, B, A float64
}

// RGBA creates a new Color.
func RGBA(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

// RGB creates an opaque Color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// Gray returns an opaque color with all channels set to v.
func Gray(v float64) Color {
	return Color{v, v, v, 1}
}

// Black returns opaque black.
func Black() Color {
	return Color{0, 0, 0, 1}
}

// White returns opaque white.
func White() Color {
	return Color{1, 1, 1, 1}
}

// Add returns c + o (component-wise, alpha included).
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Sub returns c - o (component-wise, alpha included).
func (c Color) Sub(o Color) Color {
	return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A}
}

// Mul returns c * o (component-wise, alpha included).
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale returns c * s for every component.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// AddRGB adds the color channels of o to c and keeps c's alpha.
func (c Color) AddRGB(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A}
}

// ScaleRGB scales the color channels of c and keeps its alpha.
func (c Color) ScaleRGB(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A}
}

// Opaque returns c with alpha forced to 1.
func (c Color) Opaque() Color {
	return Color{c.R, c.G, c.B, 1}
}

// WithAlpha returns c with alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	return Color{c.R, c.G, c.B, a}
}

// IsBlack reports whether all color channels are zero. Alpha is ignored.
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Luminance returns the Rec. 709 luminance of the color channels.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// MaxDiffRGB returns the largest absolute channel difference between c and o.
func (c Color) MaxDiffRGB(o Color) float64 {
	return math.Max(math.Abs(c.R-o.R), math.Max(math.Abs(c.G-o.G), math.Abs(c.B-o.B)))
}

// DivSafe divides c by o channel-wise; a zero divisor yields zero for that
// channel.
func (c Color) DivSafe(o Color) Color {
	div := func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	}
	return Color{div(c.R, o.R), div(c.G, o.G), div(c.B, o.B), div(c.A, o.A)}
}

// Clamp01 clamps each component into [0,1].
func (c Color) Clamp01() Color {
	return Color{
		R: Clamp(c.R, 0, 1),
		G: Clamp(c.G, 0, 1),
		B: Clamp(c.B, 0, 1),
		A: Clamp(c.A, 0, 1),
	}
}

// ToRGBA converts to 8-bit sRGB-encoded color after multiplying by exposure.
// Alpha is stored linearly.
func (c Color) ToRGBA(exposure float64) color.RGBA {
	e := c.ScaleRGB(exposure).Clamp01()
	return color.RGBA{
		R: to8bit(linearToSRGB(e.R)),
		G: to8bit(linearToSRGB(e.G)),
		B: to8bit(linearToSRGB(e.B)),
		A: to8bit(e.A),
	}
}

// ColorFromRGBA converts an sRGB-encoded 8-bit color to linear.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{
		R: srgbToLinear(float64(c.R) / 255),
		G: srgbToLinear(float64(c.G) / 255),
		B: srgbToLinear(float64(c.B) / 255),
		A: float64(c.A) / 255,
	}
}

func to8bit(x float64) uint8 {
	return uint8(math.Round(255 * x))
}

func linearToSRGB(x float64) float64 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return 1.055*math.Pow(x, 1/2.4) - 0.055
}

func srgbToLinear(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}
