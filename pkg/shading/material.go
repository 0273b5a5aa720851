package shading

import "github.com/taigrr/strand/pkg/math3d"

// ColorSource yields a color parameter for a shading point, e.g. a constant
// or a texture lookup.
type ColorSource interface {
	ColorAt(sp ShadingPoint) math3d.Color
}

// ScalarSource yields a scalar parameter for a shading point.
type ScalarSource interface {
	ScalarAt(sp ShadingPoint) float64
}

// Const is a constant color parameter.
type Const math3d.Color

func (c Const) ColorAt(ShadingPoint) math3d.Color { return math3d.Color(c) }

// Scalar is a constant scalar parameter.
type Scalar float64

func (s Scalar) ScalarAt(ShadingPoint) float64 { return float64(s) }

// Material binds parameter sources to a reflectance model. A nil source
// resolves to the zero value, except Ambience: it multiplies Ambient in the
// Phong model and defaults to white there, while for hair it is the base color
// itself and defaults to black.
type Material struct {
	Name  string
	Model Model

	Ambience     ColorSource
	Ambient      ColorSource
	Diffuse      ColorSource
	Specular     ColorSource
	Exponent     ScalarSource
	Transparency ColorSource

	LightMode  LightMode
	LightNames []string
}

// Resolve evaluates every parameter source at sp.
func (m *Material) Resolve(sp ShadingPoint) Params {
	return Params{
		Model:        m.Model,
		Ambience:     colorAt(m.Ambience, sp, defaultAmbience(m.Model)),
		Ambient:      colorAt(m.Ambient, sp, math3d.Color{}),
		Diffuse:      colorAt(m.Diffuse, sp, math3d.Color{}),
		Specular:     colorAt(m.Specular, sp, math3d.Color{}),
		Exponent:     scalarAt(m.Exponent, sp),
		Transparency: colorAt(m.Transparency, sp, math3d.Color{}),
		LightMode:    m.LightMode,
		LightNames:   m.LightNames,
	}
}

// Shade resolves the material at sp and evaluates it.
func (e *Evaluator) Shade(sp ShadingPoint, m *Material) (math3d.Color, bool) {
	return e.Evaluate(sp, m.Resolve(sp))
}

func defaultAmbience(m Model) math3d.Color {
	if m == ModelHair {
		return math3d.Black()
	}
	return math3d.White()
}

func colorAt(src ColorSource, sp ShadingPoint, def math3d.Color) math3d.Color {
	if src == nil {
		return def
	}
	return src.ColorAt(sp)
}

func scalarAt(src ScalarSource, sp ShadingPoint) float64 {
	if src == nil {
		return 0
	}
	return src.ScalarAt(sp)
}
