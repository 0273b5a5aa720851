package models

import (
	"image"
	"math"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/render"
	"github.com/taigrr/strand/pkg/shading"
)

// Material holds the glTF PBR metallic-roughness parameters of a mesh
// material.
type Material struct {
	Name       string
	BaseColor  [4]float64 // RGBA, linear
	Metallic   float64
	Roughness  float64
	AlphaBlend bool // alphaMode BLEND
	BaseMap    image.Image
	HasTexture bool
}

// DefaultMaterial returns the glTF default material.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{1, 1, 1, 1},
		Metallic:  1,
		Roughness: 1,
	}
}

const (
	dielectricF0 = 0.04
	maxExponent  = 10000.0
)

// Exponent maps roughness to a Phong exponent through the Beckmann
// equivalence 2/a^2 - 2 with a = roughness^2.
func (m *Material) Exponent() float64 {
	a := m.Roughness * m.Roughness
	if a <= 0 {
		return maxExponent
	}
	return math3d.Clamp(2/(a*a)-2, 1, maxExponent)
}

// Shading converts the material to Phong shading parameters. The base color
// texture, when present, becomes the diffuse source tinted by the base color.
func (m *Material) Shading() *shading.Material {
	base := math3d.RGB(m.BaseColor[0], m.BaseColor[1], m.BaseColor[2])

	var diffuse shading.ColorSource = shading.Const(base)
	if m.HasTexture && m.BaseMap != nil {
		tex := render.TextureFromImage(m.BaseMap)
		if base != math3d.White() {
			tex.Tint = base
		}
		diffuse = tex
	}

	metal := math3d.Clamp(m.Metallic, 0, 1)
	spec := math3d.RGB(
		math3d.Lerp(dielectricF0, base.R, metal),
		math3d.Lerp(dielectricF0, base.G, metal),
		math3d.Lerp(dielectricF0, base.B, metal),
	)

	out := &shading.Material{
		Name:     m.Name,
		Model:    shading.ModelPhong,
		Diffuse:  diffuse,
		Specular: shading.Const(spec),
		Exponent: shading.Scalar(m.Exponent()),
	}
	if m.AlphaBlend {
		t := 1 - math3d.Clamp(m.BaseColor[3], 0, 1)
		if t > 0 {
			out.Transparency = shading.Const(math3d.Gray(t))
		}
	}
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
