package shading

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
)

const (
	// Results with alpha at or above this are treated as fully opaque.
	opaqueAlpha = 0.9999

	rootShadeLo, rootShadeHi = 0.4, 0.8
	opacityLo, opacityHi     = 0.3, 1.0
)

// RootDarkening is the diffuse multiplier along a fiber: 0.5 near the root
// rising to 1 toward the tip.
func RootDarkening(p float64) float64 {
	return 0.5 + 0.5*math3d.Smoothstep(rootShadeLo, rootShadeHi, p)
}

// FiberOpacity is the alpha of a fiber at parameter p: opaque at the root,
// fading out at the tip.
func FiberOpacity(p float64) float64 {
	return 1 - math3d.Smoothstep(opacityLo, opacityHi, p)
}

// cosine returns the clamped cosine between the shading normal and l.
// Hair recomputes it against the synthesized normal; surfaces use the
// host's value.
func (f Frame) cosine(s LightSample) float64 {
	d := s.DotNL
	if f.Fiber {
		d = f.N.Dot(s.Direction)
	}
	return math3d.Clamp(d, 0, 1)
}

// hairSpecular is the anisotropic highlight: sin(T,H) raised to half the
// exponent.
func hairSpecular(f Frame, l math3d.Vec3, exp float64) float64 {
	h := f.V.Add(l).Normalize()
	dth := f.T.Dot(h)
	return math.Pow(math.Max(0, 1-dth*dth), 0.5*exp)
}

// phongSpecular reflects the view direction about the normal and raises its
// alignment with the light direction to the exponent.
func phongSpecular(f Frame, l math3d.Vec3, exp float64) float64 {
	r := f.V.Negate().Reflect(f.N)
	c := r.Dot(l)
	if c <= 0 {
		return 0
	}
	return math.Pow(c, exp)
}

func specularFactor(m Model, f Frame, l math3d.Vec3, exp float64) float64 {
	if m == ModelHair {
		return hairSpecular(f, l, exp)
	}
	return phongSpecular(f, l, exp)
}
