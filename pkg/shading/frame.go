package shading

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
)

// Frame is the local shading frame: normal, view vector and tangent.
type Frame struct {
	N math3d.Vec3
	V math3d.Vec3 // Toward the viewer
	T math3d.Vec3 // Fiber tangent; equals N on isotropic surfaces
	// Fiber is set when the frame was built from a fiber tangent.
	Fiber bool
}

// BuildFrame derives the shading frame for sp. On fibers the normal is
// synthesized: the geometric normal projected perpendicular to the tangent,
// blended back toward the geometric normal by how aligned it already was
// with the tangent.
func BuildFrame(sp ShadingPoint) Frame {
	f := Frame{
		N: sp.Normal,
		V: sp.Direction.Negate().Normalize(),
	}
	if !sp.Fiber || sp.Tangent.IsZero() {
		f.T = f.N
		return f
	}

	t := sp.Tangent.Normalize()
	ng := sp.Normal
	c := ng.Cross(t)
	nh := t.Cross(c)
	// Unlike a plain dot(Ng, T), the absolute value keeps an anti-parallel
	// tangent from flipping the normal away from Ng.
	blend := math.Abs(ng.Dot(t))

	n := nh.Lerp(ng, blend).Normalize()
	if n.IsZero() {
		n = ng
	}
	f.N = n
	f.T = t
	f.Fiber = true
	return f
}

// LightQuery returns the shading point handed to light sampling. Fibers have
// no meaningful facing direction, so the normal is cleared on a copy to keep
// the host from culling back-facing samples.
func (f Frame) LightQuery(sp ShadingPoint) ShadingPoint {
	if f.Fiber {
		sp.Normal = math3d.Vec3{}
	}
	return sp
}
