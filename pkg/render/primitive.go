package render

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// Primitive is a shape the tracer can intersect.
type Primitive interface {
	Intersect(r Ray, tmin, tmax float64) (Hit, bool)
	Bounds() AABB
	// Offset is the distance secondary rays leaving the surface skip to
	// avoid hitting it again.
	Offset() float64
}

const surfaceOffset = 1e-5

// Sphere is an analytic sphere.
type Sphere struct {
	Center   math3d.Vec3
	Radius   float64
	Material *shading.Material
}

// Intersect solves the ray-sphere quadratic for the nearest root in range.
func (s *Sphere) Intersect(r Ray, tmin, tmax float64) (Hit, bool) {
	oc := r.Origin.Sub(s.Center)
	halfB := oc.Dot(r.Dir)
	c := oc.LenSq() - s.Radius*s.Radius
	disc := halfB*halfB - c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	t := -halfB - sq
	if t < tmin || t > tmax {
		t = -halfB + sq
		if t < tmin || t > tmax {
			return Hit{}, false
		}
	}

	p := r.At(t)
	outward := p.Sub(s.Center).Div(s.Radius)
	return Hit{
		T:        t,
		Point:    p,
		Normal:   faceForward(outward, r.Dir),
		Tangent:  math3d.V3(-outward.Z, 0, outward.X).Normalize(),
		UV:       sphereUV(outward),
		Material: s.Material,
	}, true
}

func (s *Sphere) Bounds() AABB {
	r := math3d.V3(s.Radius, s.Radius, s.Radius)
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Offset() float64 { return surfaceOffset * math.Max(1, s.Radius) }

func sphereUV(n math3d.Vec3) math3d.Vec2 {
	u := 0.5 + math.Atan2(n.Z, n.X)/(2*math.Pi)
	v := 0.5 + math.Asin(math3d.Clamp(n.Y, -1, 1))/math.Pi
	return math3d.V2(u, v)
}

// Triangle is a mesh face with per-vertex normals and UVs.
type Triangle struct {
	V        [3]math3d.Vec3
	N        [3]math3d.Vec3 // Zero means use the face normal
	UV       [3]math3d.Vec2
	Material *shading.Material
}

// Intersect uses the Möller-Trumbore algorithm.
func (tr *Triangle) Intersect(r Ray, tmin, tmax float64) (Hit, bool) {
	const eps = 1e-12
	e1 := tr.V[1].Sub(tr.V[0])
	e2 := tr.V[2].Sub(tr.V[0])
	h := r.Dir.Cross(e2)
	a := e1.Dot(h)
	if a > -eps && a < eps {
		return Hit{}, false
	}
	f := 1 / a
	s := r.Origin.Sub(tr.V[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}
	q := s.Cross(e1)
	v := f * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}
	t := f * e2.Dot(q)
	if t < tmin || t > tmax {
		return Hit{}, false
	}

	w := 1 - u - v
	n := tr.N[0].Scale(w).Add(tr.N[1].Scale(u)).Add(tr.N[2].Scale(v)).Normalize()
	if n.IsZero() {
		n = e1.Cross(e2).Normalize()
	}
	uv := tr.UV[0].Scale(w).Add(tr.UV[1].Scale(u)).Add(tr.UV[2].Scale(v))
	return Hit{
		T:        t,
		Point:    r.At(t),
		Normal:   faceForward(n, r.Dir),
		Tangent:  e1.Normalize(),
		UV:       uv,
		Material: tr.Material,
	}, true
}

func (tr *Triangle) Bounds() AABB {
	return AABB{
		Min: tr.V[0].Min(tr.V[1]).Min(tr.V[2]),
		Max: tr.V[0].Max(tr.V[1]).Max(tr.V[2]),
	}
}

func (tr *Triangle) Offset() float64 { return surfaceOffset }

// Fiber is one segment of a hair strand: a tapered tube between P0 and P1
// whose fiber parameter runs from S0 to S1.
type Fiber struct {
	P0, P1   math3d.Vec3
	R0, R1   float64
	S0, S1   float64
	Material *shading.Material
}

// Intersect finds the closest approach between the ray and the segment axis
// and accepts it when it falls inside the tube radius. This treats the fiber
// as a ribbon facing the ray, which suits strands a few pixels wide or less.
func (f *Fiber) Intersect(r Ray, tmin, tmax float64) (Hit, bool) {
	axis := f.P1.Sub(f.P0)
	c := axis.LenSq()
	if c == 0 {
		return Hit{}, false
	}
	w := r.Origin.Sub(f.P0)
	b := r.Dir.Dot(axis)
	d := r.Dir.Dot(w)
	e := axis.Dot(w)
	den := c - b*b
	if den <= 1e-12*c {
		return Hit{}, false
	}

	s := math3d.Clamp((e-b*d)/den, 0, 1)
	onAxis := f.P0.Add(axis.Scale(s))
	t := onAxis.Sub(r.Origin).Dot(r.Dir)
	if t < tmin || t > tmax {
		return Hit{}, false
	}
	radius := math3d.Lerp(f.R0, f.R1, s)
	toRay := r.At(t).Sub(onAxis)
	dist := toRay.Len()
	if dist > radius {
		return Hit{}, false
	}

	tangent := axis.Normalize()
	// Normal points from the axis back toward the viewer, perpendicular to
	// the tangent.
	back := r.Dir.Negate()
	n := back.Sub(tangent.Scale(back.Dot(tangent))).Normalize()
	if n.IsZero() {
		n = tangent.Orthogonal()
	}
	return Hit{
		T:          t,
		Point:      onAxis.Add(n.Scale(radius)),
		Normal:     n,
		Tangent:    tangent,
		UV:         math3d.V2(math3d.Lerp(f.S0, f.S1, s), dist/math.Max(radius, 1e-12)),
		Fiber:      true,
		FiberParam: math3d.Lerp(f.S0, f.S1, s),
		Material:   f.Material,
	}, true
}

func (f *Fiber) Bounds() AABB {
	r0 := math3d.V3(f.R0, f.R0, f.R0)
	r1 := math3d.V3(f.R1, f.R1, f.R1)
	return AABB{
		Min: f.P0.Sub(r0).Min(f.P1.Sub(r1)),
		Max: f.P0.Add(r0).Max(f.P1.Add(r1)),
	}
}

// Offset skips the full tube width so rays leaving a strand do not graze it.
func (f *Fiber) Offset() float64 { return 4 * math.Max(f.R0, f.R1) }
