// Package render is a small ray tracer that hosts the shading evaluator:
// it intersects rays with spheres, triangles and hair fibers, samples lights
// with shadow testing, and renders named passes in parallel.
package render

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// Ray is a half line with a unit direction.
type Ray struct {
	Origin math3d.Vec3
	Dir    math3d.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Hit describes a ray-primitive intersection.
type Hit struct {
	T       float64
	Point   math3d.Vec3
	Normal  math3d.Vec3 // Unit, facing the ray origin
	Tangent math3d.Vec3
	UV      math3d.Vec2

	Fiber      bool
	FiberParam float64

	Material *shading.Material
	Index    int // Primitive index in the scene
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math3d.Vec3
}

// EmptyAABB returns a box that contains nothing.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: math3d.V3(inf, inf, inf), Max: math3d.V3(-inf, -inf, -inf)}
}

// Union returns the smallest box containing a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() math3d.Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Hit reports whether r overlaps the box within [tmin, tmax] (slab test).
func (a AABB) Hit(r Ray, tmin, tmax float64) bool {
	lo := [3]float64{a.Min.X, a.Min.Y, a.Min.Z}
	hi := [3]float64{a.Max.X, a.Max.Y, a.Max.Z}
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	for i := range 3 {
		inv := 1 / d[i]
		t0 := (lo[i] - o[i]) * inv
		t1 := (hi[i] - o[i]) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmax < tmin {
			return false
		}
	}
	return true
}

// faceForward flips n to face against the ray direction.
func faceForward(n, dir math3d.Vec3) math3d.Vec3 {
	if n.Dot(dir) > 0 {
		return n.Negate()
	}
	return n
}
