package render

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// Scene is everything the host traces against.
type Scene struct {
	Camera     *Camera
	Background math3d.Color
	Lights     []Light

	// Sky is the irradiance of a uniform environment used for indirect
	// light. SkySamples visibility rays are cast per lookup; zero skips the
	// visibility test. SkyDistance limits occluder distance (0 = unbounded).
	Sky         math3d.Color
	SkySamples  int
	SkyDistance float64

	MaxDepth int
	// Default shades primitives that carry no material.
	Default *shading.Material

	prims []Primitive
	bvh   *bvhNode
	dirty bool
}

// NewScene returns an empty scene with a default camera and material.
func NewScene() *Scene {
	return &Scene{
		Camera:     NewCamera(),
		Background: math3d.Black(),
		MaxDepth:   8,
		dirty:      true,
		Default: &shading.Material{
			Name:     "default",
			Model:    shading.ModelPhong,
			Diffuse:  shading.Const(math3d.Gray(0.5)),
			Exponent: shading.Scalar(20),
		},
	}
}

// Add appends primitives. The acceleration structure is rebuilt lazily.
func (s *Scene) Add(prims ...Primitive) {
	s.prims = append(s.prims, prims...)
	s.dirty = true
}

// AddLight appends lights.
func (s *Scene) AddLight(lights ...Light) {
	s.Lights = append(s.Lights, lights...)
}

// Len returns the number of primitives.
func (s *Scene) Len() int { return len(s.prims) }

// Primitive returns primitive i.
func (s *Scene) Primitive(i int) Primitive { return s.prims[i] }

// Prepare builds the acceleration structure. It must be called before
// concurrent use.
func (s *Scene) Prepare() {
	if !s.dirty {
		return
	}
	items := make([]int, len(s.prims))
	for i := range items {
		items[i] = i
	}
	s.bvh = buildBVH(s.prims, items)
	s.dirty = false
}

// Intersect returns the nearest hit in (tmin, tmax).
func (s *Scene) Intersect(r Ray, tmin, tmax float64) (Hit, bool) {
	if s.dirty {
		s.Prepare()
	}
	return s.bvh.intersect(s.prims, r, tmin, tmax)
}

// Light returns the light with the given name.
func (s *Scene) Light(name string) (Light, bool) {
	for _, l := range s.Lights {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// Bounds returns the box around every primitive.
func (s *Scene) Bounds() AABB {
	b := EmptyAABB()
	for _, p := range s.prims {
		b = b.Union(p.Bounds())
	}
	return b
}

func (s *Scene) offset(i int) float64 {
	if i < 0 || i >= len(s.prims) {
		return surfaceOffset
	}
	return s.prims[i].Offset()
}

func (s *Scene) material(h Hit) *shading.Material {
	if h.Material != nil {
		return h.Material
	}
	return s.Default
}

func (s *Scene) skyDistance() float64 {
	if s.SkyDistance <= 0 {
		return math.Inf(1)
	}
	return s.SkyDistance
}
