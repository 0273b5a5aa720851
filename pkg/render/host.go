package render

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// maxShadowHits bounds the number of translucent surfaces a shadow ray
// passes through before it is treated as blocked.
const maxShadowHits = 64

// Host implements shading.Host for one worker. It is not safe for
// concurrent use; each goroutine owns its own Host.
type Host struct {
	scene *Scene
	rng   *rand.Rand
}

var _ shading.Host = (*Host)(nil)

// NewHost creates a host with a deterministic random stream.
func NewHost(scene *Scene, seed, stream uint64) *Host {
	return &Host{scene: scene, rng: rand.New(rand.NewPCG(seed, stream))}
}

// Trace shades the nearest hit along a camera ray and reports passes to
// out, which may be nil. A miss returns the background.
func (h *Host) Trace(r Ray, out shading.PassWriter) (math3d.Color, bool) {
	return h.trace(r, 0, shading.RayEye, 0, out)
}

func (h *Host) trace(r Ray, tmin float64, typ shading.RayType, depth int, out shading.PassWriter) (math3d.Color, bool) {
	hit, ok := h.scene.Intersect(r, tmin, math.Inf(1))
	if !ok {
		return h.scene.Background, false
	}
	sp := point(hit, r, typ, depth)
	e := shading.Evaluator{Host: h, Passes: out}
	c, ok := e.Shade(sp, h.scene.material(hit))
	if !ok {
		return h.scene.Background, true
	}
	return c, true
}

func point(hit Hit, r Ray, typ shading.RayType, depth int) shading.ShadingPoint {
	return shading.ShadingPoint{
		Position:   hit.Point,
		Normal:     hit.Normal,
		Tangent:    hit.Tangent,
		Direction:  r.Dir,
		UV:         hit.UV,
		Fiber:      hit.Fiber,
		FiberParam: hit.FiberParam,
		Type:       typ,
		Depth:      depth,
		Primitive:  hit.Index,
	}
}

// Lights applies light linking: the instance list is every scene light.
func (h *Host) Lights(sp shading.ShadingPoint, mode shading.LightMode, names []string) []shading.Light {
	if mode == shading.LightsNone {
		return nil
	}
	var out []shading.Light
	for _, l := range h.scene.Lights {
		named := slices.Contains(names, l.Name())
		switch mode {
		case shading.LightsInclusive:
			if !named {
				continue
			}
		case shading.LightsExclusive:
			if named {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// SampleLight starts a session over the light's samples. Samples behind the
// point's normal are skipped unless the normal is zero.
func (h *Host) SampleLight(sp shading.ShadingPoint, light shading.Light) shading.SampleSession {
	l, ok := light.(Light)
	if !ok {
		return &lightSession{}
	}
	return &lightSession{host: h, sp: sp, light: l, n: l.SampleCount()}
}

type lightSession struct {
	host  *Host
	sp    shading.ShadingPoint
	light Light
	n     int
	next  int
	count int
}

func (s *lightSession) Next() (shading.LightSample, bool) {
	for s.next < s.n {
		i := s.next
		s.next++
		dir, dist, radiance, ok := s.light.sample(s.sp.Position, i, s.n, s.host.rng)
		if !ok {
			continue
		}
		dot := s.sp.Normal.Dot(dir)
		if !s.sp.Normal.IsZero() && dot <= 0 {
			continue
		}
		vis := s.host.transmittance(s.sp, dir, dist)
		s.count++
		return shading.LightSample{
			Radiance:   radiance.Mul(vis.Opaque()),
			Unshadowed: radiance,
			Direction:  dir,
			DotNL:      dot,
		}, true
	}
	return shading.LightSample{}, false
}

func (s *lightSession) Count() int { return s.count }

// transmittance walks a shadow ray toward a light, letting each surface on
// the way attenuate the carried color through the evaluator.
func (h *Host) transmittance(sp shading.ShadingPoint, dir math3d.Vec3, dist float64) math3d.Color {
	r := Ray{Origin: sp.Position, Dir: dir}
	c := math3d.White()
	tmin := h.scene.offset(sp.Primitive)
	tmax := dist * (1 - 1e-6)
	e := shading.Evaluator{Host: h}
	for range maxShadowHits {
		hit, ok := h.scene.Intersect(r, tmin, tmax)
		if !ok {
			return c
		}
		occ := point(hit, r, shading.RayShadow, sp.Depth+1)
		occ.Carried = c
		c, _ = e.Shade(occ, h.scene.material(hit))
		if c.IsBlack() {
			return c
		}
		tmin = hit.T + h.scene.offset(hit.Index)
	}
	return math3d.Color{A: c.A}
}

// IndirectIrradiance returns sky irradiance scaled by the fraction of
// cosine-weighted directions that escape the scene.
func (h *Host) IndirectIrradiance(sp shading.ShadingPoint) math3d.Color {
	sky := h.scene.Sky
	if sky.IsBlack() {
		return math3d.Color{}
	}
	n := h.scene.SkySamples
	if n <= 0 || sp.Normal.IsZero() {
		return sky.Opaque()
	}
	normal := sp.Normal.Normalize()
	tmin := h.scene.offset(sp.Primitive)
	tmax := h.scene.skyDistance()
	open := 0
	for range n {
		dir := cosineDirection(normal, h.rng.Float64(), h.rng.Float64())
		if _, hit := h.scene.Intersect(Ray{Origin: sp.Position, Dir: dir}, tmin, tmax); !hit {
			open++
		}
	}
	return sky.ScaleRGB(float64(open) / float64(n)).Opaque()
}

// TraceTransmitted continues the ray past the surface, one level deeper.
func (h *Host) TraceTransmitted(sp shading.ShadingPoint) math3d.Color {
	if sp.Depth >= h.scene.MaxDepth {
		return h.scene.Background
	}
	r := Ray{Origin: sp.Position, Dir: sp.Direction.Normalize()}
	c, _ := h.trace(r, h.scene.offset(sp.Primitive), shading.RayTransparent, sp.Depth+1, nil)
	return c
}

// cosineDirection maps two uniform numbers to a cosine-weighted direction
// around n.
func cosineDirection(n math3d.Vec3, u1, u2 float64) math3d.Vec3 {
	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2
	x, y := r*math.Cos(phi), r*math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u1))

	t := n.Orthogonal().Normalize()
	b := n.Cross(t)
	return t.Scale(x).Add(b.Scale(y)).Add(n.Scale(z)).Normalize()
}
