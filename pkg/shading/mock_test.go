package shading

import "github.com/taigrr/strand/pkg/math3d"

type mockLight struct {
	name     string
	diffuse  bool
	specular bool
}

func (l *mockLight) Name() string        { return l.name }
func (l *mockLight) EmitsDiffuse() bool  { return l.diffuse }
func (l *mockLight) EmitsSpecular() bool { return l.specular }

func newLight(name string) *mockLight {
	return &mockLight{name: name, diffuse: true, specular: true}
}

type mockSession struct {
	samples []LightSample
	taken   int
}

func (s *mockSession) Next() (LightSample, bool) {
	if s.taken >= len(s.samples) {
		return LightSample{}, false
	}
	s.taken++
	return s.samples[s.taken-1], true
}

func (s *mockSession) Count() int { return s.taken }

// mockHost serves canned samples per light name and counts every call.
type mockHost struct {
	lights   []Light
	samples  map[string][]LightSample
	indirect math3d.Color
	behind   math3d.Color

	lightCalls  int
	sampleCalls int
	traceCalls  int
	queries     []ShadingPoint
}

func (h *mockHost) Lights(sp ShadingPoint, mode LightMode, names []string) []Light {
	h.lightCalls++
	return h.lights
}

func (h *mockHost) SampleLight(sp ShadingPoint, light Light) SampleSession {
	h.sampleCalls++
	h.queries = append(h.queries, sp)
	return &mockSession{samples: h.samples[light.Name()]}
}

func (h *mockHost) IndirectIrradiance(sp ShadingPoint) math3d.Color {
	return h.indirect
}

func (h *mockHost) TraceTransmitted(sp ShadingPoint) math3d.Color {
	h.traceCalls++
	return h.behind
}

type passWrite struct {
	pass       Pass
	value      math3d.Color
	accumulate bool
}

// recorder accumulates pass writes the way a frame buffer would.
type recorder struct {
	values map[Pass]math3d.Color
	writes []passWrite
}

func newRecorder() *recorder {
	return &recorder{values: make(map[Pass]math3d.Color)}
}

func (r *recorder) WritePass(p Pass, c math3d.Color, accumulate bool) {
	r.writes = append(r.writes, passWrite{p, c, accumulate})
	if accumulate {
		r.values[p] = r.values[p].AddRGB(c).WithAlpha(c.A)
		return
	}
	r.values[p] = c
}

func (r *recorder) has(p Pass) bool {
	_, ok := r.values[p]
	return ok
}

func frontSample(radiance float64) LightSample {
	return LightSample{
		Radiance:   math3d.Gray(radiance),
		Unshadowed: math3d.Gray(radiance),
		Direction:  math3d.V3(0, 0, 1),
		DotNL:      1,
	}
}

// facingPoint is an eye hit on a surface facing +Z, viewed head on.
func facingPoint() ShadingPoint {
	return ShadingPoint{
		Normal:    math3d.V3(0, 0, 1),
		Direction: math3d.V3(0, 0, -1),
		Type:      RayEye,
	}
}

// fiberPoint is a fiber running along +X with its normal facing +Z.
func fiberPoint(p float64) ShadingPoint {
	sp := facingPoint()
	sp.Fiber = true
	sp.Tangent = math3d.V3(1, 0, 0)
	sp.FiberParam = p
	return sp
}

func grayPhong(kd float64) Params {
	return Params{
		Model:    ModelPhong,
		Ambience: math3d.White(),
		Diffuse:  math3d.Gray(kd),
		Exponent: 10,
	}
}

func colorNear(a, b math3d.Color, tol float64) bool {
	return a.MaxDiffRGB(b) <= tol
}
