package shading

import "github.com/taigrr/strand/pkg/math3d"

// Light is a handle to a light source chosen by the host.
type Light interface {
	Name() string
	EmitsDiffuse() bool
	EmitsSpecular() bool
}

// SampleSession draws samples from one light for one shading point.
// Next may block on visibility testing.
type SampleSession interface {
	// Next returns the next sample, or false once the light is exhausted.
	Next() (LightSample, bool)
	// Count is the number of samples taken so far. It is authoritative for
	// per-light averaging and may be zero.
	Count() int
}

// Host supplies the renderer services the evaluator consumes.
type Host interface {
	// Lights returns the ordered lights visible to sp under mode.
	Lights(sp ShadingPoint, mode LightMode, names []string) []Light
	// SampleLight starts a sampling session. A zero sp.Normal means the
	// host must not reject samples by facing tests against the normal.
	SampleLight(sp ShadingPoint, light Light) SampleSession
	// IndirectIrradiance is an opaque global illumination lookup.
	IndirectIrradiance(sp ShadingPoint) math3d.Color
	// TraceTransmitted continues the ray through the surface and returns the
	// color seen behind it.
	TraceTransmitted(sp ShadingPoint) math3d.Color
}

// PassWriter receives pass contributions. With accumulate set the value is
// added to the pass; otherwise it replaces it.
type PassWriter interface {
	WritePass(pass Pass, value math3d.Color, accumulate bool)
}
