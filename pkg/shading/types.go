// Package shading evaluates hair-fiber and surface illumination at a single
// shading point. The evaluator is a pure function of its inputs: lights,
// visibility, indirect light and transmitted rays are supplied by a Host, and
// intermediate contributions are reported to a PassWriter.
package shading

import "github.com/taigrr/strand/pkg/math3d"

// RayType classifies the ray that produced a shading point.
type RayType int

const (
	RayEye         RayType = iota // Camera or secondary ray needing full shading
	RayShadow                     // Occlusion ray between a point and a light
	RayDisplace                   // Displacement context, not shadeable
	RayTransparent                // Continuation through a transparent surface
)

func (t RayType) String() string {
	switch t {
	case RayEye:
		return "eye"
	case RayShadow:
		return "shadow"
	case RayDisplace:
		return "displace"
	case RayTransparent:
		return "transparent"
	}
	return "unknown"
}

// LightMode selects which light list a shading point is lit by.
type LightMode int

const (
	LightsInstance  LightMode = iota // The instance's own light list
	LightsInclusive                  // Only the lights named in Params.LightNames
	LightsExclusive                  // The instance list minus Params.LightNames
	LightsNone                       // No direct lights; ambient and indirect only
)

// Model selects the reflectance model.
type Model int

const (
	// ModelHair is the anisotropic fiber model: specular from the tangent,
	// root-to-tip diffuse darkening and opacity, fiber-opacity transparency.
	ModelHair Model = iota
	// ModelPhong is the isotropic surface model: cosine-power specular and
	// transparency-color blending.
	ModelPhong
)

func (m Model) String() string {
	switch m {
	case ModelHair:
		return "hair"
	case ModelPhong:
		return "phong"
	}
	return "unknown"
}

// ShadingPoint is the read-only state of one ray intersection.
type ShadingPoint struct {
	Position  math3d.Vec3
	Normal    math3d.Vec3 // Geometric normal
	Tangent   math3d.Vec3 // Fiber tangent, meaningful when Fiber is set
	Direction math3d.Vec3 // Incoming ray direction, pointing at the surface
	UV        math3d.Vec2

	// Fiber marks a curve/hair primitive. FiberParam runs from 0 at the
	// root to 1 at the tip.
	Fiber      bool
	FiberParam float64

	Type  RayType
	Depth int

	// Primitive identifies the hit primitive to the host. The evaluator
	// does not interpret it.
	Primitive int

	// Carried is the result already accumulated along the ray. For shadow
	// rays it is the light color being transmitted; its alpha is the ray's
	// accumulated opacity.
	Carried math3d.Color
}

// Params are the resolved reflectance parameters of one invocation.
type Params struct {
	Model Model

	Ambience     math3d.Color // Base color multiplier
	Ambient      math3d.Color
	Diffuse      math3d.Color
	Specular     math3d.Color
	Exponent     float64
	Transparency math3d.Color

	LightMode  LightMode
	LightNames []string
}

// LightSample is one draw from a light's sampling session.
type LightSample struct {
	Radiance   math3d.Color // Incident radiance after shadowing
	Unshadowed math3d.Color // Incident radiance before shadowing
	Direction  math3d.Vec3  // Unit vector from the point toward the light
	DotNL      float64      // Host's dot(normal, direction); unclamped
}
