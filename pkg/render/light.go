package render

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// Light is a shading.Light the host can sample.
type Light interface {
	shading.Light
	// SampleCount is the number of samples drawn per shading point.
	SampleCount() int
	// sample draws sample i of n as seen from p: the unit direction toward
	// the light, the distance to it and the unshadowed radiance.
	sample(p math3d.Vec3, i, n int, rng *rand.Rand) (dir math3d.Vec3, dist float64, radiance math3d.Color, ok bool)
}

// Emission holds the name and emission flags shared by every light.
type Emission struct {
	LightName  string
	NoDiffuse  bool
	NoSpecular bool
}

func (e Emission) Name() string        { return e.LightName }
func (e Emission) EmitsDiffuse() bool  { return !e.NoDiffuse }
func (e Emission) EmitsSpecular() bool { return !e.NoSpecular }

// PointLight emits from a single point with inverse-square falloff.
type PointLight struct {
	Emission
	Position  math3d.Vec3
	Color     math3d.Color
	Intensity float64
}

func (l *PointLight) SampleCount() int { return 1 }

func (l *PointLight) sample(p math3d.Vec3, _, _ int, _ *rand.Rand) (math3d.Vec3, float64, math3d.Color, bool) {
	d := l.Position.Sub(p)
	dist := d.Len()
	if dist == 0 {
		return math3d.Vec3{}, 0, math3d.Color{}, false
	}
	return d.Div(dist), dist, l.Color.ScaleRGB(l.Intensity / (dist * dist)).Opaque(), true
}

// DirectionalLight is infinitely distant. Direction points from the scene
// toward the light.
type DirectionalLight struct {
	Emission
	Direction math3d.Vec3
	Color     math3d.Color
	Intensity float64
}

func (l *DirectionalLight) SampleCount() int { return 1 }

func (l *DirectionalLight) sample(math3d.Vec3, int, int, *rand.Rand) (math3d.Vec3, float64, math3d.Color, bool) {
	return l.Direction.Normalize(), math.Inf(1), l.Color.ScaleRGB(l.Intensity).Opaque(), true
}

// AreaLight is a one-sided parallelogram at Corner spanned by U and V,
// emitting along U×V. Samples are stratified over a jittered grid.
type AreaLight struct {
	Emission
	Corner    math3d.Vec3
	U, V      math3d.Vec3
	Color     math3d.Color
	Intensity float64
	Samples   int
}

func (l *AreaLight) SampleCount() int { return max(1, l.Samples) }

func (l *AreaLight) sample(p math3d.Vec3, i, n int, rng *rand.Rand) (math3d.Vec3, float64, math3d.Color, bool) {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	su := (float64(i%side) + rng.Float64()) / float64(side)
	sv := (float64((i/side)%side) + rng.Float64()) / float64(side)
	q := l.Corner.Add(l.U.Scale(su)).Add(l.V.Scale(sv))

	d := q.Sub(p)
	dist := d.Len()
	if dist == 0 {
		return math3d.Vec3{}, 0, math3d.Color{}, false
	}
	dir := d.Div(dist)
	cross := l.U.Cross(l.V)
	area := cross.Len()
	cosLight := -dir.Dot(cross.Div(area))
	if cosLight <= 0 {
		return math3d.Vec3{}, 0, math3d.Color{}, false
	}
	// Radiant intensity of the patch toward p, normalized so a unit
	// Intensity matches a point light of the same power.
	scale := l.Intensity * cosLight / (dist * dist)
	return dir, dist, l.Color.ScaleRGB(scale).Opaque(), true
}

var (
	_ Light = (*PointLight)(nil)
	_ Light = (*DirectionalLight)(nil)
	_ Light = (*AreaLight)(nil)
)
