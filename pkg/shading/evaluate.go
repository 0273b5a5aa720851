package shading

import "github.com/taigrr/strand/pkg/math3d"

// Evaluator shades points using the services of Host. Passes may be nil,
// which disables pass output entirely.
type Evaluator struct {
	Host   Host
	Passes PassWriter
}

// Evaluate returns the shaded color at sp. The boolean is false when the
// point cannot be shaded in its ray context (displacement).
func (e *Evaluator) Evaluate(sp ShadingPoint, p Params) (math3d.Color, bool) {
	switch sp.Type {
	case RayDisplace:
		return math3d.Color{}, false
	case RayShadow:
		return e.shadow(sp, p), true
	}

	e.write(PassAmbientMaterialColor, p.Ambient.Opaque())
	e.write(PassDiffuseMaterialColor, p.Diffuse.Opaque())

	f := BuildFrame(sp)
	kd := p.Diffuse
	var result math3d.Color
	switch p.Model {
	case ModelHair:
		result = p.Ambience.WithAlpha(1)
		if sp.Fiber {
			kd = kd.ScaleRGB(RootDarkening(sp.FiberParam))
			result.A = FiberOpacity(sp.FiberParam)
		}
	default:
		result = p.Ambience.Mul(p.Ambient).WithAlpha(1)
	}

	result = result.AddRGB(e.direct(sp, f, p, kd))

	irr := e.Host.IndirectIrradiance(sp)
	e.write(PassIndirect, irr.Opaque())
	result = result.AddRGB(kd.Mul(irr))

	return e.transmit(sp, p, result), true
}

// shadow attenuates the light color carried by a shadow ray. Hair filters
// through its diffuse color, surfaces through their transparency.
func (e *Evaluator) shadow(sp ShadingPoint, p Params) math3d.Color {
	filter := p.Transparency
	if p.Model == ModelHair {
		filter = p.Diffuse
	}
	return sp.Carried.Mul(filter.Opaque())
}

// direct sums the averaged contribution of every light.
func (e *Evaluator) direct(sp ShadingPoint, f Frame, p Params, kd math3d.Color) math3d.Color {
	var total math3d.Color
	if p.LightMode == LightsNone {
		return total
	}
	lights := e.Host.Lights(sp, p.LightMode, p.LightNames)
	if len(lights) == 0 {
		return total
	}

	query := f.LightQuery(sp)
	buf := newSampleBuffer(e.Passes)
	for _, light := range lights {
		buf.begin()
		var sum lightSum
		session := e.Host.SampleLight(query, light)
		for {
			s, ok := session.Next()
			if !ok {
				break
			}
			e.sample(buf, &sum, f, p, kd, light, s)
		}
		n := session.Count()
		buf.end(n)
		total = total.AddRGB(sum.average(n))
	}
	return total
}

func (e *Evaluator) sample(buf *sampleBuffer, sum *lightSum, f Frame, p Params, kd math3d.Color, light Light, s LightSample) {
	cos := f.cosine(s)

	var diff, diffNS, spec, specNS math3d.Color
	// Irradiance and raw shadow only count lights that emit diffuse.
	if light.EmitsDiffuse() {
		buf.add(PassDirectIrradiance, s.Radiance.ScaleRGB(cos))
		buf.add(PassDirectIrradianceNoShadow, s.Unshadowed.ScaleRGB(cos))
		buf.add(PassRawShadow, s.Unshadowed.Sub(s.Radiance).ScaleRGB(cos))

		diff = kd.Mul(s.Radiance).ScaleRGB(cos)
		diffNS = kd.Mul(s.Unshadowed).ScaleRGB(cos)
		buf.add(PassDiffuse, diff)
		buf.add(PassDiffuseNoShadow, diffNS)
		sum.diffuse = sum.diffuse.AddRGB(diff)
	}
	if light.EmitsSpecular() {
		if k := specularFactor(p.Model, f, s.Direction, p.Exponent); k > 0 {
			spec = p.Specular.Mul(s.Radiance).ScaleRGB(k)
			specNS = p.Specular.Mul(s.Unshadowed).ScaleRGB(k)
			buf.add(PassSpecular, spec)
			buf.add(PassSpecularNoShadow, specNS)
			sum.specular = sum.specular.AddRGB(spec)
		}
	}

	beauty := diff.AddRGB(spec)
	beautyNS := diffNS.AddRGB(specNS)
	buf.add(PassBeauty, beauty)
	buf.add(PassBeautyNoShadow, beautyNS)
	buf.add(PassShadow, beautyNS.Sub(beauty))
}

// transmit blends in what lies behind the surface when the result is not
// fully opaque.
func (e *Evaluator) transmit(sp ShadingPoint, p Params, result math3d.Color) math3d.Color {
	if p.Model == ModelHair {
		if result.A >= opaqueAlpha {
			return result
		}
		behind := e.Host.TraceTransmitted(sp)
		a := result.A
		return math3d.Color{
			R: a*result.R + (1-a)*behind.R,
			G: a*result.G + (1-a)*behind.G,
			B: a*result.B + (1-a)*behind.B,
			A: a + (1-a)*behind.A,
		}
	}

	kt := p.Transparency
	if kt.IsBlack() && result.A >= opaqueAlpha {
		return result
	}
	behind := e.Host.TraceTransmitted(sp)
	return math3d.Color{
		R: (1-kt.R)*result.R + kt.R*behind.R,
		G: (1-kt.G)*result.G + kt.G*behind.G,
		B: (1-kt.B)*result.B + kt.B*behind.B,
		A: 1,
	}
}

func (e *Evaluator) write(p Pass, c math3d.Color) {
	if e.Passes == nil {
		return
	}
	e.Passes.WritePass(p, c, false)
}
