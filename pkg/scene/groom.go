package scene

import (
	"math"
	"math/rand/v2"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/render"
)

// Fibers grows the strands of the groom. Roots are spread uniformly over the
// spherical cap; each strand starts along the surface normal, droops by
// Gravity and winds around its own axis with a helix whose radius grows to
// Curl at the tip. Fiber parameters run from 0 at the root to 1 at the tip.
// Materials are left for the caller to assign.
func (g GroomCfg) Fibers() []*render.Fiber {
	if g.Count <= 0 || g.Length <= 0 {
		return nil
	}
	segs := max(1, g.Segments)
	rng := rand.New(rand.NewPCG(g.Seed, 0x5eed))

	axis := g.Axis.V3().Normalize()
	if axis.IsZero() {
		axis = math3d.Up()
	}
	ax := axis.Orthogonal()
	ay := axis.Cross(ax)
	cosCap := math.Cos(math3d.Clamp(g.CapDeg, 0, 180) * math.Pi / 180)
	center := g.Center.V3()
	down := math3d.V3(0, -1, 0)
	step := g.Length / float64(segs)

	out := make([]*render.Fiber, 0, g.Count*segs)
	for range g.Count {
		cosT := 1 - rng.Float64()*(1-cosCap)
		sinT := math.Sqrt(max(0, 1-cosT*cosT))
		phi := 2 * math.Pi * rng.Float64()
		n := axis.Scale(cosT).Add(ax.Scale(sinT * math.Cos(phi))).Add(ay.Scale(sinT * math.Sin(phi)))

		root := center.Add(n.Scale(g.Radius))
		hx := n.Orthogonal()
		hy := n.Cross(hx)
		phase := 2 * math.Pi * rng.Float64()

		spine := root
		dir := n
		prev := root
		for s := range segs {
			t0 := float64(s) / float64(segs)
			t1 := float64(s+1) / float64(segs)

			if g.Gravity != 0 {
				dir = dir.Add(down.Scale(g.Gravity * step)).Normalize()
			}
			spine = spine.Add(dir.Scale(step))

			next := spine
			if g.Curl != 0 {
				a := phase + 2*math.Pi*g.Turns*t1
				next = next.Add(hx.Scale(g.Curl * t1 * math.Cos(a))).Add(hy.Scale(g.Curl * t1 * math.Sin(a)))
			}

			out = append(out, &render.Fiber{
				P0: prev,
				P1: next,
				R0: 0.5 * math3d.Lerp(g.RootWidth, g.TipWidth, t0),
				R1: 0.5 * math3d.Lerp(g.RootWidth, g.TipWidth, t1),
				S0: t0,
				S1: t1,
			})
			prev = next
		}
	}
	return out
}
