package shading

import "github.com/taigrr/strand/pkg/math3d"

// sampleBuffer collects accumulate-mode pass writes while a single light is
// being sampled. At the end of the light the sums are averaged over the
// light's sample count and flushed, so pass values carry the same per-light
// weighting as the shading result.
type sampleBuffer struct {
	out     PassWriter
	sum     [NumPasses]math3d.Color
	touched [NumPasses]bool
}

func newSampleBuffer(out PassWriter) *sampleBuffer {
	if out == nil {
		return nil
	}
	return &sampleBuffer{out: out}
}

func (b *sampleBuffer) begin() {
	if b == nil {
		return
	}
	b.sum = [NumPasses]math3d.Color{}
	b.touched = [NumPasses]bool{}
}

func (b *sampleBuffer) add(p Pass, c math3d.Color) {
	if b == nil {
		return
	}
	b.sum[p] = b.sum[p].AddRGB(c)
	b.touched[p] = true
}

// end flushes the averaged sums. With no samples nothing is written.
func (b *sampleBuffer) end(samples int) {
	if b == nil || samples <= 0 {
		return
	}
	inv := 1 / float64(samples)
	for p := range b.sum {
		if !b.touched[p] {
			continue
		}
		b.out.WritePass(Pass(p), b.sum[p].ScaleRGB(inv).Opaque(), true)
	}
}

// lightSum is the diffuse and specular radiance gathered from one light.
type lightSum struct {
	diffuse  math3d.Color
	specular math3d.Color
}

func (s *lightSum) average(samples int) math3d.Color {
	if samples <= 0 {
		return math3d.Color{}
	}
	return s.diffuse.AddRGB(s.specular).ScaleRGB(1 / float64(samples))
}
