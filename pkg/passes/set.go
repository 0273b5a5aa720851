package passes

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/shading"
)

// Set holds the shaded result and one buffer per enabled pass.
type Set struct {
	Width  int
	Height int
	Result *Buffer

	buffers [shading.NumPasses]*Buffer
}

// NewSet allocates a set for the given passes. A nil list enables every
// pass; an empty one records the result only.
func NewSet(width, height int, enabled []shading.Pass) *Set {
	s := &Set{Width: width, Height: height, Result: NewBuffer(width, height)}
	if enabled == nil {
		enabled = shading.AllPasses()
	}
	for _, p := range enabled {
		if s.buffers[p] == nil {
			s.buffers[p] = NewBuffer(width, height)
		}
	}
	return s
}

// Pass returns the buffer of p, or nil when p is disabled.
func (s *Set) Pass(p shading.Pass) *Buffer {
	return s.buffers[p]
}

// Enabled returns the enabled passes in declaration order.
func (s *Set) Enabled() []shading.Pass {
	var out []shading.Pass
	for p, b := range s.buffers {
		if b != nil {
			out = append(out, shading.Pass(p))
		}
	}
	return out
}

// AddSample folds one pixel sample into the set.
func (s *Set) AddSample(x, y int, result math3d.Color, sample *Sample) {
	s.Result.Add(x, y, result)
	if sample == nil {
		return
	}
	for p, b := range s.buffers {
		if b != nil && sample.written[p] {
			b.Add(x, y, sample.values[p])
		}
	}
}

// Normalize divides every buffer by the number of samples per pixel.
func (s *Set) Normalize(spp int) {
	if spp <= 1 {
		return
	}
	inv := 1 / float64(spp)
	s.Result.Scale(inv)
	for _, b := range s.buffers {
		if b != nil {
			b.Scale(inv)
		}
	}
}

// Sample is the pass output of a single shading evaluation at one pixel
// sample. It implements shading.PassWriter.
type Sample struct {
	values  [shading.NumPasses]math3d.Color
	written [shading.NumPasses]bool
}

var _ shading.PassWriter = (*Sample)(nil)

// WritePass implements shading.PassWriter.
func (s *Sample) WritePass(p shading.Pass, c math3d.Color, accumulate bool) {
	if accumulate && s.written[p] {
		s.values[p] = s.values[p].AddRGB(c).WithAlpha(c.A)
	} else {
		s.values[p] = c
	}
	s.written[p] = true
}

// Value returns the value written to p and whether anything was written.
func (s *Sample) Value(p shading.Pass) (math3d.Color, bool) {
	return s.values[p], s.written[p]
}

// Reset clears the sample for reuse.
func (s *Sample) Reset() {
	*s = Sample{}
}

// Report is the largest per-channel violation of each pass identity.
type Report struct {
	Beauty    float64 // BEAUTY vs DIFFUSE + SPECULAR
	Shadow    float64 // SHADOW vs BEAUTY_NO_SHADOW - BEAUTY
	RawShadow float64 // RAW_SHADOW vs DIRECT_IRRADIANCE_NO_SHADOW - DIRECT_IRRADIANCE
}

// Max returns the largest of the three violations.
func (r Report) Max() float64 {
	return math.Max(r.Beauty, math.Max(r.Shadow, r.RawShadow))
}

// Check measures how far the buffers are from the pass identities.
// Identities whose passes are not all enabled report zero.
func (s *Set) Check() Report {
	var r Report
	r.Beauty = s.identity(shading.PassBeauty, shading.PassDiffuse, shading.PassSpecular, 1)
	r.Shadow = s.identity(shading.PassShadow, shading.PassBeautyNoShadow, shading.PassBeauty, -1)
	r.RawShadow = s.identity(shading.PassRawShadow, shading.PassDirectIrradianceNoShadow, shading.PassDirectIrradiance, -1)
	return r
}

// identity returns max |lhs - (a + sign*b)| over all pixels.
func (s *Set) identity(lhs, a, b shading.Pass, sign float64) float64 {
	l, pa, pb := s.buffers[lhs], s.buffers[a], s.buffers[b]
	if l == nil || pa == nil || pb == nil {
		return 0
	}
	var worst float64
	for i := range l.Pixels {
		want := pa.Pixels[i].Add(pb.Pixels[i].Scale(sign))
		worst = math.Max(worst, l.Pixels[i].MaxDiffRGB(want))
	}
	return worst
}

// FileName returns the PNG file name used for p.
func FileName(p shading.Pass) string {
	return strings.ToLower(p.String()) + ".png"
}

// SaveAll writes result.png and one PNG per enabled pass into dir and returns
// the written paths.
func (s *Set) SaveAll(dir string, exposure float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, "result.png")
	if err := s.Result.SavePNG(path, exposure); err != nil {
		return nil, err
	}
	written := []string{path}
	for _, p := range s.Enabled() {
		path := filepath.Join(dir, FileName(p))
		if err := s.buffers[p].SavePNG(path, exposure); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
