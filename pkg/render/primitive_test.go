package render

import (
	"math"
	"testing"

	"github.com/taigrr/strand/pkg/math3d"
)

func TestSphereIntersect(t *testing.T) {
	s := &Sphere{Center: math3d.V3(0, 0, 0), Radius: 1}
	tests := []struct {
		name   string
		ray    Ray
		hit    bool
		wantT  float64
		wantNZ float64
	}{
		{"head on", Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, true, 4, 1},
		{"from inside", Ray{math3d.V3(0, 0, 0), math3d.V3(0, 0, -1)}, true, 1, 1},
		{"miss", Ray{math3d.V3(0, 2, 5), math3d.V3(0, 0, -1)}, false, 0, 0},
		{"behind origin", Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, 1)}, false, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := s.Intersect(tc.ray, 1e-6, math.Inf(1))
			if ok != tc.hit {
				t.Fatalf("hit = %v, want %v", ok, tc.hit)
			}
			if !ok {
				return
			}
			if math.Abs(h.T-tc.wantT) > 1e-9 {
				t.Errorf("T = %v, want %v", h.T, tc.wantT)
			}
			if math.Abs(h.Normal.Z-tc.wantNZ) > 1e-9 {
				t.Errorf("Normal = %v, want facing the ray", h.Normal)
			}
		})
	}
}

func TestTriangleIntersect(t *testing.T) {
	tr := &Triangle{
		V:  [3]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		UV: [3]math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)},
	}
	h, ok := tr.Intersect(Ray{math3d.V3(0.25, 0.25, 1), math3d.V3(0, 0, -1)}, 0, math.Inf(1))
	if !ok {
		t.Fatal("expected hit inside triangle")
	}
	if math.Abs(h.T-1) > 1e-12 {
		t.Errorf("T = %v, want 1", h.T)
	}
	if math.Abs(h.UV.X-0.25) > 1e-12 || math.Abs(h.UV.Y-0.25) > 1e-12 {
		t.Errorf("UV = %v, want (0.25, 0.25)", h.UV)
	}
	if h.Normal.Z != 1 {
		t.Errorf("face normal = %v, want +Z toward the ray", h.Normal)
	}

	// Same hit from below flips the normal.
	h, _ = tr.Intersect(Ray{math3d.V3(0.25, 0.25, -1), math3d.V3(0, 0, 1)}, 0, math.Inf(1))
	if h.Normal.Z != -1 {
		t.Errorf("normal from below = %v, want -Z", h.Normal)
	}

	if _, ok := tr.Intersect(Ray{math3d.V3(0.9, 0.9, 1), math3d.V3(0, 0, -1)}, 0, math.Inf(1)); ok {
		t.Error("hit outside the triangle")
	}
}

func TestFiberIntersect(t *testing.T) {
	f := &Fiber{
		P0: math3d.V3(-1, 0, 0), P1: math3d.V3(1, 0, 0),
		R0: 0.1, R1: 0.1,
		S0: 0.2, S1: 0.6,
	}
	tests := []struct {
		name      string
		origin    math3d.Vec3
		hit       bool
		wantParam float64
	}{
		{"middle", math3d.V3(0, 0, 5), true, 0.4},
		{"near root", math3d.V3(-1, 0.05, 5), true, 0.2},
		{"near tip", math3d.V3(0.5, 0, 5), true, 0.5},
		{"outside radius", math3d.V3(0, 0.2, 5), false, 0},
		{"past the end", math3d.V3(1.5, 0, 5), false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := f.Intersect(Ray{tc.origin, math3d.V3(0, 0, -1)}, 0, math.Inf(1))
			if ok != tc.hit {
				t.Fatalf("hit = %v, want %v", ok, tc.hit)
			}
			if !ok {
				return
			}
			if !h.Fiber {
				t.Error("fiber hit not flagged")
			}
			if math.Abs(h.FiberParam-tc.wantParam) > 1e-9 {
				t.Errorf("FiberParam = %v, want %v", h.FiberParam, tc.wantParam)
			}
			if math.Abs(h.Tangent.X-1) > 1e-12 {
				t.Errorf("Tangent = %v, want +X", h.Tangent)
			}
			if math.Abs(h.Normal.Dot(h.Tangent)) > 1e-12 || h.Normal.Z <= 0 {
				t.Errorf("Normal = %v, want perpendicular and facing the ray", h.Normal)
			}
		})
	}
}

func TestBVHMatchesLinearScan(t *testing.T) {
	var prims []Primitive
	for i := range 40 {
		x := float64(i%8) - 4
		y := float64(i/8) - 2
		prims = append(prims, &Sphere{Center: math3d.V3(x, y, -float64(i%3)), Radius: 0.3})
	}
	items := make([]int, len(prims))
	for i := range items {
		items[i] = i
	}
	root := buildBVH(prims, items)

	for i := range 64 {
		r := Ray{
			Origin: math3d.V3(0, 0, 10),
			Dir:    math3d.V3(float64(i%8)/2-2, float64(i/8)/2-2, -10).Normalize(),
		}
		got, gotOK := root.intersect(prims, r, 1e-6, math.Inf(1))

		want, wantOK := Hit{}, false
		for j, p := range prims {
			if h, ok := p.Intersect(r, 1e-6, math.Inf(1)); ok && (!wantOK || h.T < want.T) {
				h.Index = j
				want, wantOK = h, true
			}
		}
		if gotOK != wantOK || (gotOK && (got.Index != want.Index || math.Abs(got.T-want.T) > 1e-12)) {
			t.Errorf("ray %d: bvh (%v, %d, %v) vs scan (%v, %d, %v)", i, gotOK, got.Index, got.T, wantOK, want.Index, want.T)
		}
	}
}

func TestCameraRay(t *testing.T) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 0, 5))
	cam.LookAt(math3d.V3(0, 0, 0))

	center := cam.Ray(0.5, 0.5)
	if center.Dir.Distance(math3d.V3(0, 0, -1)) > 1e-12 {
		t.Errorf("center ray = %v, want -Z", center.Dir)
	}
	top := cam.Ray(0.5, 0)
	if top.Dir.Y <= 0 {
		t.Errorf("top ray = %v, want upward", top.Dir)
	}
	right := cam.Ray(1, 0.5)
	if right.Dir.X <= 0 {
		t.Errorf("right ray = %v, want +X", right.Dir)
	}
	wantAngle := cam.FOV / 2
	if got := math.Acos(top.Dir.Dot(center.Dir)); math.Abs(got-wantAngle) > 1e-9 {
		t.Errorf("half FOV = %v, want %v", got, wantAngle)
	}
}

func TestTextureSample(t *testing.T) {
	red, blue := math3d.RGB(1, 0, 0), math3d.RGB(0, 0, 1)
	tex := NewCheckerTexture(4, 4, 2, red, blue)

	tests := []struct {
		name string
		u, v float64
		want math3d.Color
	}{
		// V is flipped: v near 1 is the top row of the image.
		{"top left", 0.1, 0.9, red},
		{"top right", 0.9, 0.9, blue},
		{"wrapped", 1.1, 0.9, red},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}

	tex.Tint = math3d.RGBA(0.5, 1, 1, 1)
	if got := tex.ColorAt(point(Hit{UV: math3d.V2(0.1, 0.9)}, Ray{}, 0, 0)); got.R != 0.5 {
		t.Errorf("tinted lookup = %v", got)
	}
}
