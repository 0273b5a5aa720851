package scene

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/strand/pkg/render"
	"github.com/taigrr/strand/pkg/shading"
)

const furball = `{
	"width": 8,
	"height": 6,
	"samples": 2,
	"seed": 7,
	"background": [0.1, 0.1, 0.2],
	"sky": {"color": [0.2, 0.2, 0.25], "samples": 4},
	"camera": {"position": [0, 0, 4], "lookAt": [0, 0, 0], "fovDeg": 40},
	"lights": [
		{"type": "point", "name": "key", "position": [3, 3, 3], "color": [1, 1, 1], "intensity": 20},
		{"type": "area", "name": "fill", "corner": [-3, 2, 2], "u": [1, 0, 0], "v": [0, 0, 1], "color": [0.8, 0.8, 1], "intensity": 5, "samples": 4}
	],
	"materials": [
		{"name": "skin", "model": "phong", "diffuse": [0.6, 0.4, 0.3], "specular": [0.1, 0.1, 0.1], "exponent": 30},
		{"name": "fur", "model": "hair", "diffuse": [0.3, 0.2, 0.1], "specular": [0.4, 0.4, 0.4], "exponent": 80, "lightMode": "exclusive", "lights": ["fill"]}
	],
	"spheres": [{"center": [0, 0, 0], "radius": 1, "material": "skin"}],
	"grooms": [{"center": [0, 0, 0], "radius": 1, "count": 20, "length": 0.4, "segments": 3, "rootWidth": 0.02, "tipWidth": 0.005, "curl": 0.05, "turns": 1, "gravity": 0.5, "seed": 3, "material": "fur"}]
}`

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`{"camera": {"position": [0, 0, 5]}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Width != DefaultWidth || cfg.Height != DefaultHeight {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Samples != DefaultSamples || cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("samples %d, depth %d", cfg.Samples, cfg.MaxDepth)
	}
	if cfg.Camera.FOVDeg != DefaultFOV {
		t.Errorf("FOV = %v", cfg.Camera.FOVDeg)
	}
	if p, err := cfg.PassList(); err != nil || p != nil {
		t.Errorf("PassList() = %v, %v; want all passes", p, err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"no camera", `{}`, ErrNoCamera},
		{"negative size", `{"width": -1, "camera": {}}`, ErrBadSize},
		{"model", `{"camera": {}, "materials": [{"name": "m", "model": "toon"}]}`, ErrUnknownModel},
		{"light mode", `{"camera": {}, "materials": [{"name": "m", "lightMode": "some"}]}`, ErrUnknownMode},
		{"material ref", `{"camera": {}, "spheres": [{"radius": 1, "material": "gold"}]}`, ErrUnknownMaterial},
		{"groom material", `{"camera": {}, "grooms": [{"count": 1, "material": "fur"}]}`, ErrUnknownMaterial},
		{"light type", `{"camera": {}, "lights": [{"type": "spot"}]}`, ErrUnknownLight},
		{"duplicate light", `{"camera": {}, "lights": [{"type": "point", "name": "a"}, {"type": "point", "name": "a"}]}`, ErrDuplicateName},
		{"duplicate material", `{"camera": {}, "materials": [{"name": "a"}, {"name": "a"}]}`, ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse(strings.NewReader(`{"camera": {}, "passes": ["beauty", "nope"]}`)); err == nil {
		t.Error("unknown pass accepted")
	}
	if _, err := Parse(strings.NewReader(`{"camera": {}, "colour": [1, 0, 0]}`)); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestPassList(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`{"camera": {}, "passes": ["beauty", "SHADOW"]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := cfg.PassList()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != shading.PassBeauty || got[1] != shading.PassShadow {
		t.Errorf("PassList() = %v", got)
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Parse(strings.NewReader(furball))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, want := sc.Len(), 1+20*3; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if len(sc.Lights) != 2 {
		t.Fatalf("got %d lights", len(sc.Lights))
	}
	if _, ok := sc.Light("fill"); !ok {
		t.Error("fill light missing")
	}
	if sc.SkySamples != 4 || sc.Sky.R != 0.2 {
		t.Errorf("sky = %v x%d", sc.Sky, sc.SkySamples)
	}

	fur := sc.Primitive(1).(*render.Fiber).Material
	if fur == nil || fur.Model != shading.ModelHair || fur.LightMode != shading.LightsExclusive {
		t.Errorf("groom material = %+v", fur)
	}
	if sphere := sc.Primitive(0).(*render.Sphere); sphere.Material.Name != "skin" {
		t.Errorf("sphere material = %q", sphere.Material.Name)
	}
}

func TestRenderScene(t *testing.T) {
	cfg, err := Parse(strings.NewReader(furball))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := cfg.Renderer()
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	set, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if set.Width != 8 || set.Height != 6 {
		t.Errorf("set size = %dx%d", set.Width, set.Height)
	}
	if rep := set.Check(); rep.Max() > 1e-6 {
		t.Errorf("pass identities violated: %+v", rep)
	}
	// The sphere fills the image center.
	if c := set.Result.At(4, 3); c.IsBlack() {
		t.Error("center pixel is black")
	}
}

const dimFur = `{
	"width": 8,
	"height": 6,
	"seed": 1,
	"sky": {"color": [0.25, 0.25, 0.25], "samples": 4},
	"camera": {"position": [0, 0.5, 4], "lookAt": [0, 0.5, 0], "fovDeg": 40},
	"materials": [
		{"name": "skin", "model": "phong", "diffuse": [0.3, 0.3, 0.3]},
		{"name": "fur", "model": "hair", "diffuse": [0.3, 0.2, 0.1], "specular": [0.5, 0.5, 0.5], "exponent": 40}
	],
	"spheres": [{"center": [0, 0, 0], "radius": 1, "material": "skin"}],
	"grooms": [{"center": [0, 0, 0], "radius": 1, "count": 400, "length": 0.6, "rootWidth": 0.06, "tipWidth": 0.03, "seed": 5, "material": "fur"}]
}`

// Without lights every pixel is at most diffuse times sky irradiance, so an
// unset hair ambience must not brighten the fur.
func TestRenderFurUnlit(t *testing.T) {
	cfg, err := Parse(strings.NewReader(dimFur))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r, err := cfg.Renderer()
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}

	cam := *r.Scene.Camera
	cam.SetAspectRatio(float64(r.Width) / float64(r.Height))
	fur := 0
	for y := range r.Height {
		for x := range r.Width {
			ray := cam.Ray((float64(x)+0.5)/float64(r.Width), (float64(y)+0.5)/float64(r.Height))
			if h, ok := r.Scene.Intersect(ray, 1e-6, math.Inf(1)); ok && h.Fiber {
				fur++
			}
		}
	}
	if fur == 0 {
		t.Fatal("no camera ray hits the groom")
	}

	set, err := r.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	const bound = 0.3*0.25 + 1e-9
	for y := range set.Height {
		for x := range set.Width {
			c := set.Result.At(x, y)
			if c.R > bound || c.G > bound || c.B > bound {
				t.Errorf("pixel (%d,%d) = %v exceeds %v", x, y, c, bound)
			}
		}
	}
}

func TestGroomFibers(t *testing.T) {
	g := GroomCfg{
		Center: Vec{1, 2, 3}, Radius: 2, Axis: Vec{0, 1, 0}, CapDeg: 30,
		Count: 10, Length: 1, Segments: 4, RootWidth: 0.1, TipWidth: 0.02,
		Curl: 0.1, Turns: 2, Gravity: 1, Seed: 42,
	}
	fibers := g.Fibers()
	if len(fibers) != 40 {
		t.Fatalf("got %d fibers, want 40", len(fibers))
	}

	center := g.Center.V3()
	cosCap := math.Cos(30 * math.Pi / 180)
	for s := 0; s < len(fibers); s += 4 {
		root := fibers[s]
		if d := root.P0.Distance(center); math.Abs(d-2) > 1e-9 {
			t.Errorf("strand %d root at distance %v, want 2", s/4, d)
		}
		if up := root.P0.Sub(center).Normalize().Y; up < cosCap-1e-9 {
			t.Errorf("strand %d root outside cap: cos %v", s/4, up)
		}
		if root.S0 != 0 || fibers[s+3].S1 != 1 {
			t.Errorf("strand %d parameter range [%v, %v]", s/4, root.S0, fibers[s+3].S1)
		}
		if math.Abs(root.R0-0.05) > 1e-12 || math.Abs(fibers[s+3].R1-0.01) > 1e-12 {
			t.Errorf("strand %d radii %v..%v", s/4, root.R0, fibers[s+3].R1)
		}
		for k := 1; k < 4; k++ {
			if fibers[s+k].P0 != fibers[s+k-1].P1 || fibers[s+k].S0 != fibers[s+k-1].S1 {
				t.Errorf("strand %d segment %d is disconnected", s/4, k)
			}
		}
	}

	again := g.Fibers()
	for i := range fibers {
		if *fibers[i] != *again[i] {
			t.Fatalf("fiber %d differs between runs", i)
		}
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name  string
		time  string
		check func(x, y, z float64) bool
	}{
		{"equinox noon overhead", "2024-03-20T12:00:00Z", func(_, y, _ float64) bool { return y > 0.99 }},
		{"equinox midnight below", "2024-03-21T00:00:00Z", func(_, y, _ float64) bool { return y < -0.99 }},
		{"morning in the east", "2024-03-20T09:00:00Z", func(x, y, _ float64) bool { return x > 0.6 && y > 0.6 }},
		{"june sun to the north", "2024-06-21T12:00:00Z", func(_, _, z float64) bool { return z < -0.3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := SunDirection(tt.time, 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(d.Len()-1) > 1e-9 {
				t.Errorf("|d| = %v", d.Len())
			}
			if !tt.check(d.X, d.Y, d.Z) {
				t.Errorf("direction = %v", d)
			}
		})
	}

	if _, err := SunDirection("noon", 0, 0); err == nil {
		t.Error("bad time accepted")
	}
}

func TestSunLight(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`{"camera": {}, "lights": [{"type": "sun", "time": "2024-03-20T12:00:00Z", "color": [1, 1, 1], "intensity": 3}]}`))
	if err != nil {
		t.Fatal(err)
	}
	sc, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}
	sun, ok := sc.Lights[0].(*render.DirectionalLight)
	if !ok {
		t.Fatalf("sun built as %T", sc.Lights[0])
	}
	want := SunDirectionAt(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), 0, 0)
	if sun.Direction.Distance(want) > 1e-12 {
		t.Errorf("direction = %v, want %v", sun.Direction, want)
	}
}

func TestLoadWithMesh(t *testing.T) {
	dir := t.TempDir()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {4, 0, 0}, {0, 4, 0}})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: pos}}},
	})
	if err := gltf.SaveBinary(doc, filepath.Join(dir, "tri.glb")); err != nil {
		t.Fatal(err)
	}

	scenePath := filepath.Join(dir, "scene.json")
	js := `{"camera": {"position": [0, 0, 5]},
		"materials": [{"name": "matte", "diffuse": [0.5, 0.5, 0.5]}],
		"meshes": [{"path": "tri.glb", "material": "matte", "center": [0, 0, 0], "size": 2}]}`
	if err := os.WriteFile(scenePath, []byte(js), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(scenePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", sc.Len())
	}
	tri := sc.Primitive(0).(*render.Triangle)
	if tri.Material.Name != "matte" {
		t.Errorf("material = %q", tri.Material.Name)
	}
	b := sc.Bounds()
	if math.Abs(b.Max.X-b.Min.X-2) > 1e-6 || math.Abs(b.Min.X+1) > 1e-6 {
		t.Errorf("bounds = %+v", b)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
}
