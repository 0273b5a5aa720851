package shading

import (
	"testing"

	"github.com/taigrr/strand/pkg/math3d"
)

func TestPassNames(t *testing.T) {
	want := []string{
		"AMBIENT_MATERIAL_COLOR",
		"DIFFUSE_MATERIAL_COLOR",
		"DIRECT_IRRADIANCE",
		"DIRECT_IRRADIANCE_NO_SHADOW",
		"DIFFUSE",
		"DIFFUSE_NO_SHADOW",
		"SPECULAR",
		"SPECULAR_NO_SHADOW",
		"BEAUTY",
		"BEAUTY_NO_SHADOW",
		"SHADOW",
		"RAW_SHADOW",
		"INDIRECT",
	}
	all := AllPasses()
	if len(all) != len(want) {
		t.Fatalf("AllPasses() has %d passes, want %d", len(all), len(want))
	}
	for i, p := range all {
		if p.String() != want[i] {
			t.Errorf("pass %d = %q, want %q", i, p.String(), want[i])
		}
		got, err := ParsePass(want[i])
		if err != nil || got != p {
			t.Errorf("ParsePass(%q) = %v, %v", want[i], got, err)
		}
	}
}

func TestParsePassUnknown(t *testing.T) {
	if _, err := ParsePass("beauty"); err == nil {
		t.Error("ParsePass should be case sensitive")
	}
	if s := Pass(99).String(); s != "Pass(99)" {
		t.Errorf("String() = %q", s)
	}
}

func TestMaterialResolve(t *testing.T) {
	m := &Material{
		Model:    ModelHair,
		Diffuse:  Const(math3d.RGB(0.2, 0.3, 0.4)),
		Exponent: Scalar(12),
	}
	p := m.Resolve(ShadingPoint{})
	if p.Ambience != math3d.Black() {
		t.Errorf("hair Ambience = %v, want black default", p.Ambience)
	}
	m.Model = ModelPhong
	if a := m.Resolve(ShadingPoint{}).Ambience; a != math3d.White() {
		t.Errorf("phong Ambience = %v, want white default", a)
	}
	m.Model = ModelHair
	if p.Diffuse != math3d.RGB(0.2, 0.3, 0.4) {
		t.Errorf("Diffuse = %v", p.Diffuse)
	}
	if p.Exponent != 12 || p.Model != ModelHair {
		t.Errorf("Exponent = %v, Model = %v", p.Exponent, p.Model)
	}
	if !p.Specular.IsBlack() || !p.Transparency.IsBlack() {
		t.Error("unset colors should resolve to black")
	}
}

// An unset Ambience must leave only indirect light on an unlit material,
// whichever model shades it.
func TestShadeDefaultAmbience(t *testing.T) {
	for _, model := range []Model{ModelHair, ModelPhong} {
		t.Run(model.String(), func(t *testing.T) {
			host := &mockHost{indirect: math3d.Gray(0.5)}
			e := &Evaluator{Host: host}
			m := &Material{
				Model:     model,
				Ambient:   Const(math3d.Black()),
				Diffuse:   Const(math3d.Gray(0.2)),
				LightMode: LightsNone,
			}
			got, ok := e.Shade(facingPoint(), m)
			if !ok {
				t.Fatal("Shade returned false")
			}
			if want := math3d.Gray(0.1); !colorNear(got, want, 1e-12) || got.A != 1 {
				t.Errorf("Shade() = %v, want %v", got, want)
			}

			host.indirect = math3d.Color{}
			if got, _ := e.Shade(facingPoint(), m); !colorNear(got, math3d.Black(), 1e-12) {
				t.Errorf("Shade() without indirect = %v, want black", got)
			}
		})
	}
}

type uvRamp struct{}

func (uvRamp) ColorAt(sp ShadingPoint) math3d.Color { return math3d.Gray(sp.UV.X) }

func TestMaterialResolvePerPoint(t *testing.T) {
	m := &Material{Model: ModelPhong, Diffuse: uvRamp{}}
	a := m.Resolve(ShadingPoint{UV: math3d.V2(0.25, 0)})
	b := m.Resolve(ShadingPoint{UV: math3d.V2(0.75, 0)})
	if a.Diffuse.R != 0.25 || b.Diffuse.R != 0.75 {
		t.Errorf("texture-driven diffuse = %v, %v", a.Diffuse, b.Diffuse)
	}
}
