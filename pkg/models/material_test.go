package models

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/render"
	"github.com/taigrr/strand/pkg/shading"
)

// TestFaceMaterialIndex verifies per-face material assignment.
func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")
	mesh.Materials = []Material{
		{Name: "red", BaseColor: [4]float64{1, 0, 0, 1}},
		{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
		{V: [3]int{6, 7, 8}, Material: -1},
	}

	if mesh.GetFaceMaterial(1) != 1 {
		t.Errorf("Face 1 should have material 1, got %d", mesh.GetFaceMaterial(1))
	}
	if mesh.GetFaceMaterial(2) != -1 {
		t.Errorf("Face 2 should have material -1, got %d", mesh.GetFaceMaterial(2))
	}
	if mat := mesh.GetMaterial(0); mat == nil || mat.Name != "red" {
		t.Errorf("GetMaterial(0) should return 'red' material")
	}
	if mesh.GetMaterial(-1) != nil || mesh.GetMaterial(99) != nil {
		t.Errorf("GetMaterial should return nil out of range")
	}
}

func TestMeshClonePreservesMaterials(t *testing.T) {
	mesh := NewMesh("original")
	mesh.Materials = []Material{{Name: "mat1"}, {Name: "mat2"}}
	mesh.Faces = []Face{{V: [3]int{0, 1, 2}, Material: 1}}

	clone := mesh.Clone()
	clone.Materials[0].Name = "modified"
	if mesh.Materials[0].Name == "modified" {
		t.Errorf("Clone should have independent material copy")
	}
	if clone.GetFaceMaterial(0) != 1 {
		t.Errorf("Clone should preserve face material indices")
	}
}

func TestMaterialExponent(t *testing.T) {
	tests := []struct {
		name      string
		roughness float64
		want      float64
	}{
		{"mirror", 0, maxExponent},
		{"half", 0.5, 2/(0.0625*0.0625) - 2},
		{"rough", 1, 1},
		{"very rough clamps", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Material{Roughness: tt.roughness}
			if got := m.Exponent(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Exponent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaterialShading(t *testing.T) {
	sp := shading.ShadingPoint{UV: math3d.V2(0.5, 0.5)}

	t.Run("dielectric", func(t *testing.T) {
		m := Material{Name: "red", BaseColor: [4]float64{0.8, 0.1, 0.1, 1}, Roughness: 1}
		p := m.Shading().Resolve(sp)
		if p.Model != shading.ModelPhong {
			t.Errorf("Model = %v, want phong", p.Model)
		}
		if p.Diffuse.MaxDiffRGB(math3d.RGB(0.8, 0.1, 0.1)) > 1e-12 {
			t.Errorf("Diffuse = %v", p.Diffuse)
		}
		if p.Specular.MaxDiffRGB(math3d.Gray(dielectricF0)) > 1e-12 {
			t.Errorf("Specular = %v, want %v", p.Specular, dielectricF0)
		}
		if !p.Transparency.IsBlack() {
			t.Errorf("opaque material has transparency %v", p.Transparency)
		}
	})

	t.Run("metal", func(t *testing.T) {
		m := Material{BaseColor: [4]float64{1, 0.8, 0.2, 1}, Metallic: 1, Roughness: 0.3}
		p := m.Shading().Resolve(sp)
		if p.Specular.MaxDiffRGB(math3d.RGB(1, 0.8, 0.2)) > 1e-12 {
			t.Errorf("Specular = %v, want base color", p.Specular)
		}
	})

	t.Run("blend", func(t *testing.T) {
		m := Material{BaseColor: [4]float64{1, 1, 1, 0.25}, AlphaBlend: true, Roughness: 1}
		p := m.Shading().Resolve(sp)
		if math.Abs(p.Transparency.R-0.75) > 1e-12 {
			t.Errorf("Transparency = %v, want 0.75", p.Transparency)
		}
	})

	t.Run("alpha ignored without blend", func(t *testing.T) {
		m := Material{BaseColor: [4]float64{1, 1, 1, 0.25}, Roughness: 1}
		if p := m.Shading().Resolve(sp); !p.Transparency.IsBlack() {
			t.Errorf("Transparency = %v, want none", p.Transparency)
		}
	})

	t.Run("texture", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		for y := range 2 {
			for x := range 2 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
		m := Material{BaseColor: [4]float64{0.5, 0.5, 0.5, 1}, BaseMap: img, HasTexture: true, Roughness: 1}
		sm := m.Shading()
		if _, ok := sm.Diffuse.(*render.Texture); !ok {
			t.Fatalf("Diffuse source is %T, want *render.Texture", sm.Diffuse)
		}
		if d := sm.Resolve(sp).Diffuse; math.Abs(d.R-0.5) > 1e-9 {
			t.Errorf("tinted texture = %v, want 0.5", d)
		}
	})
}

func TestMeshPrimitives(t *testing.T) {
	mesh := NewMesh("quad")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(-1, -1, 0)},
		{Position: math3d.V3(1, -1, 0)},
		{Position: math3d.V3(1, 1, 0)},
		{Position: math3d.V3(-1, 1, 0)},
	}
	mesh.Materials = []Material{{Name: "green", BaseColor: [4]float64{0, 1, 0, 1}, Roughness: 1}}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{0, 2, 3}, Material: -1},
	}
	fallback := &shading.Material{Name: "fallback"}

	prims := mesh.Primitives(nil, fallback)
	if len(prims) != 2 {
		t.Fatalf("got %d primitives, want 2", len(prims))
	}
	if got := prims[0].(*render.Triangle).Material.Name; got != "green" {
		t.Errorf("face 0 material = %q, want green", got)
	}
	if got := prims[1].(*render.Triangle).Material; got != fallback {
		t.Errorf("face 1 material = %v, want fallback", got)
	}

	override := &shading.Material{Name: "override"}
	for i, p := range mesh.Primitives(override, fallback) {
		if p.(*render.Triangle).Material != override {
			t.Errorf("face %d ignores override", i)
		}
	}
}

func TestMeshFit(t *testing.T) {
	mesh := NewMesh("box")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(10, 10, 10), Normal: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(14, 12, 11), Normal: math3d.V3(0, 1, 0)},
	}
	mesh.Fit(math3d.V3(0, 1, 0), 2)

	if c := mesh.Center(); c.Distance(math3d.V3(0, 1, 0)) > 1e-9 {
		t.Errorf("Center() = %v, want (0,1,0)", c)
	}
	if s := mesh.Size(); math.Abs(s.X-2) > 1e-9 || math.Abs(s.Y-1) > 1e-9 {
		t.Errorf("Size() = %v, want (2,1,0.5)", s)
	}
	if n := mesh.Vertices[0].Normal; n.Distance(math3d.V3(0, 1, 0)) > 1e-9 {
		t.Errorf("uniform scale changed normal to %v", n)
	}
}
