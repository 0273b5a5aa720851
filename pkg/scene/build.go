package scene

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/strand/pkg/math3d"
	"github.com/taigrr/strand/pkg/models"
	"github.com/taigrr/strand/pkg/render"
	"github.com/taigrr/strand/pkg/shading"
)

// PassList returns the configured passes, or nil for every pass.
func (c *Config) PassList() ([]shading.Pass, error) {
	if len(c.Passes) == 0 {
		return nil, nil
	}
	out := make([]shading.Pass, 0, len(c.Passes))
	for _, name := range c.Passes {
		p, err := shading.ParsePass(strings.ToUpper(name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Renderer builds the scene and a renderer configured from the file.
func (c *Config) Renderer() (*render.Renderer, error) {
	sc, err := c.Build()
	if err != nil {
		return nil, err
	}
	passList, err := c.PassList()
	if err != nil {
		return nil, err
	}
	return &render.Renderer{
		Scene:   sc,
		Width:   c.Width,
		Height:  c.Height,
		Samples: c.Samples,
		Seed:    c.Seed,
		Passes:  passList,
	}, nil
}

// Build turns the description into a render scene, loading any meshes and
// textures it references.
func (c *Config) Build() (*render.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	sc := render.NewScene()
	sc.Background = c.Background.Color()
	sc.MaxDepth = c.MaxDepth
	if c.Sky != nil {
		sc.Sky = c.Sky.Color.Color()
		sc.SkySamples = c.Sky.Samples
		sc.SkyDistance = c.Sky.Distance
	}
	sc.Camera = c.Camera.build(float64(c.Width) / float64(c.Height))

	for i, lc := range c.Lights {
		l, err := lc.build()
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		sc.AddLight(l)
	}

	mats := make(map[string]*shading.Material, len(c.Materials))
	for _, mc := range c.Materials {
		m, err := mc.build(c.dir)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mc.Name, err)
		}
		mats[mc.Name] = m
	}
	// Validate has already rejected unknown names; "" selects the default.
	lookup := func(name string) *shading.Material {
		if name == "" {
			return sc.Default
		}
		return mats[name]
	}

	for _, s := range c.Spheres {
		sc.Add(&render.Sphere{Center: s.Center.V3(), Radius: s.Radius, Material: lookup(s.Material)})
	}
	for i, mc := range c.Meshes {
		prims, err := mc.build(c.dir, lookup(mc.Material), sc.Default, mc.Material != "")
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		sc.Add(prims...)
	}
	for _, g := range c.Grooms {
		for _, f := range g.Fibers() {
			f.Material = lookup(g.Material)
			sc.Add(f)
		}
	}

	sc.Prepare()
	return sc, nil
}

func (cc *CameraCfg) build(aspect float64) *render.Camera {
	cam := render.NewCamera()
	cam.SetPosition(cc.Position.V3())
	cam.SetFOV(cc.FOVDeg * math.Pi / 180)
	cam.SetAspectRatio(aspect)
	if cc.LookAt != cc.Position {
		cam.LookAt(cc.LookAt.V3())
	}
	cam.Roll = cc.RollDeg * math.Pi / 180
	return cam
}

func (lc LightCfg) build() (render.Light, error) {
	em := render.Emission{LightName: lc.Name, NoDiffuse: lc.NoDiffuse, NoSpecular: lc.NoSpecular}
	switch lc.Type {
	case "point":
		return &render.PointLight{Emission: em, Position: lc.Position.V3(), Color: lc.Color.Color(), Intensity: lc.Intensity}, nil
	case "directional":
		return &render.DirectionalLight{Emission: em, Direction: lc.Direction.V3().Normalize(), Color: lc.Color.Color(), Intensity: lc.Intensity}, nil
	case "area":
		return &render.AreaLight{
			Emission: em, Corner: lc.Corner.V3(), U: lc.U.V3(), V: lc.V.V3(),
			Color: lc.Color.Color(), Intensity: lc.Intensity, Samples: lc.Samples,
		}, nil
	case "sun":
		dir, err := SunDirection(lc.Time, lc.Latitude, lc.Longitude)
		if err != nil {
			return nil, err
		}
		return &render.DirectionalLight{Emission: em, Direction: dir, Color: lc.Color.Color(), Intensity: lc.Intensity}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownLight, lc.Type)
}

func parseModel(s string) (shading.Model, error) {
	switch strings.ToLower(s) {
	case "hair":
		return shading.ModelHair, nil
	case "phong", "":
		return shading.ModelPhong, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownModel, s)
}

func parseLightMode(s string) (shading.LightMode, error) {
	switch strings.ToLower(s) {
	case "instance", "":
		return shading.LightsInstance, nil
	case "inclusive":
		return shading.LightsInclusive, nil
	case "exclusive":
		return shading.LightsExclusive, nil
	case "none":
		return shading.LightsNone, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
}

func (mc MaterialCfg) build(dir string) (*shading.Material, error) {
	model, err := parseModel(mc.Model)
	if err != nil {
		return nil, err
	}
	mode, err := parseLightMode(mc.LightMode)
	if err != nil {
		return nil, err
	}
	m := &shading.Material{
		Name:         mc.Name,
		Model:        model,
		Ambient:      shading.Const(mc.Ambient.Color()),
		Diffuse:      shading.Const(mc.Diffuse.Color()),
		Specular:     shading.Const(mc.Specular.Color()),
		Exponent:     shading.Scalar(mc.Exponent),
		Transparency: shading.Const(mc.Transparency.Color()),
		LightMode:    mode,
		LightNames:   mc.Lights,
	}
	if mc.Ambience != nil {
		m.Ambience = shading.Const(mc.Ambience.Color())
	}
	if mc.Texture != "" {
		tex, err := render.LoadTexture(resolve(dir, mc.Texture))
		if err != nil {
			return nil, err
		}
		if d := mc.Diffuse.Color(); d != math3d.Black() {
			tex.Tint = d
		}
		m.Diffuse = tex
	}
	return m, nil
}

func (mc MeshCfg) build(dir string, mat, fallback *shading.Material, override bool) ([]render.Primitive, error) {
	mesh, err := models.LoadGLB(resolve(dir, mc.Path))
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if mc.RotateDeg != (Vec{}) {
		const deg = math.Pi / 180
		mesh.Transform(math3d.RotateY(mc.RotateDeg[1] * deg).
			Mul(math3d.RotateX(mc.RotateDeg[0] * deg)).
			Mul(math3d.RotateZ(mc.RotateDeg[2] * deg)))
	}
	if mc.Size > 0 {
		mesh.Fit(mc.Center.V3(), mc.Size)
	} else if mc.Center != (Vec{}) {
		mesh.Transform(math3d.Translate(mc.Center.V3()))
	}
	if !override {
		mat = nil
	}
	return mesh.Primitives(mat, fallback), nil
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
