// Package scene reads JSON scene descriptions and builds render scenes from
// them.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/taigrr/strand/pkg/math3d"
)

var (
	ErrNoCamera        = errors.New("scene has no camera")
	ErrBadSize         = errors.New("image size must be positive")
	ErrUnknownModel    = errors.New("unknown shading model")
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownLight    = errors.New("unknown light type")
	ErrUnknownMode     = errors.New("unknown light mode")
	ErrDuplicateName   = errors.New("duplicate name")
)

// Defaults applied by Parse.
const (
	DefaultWidth    = 320
	DefaultHeight   = 240
	DefaultSamples  = 1
	DefaultMaxDepth = 8
	DefaultFOV      = 45.0
	DefaultSkyRays  = 16
)

// Vec is a JSON [x, y, z] triple.
type Vec [3]float64

func (v Vec) V3() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// RGB is a JSON [r, g, b] triple in linear light.
type RGB [3]float64

func (c RGB) Color() math3d.Color { return math3d.RGB(c[0], c[1], c[2]) }

type CameraCfg struct {
	Position Vec     `json:"position"`
	LookAt   Vec     `json:"lookAt"`
	FOVDeg   float64 `json:"fovDeg,omitempty"` // vertical
	RollDeg  float64 `json:"rollDeg,omitempty"`
}

type SkyCfg struct {
	Color    RGB     `json:"color"`
	Samples  int     `json:"samples,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// LightCfg describes one light. Type is point, directional, area or sun.
type LightCfg struct {
	Type       string  `json:"type"`
	Name       string  `json:"name,omitempty"`
	Color      RGB     `json:"color"`
	Intensity  float64 `json:"intensity"`
	NoDiffuse  bool    `json:"noDiffuse,omitempty"`
	NoSpecular bool    `json:"noSpecular,omitempty"`

	Position  Vec `json:"position,omitempty"`  // point
	Direction Vec `json:"direction,omitempty"` // directional, toward the light

	Corner  Vec `json:"corner,omitempty"` // area
	U       Vec `json:"u,omitempty"`
	V       Vec `json:"v,omitempty"`
	Samples int `json:"samples,omitempty"`

	Time      string  `json:"time,omitempty"` // sun, RFC 3339
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// MaterialCfg describes a named material. Model is hair or phong.
type MaterialCfg struct {
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	Ambience     *RGB    `json:"ambience,omitempty"` // hair: black, phong: white
	Ambient      RGB     `json:"ambient"`
	Diffuse      RGB     `json:"diffuse"`
	Specular     RGB     `json:"specular"`
	Exponent     float64 `json:"exponent"`
	Transparency RGB     `json:"transparency"`
	Texture      string  `json:"texture,omitempty"` // diffuse map, tinted by Diffuse

	// LightMode is instance, inclusive, exclusive or none.
	LightMode string   `json:"lightMode,omitempty"`
	Lights    []string `json:"lights,omitempty"`
}

type SphereCfg struct {
	Center   Vec     `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material,omitempty"`
}

// MeshCfg places a glTF model. Material overrides the file's materials.
type MeshCfg struct {
	Path      string  `json:"path"`
	Material  string  `json:"material,omitempty"`
	Center    Vec     `json:"center"`
	Size      float64 `json:"size,omitempty"` // largest extent; 0 keeps the file's scale
	RotateDeg Vec     `json:"rotateDeg,omitempty"`
}

// GroomCfg grows strands over a cap of a sphere around Axis.
type GroomCfg struct {
	Center    Vec     `json:"center"`
	Radius    float64 `json:"radius"`
	Axis      Vec     `json:"axis,omitempty"`   // defaults to +Y
	CapDeg    float64 `json:"capDeg,omitempty"` // half-angle; defaults to 90
	Count     int     `json:"count"`
	Length    float64 `json:"length"`
	Segments  int     `json:"segments,omitempty"`
	RootWidth float64 `json:"rootWidth"`
	TipWidth  float64 `json:"tipWidth"`
	Curl      float64 `json:"curl,omitempty"`  // helix radius at the tip
	Turns     float64 `json:"turns,omitempty"` // helix turns along the strand
	Gravity   float64 `json:"gravity,omitempty"`
	Seed      uint64  `json:"seed,omitempty"`
	Material  string  `json:"material,omitempty"`
}

// Config is a decoded scene file.
type Config struct {
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Samples    int           `json:"samples,omitempty"`
	MaxDepth   int           `json:"maxDepth,omitempty"`
	Seed       uint64        `json:"seed,omitempty"`
	Passes     []string      `json:"passes,omitempty"` // empty means every pass
	Background RGB           `json:"background"`
	Sky        *SkyCfg       `json:"sky,omitempty"`
	Camera     *CameraCfg    `json:"camera"`
	Lights     []LightCfg    `json:"lights"`
	Materials  []MaterialCfg `json:"materials"`
	Spheres    []SphereCfg   `json:"spheres,omitempty"`
	Meshes     []MeshCfg     `json:"meshes,omitempty"`
	Grooms     []GroomCfg    `json:"grooms,omitempty"`

	// dir resolves relative mesh and texture paths.
	dir string
}

// Load reads and validates a scene file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a scene description, fills defaults and validates it.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Samples <= 0 {
		c.Samples = DefaultSamples
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Camera != nil && c.Camera.FOVDeg <= 0 {
		c.Camera.FOVDeg = DefaultFOV
	}
	if c.Sky != nil && c.Sky.Samples == 0 {
		c.Sky.Samples = DefaultSkyRays
	}
	for i := range c.Grooms {
		g := &c.Grooms[i]
		if g.Segments <= 0 {
			g.Segments = 4
		}
		if g.CapDeg <= 0 {
			g.CapDeg = 90
		}
		if g.Axis == (Vec{}) {
			g.Axis = Vec{0, 1, 0}
		}
	}
}

// Validate checks the parts of the description that do not need files.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadSize, c.Width, c.Height)
	}
	if c.Camera == nil {
		return ErrNoCamera
	}

	names := make(map[string]bool, len(c.Materials))
	for _, m := range c.Materials {
		if names[m.Name] {
			return fmt.Errorf("material %q: %w", m.Name, ErrDuplicateName)
		}
		names[m.Name] = true
		if _, err := parseModel(m.Model); err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		if _, err := parseLightMode(m.LightMode); err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
	}
	known := func(name string) error {
		if name != "" && !names[name] {
			return fmt.Errorf("%w %q", ErrUnknownMaterial, name)
		}
		return nil
	}
	for i, s := range c.Spheres {
		if err := known(s.Material); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	for i, m := range c.Meshes {
		if err := known(m.Material); err != nil {
			return fmt.Errorf("mesh %d: %w", i, err)
		}
	}
	for i, g := range c.Grooms {
		if err := known(g.Material); err != nil {
			return fmt.Errorf("groom %d: %w", i, err)
		}
	}

	lights := make(map[string]bool, len(c.Lights))
	for i, l := range c.Lights {
		switch l.Type {
		case "point", "directional", "area", "sun":
		default:
			return fmt.Errorf("light %d: %w %q", i, ErrUnknownLight, l.Type)
		}
		if l.Name == "" {
			continue
		}
		if lights[l.Name] {
			return fmt.Errorf("light %q: %w", l.Name, ErrDuplicateName)
		}
		lights[l.Name] = true
	}

	if _, err := c.PassList(); err != nil {
		return err
	}
	return nil
}
