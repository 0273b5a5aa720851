package shading

import "fmt"

// Pass identifies a named output channel.
type Pass int

const (
	PassAmbientMaterialColor Pass = iota
	PassDiffuseMaterialColor
	PassDirectIrradiance
	PassDirectIrradianceNoShadow
	PassDiffuse
	PassDiffuseNoShadow
	PassSpecular
	PassSpecularNoShadow
	PassBeauty
	PassBeautyNoShadow
	PassShadow
	PassRawShadow
	PassIndirect

	NumPasses int = iota
)

var passNames = [...]string{
	PassAmbientMaterialColor:     "AMBIENT_MATERIAL_COLOR",
	PassDiffuseMaterialColor:     "DIFFUSE_MATERIAL_COLOR",
	PassDirectIrradiance:         "DIRECT_IRRADIANCE",
	PassDirectIrradianceNoShadow: "DIRECT_IRRADIANCE_NO_SHADOW",
	PassDiffuse:                  "DIFFUSE",
	PassDiffuseNoShadow:          "DIFFUSE_NO_SHADOW",
	PassSpecular:                 "SPECULAR",
	PassSpecularNoShadow:         "SPECULAR_NO_SHADOW",
	PassBeauty:                   "BEAUTY",
	PassBeautyNoShadow:           "BEAUTY_NO_SHADOW",
	PassShadow:                   "SHADOW",
	PassRawShadow:                "RAW_SHADOW",
	PassIndirect:                 "INDIRECT",
}

// String returns the pass name used by compositing tools.
func (p Pass) String() string {
	if p < 0 || int(p) >= NumPasses {
		return fmt.Sprintf("Pass(%d)", int(p))
	}
	return passNames[p]
}

// AllPasses returns every pass in declaration order.
func AllPasses() []Pass {
	out := make([]Pass, NumPasses)
	for i := range out {
		out[i] = Pass(i)
	}
	return out
}

// ParsePass looks up a pass by its name.
func ParsePass(name string) (Pass, error) {
	for i, n := range passNames {
		if n == name {
			return Pass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pass %q", name)
}
