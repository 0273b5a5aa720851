package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/taigrr/strand/pkg/math3d"
)

// SunDirection returns the unit direction toward the sun at the RFC 3339
// time ts for an observer at the given latitude and longitude (degrees, east
// positive). Scene axes are +X east, +Y up and -Z north.
func SunDirection(ts string, lat, lon float64) (math3d.Vec3, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return math3d.Vec3{}, fmt.Errorf("parse sun time: %w", err)
	}
	return SunDirectionAt(t, lat, lon), nil
}

// SunDirectionAt is SunDirection for a parsed time.
func SunDirectionAt(t time.Time, lat, lon float64) math3d.Vec3 {
	jd := julian.TimeToJD(t.UTC())

	ra, dec := solar.ApparentEquatorial(jd)
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Earth-fixed frame via apparent sidereal time at the instant.
	gst := sidereal.Apparent(jd).Angle()
	cg, sg := gst.Cos(), gst.Sin()
	ecef := math3d.V3(x*cg+y*sg, -x*sg+y*cg, z)

	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	sp, cp := math.Sincos(phi)
	sl, cl := math.Sincos(lambda)
	up := math3d.V3(cp*cl, cp*sl, sp)
	east := math3d.V3(-sl, cl, 0)
	north := math3d.V3(-sp*cl, -sp*sl, cp)

	return math3d.V3(ecef.Dot(east), ecef.Dot(up), -ecef.Dot(north)).Normalize()
}
