package render

import (
	"math"

	"github.com/taigrr/strand/pkg/math3d"
)

// Camera is a pinhole camera with position and Euler orientation.
type Camera struct {
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)
	Roll  float64 // Rotation around Z axis (tilt)

	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
}

// NewCamera creates a camera at (0, 0, 5) looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 1,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	// Forward is -Z in camera space, rotated by yaw and pitch
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector, rolled around Forward.
func (c *Camera) Right() math3d.Vec3 {
	right := math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
	if c.Roll == 0 {
		return right
	}
	return math3d.Rotate(c.Forward(), -c.Roll).MulVec3Dir(right)
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()

	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.Roll = 0
}

// Ray returns the primary ray through normalized image coordinates
// (u, v), with (0, 0) at the top-left corner and (1, 1) at the bottom-right.
func (c *Camera) Ray(u, v float64) Ray {
	h := math.Tan(c.FOV / 2)
	w := h * c.AspectRatio
	dir := c.Forward().
		Add(c.Right().Scale((2*u - 1) * w)).
		Add(c.Up().Scale((1 - 2*v) * h))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}
