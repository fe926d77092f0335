package components

import (
	"github.com/tectonic3d/tectonic/engine/math"
)

/**
 * @brief A free-flying camera used by the benchmark harness to move over
 * the terrain. Yaw and pitch are in degrees.
 */
type Camera struct {
	Position math.Vec3
	Front    math.Vec3
	Up       math.Vec3

	Yaw   float32
	Pitch float32

	Speed            float32
	MouseSensitivity float32
}

func NewCamera() *Camera {
	c := &Camera{
		Position:         math.NewVec3(0, 5, 10),
		Up:               math.NewVec3(0, 1, 0),
		Yaw:              -90,
		Pitch:            0,
		Speed:            5.0,
		MouseSensitivity: 0.1,
	}
	c.updateFront()
	return c
}

func (c *Camera) View() math.Mat4 {
	return math.NewMat4LookAt(c.Position, c.Position.Add(c.Front), c.Up)
}

// MoveForward moves along the view direction by speed*dt; negative dt moves
// backwards.
func (c *Camera) MoveForward(dt float32) {
	c.Position = c.Position.Add(c.Front.MulScalar(c.Speed * dt))
}

// Strafe moves along the camera's right vector by speed*dt.
func (c *Camera) Strafe(dt float32) {
	right := c.Front.Cross(c.Up).Normalized()
	c.Position = c.Position.Add(right.MulScalar(c.Speed * dt))
}

// Look applies a mouse delta to yaw and pitch, clamping pitch to avoid
// flipping over the vertical.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch += dy * c.MouseSensitivity
	c.Pitch = math.Clamp(c.Pitch, -89.0, 89.0)
	c.updateFront()
}

func (c *Camera) updateFront() {
	yaw := math.DegToRad(c.Yaw)
	pitch := math.DegToRad(c.Pitch)
	c.Front = math.NewVec3(
		math.Cos(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw)*math.Cos(pitch),
	).Normalized()
}
