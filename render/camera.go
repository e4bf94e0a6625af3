package render

import (
	"github.com/borealis-gfx/borealis/types"
	"github.com/chewxy/math32"
)

// The default vertical field of view (in degrees) when the camera node does
// not declare one.
const DefaultFOV float32 = 60.0

// A perspective camera compiled out of a camera node's parameter values.
type Camera struct {
	Position  types.Vec3
	Direction types.Vec3
	Up        types.Vec3
	Aspect    float32
	FOV       float32
}

// Stores the ray directions at the four corners of the camera frustrum. Per
// pixel rays are generated by interpolating the corner rays.
type Frustrum [4]types.Vec3

// Frustrum calculates the corner ray directions for the camera.
func (c *Camera) Frustrum() Frustrum {
	dir := c.Direction.Normalize()
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)

	fov := c.FOV
	if fov <= 0 {
		fov = DefaultFOV
	}
	halfH := math32.Tan(fov * math32.Pi / 360.0)
	halfW := halfH * c.Aspect

	tl := dir.Add(up.Mul(halfH)).Sub(right.Mul(halfW))
	tr := dir.Add(up.Mul(halfH)).Add(right.Mul(halfW))
	bl := dir.Sub(up.Mul(halfH)).Sub(right.Mul(halfW))
	br := dir.Sub(up.Mul(halfH)).Add(right.Mul(halfW))

	return Frustrum{tl, tr, bl, br}
}

// Ray interpolates the frustrum corner rays for normalized screen
// coordinates u, v in [0, 1] with v increasing downwards.
func (fr Frustrum) Ray(u, v float32) types.Vec3 {
	top := fr[0].Add(fr[1].Sub(fr[0]).Mul(u))
	bottom := fr[2].Add(fr[3].Sub(fr[2]).Mul(u))
	return top.Add(bottom.Sub(top).Mul(v)).Normalize()
}

// Move the camera position along its basis vectors. Used by the interactive
// viewer; dolly moves along the view direction, truck sideways.
func (c *Camera) Move(dolly, truck, pedestal float32) {
	dir := c.Direction.Normalize()
	right := dir.Cross(c.Up).Normalize()
	c.Position = c.Position.
		Add(dir.Mul(dolly)).
		Add(right.Mul(truck)).
		Add(c.Up.Normalize().Mul(pedestal))
}

// Rotate the camera direction by yaw/pitch angles (in radians).
func (c *Camera) Rotate(yaw, pitch float32) {
	dir := c.Direction.Normalize()
	pitchAxis := dir.Cross(c.Up)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, pitch)
	yawQuat := types.QuatFromAxisAngle(c.Up, yaw)
	c.Direction = pitchQuat.Mul(yawQuat).Normalize().Rotate(dir)
}
