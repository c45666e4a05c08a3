// Package camera provides the orbit camera used to inspect the brain model.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	// Point to orbit around
	Target mgl32.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Projection
	FOV    float32 // Vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32

	// Constraints
	MinDistance     float32
	MaxDistance     float32
	MaxPitch        float32
	MaxTargetRadius float32 // Target stays within this distance of the origin

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32
}

// NewOrbitCamera creates a camera at (0, 0, -4) looking at the origin.
func NewOrbitCamera(aspect float32) *OrbitCamera {
	return &OrbitCamera{
		Distance:        4,
		Yaw:             gomath.Pi,
		FOV:             75,
		Aspect:          aspect,
		Near:            0.1,
		Far:             1000,
		MinDistance:     1,
		MaxDistance:     5,
		MaxPitch:        1.5,
		MaxTargetRadius: 0.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.002,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp := float64(c.Pitch)
	x := c.Distance * float32(gomath.Cos(cp)*gomath.Sin(float64(c.Yaw)))
	y := c.Distance * float32(gomath.Sin(cp))
	z := c.Distance * float32(gomath.Cos(cp)*gomath.Cos(float64(c.Yaw)))
	return c.Target.Add(mgl32.Vec3{x, y, z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitCamera) ProjectionMatrix() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// InverseViewProjection is used to unproject pointer positions.
func (c *OrbitCamera) InverseViewProjection() mgl32.Mat4 {
	return c.ViewProjection().Inv()
}

// SetAspect updates the aspect ratio after a resize.
func (c *OrbitCamera) SetAspect(width, height int) {
	if height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the target in the view plane and keeps it within
// MaxTargetRadius of the origin.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	view := c.ViewMatrix()
	right := mgl32.Vec3{view[0], view[4], view[8]}
	up := mgl32.Vec3{view[1], view[5], view[9]}

	speed := c.Distance * c.PanSensitivity
	c.Target = c.Target.Add(right.Mul(-deltaX * speed)).Add(up.Mul(deltaY * speed))

	if l := c.Target.Len(); c.MaxTargetRadius > 0 && l > c.MaxTargetRadius {
		c.Target = c.Target.Mul(c.MaxTargetRadius / l)
	}
}
