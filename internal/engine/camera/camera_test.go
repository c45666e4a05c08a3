package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNewOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera(1)
	p := c.Position()
	if !near(p.X(), 0) || !near(p.Y(), 0) || !near(p.Z(), -4) {
		t.Errorf("Position() = %v, want (0, 0, -4)", p)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewOrbitCamera(1)

	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("Distance = %v, want min %v", c.Distance, c.MinDistance)
	}

	for i := 0; i < 100; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("Distance = %v, want max %v", c.Distance, c.MaxDistance)
	}
}

func TestHandlePanKeepsTargetNearOrigin(t *testing.T) {
	c := NewOrbitCamera(1)
	for i := 0; i < 1000; i++ {
		c.HandlePan(50, 30)
	}
	if l := c.Target.Len(); l > c.MaxTargetRadius+1e-5 {
		t.Errorf("target distance = %v, want <= %v", l, c.MaxTargetRadius)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera(1)
	c.HandleDrag(0, 10000)
	if c.Pitch != c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(0, -20000)
	if c.Pitch != -c.MaxPitch {
		t.Errorf("Pitch = %v, want %v", c.Pitch, -c.MaxPitch)
	}
}

func TestCenterPixelLooksAtTarget(t *testing.T) {
	c := NewOrbitCamera(4.0 / 3.0)
	inv := c.InverseViewProjection()

	nearPt := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -1}, inv)
	farPt := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, 1}, inv)
	dir := farPt.Sub(nearPt).Normalize()

	want := c.Target.Sub(c.Position()).Normalize()
	if dir.Sub(want).Len() > 1e-3 {
		t.Errorf("center ray direction = %v, want %v", dir, want)
	}
}
