package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// within compares component-wise with an absolute tolerance, so rounding around zero passes.
func within(got, want mgl32.Vec4, tol float32) bool {
	for i := range got {
		if mgl32.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	if got := mgl32.RadToDeg(c.Fov()); mgl32.Abs(got-75) > 1e-4 {
		t.Errorf("fov = %v degrees, want 75", got)
	}
	if c.Near() != 0.1 || c.Far() != 1000 || c.Aspect() != 1 {
		t.Errorf("near=%v far=%v aspect=%v", c.Near(), c.Far(), c.Aspect())
	}
	if c.ViewMatrix() != mgl32.Ident4() {
		t.Error("camera without a controller should have an identity view")
	}
}

func TestControllerInitialPosition(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{3, 6, 5}))
	if p := ctrl.Position(); !p.ApproxEqualThreshold(mgl32.Vec3{3, 6, 5}, 1e-4) {
		t.Fatalf("position = %v, want (3, 6, 5)", p)
	}
	if r := ctrl.Radius(); mgl32.Abs(r-float32(math.Sqrt(70))) > 1e-4 {
		t.Errorf("radius = %v, want sqrt(70)", r)
	}
}

func TestCameraLooksAtTarget(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{3, 6, 5}))
	c := NewCamera(WithController(ctrl), WithAspect(16.0/9.0))

	eye := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	want := mgl32.Vec4{0, 0, -ctrl.Radius(), 1}
	if !within(eye, want, 1e-4) {
		t.Errorf("target in view space = %v, want %v", eye, want)
	}
	if !c.Position().ApproxEqualThreshold(mgl32.Vec3{3, 6, 5}, 1e-4) {
		t.Errorf("camera position = %v", c.Position())
	}

	u := c.Uniform()
	if u.ViewProj != c.ViewProjectionMatrix() || u.CameraPosition != ctrl.Position() {
		t.Error("uniform does not mirror the camera state")
	}
	if n := len(u.Marshal()); n != 80 {
		t.Errorf("uniform size = %d, want 80", n)
	}
}

func TestSetAspectIgnoresDegenerateValues(t *testing.T) {
	c := NewCamera(WithAspect(2))
	proj := c.ProjectionMatrix()
	c.SetAspect(0)
	c.SetAspect(-1)
	c.SetAspect(float32(math.NaN()))
	if c.Aspect() != 2 || c.ProjectionMatrix() != proj {
		t.Errorf("aspect = %v after degenerate updates, want 2", c.Aspect())
	}
	c.SetAspect(1)
	if c.ProjectionMatrix() == proj {
		t.Error("projection not recomputed after a valid aspect change")
	}
}

func TestCameraUpdateFollowsController(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{0, 0, 5}))
	c := NewCamera(WithController(ctrl))
	before := c.ViewMatrix()

	ctrl.SetPosition(mgl32.Vec3{0, 0, 8})
	if c.ViewMatrix() != before {
		t.Fatal("view changed before Update")
	}
	c.Update()
	if c.ViewMatrix() == before {
		t.Error("view did not follow the controller after Update")
	}
}

func TestZoomClampsRadius(t *testing.T) {
	ctrl := NewCameraController(WithRadius(5), WithRadiusBounds(1, 10), WithZoomSpeed(1))
	ctrl.Zoom(100)
	if r := ctrl.Radius(); r != 1 {
		t.Errorf("radius after zooming in = %v, want 1", r)
	}
	ctrl.Zoom(-100)
	if r := ctrl.Radius(); r != 10 {
		t.Errorf("radius after zooming out = %v, want 10", r)
	}
}

func TestOrbitKeepsDistance(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{3, 6, 5}))
	r := ctrl.Radius()
	ctrl.Orbit(0.7, -0.3)
	if d := ctrl.Position().Sub(ctrl.Target()).Len(); mgl32.Abs(d-r) > 1e-4 {
		t.Errorf("distance after orbit = %v, want %v", d, r)
	}
	ctrl.Orbit(0, 10)
	if e := ctrl.Elevation(); e > float32(math.Pi/2) {
		t.Errorf("elevation %v exceeds straight up", e)
	}
}

func TestPanMovesTargetAndPosition(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{0, 0, 5}))
	ctrl.PanRight(2)
	ctrl.PanUp(1)

	if tg := ctrl.Target(); !within(tg.Vec4(0), mgl32.Vec4{2, 1, 0, 0}, 1e-4) {
		t.Errorf("target = %v, want (2, 1, 0)", tg)
	}
	if p := ctrl.Position(); !p.ApproxEqualThreshold(mgl32.Vec3{2, 1, 5}, 1e-4) {
		t.Errorf("position = %v, want (2, 1, 5)", p)
	}
}

func TestDrag(t *testing.T) {
	ctrl := NewCameraController(WithPosition(mgl32.Vec3{0, 0, 5}), WithMouseSensitivity(0.01))

	ctrl.Drag(100, 100)
	if ctrl.Azimuth() != 0 {
		t.Fatal("Drag without BeginDrag moved the camera")
	}

	ctrl.BeginDrag(DragOrbit, 100, 100)
	ctrl.Drag(90, 100)
	if az := ctrl.Azimuth(); mgl32.Abs(az-0.1) > 1e-5 {
		t.Errorf("azimuth after drag = %v, want 0.1", az)
	}
	ctrl.EndDrag()
	if ctrl.Dragging() != DragNone {
		t.Error("drag still active after EndDrag")
	}

	target := ctrl.Target()
	ctrl.BeginDrag(DragPan, 0, 0)
	ctrl.Drag(10, 0)
	if ctrl.Target() == target {
		t.Error("pan drag did not move the target")
	}
}

func TestSetPositionAtTargetKeepsCameraUsable(t *testing.T) {
	ctrl := NewCameraController(WithRadiusBounds(0.5, 100))
	ctrl.SetPosition(ctrl.Target())
	if r := ctrl.Radius(); r != 0.5 {
		t.Errorf("radius = %v, want minimum 0.5", r)
	}
	if ctrl.Position() == ctrl.Target() {
		t.Error("camera collapsed onto its target")
	}
}
