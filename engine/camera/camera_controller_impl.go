package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraControllerImpl is the single implementation of CameraController.
// Orbit methods modify spherical coordinates and recompute position; planar methods
// translate both position and target along local camera axes.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis, 0 = +Z
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	initialPosition *mgl32.Vec3

	drag  DragMode
	lastX float64
	lastY float64
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller looking at the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    10.0,
		azimuth:   0.0,
		elevation: float32(math.Pi / 6),

		minRadius:    0.1,
		maxRadius:    1000.0,
		minElevation: -float32(math.Pi/2 - 0.01),
		maxElevation: float32(math.Pi/2 - 0.01),

		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         1.0,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.initialPosition != nil {
		cc.setPosition(*cc.initialPosition)
		cc.initialPosition = nil
	} else {
		cc.clamp()
		cc.updatePosition()
	}
	return cc
}

// clamp keeps radius and elevation within their bounds. Caller must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.elevation)))
	sinElev := float32(math.Sin(float64(cc.elevation)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
}

// setPosition derives spherical coordinates from a world position. Caller must hold the mutex.
func (cc *cameraControllerImpl) setPosition(p mgl32.Vec3) {
	offset := p.Sub(cc.target)
	r := offset.Len()
	if r > 1e-6 {
		cc.radius = r
		cc.elevation = float32(math.Asin(float64(mgl32.Clamp(offset.Y()/r, -1, 1))))
		cc.azimuth = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	} else {
		cc.radius = cc.minRadius
	}
	cc.clamp()
	cc.updatePosition()
}

// localAxes returns the camera's right and up axes, consistent with the LookAt matrix.
// Both are zero if position and target coincide. Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up mgl32.Vec3) {
	backward := cc.position.Sub(cc.target)
	if backward.Len() < 1e-8 {
		return
	}
	backward = backward.Normalize()

	right = mgl32.Vec3{0, 1, 0}.Cross(backward)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = backward.Cross(right)
	return right, up
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(position mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.setPosition(position)
}

func (cc *cameraControllerImpl) Target() mgl32.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius -= delta * cc.zoomSpeed
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) BeginDrag(mode DragMode, x, y float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.drag = mode
	cc.lastX, cc.lastY = x, y
}

func (cc *cameraControllerImpl) Drag(x, y float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.drag == DragNone {
		return
	}
	dx := float32(x - cc.lastX)
	dy := float32(y - cc.lastY)
	cc.lastX, cc.lastY = x, y

	switch cc.drag {
	case DragOrbit:
		cc.azimuth -= dx * cc.mouseSensitivity
		cc.elevation += dy * cc.mouseSensitivity
		cc.clamp()
		cc.updatePosition()
	case DragPan:
		// Scale by distance so the point under the cursor roughly follows it.
		scale := cc.mouseSensitivity * cc.radius
		cc.pan(-dx*scale, dy*scale)
	}
}

func (cc *cameraControllerImpl) EndDrag() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.drag = DragNone
}

func (cc *cameraControllerImpl) Dragging() DragMode {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.drag
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth += dAzimuth
	cc.elevation += dElevation
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = radius
	cc.clamp()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pan(delta*cc.panSpeed, 0)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pan(0, delta*cc.panSpeed)
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

// pan shifts target and position along the local axes. Caller must hold the mutex.
func (cc *cameraControllerImpl) pan(right, up float32) {
	r, u := cc.localAxes()
	offset := r.Mul(right).Add(u.Mul(up))
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}
