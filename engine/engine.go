package engine

import (
	"errors"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/clock"
	"github.com/Carmen-Shannon/oxy-glb/engine/debug"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/profiler"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/scene"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"github.com/Carmen-Shannon/oxy-glb/logger"

	"go.uber.org/zap"
)

var (
	// ErrNoRenderer is returned by Frame when the engine was built without a renderer.
	ErrNoRenderer = errors.New("engine has no renderer")

	// ErrNoWindow is returned by Run when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")
)

// engine implements the Engine interface.
// Every field is owned by the goroutine running the window message loop.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera
	lights   light.Rig
	scene    scene.Scene
	clock    clock.Clock
	panel    debug.Panel

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	sleep            func(time.Duration)

	frames uint64
	err    error

	log *zap.Logger
}

// Engine drives one scene: it drains the scene's load events, advances its animations by the
// frame clock and renders it through the camera, once per window message loop iteration.
type Engine interface {
	// Frame runs one iteration of the render loop: drain scene events, tick the clock,
	// advance the scene and render its root. A scene that is still loading renders empty.
	//
	// Returns:
	//   - error: the renderer's error, which ends Run
	Frame() error

	// Run hosts Frame on the window message loop and blocks until the window closes
	// or a frame fails.
	//
	// Returns:
	//   - error: the first render or resize error, nil if the window was closed normally
	Run() error

	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer, or nil
	Renderer() renderer.Renderer

	// Camera returns the camera frames are rendered through.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Lights returns the light rig frames are shaded with.
	//
	// Returns:
	//   - light.Rig: the lights
	Lights() light.Rig

	// SetLights replaces the light rig starting with the next frame.
	//
	// Parameters:
	//   - rig: the new lights
	SetLights(rig light.Rig)

	// Scene returns the scene being driven.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Clock returns the frame clock.
	//
	// Returns:
	//   - clock.Clock: the clock
	Clock() clock.Clock

	// DebugPanel returns the panel key presses are routed to, or nil.
	//
	// Returns:
	//   - debug.Panel: the panel
	DebugPanel() debug.Panel

	// Frames returns the number of frames rendered successfully.
	//
	// Returns:
	//   - uint64: the frame count
	Frames() uint64

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)
}

// NewEngine creates a new Engine instance with the provided options.
// Anything not supplied gets a default: a fresh clock, the default light rig, a 75° camera
// orbiting the origin and an empty scene named "main". If a window is supplied, its resize
// and input callbacks are installed.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		sleep: time.Sleep,
		log:   logger.Named("engine"),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clock.NewClock()
	}
	if e.lights == nil {
		e.lights = light.DefaultRig()
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if e.scene == nil {
		e.scene = scene.NewScene("main")
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		if w, h := e.window.Width(), e.window.Height(); w > 0 && h > 0 {
			e.camera.SetAspect(float32(w) / float32(h))
		}
		e.window.SetResizeCallback(e.resize)
		e.installInput()
	}

	return e
}

func (e *engine) Window() window.Window       { return e.window }
func (e *engine) Renderer() renderer.Renderer { return e.renderer }
func (e *engine) Camera() camera.Camera       { return e.camera }
func (e *engine) Lights() light.Rig           { return e.lights }
func (e *engine) SetLights(rig light.Rig)     { e.lights = rig }
func (e *engine) Scene() scene.Scene          { return e.scene }
func (e *engine) Clock() clock.Clock          { return e.clock }
func (e *engine) DebugPanel() debug.Panel     { return e.panel }
func (e *engine) Frames() uint64              { return e.frames }

func (e *engine) Frame() error {
	if e.renderer == nil {
		return ErrNoRenderer
	}

	e.scene.DrainEvents()

	dt := e.clock.Tick()
	e.scene.Update(dt)
	e.camera.Update()

	if err := e.renderer.RenderFrame(e.scene.Root(), e.camera, e.lights); err != nil {
		return err
	}
	e.frames++

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if e.renderer == nil {
		return ErrNoRenderer
	}

	e.window.SetUpdateCallback(func() {
		start := time.Now()
		if err := e.Frame(); err != nil {
			e.stop(err)
			return
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				e.sleep(remaining)
			}
		}
	})
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)

	e.log.Info("render loop stopped",
		zap.Uint64("frames", e.frames),
		zap.Float64("elapsed", e.clock.Elapsed()),
		zap.Error(e.err),
	)
	return e.err
}

// stop records the first error and asks the window to close.
func (e *engine) stop(err error) {
	if e.err == nil {
		e.err = err
	}
	e.log.Error("stopping render loop", zap.Error(err))
	if e.window != nil {
		e.window.RequestClose()
	}
}

// resize keeps the camera aspect and the renderer surface in step with the framebuffer.
// A zero-sized framebuffer (minimized window) leaves the aspect untouched.
func (e *engine) resize(width, height int) {
	if width > 0 && height > 0 {
		e.camera.SetAspect(float32(width) / float32(height))
	}
	if e.renderer == nil {
		return
	}
	if err := e.renderer.Resize(width, height); err != nil {
		e.stop(err)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

// frameDuration converts a frame rate cap to the minimum frame duration, 0 for uncapped.
func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
