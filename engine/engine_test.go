package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/clock"
	"github.com/Carmen-Shannon/oxy-glb/engine/debug"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/renderer"
	"github.com/Carmen-Shannon/oxy-glb/engine/scene"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// fakeRenderer records the roots it was asked to draw and fails on request.
type fakeRenderer struct {
	roots     []*model.Node
	failAt    int // 1-based frame number to fail on, 0 = never
	err       error
	resizes   [][2]int
	resizeErr error
	clear     colorful.Color
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) RenderFrame(root *model.Node, cam camera.Camera, lights light.Rig) error {
	f.roots = append(f.roots, root)
	if f.failAt > 0 && len(f.roots) == f.failAt {
		return f.err
	}
	return nil
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.resizes = append(f.resizes, [2]int{width, height})
	return f.resizeErr
}

func (f *fakeRenderer) SetClearColor(c colorful.Color) { f.clear = c }
func (f *fakeRenderer) ClearColor() colorful.Color     { return f.clear }
func (f *fakeRenderer) Stats() renderer.FrameStats     { return renderer.FrameStats{} }
func (f *fakeRenderer) Release()                       {}

// fakeWindow runs the update callback until RequestClose or maxIterations.
type fakeWindow struct {
	maxIterations int
	iterations    int
	closeReq      bool
	width, height int

	update    func()
	resize    func(width, height int)
	scroll    func(delta float32)
	keyDown   func(keyCode uint32, mods window.Modifier)
	keyUp     func(keyCode uint32, mods window.Modifier)
	mouseDown func(button window.MouseButton, x, y float64)
	mouseUp   func(button window.MouseButton, x, y float64)
	mouseMove func(x, y float64)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func())                         { w.update = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int))        { w.resize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))            { w.scroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32, window.Modifier)) { w.keyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(uint32, window.Modifier))   { w.keyUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float64))          { w.mouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor          { return nil }
func (w *fakeWindow) IsRunning() bool                                     { return !w.closeReq }
func (w *fakeWindow) RequestClose()                                       { w.closeReq = true }
func (w *fakeWindow) Close() error                                        { return nil }
func (w *fakeWindow) Width() int                                          { return w.width }
func (w *fakeWindow) Height() int                                         { return w.height }

func (w *fakeWindow) SetMouseDownCallback(cb func(window.MouseButton, float64, float64)) {
	w.mouseDown = cb
}

func (w *fakeWindow) SetMouseUpCallback(cb func(window.MouseButton, float64, float64)) {
	w.mouseUp = cb
}

func (w *fakeWindow) ProcessMessages() {
	for !w.closeReq && w.iterations < w.maxIterations {
		w.iterations++
		if w.update != nil {
			w.update()
		}
	}
}

// stepClock returns a clock that advances by step on every reading.
func stepClock(step time.Duration) clock.Clock {
	now := time.Unix(0, 0)
	return clock.NewClock(clock.WithTimeSource(func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}))
}

// slideAsset has one node and one 0.02s clip moving it from x=0 to x=1.
func slideAsset(clipNames ...string) *model.SceneAsset {
	root := model.NewNode("root", -1)
	box := model.NewNode("Box", 0)
	root.AddChild(box)
	asset := &model.SceneAsset{
		Name:  "room",
		Root:  root,
		Nodes: []*model.Node{box},
	}
	for _, name := range clipNames {
		asset.Clips = append(asset.Clips, &model.AnimationClip{
			Name:     name,
			Duration: 0.02,
			Tracks: []*model.Track{{
				Node:          0,
				Path:          model.PathTranslation,
				Interpolation: model.InterpolationLinear,
				Times:         []float32{0, 0.02},
				Values:        []float32{0, 0, 0, 1, 0, 0},
				Components:    3,
			}},
		})
	}
	return asset
}

func TestFrameWithoutRenderer(t *testing.T) {
	e := NewEngine()
	if err := e.Frame(); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("Frame = %v, want ErrNoRenderer", err)
	}
	if err := e.Run(); !errors.Is(err, ErrNoWindow) {
		t.Errorf("Run = %v, want ErrNoWindow", err)
	}
}

func TestLoadingSceneRendersEmptyFrames(t *testing.T) {
	r := &fakeRenderer{}
	e := NewEngine(WithRenderer(r), WithClock(stepClock(16*time.Millisecond)))

	for i := 0; i < 3; i++ {
		if err := e.Frame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if len(r.roots) != 3 || r.roots[0] != nil || r.roots[2] != nil {
		t.Errorf("rendered roots = %v, want three nil roots", r.roots)
	}
	if e.Scene().State() != scene.StateLoading || e.Frames() != 3 {
		t.Errorf("state = %v frames = %d", e.Scene().State(), e.Frames())
	}
}

func TestActivationIsConsumedOnce(t *testing.T) {
	r := &fakeRenderer{}
	activations := 0
	s := scene.NewScene("main", scene.WithOnActivated(func(scene.Scene) { activations++ }))
	e := NewEngine(WithRenderer(r), WithScene(s), WithClock(stepClock(time.Millisecond)))

	asset := slideAsset("walk", "idle")
	s.Post(scene.LoadedEvent{URL: "room.glb", Asset: asset})
	if err := e.Frame(); err != nil {
		t.Fatal(err)
	}
	s.Post(scene.LoadedEvent{URL: "room.glb", Asset: slideAsset("other")})
	if err := e.Frame(); err != nil {
		t.Fatal(err)
	}

	if activations != 1 {
		t.Errorf("activations = %d, want 1", activations)
	}
	if r.roots[0] != asset.Root || r.roots[1] != asset.Root {
		t.Error("frames after activation did not render the loaded root")
	}
	actions := s.Actions()
	if len(actions) != 2 || actions[0].Clip().Name != "walk" || actions[1].Clip().Name != "idle" {
		t.Fatalf("actions = %v, want [walk idle]", actions)
	}
	for _, a := range actions {
		if !a.Playing() {
			t.Errorf("%s is not playing", a.Clip().Name)
		}
	}
}

func TestActivationWithoutClips(t *testing.T) {
	r := &fakeRenderer{}
	s := scene.NewScene("main")
	e := NewEngine(WithRenderer(r), WithScene(s))

	asset := slideAsset()
	s.Post(scene.LoadedEvent{URL: "room.glb", Asset: asset})
	for i := 0; i < 2; i++ {
		if err := e.Frame(); err != nil {
			t.Fatal(err)
		}
	}
	if s.State() != scene.StateActive || len(s.Actions()) != 0 {
		t.Errorf("state = %v actions = %d", s.State(), len(s.Actions()))
	}
	if r.roots[1] != asset.Root {
		t.Error("scene without clips was not rendered")
	}
}

func TestFramesClampAtClipEnd(t *testing.T) {
	s := scene.NewScene("main")
	e := NewEngine(WithRenderer(&fakeRenderer{}), WithScene(s), WithClock(stepClock(16*time.Millisecond)))

	asset := slideAsset("slide")
	box := asset.Nodes[0]
	s.Post(scene.LoadedEvent{URL: "room.glb", Asset: asset})

	if err := e.Frame(); err != nil {
		t.Fatal(err)
	}
	a := s.Actions()[0]
	if mgl32.Abs(float32(a.Time())-0.016) > 1e-6 || !a.Playing() {
		t.Fatalf("after frame 1: time = %v playing = %v", a.Time(), a.Playing())
	}
	if x := box.Local.Translation.X(); mgl32.Abs(x-0.8) > 1e-4 {
		t.Errorf("after frame 1: x = %v, want 0.8", x)
	}

	if err := e.Frame(); err != nil {
		t.Fatal(err)
	}
	if mgl32.Abs(float32(a.Time())-0.02) > 1e-6 || !a.Finished() {
		t.Fatalf("after frame 2: time = %v finished = %v, want clamped at 0.02", a.Time(), a.Finished())
	}
	if x := box.Local.Translation.X(); mgl32.Abs(x-1) > 1e-4 {
		t.Errorf("after frame 2: x = %v, want 1", x)
	}
}

func TestLoadFailureKeepsRunning(t *testing.T) {
	r := &fakeRenderer{}
	w := &fakeWindow{maxIterations: 5}
	s := scene.NewScene("main")
	e := NewEngine(WithWindow(w), WithRenderer(r), WithScene(s))

	s.Post(scene.LoadFailedEvent{
		URL: "broken.glb",
		Err: &loader.LoadError{URL: "broken.glb", Err: loader.ErrInvalidGLBMagic},
	})

	if err := e.Run(); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if w.iterations != 5 || len(r.roots) != 5 {
		t.Errorf("iterations = %d frames = %d, want 5", w.iterations, len(r.roots))
	}
	if s.State() != scene.StateLoading || s.Actions() != nil {
		t.Error("a failed load left the loading state")
	}
	if !errors.Is(s.LastError(), loader.ErrInvalidGLBMagic) {
		t.Errorf("LastError = %v", s.LastError())
	}
}

func TestRenderErrorStopsRun(t *testing.T) {
	failure := &renderer.RenderError{Stage: renderer.StageAcquire, Err: errors.New("surface lost")}
	r := &fakeRenderer{failAt: 3, err: failure}
	w := &fakeWindow{maxIterations: 10}
	e := NewEngine(WithWindow(w), WithRenderer(r))

	err := e.Run()
	var re *renderer.RenderError
	if !errors.As(err, &re) || re.Stage != renderer.StageAcquire {
		t.Fatalf("Run = %v, want the acquire RenderError", err)
	}
	if w.iterations != 3 || !w.closeReq {
		t.Errorf("iterations = %d closeRequested = %v, want 3 and true", w.iterations, w.closeReq)
	}
	if e.Frames() != 2 {
		t.Errorf("frames = %d, want 2", e.Frames())
	}
}

func TestResize(t *testing.T) {
	r := &fakeRenderer{}
	w := &fakeWindow{width: 800, height: 600}
	e := NewEngine(WithWindow(w), WithRenderer(r))

	if a := e.Camera().Aspect(); mgl32.Abs(a-800.0/600.0) > 1e-6 {
		t.Errorf("initial aspect = %v", a)
	}

	w.resize(800, 400)
	if e.Camera().Aspect() != 2 {
		t.Errorf("aspect = %v, want 2", e.Camera().Aspect())
	}
	w.resize(0, 0)
	if e.Camera().Aspect() != 2 {
		t.Error("minimizing changed the aspect")
	}
	if len(r.resizes) != 2 || r.resizes[0] != [2]int{800, 400} || r.resizes[1] != [2]int{0, 0} {
		t.Errorf("renderer resizes = %v", r.resizes)
	}
}

func TestResizeErrorStopsRun(t *testing.T) {
	failure := &renderer.RenderError{Stage: renderer.StageSurface, Err: errors.New("configure failed")}
	r := &fakeRenderer{resizeErr: failure}
	w := &fakeWindow{maxIterations: 10}
	e := NewEngine(WithWindow(w), WithRenderer(r))

	w.resize(640, 480)
	if err := e.Run(); !errors.Is(err, failure) {
		t.Fatalf("Run = %v, want the resize error", err)
	}
	if w.iterations != 0 {
		t.Errorf("iterations = %d, want 0", w.iterations)
	}
}

func TestMouseDrivesController(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPosition(mgl32.Vec3{0, 0, 5}), camera.WithMouseSensitivity(0.01))
	cam := camera.NewCamera(camera.WithController(ctrl))
	w := &fakeWindow{}
	NewEngine(WithWindow(w), WithRenderer(&fakeRenderer{}), WithCamera(cam))

	w.mouseDown(window.MouseButtonLeft, 100, 100)
	if ctrl.Dragging() != camera.DragOrbit {
		t.Fatalf("left button drag = %v, want orbit", ctrl.Dragging())
	}
	w.mouseMove(90, 100)
	if az := ctrl.Azimuth(); mgl32.Abs(az-0.1) > 1e-5 {
		t.Errorf("azimuth = %v, want 0.1", az)
	}
	w.mouseUp(window.MouseButtonLeft, 90, 100)
	if ctrl.Dragging() != camera.DragNone {
		t.Error("drag still active after release")
	}

	for _, b := range []window.MouseButton{window.MouseButtonRight, window.MouseButtonMiddle} {
		w.mouseDown(b, 0, 0)
		if ctrl.Dragging() != camera.DragPan {
			t.Errorf("button %d drag = %v, want pan", b, ctrl.Dragging())
		}
		w.mouseUp(b, 0, 0)
	}

	r := ctrl.Radius()
	w.scroll(1)
	if ctrl.Radius() >= r {
		t.Errorf("radius after scrolling up = %v, want less than %v", ctrl.Radius(), r)
	}
}

func TestKeysReachDebugPanel(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPosition(mgl32.Vec3{0, 0, 5}))
	cam := camera.NewCamera(camera.WithController(ctrl))
	panel := debug.NewPanel()
	debug.BindCameraPosition(panel, ctrl)

	w := &fakeWindow{}
	e := NewEngine(WithWindow(w), WithRenderer(&fakeRenderer{}), WithCamera(cam), WithDebugPanel(panel))
	if e.DebugPanel() != panel {
		t.Fatal("debug panel not kept")
	}

	w.keyDown(common.KeyRightBracket, 0)
	if x := ctrl.Position().X(); mgl32.Abs(x-0.01) > 1e-4 {
		t.Errorf("x after ] = %v, want 0.01", x)
	}
	w.keyDown(common.KeyRightBracket, window.ModShift)
	if x := ctrl.Position().X(); mgl32.Abs(x-0.11) > 1e-4 {
		t.Errorf("x after shift+] = %v, want 0.11", x)
	}
}

func TestFrameLimitSleepsForTheRemainder(t *testing.T) {
	w := &fakeWindow{maxIterations: 2}
	e := NewEngine(WithWindow(w), WithRenderer(&fakeRenderer{}), WithRenderFrameLimit(10)).(*engine)

	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := e.Run(); err != nil {
		t.Fatal(err)
	}
	if len(slept) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(slept))
	}
	for _, d := range slept {
		if d <= 0 || d > 100*time.Millisecond {
			t.Errorf("sleep = %v, want within (0, 100ms]", d)
		}
	}

	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Error("frame limit not cleared")
	}
}
