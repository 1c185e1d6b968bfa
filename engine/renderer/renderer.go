// package renderer draws a scene graph with a single forward Lambert pass over WebGPU.
// The front end walks and culls the graph; the backend owns every GPU resource.
package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/engine/window"
	"github.com/Carmen-Shannon/oxy-glb/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

// FrameStats counts the work of the last rendered frame.
type FrameStats struct {
	// Draws is the number of primitives submitted.
	Draws int

	// Culled is the number of primitives rejected by the view frustum.
	Culled int
}

// Renderer defines the interface for the rendering system.
type Renderer interface {
	// RenderFrame draws one frame of the scene below root and presents it.
	// A nil root clears the surface and presents an empty frame.
	//
	// Parameters:
	//   - root: the scene root, or nil
	//   - cam: the camera to view the scene through
	//   - lights: the lights of the scene
	//
	// Returns:
	//   - error: a *RenderError if a GPU operation fails
	RenderFrame(root *model.Node, cam camera.Camera, lights light.Rig) error

	// Resize reconfigures the surface for a new framebuffer size.
	// A zero dimension (minimized window) suspends rendering until the next non-zero size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: a *RenderError if the surface cannot be configured
	Resize(width, height int) error

	// SetClearColor sets the background color.
	//
	// Parameters:
	//   - c: the sRGB background color
	SetClearColor(c colorful.Color)

	// ClearColor returns the background color.
	//
	// Returns:
	//   - colorful.Color: the sRGB background color
	ClearColor() colorful.Color

	// Stats returns the counters of the last rendered frame.
	//
	// Returns:
	//   - FrameStats: draw and cull counts
	Stats() FrameStats

	// Release frees every GPU resource. The renderer is unusable afterwards.
	Release()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	clearColor           colorful.Color

	width    int
	height   int
	released bool
	stats    FrameStats
	fallback *model.Material

	log *zap.Logger
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into the given window.
// MSAA defaults to 4x, the present mode to VSync and the clear color to black.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - win: the window whose surface is drawn to
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: error if the device or the surface cannot be set up
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.log)
	if err != nil {
		return nil, &RenderError{Stage: StageSurface, Err: err}
	}
	r.backend = backend
	r.backend.SetPresentMode(r.presentMode)
	r.backend.SetClearColor(toWGPUColor(r.clearColor))

	if err := r.Resize(win.Width(), win.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}

	r.log.Info("renderer ready",
		zap.Int("width", win.Width()),
		zap.Int("height", win.Height()),
		zap.Uint32("msaa", uint32(r.msaa)),
	)
	return r, nil
}

// newRenderer applies the options to a renderer without a backend.
func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
		clearColor:  colorful.Color{},
		fallback:    model.DefaultMaterial(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("renderer")
	}
	return r
}

func (r *renderer) RenderFrame(root *model.Node, cam camera.Camera, lights light.Rig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return &RenderError{Stage: StageSurface, Err: ErrReleased}
	}
	if cam == nil {
		return &RenderError{Stage: StageUpload, Err: ErrNoCamera}
	}
	if r.width == 0 || r.height == 0 {
		return nil
	}

	items, culled := buildDrawList(root, cam.ViewProjectionMatrix(), cam.Position(), r.fallback)

	uniform := cam.Uniform()
	r.backend.WriteFrameUniforms(uniform.Marshal(), light.MarshalRig(lights))

	if err := r.backend.BeginFrame(); err != nil {
		return &RenderError{Stage: StageAcquire, Err: err}
	}

	for _, item := range items {
		if err := r.backend.Draw(item); err != nil {
			// Close the pass so the acquired surface texture is handed back.
			_ = r.backend.EndFrame()
			r.backend.Present()
			return &RenderError{Stage: StageDraw, Err: err}
		}
	}

	if err := r.backend.EndFrame(); err != nil {
		r.backend.Present()
		return &RenderError{Stage: StageSubmit, Err: err}
	}
	r.backend.Present()

	r.stats = FrameStats{Draws: len(items), Culled: culled}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return &RenderError{Stage: StageSurface, Err: ErrReleased}
	}

	r.width, r.height = max(width, 0), max(height, 0)
	if r.width == 0 || r.height == 0 {
		return nil
	}
	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return &RenderError{Stage: StageSurface, Err: err}
	}
	return nil
}

func (r *renderer) SetClearColor(c colorful.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clearColor = c
	if r.backend != nil {
		r.backend.SetClearColor(toWGPUColor(c))
	}
}

func (r *renderer) ClearColor() colorful.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true
	if r.backend != nil {
		r.backend.Release()
	}
}

// toWGPUColor converts an sRGB color to the linear clear value of the render pass.
func toWGPUColor(c colorful.Color) wgpu.Color {
	red, green, blue := c.Clamped().LinearRgb()
	return wgpu.Color{R: red, G: green, B: blue, A: 1}
}
