package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuRendererBackend owns the device, the surface and every GPU resource of the lit pass.
// Meshes, textures and per-draw bindings are created on first use and cached by their model pointer.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the MSAA and depth attachments.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: error if the surface cannot be configured
	ConfigureSurface(width, height int) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the frame is cleared to.
	//
	// Parameters:
	//   - c: the linear clear color
	SetClearColor(c wgpu.Color)

	// WriteFrameUniforms uploads the camera and light uniforms for the next frame.
	//
	// Parameters:
	//   - cameraData: a marshaled camera uniform
	//   - lightData: a marshaled light rig
	WriteFrameUniforms(cameraData, lightData []byte)

	// BeginFrame acquires the next surface texture and opens the render pass.
	//
	// Returns:
	//   - error: error if the surface texture or the encoder cannot be acquired
	BeginFrame() error

	// Draw records one primitive, uploading its buffers, texture and bindings on first use.
	//
	// Parameters:
	//   - item: the draw to record
	//
	// Returns:
	//   - error: error if a GPU resource cannot be created
	Draw(item drawItem) error

	// EndFrame closes the render pass and submits the frame.
	//
	// Returns:
	//   - error: error if the command buffer cannot be finished
	EndFrame() error

	// Present presents the acquired surface texture and releases it.
	Present()

	// Release frees every GPU resource held by the backend.
	Release()
}
