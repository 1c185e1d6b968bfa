package renderer

import (
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets how frames are presented.
//
// Parameters:
//   - mode: PresentModeVSync (default) or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample count of the main pass.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		if count == MSAAOff || count == MSAA4x {
			r.msaa = count
		}
	}
}

// WithAntialias enables 4x MSAA when true and disables multisampling when false.
func WithAntialias(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		if enabled {
			r.msaa = MSAA4x
		} else {
			r.msaa = MSAAOff
		}
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the adapter option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the background color.
func WithClearColor(c colorful.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithLogger sets the renderer's logger.
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.log = log
	}
}
