package scene

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/animator"

	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithAnimatorOptions sets the options passed to animator.Activate when the scene becomes active.
//
// Parameters:
//   - options: the animator options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimatorOptions(options ...animator.AnimatorBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.animOpts = append(s.animOpts, options...)
	}
}

// WithLoopMode sets the loop mode every clip is activated with.
//
// Parameters:
//   - mode: the loop mode
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoopMode(mode animator.LoopMode) SceneBuilderOption {
	return WithAnimatorOptions(animator.WithLoopMode(mode))
}

// WithTimeScale sets the playback speed every clip is activated with.
//
// Parameters:
//   - s: the speed multiplier, 1 for normal speed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTimeScale(s float64) SceneBuilderOption {
	return WithAnimatorOptions(animator.WithTimeScale(s))
}

// WithEventQueueSize sets the capacity of the scene's event queue. Defaults to 8.
//
// Parameters:
//   - n: the queue capacity (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEventQueueSize(n int) SceneBuilderOption {
	return func(s *scene) {
		s.events = make(chan Event, max(n, 1))
	}
}

// WithOnActivated registers a callback run when the scene becomes active.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithOnActivated(fn func(Scene)) SceneBuilderOption {
	return func(s *scene) {
		if fn != nil {
			s.onActivated = append(s.onActivated, fn)
		}
	}
}

// WithLogger sets the logger used for lifecycle diagnostics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(log *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if log != nil {
			s.log = log
		}
	}
}
