package animator

import "go.uber.org/zap"

// AnimatorBuilderOption is a functional option for configuring an Animator during Activate.
type AnimatorBuilderOption func(*animatorImpl)

// WithLoopMode sets the loop mode of every action that has no per-clip override.
//
// Parameters:
//   - mode: the loop mode
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the loop mode option to an animator
func WithLoopMode(mode LoopMode) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.defaultLoop = mode
	}
}

// WithClipLoopMode overrides the loop mode for the clip with the given name.
//
// Parameters:
//   - clipName: the clip name
//   - mode: the loop mode for that clip
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the per-clip loop mode to an animator
func WithClipLoopMode(clipName string, mode LoopMode) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.clipLoop[clipName] = mode
	}
}

// WithTimeScale sets the initial playback speed of every action.
//
// Parameters:
//   - s: the speed multiplier
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the time scale to an animator
func WithTimeScale(s float64) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		a.timeScale = s
	}
}

// WithLogger sets the logger used for activation and playback diagnostics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the logger to an animator
func WithLogger(log *zap.Logger) AnimatorBuilderOption {
	return func(a *animatorImpl) {
		if log != nil {
			a.log = log
		}
	}
}
