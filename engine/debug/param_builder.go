package debug

// ParamOption is a functional option for configuring a Param.
type ParamOption func(*param)

// WithRange sets the bounds of the parameter. Defaults to [-10, 10].
//
// Parameters:
//   - min: the lower bound
//   - max: the upper bound
//
// Returns:
//   - ParamOption: a function that applies the range option
func WithRange(min, max float32) ParamOption {
	return func(p *param) {
		p.min, p.max = min, max
	}
}

// WithStep sets the increment of the parameter. Defaults to 0.01; zero disables snapping.
//
// Parameters:
//   - step: the increment
//
// Returns:
//   - ParamOption: a function that applies the step option
func WithStep(step float32) ParamOption {
	return func(p *param) {
		if step >= 0 {
			p.step = step
		}
	}
}
