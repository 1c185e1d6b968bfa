package light

import "github.com/go-gl/mathgl/mgl32"

// Rig is the set of lights a frame is rendered with.
type Rig []Light

// DefaultRig returns the lighting used when nothing else is configured:
// white ambient light at intensity 0.5 and a white directional light at (1, 0, 2)
// shining at the origin.
//
// Returns:
//   - Rig: the default lights
func DefaultRig() Rig {
	return Rig{
		NewLight(LightTypeAmbient, WithIntensity(0.5)),
		NewLight(LightTypeDirectional,
			WithPosition(mgl32.Vec3{1, 0, 2}),
			WithTarget(mgl32.Vec3{0, 0, 0}),
		),
	}
}

// Ambient returns the summed radiance of the enabled ambient lights.
//
// Returns:
//   - mgl32.Vec3: the ambient term
func (r Rig) Ambient() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, l := range r {
		if l != nil && l.Enabled() && l.Type() == LightTypeAmbient {
			sum = sum.Add(l.Radiance())
		}
	}
	return sum
}

// Active returns the enabled non-ambient lights in rig order.
//
// Returns:
//   - []Light: the lights the renderer evaluates per fragment
func (r Rig) Active() []Light {
	var out []Light
	for _, l := range r {
		if l != nil && l.Enabled() && l.Type() != LightTypeAmbient {
			out = append(out, l)
		}
	}
	return out
}
