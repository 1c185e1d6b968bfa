package config

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/engine/animator"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// namedColors are the CSS color keywords accepted besides hex strings.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
}

// ParseColor parses a CSS color keyword or a "#rgb"/"#rrggbb" hex string.
// An empty string is white.
//
// Parameters:
//   - s: the color
//
// Returns:
//   - colorful.Color: the sRGB color
//   - error: error if s is neither a known keyword nor a hex color
func ParseColor(s string) (colorful.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = "white"
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// linear converts an sRGB color to the linear RGB lights are shaded with.
func linear(c colorful.Color) mgl32.Vec3 {
	r, g, b := c.LinearRgb()
	return mgl32.Vec3{float32(r), float32(g), float32(b)}
}

// Vec returns the vector as an mgl32.Vec3.
func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3(v)
}

// AnimationLoopMode returns the parsed loop policy.
//
// Returns:
//   - animator.LoopMode: the loop mode
//   - error: error if the name is unknown
func (s *Scene) AnimationLoopMode() (animator.LoopMode, error) {
	return animator.ParseLoopMode(s.LoopMode)
}

// ClearColor returns the parsed background color.
//
// Returns:
//   - colorful.Color: the sRGB background color
//   - error: error if the color is malformed
func (s *Scene) ClearColor() (colorful.Color, error) {
	return ParseColor(s.Renderer.ClearColor)
}

// Rig builds the configured lights.
//
// Returns:
//   - light.Rig: the lights in file order
//   - error: error if a light type or color is malformed
func (s *Scene) Rig() (light.Rig, error) {
	rig := make(light.Rig, 0, len(s.Lights))
	for i, l := range s.Lights {
		typ, err := light.ParseLightType(l.Type)
		if err != nil {
			return nil, fmt.Errorf("lights[%d]: %w", i, err)
		}
		c, err := ParseColor(l.Color)
		if err != nil {
			return nil, fmt.Errorf("lights[%d]: %w", i, err)
		}
		rig = append(rig, light.NewLight(typ,
			light.WithColor(linear(c)),
			light.WithIntensity(l.Intensity),
			light.WithPosition(l.Position.Vec()),
			light.WithTarget(l.Target.Vec()),
			light.WithRange(l.Range),
		))
	}
	return rig, nil
}

// CameraOptions returns the camera options for the configured projection.
// The aspect ratio comes from the window, not the file.
//
// Parameters:
//   - aspect: the framebuffer width divided by its height
//
// Returns:
//   - []camera.CameraBuilderOption: fov, near, far and aspect options
func (s *Scene) CameraOptions(aspect float32) []camera.CameraBuilderOption {
	return []camera.CameraBuilderOption{
		camera.WithFovDegrees(s.Camera.Fov),
		camera.WithNear(s.Camera.Near),
		camera.WithFar(s.Camera.Far),
		camera.WithAspect(aspect),
	}
}

// ControllerOptions returns the orbit controller options for the configured eye and target.
//
// Returns:
//   - []camera.CameraControllerOption: target and position options
func (s *Scene) ControllerOptions() []camera.CameraControllerOption {
	return []camera.CameraControllerOption{
		camera.WithTarget(s.Camera.Target.Vec()),
		camera.WithPosition(s.Camera.Position.Vec()),
	}
}
