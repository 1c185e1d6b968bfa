package light

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every fragment uniformly, regardless of orientation.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. The direction runs from the
	// light's position toward its target.
	LightTypeDirectional

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint
)

// String returns the lowercase name of the light type.
//
// Returns:
//   - string: the type name
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return "unknown"
	}
}

// ParseLightType parses the names produced by LightType.String, ignoring case.
//
// Parameters:
//   - s: the light type name
//
// Returns:
//   - LightType: the parsed type
//   - error: error if s names no type
func ParseLightType(s string) (LightType, error) {
	for _, t := range []LightType{LightTypeAmbient, LightTypeDirectional, LightTypePoint} {
		if strings.EqualFold(strings.TrimSpace(s), t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown light type %q", s)
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType  LightType
	position   mgl32.Vec3
	target     mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	lightRange float32
	enabled    bool
}

// Light defines the interface for a light source in the scene.
//
// All light types share this interface; type-specific properties return values
// that are ignored by the renderer when not applicable.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for ambient lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the point a directional light shines at.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Direction returns the normalized direction light travels, from position to target.
	// A light whose position equals its target shines straight down.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Radiance returns Color scaled by Intensity.
	//
	// Returns:
	//   - mgl32.Vec3: the scaled color
	Radiance() mgl32.Vec3

	// Range returns the maximum attenuation distance for point lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - p: the position
	SetPosition(p mgl32.Vec3)

	// SetTarget sets the point a directional light shines at.
	//
	// Parameters:
	//   - t: the target
	SetTarget(t mgl32.Vec3)

	// SetColor sets the linear RGB color of the light.
	//
	// Parameters:
	//   - c: the color
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new white Light of the specified type with intensity 1, and applies the options.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:  lightType,
		position:   mgl32.Vec3{0, 1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		lightRange: 10.0,
		enabled:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType      { return l.lightType }
func (l *lightImpl) Position() mgl32.Vec3 { return l.position }
func (l *lightImpl) Target() mgl32.Vec3   { return l.target }
func (l *lightImpl) Color() mgl32.Vec3    { return l.color }
func (l *lightImpl) Intensity() float32   { return l.intensity }
func (l *lightImpl) Range() float32       { return l.lightRange }
func (l *lightImpl) Enabled() bool        { return l.enabled }

func (l *lightImpl) Direction() mgl32.Vec3 {
	d := l.target.Sub(l.position)
	if d.Len() < 1e-6 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func (l *lightImpl) Radiance() mgl32.Vec3 {
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetTarget(t mgl32.Vec3) {
	l.target = t
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}
