// package config reads the YAML scene description used by the example program.
// Every field is optional; a missing file or field keeps the defaults returned by Default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-glb/engine/animator"
	"github.com/Carmen-Shannon/oxy-glb/engine/light"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DefaultAsset is the asset loaded when the configuration names none.
const DefaultAsset = "./models/isometric-room-01.glb"

// Scene is the root of the configuration file.
type Scene struct {
	// Asset is the .glb or .gltf path or URL to load.
	Asset string `yaml:"asset"`

	// LoopMode is the loop policy of every clip: repeat, once-clamp or once-reset.
	LoopMode string `yaml:"loopMode"`

	// TimeScale is the playback speed of every clip. 1 is normal speed, 0 holds the first frame.
	TimeScale float64 `yaml:"timeScale"`

	// LogLevel is a zap level name.
	LogLevel string `yaml:"logLevel"`

	// Development switches the logger to the human-readable encoder.
	Development bool `yaml:"development"`

	// Profiling enables the periodic frame statistics report.
	Profiling bool `yaml:"profiling"`

	// FrameLimit caps the frame rate, 0 for uncapped.
	FrameLimit float64 `yaml:"frameLimit"`

	Window   Window   `yaml:"window"`
	Renderer Renderer `yaml:"renderer"`
	Camera   Camera   `yaml:"camera"`
	Lights   []Light  `yaml:"lights"`
}

// Window configures the platform window.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Renderer configures the GPU renderer.
type Renderer struct {
	// Antialias enables 4x MSAA.
	Antialias bool `yaml:"antialias"`

	// VSync waits for vertical blank before presenting.
	VSync bool `yaml:"vsync"`

	// Software requests the fallback adapter.
	Software bool `yaml:"software"`

	// ClearColor is the background color as a CSS name or hex string.
	ClearColor string `yaml:"clearColor"`
}

// Camera configures the perspective camera and its orbit controller.
type Camera struct {
	Fov      float32 `yaml:"fov"` // degrees
	Near     float32 `yaml:"near"`
	Far      float32 `yaml:"far"`
	Position Vec3    `yaml:"position"`
	Target   Vec3    `yaml:"target"`
}

// Light configures one light of the rig.
type Light struct {
	Type      string  `yaml:"type"`
	Color     string  `yaml:"color"`
	Intensity float32 `yaml:"intensity"`
	Position  Vec3    `yaml:"position"`
	Target    Vec3    `yaml:"target"`
	Range     float32 `yaml:"range"`
}

// Vec3 is a three-component vector written as a YAML sequence, e.g. [3, 6, 5].
type Vec3 [3]float32

// UnmarshalYAML implements yaml.Unmarshaler and requires exactly three numbers.
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	var xs []float32
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: expected 3 components, got %d", node.Line, len(xs))
	}
	copy(v[:], xs)
	return nil
}

// Default returns the configuration used when no file is given: the isometric room asset,
// a 75° camera at (3, 6, 5) looking at the origin, white ambient light at 0.5 and a
// white directional light at (1, 0, 2) shining at the origin.
//
// Returns:
//   - *Scene: a fresh default configuration
func Default() *Scene {
	return &Scene{
		Asset:     DefaultAsset,
		LoopMode:  animator.LoopOnceClamp.String(),
		TimeScale: 1,
		LogLevel:  "info",
		Window: Window{
			Title:  "oxy-glb",
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			Antialias:  true,
			VSync:      true,
			ClearColor: "black",
		},
		Camera: Camera{
			Fov:      75,
			Near:     0.1,
			Far:      1000,
			Position: Vec3{3, 6, 5},
		},
		Lights: []Light{
			{Type: "ambient", Color: "white", Intensity: 0.5},
			{Type: "directional", Color: "white", Intensity: 1, Position: Vec3{1, 0, 2}},
		},
	}
}

// Parse decodes YAML over the defaults and validates the result.
// Fields absent from data keep their default; a lights list replaces the default rig.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Scene: the configuration
//   - error: error if the document is malformed or fails validation
func Parse(data []byte) (*Scene, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses the configuration file at path.
// A missing file is not an error: the defaults are returned.
//
// Parameters:
//   - path: the file path, empty for defaults
//
// Returns:
//   - *Scene: the configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (*Scene, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks every field and reports all problems at once.
//
// Returns:
//   - error: the combined validation errors, nil if the configuration is usable
func (s *Scene) Validate() error {
	var err error
	if s.Asset == "" {
		err = multierr.Append(err, errors.New("asset: must not be empty"))
	}
	if _, e := animator.ParseLoopMode(s.LoopMode); e != nil {
		err = multierr.Append(err, fmt.Errorf("loopMode: %w", e))
	}
	if math.IsNaN(s.TimeScale) || math.IsInf(s.TimeScale, 0) {
		err = multierr.Append(err, fmt.Errorf("timeScale: must be finite, got %v", s.TimeScale))
	}
	if s.FrameLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("frameLimit: must not be negative, got %v", s.FrameLimit))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window: size must be positive, got %dx%d", s.Window.Width, s.Window.Height))
	}
	if _, e := ParseColor(s.Renderer.ClearColor); e != nil {
		err = multierr.Append(err, fmt.Errorf("renderer.clearColor: %w", e))
	}

	c := s.Camera
	if c.Fov <= 0 || c.Fov >= 180 {
		err = multierr.Append(err, fmt.Errorf("camera.fov: must be in (0, 180), got %v", c.Fov))
	}
	if c.Near <= 0 || c.Far <= c.Near || math.IsInf(float64(c.Far), 0) {
		err = multierr.Append(err, fmt.Errorf("camera: need 0 < near < far, got near=%v far=%v", c.Near, c.Far))
	}

	for i, l := range s.Lights {
		if _, e := light.ParseLightType(l.Type); e != nil {
			err = multierr.Append(err, fmt.Errorf("lights[%d].type: %w", i, e))
		}
		if _, e := ParseColor(l.Color); e != nil {
			err = multierr.Append(err, fmt.Errorf("lights[%d].color: %w", i, e))
		}
		if l.Intensity < 0 || l.Range < 0 {
			err = multierr.Append(err, fmt.Errorf("lights[%d]: intensity and range must not be negative", i))
		}
	}
	return err
}
