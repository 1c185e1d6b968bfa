package debug

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Param is a float value exposed on the panel.
// The value lives elsewhere; a Param reads it through its getter and writes it through its setter.
type Param interface {
	// Name returns the parameter label, e.g. "position x".
	Name() string

	// Folder returns the name of the folder holding the parameter.
	Folder() string

	// Min returns the lower bound.
	Min() float32

	// Max returns the upper bound.
	Max() float32

	// Step returns the increment used by Nudge and by value snapping.
	Step() float32

	// Value returns the current bound value.
	//
	// Returns:
	//   - float32: the value read through the getter
	Value() float32

	// SetValue writes a value through the setter after clamping it to [Min, Max]
	// and snapping it to the nearest step.
	//
	// Parameters:
	//   - v: the requested value
	//
	// Returns:
	//   - float32: the value actually written
	SetValue(v float32) float32

	// Nudge moves the value by n steps.
	//
	// Parameters:
	//   - n: the number of steps, negative to decrease
	//
	// Returns:
	//   - float32: the value actually written
	Nudge(n int) float32

	// Reset restores the value read when the parameter was added.
	Reset()
}

type param struct {
	mu *sync.Mutex

	name   string
	folder string

	min  float32
	max  float32
	step float32

	initial float32
	get     func() float32
	set     func(float32)
}

var _ Param = &param{}

func newParam(folder, name string, get func() float32, set func(float32), options ...ParamOption) *param {
	p := &param{
		mu:     &sync.Mutex{},
		name:   name,
		folder: folder,
		min:    -10,
		max:    10,
		step:   0.01,
		get:    get,
		set:    set,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.max < p.min {
		p.min, p.max = p.max, p.min
	}
	p.initial = p.get()
	return p
}

func (p *param) Name() string   { return p.name }
func (p *param) Folder() string { return p.folder }
func (p *param) Min() float32   { return p.min }
func (p *param) Max() float32   { return p.max }
func (p *param) Step() float32  { return p.step }

func (p *param) Value() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.get()
}

func (p *param) SetValue(v float32) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(v)
}

func (p *param) Nudge(n int) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(p.get() + float32(n)*p.step)
}

func (p *param) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(p.initial)
}

// write snaps, clamps and stores v. Caller must hold the mutex.
func (p *param) write(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return p.get()
	}
	if p.step > 0 {
		v = p.min + float32(math.Round(float64((v-p.min)/p.step)))*p.step
	}
	v = mgl32.Clamp(v, p.min, p.max)
	p.set(v)
	return v
}
