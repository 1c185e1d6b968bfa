// package debug provides a keyboard-driven panel of tweakable float parameters grouped in folders.
// It has no on-screen widget; the selection and values are reported through the logger.
package debug

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/logger"
	"go.uber.org/zap"
)

// shiftMultiplier is the number of steps a shifted nudge key moves.
const shiftMultiplier = 10

// Folder is a named group of parameters.
type Folder interface {
	// Name returns the folder name.
	Name() string

	// Add binds a new parameter to the folder.
	//
	// Parameters:
	//   - name: the parameter label
	//   - get: reads the bound value
	//   - set: writes the bound value
	//   - options: range and step options
	//
	// Returns:
	//   - Param: the new parameter
	Add(name string, get func() float32, set func(float32), options ...ParamOption) Param

	// Params returns the folder's parameters in insertion order.
	Params() []Param
}

// Panel holds folders of parameters and a selection cursor moved by keyboard input.
type Panel interface {
	// AddFolder returns the folder with the given name, creating it if needed.
	//
	// Parameters:
	//   - name: the folder name
	//
	// Returns:
	//   - Folder: the folder
	AddFolder(name string) Folder

	// Folder returns the folder with the given name, or nil.
	Folder(name string) Folder

	// Folders returns every folder in insertion order.
	Folders() []Folder

	// Params returns every parameter, folder by folder.
	Params() []Param

	// Selected returns the parameter under the cursor, or nil if the panel is empty.
	Selected() Param

	// SelectNext moves the cursor to the next parameter, wrapping around.
	SelectNext()

	// HandleKey applies a key press: Tab selects the next parameter, [ and ] nudge the
	// selection down and up by one step (ten with shift), R resets it and P logs the panel.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//   - shift: whether shift was held
	//
	// Returns:
	//   - bool: true if the key was consumed
	HandleKey(keyCode uint32, shift bool) bool

	// Snapshot returns every value keyed by "folder/name".
	Snapshot() map[string]float32

	// Log writes every value to the logger.
	Log()
}

type folder struct {
	mu     *sync.Mutex
	name   string
	params []Param
}

var _ Folder = &folder{}

func (f *folder) Name() string { return f.name }

func (f *folder) Add(name string, get func() float32, set func(float32), options ...ParamOption) Param {
	p := newParam(f.name, name, get, set, options...)
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()
	return p
}

func (f *folder) Params() []Param {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Param(nil), f.params...)
}

type panel struct {
	mu       *sync.Mutex
	folders  []*folder
	selected int
	log      *zap.Logger
}

var _ Panel = &panel{}

// NewPanel creates an empty panel.
//
// Parameters:
//   - options: functional options to configure the panel
//
// Returns:
//   - Panel: the new panel
func NewPanel(options ...PanelBuilderOption) Panel {
	p := &panel{
		mu: &sync.Mutex{},
	}
	for _, opt := range options {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Named("debug")
	}
	return p
}

func (p *panel) AddFolder(name string) Folder {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.folders {
		if f.name == name {
			return f
		}
	}
	f := &folder{mu: &sync.Mutex{}, name: name}
	p.folders = append(p.folders, f)
	return f
}

func (p *panel) Folder(name string) Folder {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.folders {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (p *panel) Folders() []Folder {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Folder, len(p.folders))
	for i, f := range p.folders {
		out[i] = f
	}
	return out
}

func (p *panel) Params() []Param {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params()
}

// params flattens the folders. Caller must hold the mutex.
func (p *panel) params() []Param {
	var out []Param
	for _, f := range p.folders {
		out = append(out, f.Params()...)
	}
	return out
}

func (p *panel) Selected() Param {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedParam()
}

// selectedParam returns the parameter under the cursor. Caller must hold the mutex.
func (p *panel) selectedParam() Param {
	params := p.params()
	if len(params) == 0 {
		return nil
	}
	return params[p.selected%len(params)]
}

func (p *panel) SelectNext() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.params()); n > 0 {
		p.selected = (p.selected + 1) % n
	}
}

func (p *panel) HandleKey(keyCode uint32, shift bool) bool {
	steps := 1
	if shift {
		steps = shiftMultiplier
	}

	switch keyCode {
	case common.KeyTab:
		p.SelectNext()
		if s := p.Selected(); s != nil {
			p.log.Info("selected", zap.String("param", key(s)), zap.Float32("value", s.Value()))
		}
	case common.KeyLeftBracket, common.KeyRightBracket:
		s := p.Selected()
		if s == nil {
			return false
		}
		if keyCode == common.KeyLeftBracket {
			steps = -steps
		}
		v := s.Nudge(steps)
		p.log.Debug("nudged", zap.String("param", key(s)), zap.Float32("value", v))
	case common.KeyR:
		s := p.Selected()
		if s == nil {
			return false
		}
		s.Reset()
		p.log.Info("reset", zap.String("param", key(s)), zap.Float32("value", s.Value()))
	case common.KeyP:
		p.Log()
	default:
		return false
	}
	return true
}

func (p *panel) Snapshot() map[string]float32 {
	params := p.Params()
	out := make(map[string]float32, len(params))
	for _, s := range params {
		out[key(s)] = s.Value()
	}
	return out
}

func (p *panel) Log() {
	for _, f := range p.Folders() {
		fields := make([]zap.Field, 0, len(f.Params()))
		for _, s := range f.Params() {
			fields = append(fields, zap.Float32(s.Name(), s.Value()))
		}
		p.log.Info(f.Name(), fields...)
	}
}

func key(s Param) string {
	return s.Folder() + "/" + s.Name()
}
