// package scene holds the lifecycle of one loaded asset: it waits for the asynchronous load,
// activates the asset's animations exactly once, and advances them every frame.
//
// A Scene is driven entirely from the render loop goroutine. The only cross-goroutine
// traffic is the load completion, which arrives as an Event on the scene's buffered queue.
package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/animator"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/logger"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Scene.
type State int

const (
	// StateLoading is the initial state; nothing is rendered and nothing is animated.
	StateLoading State = iota
	// StateActive is entered when the asset has loaded and its animations were activated.
	StateActive
)

// String returns the lowercase name of the state.
//
// Returns:
//   - string: the state name
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// AssetLoader starts an asynchronous asset load. loader.Loader satisfies it.
type AssetLoader interface {
	LoadAsync(url string, onLoad func(*model.SceneAsset), onError func(*loader.LoadError))
}

var _ AssetLoader = loader.Loader(nil)

type scene struct {
	name  string
	state State

	events    chan Event
	requested bool

	asset    *model.SceneAsset
	anim     animator.Animator
	animOpts []animator.AnimatorBuilderOption
	lastErr  error

	onActivated []func(Scene)

	log *zap.Logger
}

// Scene is the Loading/Active state machine of a single asset.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: StateLoading or StateActive
	State() State

	// Load issues the asynchronous load of url. Only the first call has any effect;
	// the completion is posted to Events.
	//
	// Parameters:
	//   - l: the loader to load with
	//   - url: the asset location
	//
	// Returns:
	//   - bool: true if this call started the load
	Load(l AssetLoader, url string) bool

	// Events returns the queue load completions are posted to.
	//
	// Returns:
	//   - <-chan Event: the event queue
	Events() <-chan Event

	// Post places an event on the queue without blocking.
	//
	// Parameters:
	//   - ev: the event
	//
	// Returns:
	//   - bool: false if the queue is full and the event was dropped
	Post(ev Event) bool

	// DrainEvents handles every event currently queued without blocking.
	//
	// Returns:
	//   - int: the number of events handled
	DrainEvents() int

	// HandleEvent applies one event to the state machine.
	//
	// Parameters:
	//   - ev: the event to handle
	HandleEvent(ev Event)

	// Update advances the scene's animations by dt seconds. It is a no-op while loading.
	//
	// Parameters:
	//   - dt: the frame delta in seconds
	Update(dt float64)

	// Root returns the root node of the loaded asset, or nil while loading.
	//
	// Returns:
	//   - *model.Node: the root node
	Root() *model.Node

	// Asset returns the loaded asset, or nil while loading.
	//
	// Returns:
	//   - *model.SceneAsset: the asset
	Asset() *model.SceneAsset

	// Actions returns the activated animation actions in clip order, or nil while loading.
	//
	// Returns:
	//   - []animator.Action: the actions
	Actions() []animator.Action

	// LastError returns the most recent load failure, or nil.
	//
	// Returns:
	//   - error: the last load error
	LastError() error

	// OnActivated registers fn to run when the scene becomes active.
	// If the scene is already active, fn runs immediately.
	//
	// Parameters:
	//   - fn: the callback
	OnActivated(fn func(Scene))
}

var _ Scene = &scene{}

// NewScene creates a scene in StateLoading.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:   name,
		state:  StateLoading,
		events: make(chan Event, 8),
		log:    logger.Named("scene"),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string             { return s.name }
func (s *scene) State() State             { return s.state }
func (s *scene) Events() <-chan Event     { return s.events }
func (s *scene) LastError() error         { return s.lastErr }
func (s *scene) Asset() *model.SceneAsset { return s.asset }

func (s *scene) Load(l AssetLoader, url string) bool {
	if s.requested || l == nil {
		return false
	}
	s.requested = true

	s.log.Info("loading asset", zap.String("scene", s.name), zap.String("url", url))
	l.LoadAsync(url,
		func(asset *model.SceneAsset) {
			s.post(LoadedEvent{URL: url, Asset: asset})
		},
		func(err *loader.LoadError) {
			s.post(LoadFailedEvent{URL: url, Err: err})
		},
	)
	return true
}

// post is used by load callbacks, which may run on a worker goroutine.
// A completion must never be lost, so it blocks when the queue is full.
func (s *scene) post(ev Event) {
	s.events <- ev
}

func (s *scene) Post(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		s.log.Warn("scene event queue full, dropping event", zap.Stringer("event", ev))
		return false
	}
}

func (s *scene) DrainEvents() int {
	n := 0
	for {
		select {
		case ev := <-s.events:
			s.HandleEvent(ev)
			n++
		default:
			return n
		}
	}
}

func (s *scene) HandleEvent(ev Event) {
	switch e := ev.(type) {
	case LoadedEvent:
		s.activate(e)
	case LoadFailedEvent:
		s.lastErr = e.Err
		s.log.Error("asset load failed",
			zap.String("scene", s.name),
			zap.String("url", e.URL),
			zap.Error(e.Err),
		)
	default:
		s.log.Warn("unknown scene event", zap.Stringer("event", ev))
	}
}

func (s *scene) activate(e LoadedEvent) {
	if s.state == StateActive {
		s.log.Warn("ignoring load completion for an active scene",
			zap.String("scene", s.name),
			zap.String("url", e.URL),
		)
		return
	}
	if e.Asset == nil {
		s.lastErr = fmt.Errorf("load of %s completed without an asset", e.URL)
		s.log.Error("asset load returned nothing", zap.String("scene", s.name), zap.String("url", e.URL))
		return
	}

	s.asset = e.Asset
	s.anim = animator.Activate(e.Asset, s.animOpts...)
	s.state = StateActive
	s.lastErr = nil

	s.log.Info("scene active",
		zap.String("scene", s.name),
		zap.String("asset", e.Asset.Name),
		zap.Int("actions", len(e.Asset.Clips)),
	)
	for _, fn := range s.onActivated {
		fn(s)
	}
}

func (s *scene) Update(dt float64) {
	if s.state != StateActive {
		return
	}
	s.anim.Advance(dt)
}

func (s *scene) Root() *model.Node {
	if s.state != StateActive {
		return nil
	}
	return s.asset.Root
}

func (s *scene) Actions() []animator.Action {
	if s.state != StateActive {
		return nil
	}
	return s.anim.Actions()
}

func (s *scene) OnActivated(fn func(Scene)) {
	if fn == nil {
		return
	}
	if s.state == StateActive {
		fn(s)
		return
	}
	s.onActivated = append(s.onActivated, fn)
}
