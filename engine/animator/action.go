package animator

import (
	"math"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// actionImpl is the implementation of the Action interface.
type actionImpl struct {
	owner *animatorImpl
	clip  *model.AnimationClip

	tracks []trackBinding

	time      float64
	timeScale float64
	weight    float32
	loopMode  LoopMode
	loops     int

	enabled  bool
	paused   bool
	finished bool

	onFinished []func(Action)
}

// trackBinding pairs a clip track with the node property it drives.
type trackBinding struct {
	track   *model.Track
	binding *propertyBinding
}

// Action is the playback state of one clip on one scene graph.
// Actions are created by Activate and advanced by their Animator; they are not safe for
// concurrent use and are meant to be driven from the render loop.
type Action interface {
	// Clip returns the clip this action plays.
	//
	// Returns:
	//   - *model.AnimationClip: the clip
	Clip() *model.AnimationClip

	// Time returns the current playback time in seconds, within [0, clip duration].
	//
	// Returns:
	//   - float64: the playback time
	Time() float64

	// SetTime moves the playhead. The value is clamped to the clip's range.
	// The pose is updated on the next Advance.
	//
	// Parameters:
	//   - t: the new time in seconds
	SetTime(t float64)

	// LoopMode returns the action's end-of-clip behavior.
	//
	// Returns:
	//   - LoopMode: the loop mode
	LoopMode() LoopMode

	// SetLoopMode changes the end-of-clip behavior.
	//
	// Parameters:
	//   - mode: the new loop mode
	SetLoopMode(mode LoopMode)

	// Playing reports whether the action is enabled, not paused, and not finished.
	//
	// Returns:
	//   - bool: true if time advances on the next Advance
	Playing() bool

	// Paused reports whether the action is paused.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// SetPaused pauses or resumes the action. A paused action keeps contributing its pose.
	//
	// Parameters:
	//   - paused: true to pause
	SetPaused(paused bool)

	// Finished reports whether a loop-once action has reached the end of its clip.
	//
	// Returns:
	//   - bool: true once the end was reached
	Finished() bool

	// Weight returns the blend weight of the action.
	//
	// Returns:
	//   - float32: the weight
	Weight() float32

	// SetWeight sets the blend weight. Negative values are treated as zero.
	//
	// Parameters:
	//   - w: the new weight
	SetWeight(w float32)

	// TimeScale returns the playback speed multiplier.
	//
	// Returns:
	//   - float64: the multiplier
	TimeScale() float64

	// SetTimeScale sets the playback speed multiplier (1 = normal speed, negative plays backward).
	//
	// Parameters:
	//   - s: the multiplier
	SetTimeScale(s float64)

	// Loops returns how many times a LoopRepeat action has wrapped.
	//
	// Returns:
	//   - int: the loop count
	Loops() int

	// Play enables the action and resumes it. A finished action restarts from the beginning.
	Play()

	// Stop disables the action and rewinds it. Its nodes return to the rest pose on the next Advance.
	Stop()

	// Reset rewinds the action and clears its finished state without changing whether it is enabled.
	Reset()

	// OnFinished registers fn to run once each time the action finishes a loop-once playback.
	//
	// Parameters:
	//   - fn: the callback
	OnFinished(fn func(Action))
}

var _ Action = &actionImpl{}

func (a *actionImpl) Clip() *model.AnimationClip { return a.clip }
func (a *actionImpl) Time() float64              { return a.time }
func (a *actionImpl) LoopMode() LoopMode         { return a.loopMode }
func (a *actionImpl) Paused() bool               { return a.paused }
func (a *actionImpl) Finished() bool             { return a.finished }
func (a *actionImpl) Weight() float32            { return a.weight }
func (a *actionImpl) TimeScale() float64         { return a.timeScale }
func (a *actionImpl) Loops() int                 { return a.loops }

func (a *actionImpl) Playing() bool {
	return a.enabled && !a.paused && !a.finished
}

func (a *actionImpl) SetTime(t float64) {
	a.time = math.Min(math.Max(t, 0), a.clip.Duration)
}

func (a *actionImpl) SetLoopMode(mode LoopMode) {
	a.loopMode = mode
}

func (a *actionImpl) SetPaused(paused bool) {
	a.paused = paused
}

func (a *actionImpl) SetWeight(w float32) {
	a.weight = max(w, 0)
}

func (a *actionImpl) SetTimeScale(s float64) {
	a.timeScale = s
}

func (a *actionImpl) Play() {
	if a.finished {
		a.Reset()
	}
	a.enabled = true
	a.paused = false
}

func (a *actionImpl) Stop() {
	a.enabled = false
	a.Reset()
}

func (a *actionImpl) Reset() {
	a.time = 0
	a.loops = 0
	a.finished = false
	if a.timeScale < 0 {
		a.time = a.clip.Duration
	}
}

func (a *actionImpl) OnFinished(fn func(Action)) {
	if fn != nil {
		a.onFinished = append(a.onFinished, fn)
	}
}

// advance moves the playhead by dt seconds of wall time and resolves the end of the clip.
// It does not touch the scene graph.
func (a *actionImpl) advance(dt float64) {
	if !a.Playing() || dt <= 0 || a.timeScale == 0 {
		return
	}

	duration := a.clip.Duration
	t := a.time + dt*a.timeScale

	if a.loopMode == LoopRepeat {
		if duration <= 0 {
			a.time = 0
			return
		}
		if t >= duration {
			a.loops += int(t / duration)
			t = math.Mod(t, duration)
		} else if t < 0 {
			a.loops += int(-t/duration) + 1
			t = duration + math.Mod(t, duration)
			if t >= duration {
				t = 0
			}
		}
		a.time = t
		return
	}

	switch {
	case t >= duration:
		t = duration
	case t <= 0:
		t = 0
	default:
		a.time = t
		return
	}

	a.time = t
	a.finished = true
	if a.loopMode == LoopOnceReset {
		a.enabled = false
		a.time = 0
	}
	for _, fn := range a.onFinished {
		fn(a)
	}
}
