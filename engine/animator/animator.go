// package animator plays the animation clips of a loaded scene asset on its node hierarchy.
//
// Activate creates one Action per clip. Every frame, Advance moves each playing action forward
// by the frame delta, samples its tracks, and mixes the results per node property by action
// weight, writing the final pose into each node's Local transform.
package animator

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/logger"

	"go.uber.org/zap"
)

// animatorImpl is the implementation of the Animator interface.
type animatorImpl struct {
	asset    *model.SceneAsset
	actions  []*actionImpl
	bindings []*propertyBinding

	defaultLoop LoopMode
	clipLoop    map[string]LoopMode
	timeScale   float64

	log *zap.Logger
}

// Animator owns the actions created for one scene asset and applies their mixed pose.
type Animator interface {
	// Root returns the root node the actions animate, nil for an animator without an asset.
	//
	// Returns:
	//   - *model.Node: the root node
	Root() *model.Node

	// Actions returns the actions in clip order. The slice is a copy; the actions are shared.
	//
	// Returns:
	//   - []Action: one action per clip
	Actions() []Action

	// Action returns the action playing the named clip, or nil.
	//
	// Parameters:
	//   - clipName: the clip name
	//
	// Returns:
	//   - Action: the matching action or nil
	Action(clipName string) Action

	// Advance moves every playing action forward by dt seconds and applies the mixed pose.
	// A zero or negative dt leaves playback time unchanged.
	//
	// Parameters:
	//   - dt: the frame delta in seconds
	Advance(dt float64)
}

var _ Animator = &animatorImpl{}

// Activate creates one playing action per clip of the asset, in clip order, bound to the
// asset's nodes. All actions exist before Activate returns and the pose at time zero is
// applied immediately. Unless configured otherwise every action uses LoopOnceClamp.
//
// Parameters:
//   - asset: the loaded scene asset, may be nil
//   - options: functional options to configure the animator
//
// Returns:
//   - Animator: the animator owning the new actions
func Activate(asset *model.SceneAsset, options ...AnimatorBuilderOption) Animator {
	a := &animatorImpl{
		asset:       asset,
		defaultLoop: LoopOnceClamp,
		clipLoop:    make(map[string]LoopMode),
		timeScale:   1,
		log:         logger.Named("animator"),
	}
	for _, opt := range options {
		opt(a)
	}

	if asset == nil {
		return a
	}

	index := make(map[bindingKey]*propertyBinding)
	actions := make([]*actionImpl, 0, len(asset.Clips))
	for _, clip := range asset.Clips {
		act := &actionImpl{
			owner:     a,
			clip:      clip,
			timeScale: a.timeScale,
			weight:    1,
			loopMode:  a.loopModeFor(clip.Name),
		}
		act.tracks = a.bindTracks(clip, index)
		act.Reset()
		act.Play()
		actions = append(actions, act)
	}
	a.actions = actions

	a.apply()

	a.log.Debug("animations activated",
		zap.String("asset", asset.Name),
		zap.Int("actions", len(a.actions)),
		zap.Int("bindings", len(a.bindings)),
	)
	return a
}

// Advance advances the given actions by dt and applies the resulting pose of each
// animator they belong to. Actions of the same animator that are not listed keep their time.
//
// Parameters:
//   - actions: the actions to advance
//   - dt: the frame delta in seconds
func Advance(actions []Action, dt float64) {
	var owners []*animatorImpl
	selected := make(map[*actionImpl]bool, len(actions))
	for _, action := range actions {
		act, ok := action.(*actionImpl)
		if !ok || act == nil {
			continue
		}
		selected[act] = true
		found := false
		for _, o := range owners {
			if o == act.owner {
				found = true
				break
			}
		}
		if !found {
			owners = append(owners, act.owner)
		}
	}

	for _, o := range owners {
		o.advance(dt, selected)
	}
}

func (a *animatorImpl) Root() *model.Node {
	if a.asset == nil {
		return nil
	}
	return a.asset.Root
}

func (a *animatorImpl) Actions() []Action {
	out := make([]Action, len(a.actions))
	for i, act := range a.actions {
		out[i] = act
	}
	return out
}

func (a *animatorImpl) Action(clipName string) Action {
	for _, act := range a.actions {
		if act.clip.Name == clipName {
			return act
		}
	}
	return nil
}

func (a *animatorImpl) Advance(dt float64) {
	a.advance(dt, nil)
}

// advance updates the time of the selected actions (all when selected is nil), then applies the pose.
func (a *animatorImpl) advance(dt float64, selected map[*actionImpl]bool) {
	if dt < 0 {
		dt = 0
	}
	for _, act := range a.actions {
		if selected != nil && !selected[act] {
			continue
		}
		wasFinished := act.finished
		act.advance(dt)
		if act.finished && !wasFinished {
			a.log.Debug("animation finished",
				zap.String("clip", act.clip.Name),
				zap.Stringer("loop", act.loopMode),
				zap.Float64("time", act.time),
			)
		}
	}
	a.apply()
}

// apply mixes every enabled action into the bound node properties.
func (a *animatorImpl) apply() {
	for _, b := range a.bindings {
		b.begin()
	}
	for _, act := range a.actions {
		if !act.enabled || act.weight <= 0 {
			continue
		}
		for _, tb := range act.tracks {
			tb.track.Sample(act.time, tb.binding.sample)
			tb.binding.accumulate(tb.binding.sample, act.weight)
		}
	}
	for _, b := range a.bindings {
		b.apply()
	}
}

// bindTracks connects each track of clip to a shared property binding, creating bindings on first use.
// Tracks that target missing nodes are skipped.
func (a *animatorImpl) bindTracks(clip *model.AnimationClip, index map[bindingKey]*propertyBinding) []trackBinding {
	tracks := make([]trackBinding, 0, len(clip.Tracks))
	for _, tr := range clip.Tracks {
		node := a.asset.Node(tr.Node)
		if node == nil || tr.Components == 0 {
			a.log.Warn("skipping track without a target",
				zap.String("clip", clip.Name),
				zap.Int("node", tr.Node),
				zap.String("path", string(tr.Path)),
			)
			continue
		}

		key := bindingKey{node: tr.Node, path: tr.Path}
		b, ok := index[key]
		if !ok {
			b = newPropertyBinding(node, tr.Path, tr.Components)
			index[key] = b
			a.bindings = append(a.bindings, b)
		}
		if len(b.sample) != tr.Components {
			a.log.Warn("skipping track with mismatched component count",
				zap.String("clip", clip.Name),
				zap.Int("node", tr.Node),
				zap.Int("components", tr.Components),
			)
			continue
		}
		tracks = append(tracks, trackBinding{track: tr, binding: b})
	}
	return tracks
}

func (a *animatorImpl) loopModeFor(clipName string) LoopMode {
	if m, ok := a.clipLoop[clipName]; ok {
		return m
	}
	return a.defaultLoop
}
