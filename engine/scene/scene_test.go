package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/engine/animator"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// fakeLoader records LoadAsync calls and lets the test complete them.
type fakeLoader struct {
	urls    []string
	onLoad  func(*model.SceneAsset)
	onError func(*loader.LoadError)
}

func (f *fakeLoader) LoadAsync(url string, onLoad func(*model.SceneAsset), onError func(*loader.LoadError)) {
	f.urls = append(f.urls, url)
	f.onLoad = onLoad
	f.onError = onError
}

// slideAsset has one node and one 0.02s clip moving it from x=0 to x=1.
func slideAsset() *model.SceneAsset {
	root := model.NewNode("root", -1)
	box := model.NewNode("Box", 0)
	root.AddChild(box)
	return &model.SceneAsset{
		Name:  "room",
		Root:  root,
		Nodes: []*model.Node{box},
		Clips: []*model.AnimationClip{{
			Name:     "Slide",
			Duration: 0.02,
			Tracks: []*model.Track{{
				Node:          0,
				Path:          model.PathTranslation,
				Interpolation: model.InterpolationLinear,
				Times:         []float32{0, 0.02},
				Values:        []float32{0, 0, 0, 1, 0, 0},
				Components:    3,
			}},
		}},
	}
}

func TestNewSceneStartsLoading(t *testing.T) {
	s := NewScene("main")
	if s.State() != StateLoading {
		t.Fatalf("state = %v, want loading", s.State())
	}
	if s.Root() != nil || s.Actions() != nil || s.Asset() != nil {
		t.Error("a loading scene exposes no root, actions or asset")
	}
	s.Update(1)
	if s.State() != StateLoading {
		t.Error("Update changed the state of a loading scene")
	}
}

func TestLoadIssuesRequestOnce(t *testing.T) {
	s := NewScene("main")
	l := &fakeLoader{}

	if !s.Load(l, "room.glb") {
		t.Fatal("first Load did not start a request")
	}
	if s.Load(l, "room.glb") {
		t.Error("second Load started another request")
	}
	if len(l.urls) != 1 || l.urls[0] != "room.glb" {
		t.Fatalf("loader requests = %v, want [room.glb]", l.urls)
	}
	if s.State() != StateLoading {
		t.Error("Load must not leave the loading state by itself")
	}
}

func TestLoadedEventActivatesScene(t *testing.T) {
	asset := slideAsset()
	var activated []Scene
	s := NewScene("main", WithOnActivated(func(sc Scene) { activated = append(activated, sc) }))
	l := &fakeLoader{}
	s.Load(l, "room.glb")

	l.onLoad(asset)
	if s.State() != StateLoading {
		t.Fatal("completion must be queued, not applied from the callback")
	}
	if n := s.DrainEvents(); n != 1 {
		t.Fatalf("drained %d events, want 1", n)
	}

	if s.State() != StateActive {
		t.Fatalf("state = %v, want active", s.State())
	}
	if s.Root() != asset.Root || s.Asset() != asset {
		t.Error("active scene does not expose the loaded asset")
	}
	actions := s.Actions()
	if len(actions) != 1 || actions[0].Clip().Name != "Slide" {
		t.Fatalf("actions = %v, want one Slide action", actions)
	}
	if len(activated) != 1 || activated[0] != s {
		t.Errorf("OnActivated ran %d times, want 1", len(activated))
	}
}

func TestSecondLoadedEventIsIgnored(t *testing.T) {
	first := slideAsset()
	s := NewScene("main")
	calls := 0
	s.OnActivated(func(Scene) { calls++ })

	s.HandleEvent(LoadedEvent{URL: "a.glb", Asset: first})
	actions := s.Actions()
	s.HandleEvent(LoadedEvent{URL: "b.glb", Asset: slideAsset()})

	if s.Asset() != first {
		t.Error("a second completion replaced the active asset")
	}
	if got := s.Actions(); len(got) != len(actions) || got[0] != actions[0] {
		t.Error("a second completion re-created the actions")
	}
	if calls != 1 {
		t.Errorf("OnActivated ran %d times, want 1", calls)
	}
}

func TestLoadFailedEventKeepsLoading(t *testing.T) {
	s := NewScene("main")
	l := &fakeLoader{}
	s.Load(l, "missing.glb")

	cause := errors.New("no such file")
	l.onError(&loader.LoadError{URL: "missing.glb", Reason: "fetch", Err: cause})
	s.DrainEvents()

	if s.State() != StateLoading {
		t.Fatalf("state = %v, want loading", s.State())
	}
	if !errors.Is(s.LastError(), cause) {
		t.Errorf("LastError = %v, want wrapped %v", s.LastError(), cause)
	}
	var le *loader.LoadError
	if !errors.As(s.LastError(), &le) || le.URL != "missing.glb" {
		t.Errorf("LastError is not the LoadError: %v", s.LastError())
	}
	if s.Root() != nil {
		t.Error("failed load exposed a root")
	}
}

func TestUpdateAdvancesActiveScene(t *testing.T) {
	asset := slideAsset()
	s := NewScene("main")
	s.HandleEvent(LoadedEvent{URL: "room.glb", Asset: asset})
	act := s.Actions()[0]

	s.Update(0.016)
	if math.Abs(act.Time()-0.016) > 1e-9 || !act.Playing() {
		t.Fatalf("after 0.016s: time=%v playing=%v", act.Time(), act.Playing())
	}
	s.Update(0.02)
	if act.Time() != 0.02 || act.Playing() || !act.Finished() {
		t.Fatalf("after end: time=%v playing=%v finished=%v", act.Time(), act.Playing(), act.Finished())
	}
	if x := asset.Nodes[0].Local.Translation.X(); x != 1 {
		t.Errorf("node x = %v, want clamped end pose 1", x)
	}
}

func TestWithLoopModeReachesActions(t *testing.T) {
	s := NewScene("main", WithLoopMode(animator.LoopRepeat))
	s.HandleEvent(LoadedEvent{URL: "room.glb", Asset: slideAsset()})
	if m := s.Actions()[0].LoopMode(); m != animator.LoopRepeat {
		t.Errorf("loop mode = %v, want repeat", m)
	}
}

func TestWithTimeScaleSpeedsUpPlayback(t *testing.T) {
	s := NewScene("main", WithTimeScale(2))
	s.HandleEvent(LoadedEvent{URL: "room.glb", Asset: slideAsset()})
	a := s.Actions()[0]
	if a.TimeScale() != 2 {
		t.Fatalf("time scale = %v, want 2", a.TimeScale())
	}
	s.Update(0.005)
	if a.Time() != 0.01 {
		t.Errorf("time after 5ms at 2x = %v, want 0.01", a.Time())
	}
}

func TestOnActivatedAfterActivationRunsImmediately(t *testing.T) {
	s := NewScene("main")
	s.HandleEvent(LoadedEvent{URL: "room.glb", Asset: slideAsset()})
	ran := false
	s.OnActivated(func(Scene) { ran = true })
	if !ran {
		t.Error("callback registered on an active scene did not run")
	}
}

func TestPostDropsWhenQueueFull(t *testing.T) {
	s := NewScene("main", WithEventQueueSize(1))
	if !s.Post(LoadFailedEvent{URL: "a"}) {
		t.Fatal("first Post was dropped")
	}
	if s.Post(LoadFailedEvent{URL: "b"}) {
		t.Error("Post on a full queue did not report the drop")
	}
	if n := s.DrainEvents(); n != 1 {
		t.Errorf("drained %d events, want 1", n)
	}
	if n := s.DrainEvents(); n != 0 {
		t.Errorf("second drain handled %d events, want 0", n)
	}
}

func TestStateString(t *testing.T) {
	if StateLoading.String() != "loading" || StateActive.String() != "active" {
		t.Errorf("got %q and %q", StateLoading, StateActive)
	}
}
