package debug

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/Carmen-Shannon/oxy-glb/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func newTestPanel() Panel {
	return NewPanel(WithLogger(zap.NewNop()))
}

func TestSetValueClampsAndSnaps(t *testing.T) {
	var v float32
	p := newTestPanel().AddFolder("f").Add("v",
		func() float32 { return v },
		func(x float32) { v = x },
		WithRange(0, 1), WithStep(0.25),
	)

	tests := []struct {
		in, want float32
	}{
		{0.3, 0.25},
		{0.4, 0.5},
		{2, 1},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := p.SetValue(tt.in); got != tt.want || v != tt.want {
			t.Errorf("SetValue(%v) = %v (bound %v), want %v", tt.in, got, v, tt.want)
		}
	}
}

func TestAddFolderReturnsExisting(t *testing.T) {
	panel := newTestPanel()
	a := panel.AddFolder("Camera")
	b := panel.AddFolder("Camera")
	if a != b || len(panel.Folders()) != 1 {
		t.Error("AddFolder created a duplicate folder")
	}
	if panel.Folder("missing") != nil {
		t.Error("Folder returned a folder that was never added")
	}
}

func TestCameraFolder(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithPosition(mgl32.Vec3{3, 6, 5}))
	panel := newTestPanel()
	f := BindCameraPosition(panel, ctrl)

	params := f.Params()
	if len(params) != 3 {
		t.Fatalf("params = %d, want 3", len(params))
	}
	for i, name := range []string{"position x", "position y", "position z"} {
		p := params[i]
		if p.Name() != name || p.Folder() != "Camera" || p.Min() != -10 || p.Max() != 10 || p.Step() != 0.01 {
			t.Errorf("param %d = %s [%v, %v] step %v", i, p.Name(), p.Min(), p.Max(), p.Step())
		}
	}
	if x := params[0].Value(); mgl32.Abs(x-3) > 1e-4 {
		t.Errorf("position x = %v, want 3", x)
	}

	params[1].SetValue(2)
	if pos := ctrl.Position(); !pos.ApproxEqualThreshold(mgl32.Vec3{3, 2, 5}, 1e-3) {
		t.Errorf("controller position = %v, want (3, 2, 5)", pos)
	}

	snap := panel.Snapshot()
	if v, ok := snap["Camera/position z"]; !ok || mgl32.Abs(v-5) > 1e-3 {
		t.Errorf("snapshot = %v", snap)
	}
}

func TestHandleKey(t *testing.T) {
	var a, b float32
	panel := newTestPanel()
	f := panel.AddFolder("f")
	f.Add("a", func() float32 { return a }, func(x float32) { a = x }, WithStep(0.5))
	f.Add("b", func() float32 { return b }, func(x float32) { b = x }, WithStep(0.5))

	if panel.Selected().Name() != "a" {
		t.Fatalf("initial selection = %s, want a", panel.Selected().Name())
	}
	panel.HandleKey(common.KeyRightBracket, false)
	if a != 0.5 {
		t.Errorf("a = %v after ], want 0.5", a)
	}
	panel.HandleKey(common.KeyLeftBracket, true)
	if a != -4.5 {
		t.Errorf("a = %v after shift+[, want -4.5", a)
	}
	panel.HandleKey(common.KeyR, false)
	if a != 0 {
		t.Errorf("a = %v after reset, want 0", a)
	}

	panel.HandleKey(common.KeyTab, false)
	if panel.Selected().Name() != "b" {
		t.Errorf("selection after Tab = %s, want b", panel.Selected().Name())
	}
	panel.HandleKey(common.KeyTab, false)
	if panel.Selected().Name() != "a" {
		t.Errorf("selection did not wrap around")
	}

	if !panel.HandleKey(common.KeyP, false) {
		t.Error("P not consumed")
	}
	if panel.HandleKey('Q', false) {
		t.Error("unbound key consumed")
	}
}

func TestEmptyPanelIgnoresNudge(t *testing.T) {
	panel := newTestPanel()
	if panel.Selected() != nil {
		t.Error("empty panel has a selection")
	}
	if panel.HandleKey(common.KeyRightBracket, false) {
		t.Error("nudge consumed with nothing selected")
	}
	panel.SelectNext()
}
