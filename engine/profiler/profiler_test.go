package profiler

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithInterval(time.Second),
		WithTimeSource(func() time.Time { return now }),
		WithLogger(zap.NewNop()),
	)

	for i := 0; i < 49; i++ {
		now = now.Add(20 * time.Millisecond)
		if p.Tick() {
			t.Fatalf("reported early at frame %d", i+1)
		}
	}
	now = now.Add(20 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("no report after a full interval")
	}

	s := p.Last()
	if s.Frames != 50 {
		t.Errorf("frames = %d, want 50", s.Frames)
	}
	if s.FPS < 49.9 || s.FPS > 50.1 {
		t.Errorf("fps = %v, want 50", s.FPS)
	}
	if s.HeapMB <= 0 {
		t.Errorf("heap = %v, want > 0", s.HeapMB)
	}

	now = now.Add(20 * time.Millisecond)
	if p.Tick() {
		t.Error("reported again without waiting an interval")
	}
}

func TestBackwardTimeNeverReports(t *testing.T) {
	now := time.Unix(100, 0)
	p := NewProfiler(WithTimeSource(func() time.Time { return now }), WithLogger(zap.NewNop()))
	now = now.Add(-time.Hour)
	if p.Tick() {
		t.Error("reported with a negative interval")
	}
}
