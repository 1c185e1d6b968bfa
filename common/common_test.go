package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(1000)
	proj := Perspective(mgl32.DegToRad(75), 1.5, near, far)

	depth := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, -z, 1})
		return clip[2] / clip[3]
	}
	if d := depth(near); mgl32.Abs(d) > 1e-5 {
		t.Errorf("depth at near plane = %v, want 0", d)
	}
	if d := depth(far); mgl32.Abs(d-1) > 1e-4 {
		t.Errorf("depth at far plane = %v, want 1", d)
	}
}

func TestFrustumIntersectsBox(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	f := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name     string
		min, max mgl32.Vec3
		want     bool
	}{
		{"unit box at origin", mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, true},
		{"behind the camera", mgl32.Vec3{-1, -1, 8}, mgl32.Vec3{1, 1, 10}, false},
		{"far to the right", mgl32.Vec3{50, -1, -1}, mgl32.Vec3{52, 1, 1}, false},
		{"beyond the far plane", mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}, false},
		{"straddling the left plane", mgl32.Vec3{-10, -1, -1}, mgl32.Vec3{0, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsBox(tt.min, tt.max); got != tt.want {
				t.Errorf("IntersectsBox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformBox(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))
	lo, hi := TransformBox(m, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 1, 1})

	wantLo := mgl32.Vec3{1, 2, 1}
	wantHi := mgl32.Vec3{2, 3, 3}
	if !lo.ApproxEqualThreshold(wantLo, 1e-5) || !hi.ApproxEqualThreshold(wantHi, 1e-5) {
		t.Errorf("TransformBox = %v %v, want %v %v", lo, hi, wantLo, wantHi)
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32{}) != nil {
		t.Error("empty slice should give nil")
	}
	if n := len(SliceToBytes([]float32{1, 2, 3})); n != 12 {
		t.Errorf("len = %d, want 12", n)
	}
}
