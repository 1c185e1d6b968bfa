package model

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// TrackPath names the node property a track animates.
type TrackPath string

const (
	PathTranslation TrackPath = "translation"
	PathRotation    TrackPath = "rotation"
	PathScale       TrackPath = "scale"
	PathWeights     TrackPath = "weights"
)

// Interpolation is the keyframe interpolation of a track.
type Interpolation string

const (
	InterpolationLinear      Interpolation = "LINEAR"
	InterpolationStep        Interpolation = "STEP"
	InterpolationCubicSpline Interpolation = "CUBICSPLINE"
)

// AnimationClip is an immutable, named set of keyframe tracks over the nodes of one asset.
type AnimationClip struct {
	// Name is the clip identifier.
	Name string

	// Duration is the clip length in seconds (the largest keyframe time of any track).
	Duration float64

	// Tracks are the clip's keyframe tracks in document order.
	Tracks []*Track
}

// Track animates one property of one node.
type Track struct {
	// Node is the index of the target node in SceneAsset.Nodes.
	Node int

	// Path is the animated property.
	Path TrackPath

	// Interpolation is the keyframe interpolation.
	Interpolation Interpolation

	// Times are the keyframe times in seconds, strictly increasing.
	Times []float32

	// Values are the keyframe outputs. CUBICSPLINE tracks store an
	// (in-tangent, value, out-tangent) triplet per keyframe.
	Values []float32

	// Components is the number of floats in one sampled value
	// (3 for translation and scale, 4 for rotation, the morph target count for weights).
	Components int
}

// Duration returns the time of the last keyframe, or 0 for an empty track.
//
// Returns:
//   - float64: the last keyframe time
func (t *Track) Duration() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return float64(t.Times[len(t.Times)-1])
}

// Sample evaluates the track at time tm and writes Components floats to out.
// Times before the first keyframe return the first value, times after the last return the last value.
// Rotation results are normalized quaternions in x, y, z, w order.
//
// Parameters:
//   - tm: the sample time in seconds
//   - out: destination slice of at least Components floats
func (t *Track) Sample(tm float64, out []float32) {
	n := len(t.Times)
	c := t.Components
	if n == 0 || c == 0 {
		return
	}

	if n == 1 || tm <= float64(t.Times[0]) {
		copy(out[:c], t.value(0))
		return
	}
	if tm >= float64(t.Times[n-1]) {
		copy(out[:c], t.value(n-1))
		return
	}

	// i is the last keyframe at or before tm.
	i := sort.Search(n, func(k int) bool { return float64(t.Times[k]) > tm }) - 1
	t0 := float64(t.Times[i])
	t1 := float64(t.Times[i+1])
	span := t1 - t0
	s := float32(0)
	if span > 0 {
		s = float32((tm - t0) / span)
	}

	switch t.Interpolation {
	case InterpolationStep:
		copy(out[:c], t.value(i))
	case InterpolationCubicSpline:
		t.hermite(i, s, float32(span), out)
		if t.Path == PathRotation {
			normalizeQuat(out)
		}
	default:
		if t.Path == PathRotation {
			q := SlerpQuat(quatFromSlice(t.value(i)), quatFromSlice(t.value(i+1)), s)
			quatToSlice(q, out)
			return
		}
		a, b := t.value(i), t.value(i+1)
		for k := 0; k < c; k++ {
			out[k] = a[k] + (b[k]-a[k])*s
		}
	}
}

// value returns the keyframe value at index k.
func (t *Track) value(k int) []float32 {
	c := t.Components
	if t.Interpolation == InterpolationCubicSpline {
		off := (3*k + 1) * c
		return t.Values[off : off+c]
	}
	return t.Values[k*c : k*c+c]
}

// hermite evaluates the cubic Hermite spline between keyframes i and i+1.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#interpolation-cubic
func (t *Track) hermite(i int, s, span float32, out []float32) {
	c := t.Components
	v0 := t.Values[(3*i+1)*c : (3*i+2)*c]
	b0 := t.Values[(3*i+2)*c : (3*i+3)*c]
	a1 := t.Values[(3*(i+1))*c : (3*(i+1)+1)*c]
	v1 := t.Values[(3*(i+1)+1)*c : (3*(i+1)+2)*c]

	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	for k := 0; k < c; k++ {
		out[k] = h00*v0[k] + h10*span*b0[k] + h01*v1[k] + h11*span*a1[k]
	}
}

// SlerpQuat interpolates along the shortest arc between a and b.
//
// Parameters:
//   - a: the start rotation
//   - b: the end rotation
//   - s: the interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the normalized interpolated rotation
func SlerpQuat(a, b mgl32.Quat, s float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, s).Normalize()
}

func quatFromSlice(v []float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

func quatToSlice(q mgl32.Quat, out []float32) {
	out[0], out[1], out[2], out[3] = q.V[0], q.V[1], q.V[2], q.W
}

func normalizeQuat(v []float32) {
	q := quatFromSlice(v).Normalize()
	quatToSlice(q, v)
}

// QuatFromXYZW converts a quaternion stored as x, y, z, w into an mgl32.Quat.
//
// Parameters:
//   - v: at least 4 floats
//
// Returns:
//   - mgl32.Quat: the quaternion
func QuatFromXYZW(v []float32) mgl32.Quat {
	return quatFromSlice(v)
}
