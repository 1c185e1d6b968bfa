package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform represents a decomposed node transform (translation, rotation, scale).
// Composition order follows glTF: T * R * S.
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a transform with no translation, identity rotation, and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes the transform into a column-major 4x4 matrix.
//
// Returns:
//   - mgl32.Mat4: T * R * S
func (t Transform) Matrix() mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	rot := t.Rotation.Normalize().Mat4()
	sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(rot).Mul4(sc)
}

// ApproxEqual reports whether two transforms match component-wise within epsilon.
// Quaternions q and -q describe the same rotation and compare equal.
//
// Parameters:
//   - other: the transform to compare against
//   - epsilon: the per-component tolerance
//
// Returns:
//   - bool: true if the transforms are equal within epsilon
func (t Transform) ApproxEqual(other Transform, epsilon float32) bool {
	if !t.Translation.ApproxEqualThreshold(other.Translation, epsilon) {
		return false
	}
	if !t.Scale.ApproxEqualThreshold(other.Scale, epsilon) {
		return false
	}
	q := other.Rotation
	if t.Rotation.Dot(q) < 0 {
		q = q.Scale(-1)
	}
	return t.Rotation.ApproxEqualThreshold(q, epsilon)
}

// DecomposeMatrix splits an affine column-major matrix without shear into translation, rotation and scale.
// A negative determinant is folded into the X scale.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - Transform: the decomposed transform
func DecomposeMatrix(m mgl32.Mat4) Transform {
	translation := m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if m.Det() < 0 {
		sx = -sx
	}

	rot := mgl32.Ident4()
	if sx != 0 && sy != 0 && sz != 0 {
		rot.SetCol(0, c0.Mul(1/sx).Vec4(0))
		rot.SetCol(1, c1.Mul(1/sy).Vec4(0))
		rot.SetCol(2, c2.Mul(1/sz).Vec4(0))
	}

	return Transform{
		Translation: translation,
		Rotation:    mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:       mgl32.Vec3{sx, sy, sz},
	}
}
