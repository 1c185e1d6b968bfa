package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a view-projection matrix built for the
// WebGPU [0, 1] depth range. Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.setPlane(FrustumLeft, r3.Add(r0))
	f.setPlane(FrustumRight, r3.Sub(r0))
	f.setPlane(FrustumBottom, r3.Add(r1))
	f.setPlane(FrustumTop, r3.Sub(r1))
	// Zero-to-one depth: the near plane is row 2 alone.
	f.setPlane(FrustumNear, r2)
	f.setPlane(FrustumFar, r3.Sub(r2))
	return f
}

// setPlane stores the plane (a, b, c, d) at index, normalized so the normal has unit length.
func (f *Frustum) setPlane(index int, v mgl32.Vec4) {
	p := &f.Planes[index]
	p.Normal = v.Vec3()
	p.Distance = v[3]

	if length := p.Normal.Len(); length > 0 {
		p.Normal = p.Normal.Mul(1 / length)
		p.Distance /= length
	}
}

// IntersectsBox reports whether the axis-aligned box (bmin, bmax) is at least partly inside the frustum.
// The test is conservative: boxes near a frustum corner may be reported as visible.
//
// Parameters:
//   - bmin, bmax: the world-space corners of the box
//
// Returns:
//   - bool: false only if the box is entirely outside one plane
func (f *Frustum) IntersectsBox(bmin, bmax mgl32.Vec3) bool {
	for _, p := range f.Planes {
		// The box corner furthest along the plane normal.
		var far mgl32.Vec3
		for k := range 3 {
			if p.Normal[k] >= 0 {
				far[k] = bmax[k]
			} else {
				far[k] = bmin[k]
			}
		}
		if p.Normal.Dot(far)+p.Distance < 0 {
			return false
		}
	}
	return true
}
