package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Perspective creates a right-handed perspective projection matrix for the WebGPU
// clip space, where depth runs from 0 at the near plane to 1 at the far plane.
// mgl32.Perspective targets the OpenGL [-1, 1] depth range and cannot be used directly.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix (column-major)
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// TransformBox returns the axis-aligned box enclosing the box (bmin, bmax) after transformation by m.
//
// Parameters:
//   - m: the transform
//   - bmin, bmax: the corners of the source box
//
// Returns:
//   - mgl32.Vec3: the minimum corner of the transformed box
//   - mgl32.Vec3: the maximum corner of the transformed box
func TransformBox(m mgl32.Mat4, bmin, bmax mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	for i := range 8 {
		corner := bmin
		if i&1 != 0 {
			corner[0] = bmax[0]
		}
		if i&2 != 0 {
			corner[1] = bmax[1]
		}
		if i&4 != 0 {
			corner[2] = bmax[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		for k := range 3 {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}
