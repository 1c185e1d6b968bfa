package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Draw flags, matching the FLAG_ constants of the lit shader.
const (
	drawFlagTextured  uint32 = 1 << 0
	drawFlagUnlit     uint32 = 1 << 1
	drawFlagAlphaMask uint32 = 1 << 2
)

// vertexStride is the byte size of one interleaved vertex: position, normal, uv, color.
const vertexStride = (3 + 3 + 2 + 4) * 4

// GPUDrawUniform is the GPU-aligned representation of the per-draw uniform buffer.
// Matches the WGSL Draw struct of the lit shader.
// Size: 176 bytes (WGSL aligned).
type GPUDrawUniform struct {
	Model       mgl32.Mat4 // offset   0: node world matrix
	Normal      mgl32.Mat4 // offset  64: inverse transpose of the world matrix
	BaseColor   [4]float32 // offset 128: material base color factor
	Emissive    [3]float32 // offset 144: material emissive factor
	AlphaCutoff float32    // offset 156: MASK threshold
	Flags       uint32     // offset 160: drawFlag bits
	_pad        [3]uint32  // offset 164: padding to 176 bytes
}

// drawUniformSize is the byte size of a marshaled GPUDrawUniform.
const drawUniformSize = 176

// Marshal serializes the GPUDrawUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 176-byte buffer ready for GPU upload
func (g *GPUDrawUniform) Marshal() []byte {
	buf := make([]byte, drawUniformSize)
	putFloats(buf[0:], g.Model[:])
	putFloats(buf[64:], g.Normal[:])
	putFloats(buf[128:], g.BaseColor[:])
	putFloats(buf[144:], g.Emissive[:])
	binary.LittleEndian.PutUint32(buf[156:], math.Float32bits(g.AlphaCutoff))
	binary.LittleEndian.PutUint32(buf[160:], g.Flags)
	return buf
}

// newDrawUniform builds the per-draw uniform for a primitive drawn with the given world matrix.
// A singular world matrix falls back to the world matrix itself for normals.
func newDrawUniform(world mgl32.Mat4, mat *model.Material, textured bool) GPUDrawUniform {
	normal := world
	if det := world.Det(); det != 0 && !math.IsNaN(float64(det)) {
		normal = world.Inv().Transpose()
	}

	u := GPUDrawUniform{
		Model:       world,
		Normal:      normal,
		BaseColor:   mat.BaseColor,
		Emissive:    mat.Emissive,
		AlphaCutoff: mat.AlphaCutoff,
	}
	if textured {
		u.Flags |= drawFlagTextured
	}
	if mat.Unlit {
		u.Flags |= drawFlagUnlit
	}
	if mat.AlphaMode == "MASK" {
		u.Flags |= drawFlagAlphaMask
	}
	return u
}

// interleaveVertices packs a primitive's attribute arrays into the lit shader's vertex layout.
// Missing normals default to +Y, missing UVs to zero and missing colors to opaque white.
//
// Parameters:
//   - p: the primitive to pack
//
// Returns:
//   - []byte: vertexStride bytes per vertex
func interleaveVertices(p *model.Primitive) []byte {
	n := p.VertexCount()
	hasNormals := len(p.Normals) >= n*3
	hasUVs := len(p.UVs) >= n*2
	hasColors := len(p.Colors) >= n*4

	out := make([]float32, 0, n*vertexStride/4)
	for i := range n {
		out = append(out, p.Positions[i*3:i*3+3]...)
		if hasNormals {
			out = append(out, p.Normals[i*3:i*3+3]...)
		} else {
			out = append(out, 0, 1, 0)
		}
		if hasUVs {
			out = append(out, p.UVs[i*2:i*2+2]...)
		} else {
			out = append(out, 0, 0)
		}
		if hasColors {
			out = append(out, p.Colors[i*4:i*4+4]...)
		} else {
			out = append(out, 1, 1, 1, 1)
		}
	}

	buf := make([]byte, len(out)*4)
	putFloats(buf, out)
	return buf
}

func putFloats(dst []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}
