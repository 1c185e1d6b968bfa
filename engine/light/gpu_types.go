package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights is the number of non-ambient lights the renderer's uniform buffer holds.
// Lights beyond it are dropped in rig order.
const MaxGPULights = 8

// GPULight is the GPU-aligned representation of a single light source.
// Matches the WGSL Light struct of the renderer's shader.
// Size: 48 bytes (WGSL aligned).
type GPULight struct {
	Position   [3]float32 // offset  0: world-space position (point) or unused (directional)
	LightType  uint32     // offset 12: LightType value
	Radiance   [3]float32 // offset 16: color * intensity
	LightRange float32    // offset 28: attenuation cutoff distance
	Direction  [3]float32 // offset 32: normalized direction (directional) or unused (point)
	_pad       uint32     // offset 44: padding to 48 bytes
}

// Size returns the size of the GPULight struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 48)
	putVec3(buf[0:12], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:28], g.Radiance)
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.LightRange))
	putVec3(buf[32:44], g.Direction)
	binary.LittleEndian.PutUint32(buf[44:48], 0) // padding
	return buf
}

// GPULightHeader is the header of the light uniform buffer.
// Contains the ambient radiance and the active light count.
// Size: 16 bytes.
type GPULightHeader struct {
	Ambient    [3]float32 // offset 0: summed ambient radiance
	LightCount uint32     // offset 12: number of valid lights following the header
}

// Size returns the size of the GPULightHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

// Marshal serializes the GPULightHeader struct into a byte buffer suitable for
// GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, 16)
	putVec3(buf[0:12], h.Ambient)
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// UniformSize is the byte size of the buffer produced by MarshalRig.
var UniformSize = (&GPULightHeader{}).Size() + MaxGPULights*(&GPULight{}).Size()

// ToGPULight converts a Light interface value into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light) GPULight {
	return GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Radiance:   l.Radiance(),
		LightRange: l.Range(),
		Direction:  l.Direction(),
	}
}

// MarshalRig marshals the rig into a fixed-size uniform buffer with the layout:
//
//	[GPULightHeader (16 bytes)] [GPULight × MaxGPULights (48 bytes each)]
//
// Unused light slots are zeroed.
//
// Parameters:
//   - r: the rig to marshal
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalRig(r Rig) []byte {
	active := r.Active()
	if len(active) > MaxGPULights {
		active = active[:MaxGPULights]
	}

	buf := make([]byte, UniformSize)
	header := GPULightHeader{Ambient: r.Ambient(), LightCount: uint32(len(active))}
	offset := copy(buf, header.Marshal())
	for _, l := range active {
		gpu := ToGPULight(l)
		offset += copy(buf[offset:], gpu.Marshal())
	}
	return buf
}

func putVec3(dst []byte, v [3]float32) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v[i]))
	}
}
