// package model holds the in-memory form of a loaded scene asset: the node hierarchy,
// mesh geometry, materials, and animation clips. Nothing in this package touches the GPU.
package model

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/webp"
)

// SceneAsset is the result of a completed load.
// It is created once by the loader and never mutated afterwards except for node poses.
type SceneAsset struct {
	// Name identifies the asset, usually the base name of its URL.
	Name string

	// Generator is the authoring tool recorded in the asset header.
	Generator string

	// Version is the container format version recorded in the asset header.
	Version string

	// Root is a synthetic node whose children are the roots of the asset's default scene.
	Root *Node

	// Nodes holds every node of the asset, indexed by node index.
	Nodes []*Node

	// Meshes holds every mesh of the asset, indexed by mesh index.
	Meshes []*Mesh

	// Materials holds every material of the asset, indexed by material index.
	Materials []*Material

	// Clips holds the animation clips in document order.
	Clips []*AnimationClip
}

// Clip returns the first clip with the given name, or nil.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - *AnimationClip: the matching clip or nil
func (a *SceneAsset) Clip(name string) *AnimationClip {
	for _, c := range a.Clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Node returns the node at the given index, or nil when out of range.
//
// Parameters:
//   - index: the node index
//
// Returns:
//   - *Node: the node or nil
func (a *SceneAsset) Node(index int) *Node {
	if index < 0 || index >= len(a.Nodes) {
		return nil
	}
	return a.Nodes[index]
}

// ResetPose restores every node to its rest pose.
func (a *SceneAsset) ResetPose() {
	for _, n := range a.Nodes {
		n.ResetPose()
	}
}

// Mesh is a named group of primitives drawn together at a node.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Primitives are the independently drawable parts of the mesh.
	Primitives []*Primitive

	// Weights are the default morph target weights.
	Weights []float32
}

// Primitive is a triangle list with its own material.
type Primitive struct {
	// Positions are vertex positions, 3 floats per vertex.
	Positions []float32

	// Normals are vertex normals, 3 floats per vertex.
	Normals []float32

	// UVs are texture coordinates, 2 floats per vertex (may be empty).
	UVs []float32

	// Colors are vertex colors, 4 floats per vertex (may be empty).
	Colors []float32

	// Indices are triangle indices into the vertex arrays.
	Indices []uint32

	// Material is the material used to draw the primitive, nil for the default material.
	Material *Material

	// Min and Max bound the positions.
	Min, Max mgl32.Vec3
}

// VertexCount returns the number of vertices in the primitive.
//
// Returns:
//   - int: len(Positions) / 3
func (p *Primitive) VertexCount() int {
	return len(p.Positions) / 3
}

// Material describes the surface appearance of a primitive.
type Material struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the linear RGBA base color factor.
	BaseColor [4]float32

	// Emissive is the linear RGB emissive factor.
	Emissive [3]float32

	// DoubleSided disables back-face culling when true.
	DoubleSided bool

	// AlphaMode is OPAQUE, MASK or BLEND.
	AlphaMode string

	// AlphaCutoff is the MASK threshold.
	AlphaCutoff float32

	// Unlit skips lighting when true.
	Unlit bool

	// BaseColorTexture is the base color image, nil if untextured.
	BaseColorTexture *Texture
}

// DefaultMaterial returns the material used for primitives that reference none.
//
// Returns:
//   - *Material: an opaque white material
func DefaultMaterial() *Material {
	return &Material{
		Name:        "default",
		BaseColor:   [4]float32{1, 1, 1, 1},
		AlphaMode:   "OPAQUE",
		AlphaCutoff: 0.5,
	}
}

// Texture holds encoded image bytes taken from an asset.
type Texture struct {
	// Name is the image identifier.
	Name string

	// MimeType is the image format, e.g. image/png.
	MimeType string

	// Data is the encoded image.
	Data []byte

	// Sampler holds the sampler settings from the asset (zero values mean defaults).
	Sampler TextureSampler
}

// TextureSampler mirrors the sampler parameters of the source format.
// Zero means unset; the renderer then uses linear filtering and repeat wrapping.
type TextureSampler struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// Sampler filter and wrap values, as numbered by glTF (OpenGL enums).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987

	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// Decode decodes the texture to tightly packed RGBA8 pixels.
// Supports PNG, JPEG and WebP.
//
// Returns:
//   - []byte: RGBA pixel data, row-major
//   - uint32: width in pixels
//   - uint32: height in pixels
//   - error: error if the texture is empty or cannot be decoded
func (t *Texture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil || len(t.Data) == 0 {
		return nil, 0, 0, fmt.Errorf("texture has no data")
	}

	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode texture %q: %w", t.Name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), nil
}
