package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
	log    *zap.Logger
}

// gltfMeshExtractor converts glTF meshes into model.Mesh values with flat vertex arrays.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	// Primitives that are not triangle lists are skipped with a warning.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//   - materials: extracted materials indexed by glTF material index
	//
	// Returns:
	//   - *model.Mesh: the extracted mesh
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, materials []*model.Material) (*model.Mesh, error)

	// ExtractAllMeshes extracts every mesh of the document in index order.
	//
	// Parameters:
	//   - materials: extracted materials indexed by glTF material index
	//
	// Returns:
	//   - []*model.Mesh: meshes indexed by glTF mesh index
	//   - error: error if extraction fails
	ExtractAllMeshes(materials []*model.Material) ([]*model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//   - log: the logger receiving skipped-primitive warnings
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser, log *zap.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser, log: log}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, materials []*model.Material) (*model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh %d: %w", meshIndex, ErrIndexOutOfRange)
	}

	gm := &doc.Meshes[meshIndex]
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	mesh := &model.Mesh{
		Name:    name,
		Weights: append([]float32(nil), gm.Weights...),
	}

	for primIdx := range gm.Primitives {
		prim := &gm.Primitives[primIdx]
		if mode := primitiveMode(prim); mode != gltfPrimitiveModeTriangles {
			e.log.Warn("skipping non-triangle primitive",
				zap.String("mesh", name),
				zap.Int("primitive", primIdx),
				zap.Int("mode", mode),
			)
			continue
		}

		p, err := e.extractPrimitive(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		if prim.Material != nil {
			if *prim.Material < 0 || *prim.Material >= len(materials) {
				return nil, fmt.Errorf("mesh %d primitive %d: material %d: %w", meshIndex, primIdx, *prim.Material, ErrIndexOutOfRange)
			}
			p.Material = materials[*prim.Material]
		}
		mesh.Primitives = append(mesh.Primitives, p)
	}

	return mesh, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes(materials []*model.Material) ([]*model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	meshes := make([]*model.Mesh, len(doc.Meshes))
	for i := range doc.Meshes {
		m, err := e.ExtractMesh(i, materials)
		if err != nil {
			return nil, err
		}
		meshes[i] = m
	}
	return meshes, nil
}

// extractPrimitive reads the vertex attributes and indices of a triangle primitive.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) (*model.Primitive, error) {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION attribute", ErrInvalidAccessor)
	}
	positions, comps, err := e.parser.ReadFloatAccessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	if comps != 3 {
		return nil, fmt.Errorf("%w: POSITION has %d components", ErrInvalidAccessor, comps)
	}
	vertexCount := len(positions) / 3

	p := &model.Primitive{Positions: positions}

	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, comps, err := e.parser.ReadFloatAccessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		if comps != 2 || len(uvs)/2 != vertexCount {
			return nil, fmt.Errorf("%w: TEXCOORD_0 does not match POSITION", ErrInvalidAccessor)
		}
		p.UVs = uvs
	}

	if idx, ok := prim.Attributes["COLOR_0"]; ok {
		colors, comps, err := e.parser.ReadFloatAccessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read colors: %w", err)
		}
		if (comps != 3 && comps != 4) || len(colors)/comps != vertexCount {
			return nil, fmt.Errorf("%w: COLOR_0 does not match POSITION", ErrInvalidAccessor)
		}
		p.Colors = expandColors(colors, comps)
	}

	if prim.Indices != nil {
		p.Indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, i := range p.Indices {
			if int(i) >= vertexCount {
				return nil, fmt.Errorf("index %d >= vertex count %d: %w", i, vertexCount, ErrIndexOutOfRange)
			}
		}
	} else {
		p.Indices = make([]uint32, vertexCount)
		for i := range p.Indices {
			p.Indices[i] = uint32(i)
		}
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, comps, err := e.parser.ReadFloatAccessor(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		if comps != 3 || len(normals)/3 != vertexCount {
			return nil, fmt.Errorf("%w: NORMAL does not match POSITION", ErrInvalidAccessor)
		}
		p.Normals = normals
	} else {
		p.Normals = generateNormals(positions, p.Indices)
	}

	p.Min, p.Max = boundingBox(positions)
	return p, nil
}

// primitiveMode returns the topology of a primitive, TRIANGLES when unset.
func primitiveMode(prim *gltfPrimitive) int {
	if prim.Mode == nil {
		return gltfPrimitiveModeTriangles
	}
	return *prim.Mode
}

// expandColors widens RGB colors to RGBA with an alpha of 1.
func expandColors(colors []float32, comps int) []float32 {
	if comps == 4 {
		return colors
	}
	out := make([]float32, 0, len(colors)/3*4)
	for i := 0; i+2 < len(colors); i += 3 {
		out = append(out, colors[i], colors[i+1], colors[i+2], 1)
	}
	return out
}

// boundingBox computes the axis-aligned bounds of a flat position array.
func boundingBox(positions []float32) (mgl32.Vec3, mgl32.Vec3) {
	if len(positions) < 3 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}

	bmin := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	bmax := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i := 0; i+2 < len(positions); i += 3 {
		for j := 0; j < 3; j++ {
			v := positions[i+j]
			bmin[j] = min(bmin[j], v)
			bmax[j] = max(bmax[j], v)
		}
	}
	return bmin, bmax
}

// generateNormals computes smooth vertex normals from the triangle geometry.
// Face normals are accumulated unnormalized so larger triangles weigh more; degenerate
// vertices fall back to +Y.
//
// Parameters:
//   - positions: flat vertex positions, 3 floats per vertex
//   - indices: the triangle index buffer
//
// Returns:
//   - []float32: flat normals, 3 floats per vertex
func generateNormals(positions []float32, indices []uint32) []float32 {
	n := len(positions) / 3
	accum := make([]mgl32.Vec3, n)
	at := func(i uint32) mgl32.Vec3 {
		return mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}
		p0 := at(i0)
		face := at(i1).Sub(p0).Cross(at(i2).Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	normals := make([]float32, n*3)
	for i, v := range accum {
		if v.Len() < 1e-6 {
			v = mgl32.Vec3{0, 1, 0}
		} else {
			v = v.Normalize()
		}
		copy(normals[i*3:], v[:])
	}
	return normals
}
