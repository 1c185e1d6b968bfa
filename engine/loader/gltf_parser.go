package loader

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	resolver       resourceResolver
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser decodes a glTF/GLB container and reads typed accessor data out of its buffers.
// This is internal to the loader package.
type gltfParser interface {
	// Parse decodes a glTF document from raw bytes, detecting GLB by its magic number.
	// External buffers are fetched through the parser's resolver.
	//
	// Parameters:
	//   - ctx: context for cancellation of external buffer fetches
	//   - data: the GLB or glTF JSON bytes
	//
	// Returns:
	//   - error: error if the container, JSON, or buffers are invalid
	Parse(ctx context.Context, data []byte) error

	// Document returns the parsed glTF document, or nil before a successful Parse.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// ReadFloatAccessor reads an accessor as a flat float32 slice.
	// Integer component types are converted, applying normalization when the accessor is normalized.
	// Sparse substitutions are applied.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []float32: Count * components values
	//   - int: the number of components per element
	//   - error: error if the accessor is invalid or out of range
	ReadFloatAccessor(accessorIndex int) ([]float32, int, error)

	// ReadIndicesAccessor reads a SCALAR unsigned accessor as uint32 indices.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: error if the accessor is not an unsigned scalar or is out of range
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)

	// BufferViewData returns the raw bytes of a buffer view.
	//
	// Parameters:
	//   - viewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: the bytes of the view (shared with the buffer, do not modify)
	//   - error: error if the view is out of range
	BufferViewData(viewIndex int) ([]byte, error)

	// Resolve fetches a resource referenced by the document, relative to the asset location.
	//
	// Parameters:
	//   - ctx: context for cancellation
	//   - uri: the resource URI
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: error if the resource cannot be fetched
	Resolve(ctx context.Context, uri string) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a parser that fetches external resources through resolver.
//
// Parameters:
//   - resolver: resolves buffer and image URIs
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser(resolver resourceResolver) gltfParser {
	return &gltfParserImpl{resolver: resolver}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Resolve(ctx context.Context, uri string) ([]byte, error) {
	if p.resolver == nil {
		return nil, fmt.Errorf("%w: no resolver for %q", ErrInvalidURI, uri)
	}
	return p.resolver.Resolve(ctx, uri)
}

func (p *gltfParserImpl) Parse(ctx context.Context, data []byte) error {
	if isGLB(data) {
		return p.parseGLB(ctx, data)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\xef\xbb\xbf")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrUnsupportedFormat
	}
	return p.parseDocument(ctx, trimmed)
}

// isGLB reports whether data starts with the GLB magic number.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(ctx context.Context, data []byte) error {
	if len(data) < 12 {
		return ErrTruncatedGLB
	}

	var header gltfGLBHeader
	if err := binary.Read(bytes.NewReader(data[:12]), binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return ErrInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return ErrInvalidGLBVersion
	}
	if int(header.Length) > len(data) {
		return fmt.Errorf("%w: header declares %d bytes, have %d", ErrTruncatedGLB, header.Length, len(data))
	}
	data = data[:header.Length]

	var jsonData, binData []byte
	offset := 12
	for offset < len(data) {
		if offset+8 > len(data) {
			return fmt.Errorf("%w: incomplete chunk header at offset %d", ErrTruncatedGLB, offset)
		}
		length := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])
		offset += 8
		if length < 0 || offset+length > len(data) {
			return fmt.Errorf("%w: chunk of %d bytes at offset %d", ErrTruncatedGLB, length, offset)
		}
		chunk := data[offset : offset+length]
		offset += length

		switch chunkType {
		case gltfGLBChunkJSON:
			if jsonData == nil {
				jsonData = chunk
			}
		case gltfGLBChunkBIN:
			if binData == nil {
				binData = chunk
			}
		}
	}

	if jsonData == nil {
		return ErrMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseDocument(ctx, jsonData)
}

// parseDocument decodes the JSON document, validates its version, and loads its buffers.
func (p *gltfParserImpl) parseDocument(ctx context.Context, data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}

	major, _, _ := strings.Cut(doc.Asset.Version, ".")
	if major != "2" {
		return fmt.Errorf("%w: got %q", ErrUnsupportedVersion, doc.Asset.Version)
	}

	if err := p.loadBuffers(ctx, &doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}

	p.document = &doc
	return nil
}

// loadBuffers fills every buffer's Data from its URI, an inline data URI, or the GLB BIN chunk.
func (p *gltfParserImpl) loadBuffers(ctx context.Context, doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i != 0 || p.glbBinaryChunk == nil {
				return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
			}
			buf.Data = p.glbBinaryChunk
		} else {
			data, err := p.Resolve(ctx, buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w: declared %d bytes, have %d", i, ErrBufferSizeMismatch, buf.ByteLength, len(buf.Data))
		}
	}

	return nil
}

// --- Accessor Data Reading ---

func (p *gltfParserImpl) BufferViewData(viewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil || viewIndex < 0 || viewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d: %w", viewIndex, ErrIndexOutOfRange)
	}
	bv := &doc.BufferViews[viewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d: buffer %d: %w", viewIndex, bv.Buffer, ErrIndexOutOfRange)
	}
	data := doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset > len(data) || bv.ByteLength > len(data)-bv.ByteOffset {
		return nil, fmt.Errorf("buffer view %d: offset %d length %d of %d bytes: %w", viewIndex, bv.ByteOffset, bv.ByteLength, len(data), ErrIndexOutOfRange)
	}
	return data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], nil
}

// accessor returns the accessor at index with its component size and count validated.
func (p *gltfParserImpl) accessor(index int) (*gltfAccessor, int, int, error) {
	if p.document == nil || index < 0 || index >= len(p.document.Accessors) {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w", index, ErrIndexOutOfRange)
	}
	acc := &p.document.Accessors[index]
	size := gltfComponentTypeSize(acc.ComponentType)
	comps := gltfAccessorTypeComponentCount(acc.Type)
	if size == 0 || comps == 0 || acc.Count < 0 {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w: componentType=%d type=%q", index, ErrInvalidAccessor, acc.ComponentType, acc.Type)
	}
	return acc, size, comps, nil
}

func (p *gltfParserImpl) ReadFloatAccessor(accessorIndex int) ([]float32, int, error) {
	acc, size, comps, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, 0, err
	}

	var view []byte
	stride := size * comps
	if acc.BufferView != nil {
		view, err = p.BufferViewData(*acc.BufferView)
		if err != nil {
			return nil, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
		}
		if bs := p.document.BufferViews[*acc.BufferView].ByteStride; bs != nil && *bs > 0 {
			stride = *bs
		}
		if err := checkSpan(acc.ByteOffset, stride, size*comps, acc.Count, len(view)); err != nil {
			return nil, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
		}
	} else if acc.Count > maxUnbackedAccessorCount {
		// Zero-filled accessors have no buffer to bound them.
		return nil, 0, fmt.Errorf("accessor %d: %w: count %d without a bufferView", accessorIndex, ErrInvalidAccessor, acc.Count)
	}

	out := make([]float32, acc.Count*comps)
	if acc.BufferView != nil {
		for i := 0; i < acc.Count; i++ {
			base := acc.ByteOffset + i*stride
			for c := 0; c < comps; c++ {
				out[i*comps+c] = readComponent(view[base+c*size:], acc.ComponentType, acc.Normalized)
			}
		}
	}

	if acc.Sparse != nil {
		if err := p.applySparse(acc, size, comps, out); err != nil {
			return nil, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
		}
	}

	return out, comps, nil
}

// applySparse overwrites the elements listed by a sparse accessor.
func (p *gltfParserImpl) applySparse(acc *gltfAccessor, size, comps int, out []float32) error {
	sp := acc.Sparse
	if sp.Count < 0 || sp.Count > acc.Count {
		return fmt.Errorf("%w: sparse count %d for %d elements", ErrInvalidAccessor, sp.Count, acc.Count)
	}
	indexSize := gltfComponentTypeSize(sp.Indices.ComponentType)
	if indexSize == 0 || sp.Indices.ComponentType == gltfComponentTypeFloat {
		return fmt.Errorf("%w: sparse index componentType=%d", ErrInvalidAccessor, sp.Indices.ComponentType)
	}

	indexView, err := p.BufferViewData(sp.Indices.BufferView)
	if err != nil {
		return err
	}
	valueView, err := p.BufferViewData(sp.Values.BufferView)
	if err != nil {
		return err
	}
	if err := checkSpan(sp.Indices.ByteOffset, indexSize, indexSize, sp.Count, len(indexView)); err != nil {
		return err
	}
	if err := checkSpan(sp.Values.ByteOffset, size*comps, size*comps, sp.Count, len(valueView)); err != nil {
		return err
	}

	for i := 0; i < sp.Count; i++ {
		target := int(readUint(indexView[sp.Indices.ByteOffset+i*indexSize:], sp.Indices.ComponentType))
		if target >= acc.Count {
			return fmt.Errorf("sparse index %d >= count %d: %w", target, acc.Count, ErrIndexOutOfRange)
		}
		base := sp.Values.ByteOffset + i*size*comps
		for c := 0; c < comps; c++ {
			out[target*comps+c] = readComponent(valueView[base+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return nil
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, size, _, err := p.accessor(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("accessor %d: %w: index accessor is %s, want SCALAR", accessorIndex, ErrInvalidAccessor, acc.Type)
	}
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte, gltfComponentTypeUnsignedShort, gltfComponentTypeUnsignedInt:
	default:
		return nil, fmt.Errorf("accessor %d: %w: unsupported index component type %d", accessorIndex, ErrInvalidAccessor, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return nil, fmt.Errorf("accessor %d: %w: index accessor has no bufferView", accessorIndex, ErrInvalidAccessor)
	}

	view, err := p.BufferViewData(*acc.BufferView)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	stride := size
	if bs := p.document.BufferViews[*acc.BufferView].ByteStride; bs != nil && *bs > 0 {
		stride = *bs
	}
	if err := checkSpan(acc.ByteOffset, stride, size, acc.Count, len(view)); err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	out := make([]uint32, acc.Count)
	for i := range out {
		out[i] = readUint(view[acc.ByteOffset+i*stride:], acc.ComponentType)
	}
	return out, nil
}

// --- Helper Functions ---

// maxUnbackedAccessorCount bounds accessors that have no bufferView.
const maxUnbackedAccessorCount = 1 << 24

// checkSpan verifies count elements of elemSize bytes, stride bytes apart from offset, fit in length bytes.
// count is never multiplied out, so it cannot overflow.
func checkSpan(offset, stride, elemSize, count, length int) error {
	if count < 0 || offset < 0 || stride <= 0 {
		return fmt.Errorf("%w: offset %d stride %d count %d", ErrIndexOutOfRange, offset, stride, count)
	}
	if count == 0 {
		return nil
	}
	room := length - offset - elemSize
	if room < 0 || count-1 > room/stride {
		return fmt.Errorf("%w: %d elements of %d bytes from offset %d, view has %d", ErrIndexOutOfRange, count, stride, offset, length)
	}
	return nil
}

// readComponent decodes one little-endian component as float32.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#animations (normalization table)
func readComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeByte:
		v := float32(int8(b[0]))
		if normalized {
			return float32(math.Max(float64(v/127), -1))
		}
		return v
	case gltfComponentTypeUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltfComponentTypeShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return float32(math.Max(float64(v/32767), -1))
		}
		return v
	case gltfComponentTypeUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// readUint decodes one little-endian unsigned integer component.
func readUint(b []byte, componentType int) uint32 {
	switch componentType {
	case gltfComponentTypeUnsignedByte, gltfComponentTypeByte:
		return uint32(b[0])
	case gltfComponentTypeUnsignedShort, gltfComponentTypeShort:
		return uint32(binary.LittleEndian.Uint16(b))
	default:
		return binary.LittleEndian.Uint32(b)
	}
}

// gltfComponentTypeSize returns the byte size of a component type, or 0 if unknown.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type, or 0 if unknown.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4, gltfAccessorTypeMat2:
		return 4
	case gltfAccessorTypeMat3:
		return 9
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
