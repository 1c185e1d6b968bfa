package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// Extensions whose contents the material extractor understands.
const (
	extEmissiveStrength = "KHR_materials_emissive_strength"
	extTextureTransform = "KHR_texture_transform"
	extMaterialsUnlit   = "KHR_materials_unlit"
	extTextureWebP      = "EXT_texture_webp"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser   gltfParser
	textures map[int]*model.Texture
}

// gltfMaterialExtractor defines the interface for extracting material and texture data
// from a parsed glTF document into model.Material values.
type gltfMaterialExtractor interface {
	// ExtractMaterial extracts a single material by index, loading the base color image if any.
	//
	// Parameters:
	//   - ctx: context for cancellation of external image fetches
	//   - materialIndex: the index of the material in the document
	//
	// Returns:
	//   - *model.Material: the extracted material
	//   - error: error if extraction fails
	ExtractMaterial(ctx context.Context, materialIndex int) (*model.Material, error)

	// ExtractAllMaterials extracts all materials from the document.
	// Textures shared between materials are loaded once.
	//
	// Parameters:
	//   - ctx: context for cancellation of external image fetches
	//
	// Returns:
	//   - []*model.Material: materials indexed by glTF material index
	//   - error: error if extraction fails
	ExtractAllMaterials(ctx context.Context) ([]*model.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{
		parser:   parser,
		textures: make(map[int]*model.Texture),
	}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterial(ctx context.Context, materialIndex int) (*model.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if materialIndex < 0 || materialIndex >= len(doc.Materials) {
		return nil, fmt.Errorf("material %d: %w", materialIndex, ErrIndexOutOfRange)
	}

	gm := &doc.Materials[materialIndex]
	result := model.DefaultMaterial()
	result.Name = gm.Name
	if result.Name == "" {
		result.Name = fmt.Sprintf("material_%d", materialIndex)
	}
	result.DoubleSided = gm.DoubleSided
	if gm.AlphaMode != "" {
		result.AlphaMode = gm.AlphaMode
	}
	if gm.AlphaCutoff != nil {
		result.AlphaCutoff = *gm.AlphaCutoff
	}

	if gm.EmissiveFactor != nil {
		result.Emissive = *gm.EmissiveFactor
	}
	if raw, ok := gm.Extensions[extEmissiveStrength]; ok {
		var ext gltfEmissiveStrength
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, fmt.Errorf("material %q: %s: %w", result.Name, extEmissiveStrength, err)
		}
		if ext.EmissiveStrength != nil {
			for i := range result.Emissive {
				result.Emissive[i] *= *ext.EmissiveStrength
			}
		}
	}
	if _, ok := gm.Extensions[extMaterialsUnlit]; ok {
		result.Unlit = true
	}

	if pbr := gm.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			result.BaseColor = *pbr.BaseColorFactor
		}
		if pbr.BaseColorTexture != nil {
			tex, err := e.loadTexture(ctx, pbr.BaseColorTexture.Index)
			if err != nil {
				return nil, fmt.Errorf("material %q: base color texture: %w", result.Name, err)
			}
			result.BaseColorTexture = tex
		}
	}

	return result, nil
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials(ctx context.Context) ([]*model.Material, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	materials := make([]*model.Material, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.ExtractMaterial(ctx, i)
		if err != nil {
			return nil, err
		}
		materials[i] = mat
	}
	return materials, nil
}

// loadTexture resolves a glTF texture index into a model.Texture with its encoded image bytes.
// Images come from a buffer view (GLB), a data URI, or an external resource.
func (e *gltfMaterialExtractorImpl) loadTexture(ctx context.Context, textureIndex int) (*model.Texture, error) {
	if tex, ok := e.textures[textureIndex]; ok {
		return tex, nil
	}

	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d: %w", textureIndex, ErrIndexOutOfRange)
	}
	gt := &doc.Textures[textureIndex]
	source, err := textureSource(gt)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", textureIndex, err)
	}
	if source == nil {
		e.textures[textureIndex] = nil
		return nil, nil
	}
	if *source < 0 || *source >= len(doc.Images) {
		return nil, fmt.Errorf("image %d: %w", *source, ErrIndexOutOfRange)
	}

	img := &doc.Images[*source]
	result := &model.Texture{
		Name:     img.Name,
		MimeType: img.MimeType,
	}
	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(doc.Samplers) {
		result.Sampler = samplerSettings(&doc.Samplers[*gt.Sampler])
	}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.BufferViewData(*img.BufferView)
		if err != nil {
			return nil, fmt.Errorf("failed to read image buffer view: %w", err)
		}
		result.Data = append([]byte(nil), data...)

	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image data URI: %w", err)
		}
		result.Data = data
		if result.MimeType == "" {
			result.MimeType = mimeType
		}

	case img.URI != "":
		data, err := e.parser.Resolve(ctx, img.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to load image %q: %w", img.URI, err)
		}
		result.Data = data
		if result.Name == "" {
			result.Name = img.URI
		}

	default:
		return nil, fmt.Errorf("image %d has neither bufferView nor uri", *source)
	}

	e.textures[textureIndex] = result
	return result, nil
}

// textureSource returns the image a texture samples. An EXT_texture_webp source takes
// precedence over the core source, which is then only a fallback for other viewers.
func textureSource(gt *gltfTexture) (*int, error) {
	raw, ok := gt.Extensions[extTextureWebP]
	if !ok {
		return gt.Source, nil
	}
	var ext gltfTextureWebP
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", extTextureWebP, err)
	}
	if ext.Source == nil {
		return gt.Source, nil
	}
	return ext.Source, nil
}

// samplerSettings copies the set fields of a glTF sampler; unset fields stay zero and mean "default".
func samplerSettings(s *gltfSampler) model.TextureSampler {
	var out model.TextureSampler
	if s.MagFilter != nil {
		out.MagFilter = *s.MagFilter
	}
	if s.MinFilter != nil {
		out.MinFilter = *s.MinFilter
	}
	if s.WrapS != nil {
		out.WrapS = *s.WrapS
	}
	if s.WrapT != nil {
		out.WrapT = *s.WrapT
	}
	return out
}
