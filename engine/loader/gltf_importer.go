package loader

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"go.uber.org/zap"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	supported map[string]bool
	log       *zap.Logger
}

// gltfImporter orchestrates a full glTF/GLB import.
// It combines the parser and all extractors to produce a complete SceneAsset.
type gltfImporter interface {
	// Import decodes a glTF or GLB document and extracts its scene graph, geometry,
	// materials, and animation clips.
	//
	// Parameters:
	//   - ctx: context for cancellation of external resource fetches
	//   - name: the asset name, usually the base name of its URL
	//   - data: the GLB or glTF JSON bytes
	//   - resolver: resolves external buffers and images
	//
	// Returns:
	//   - *model.SceneAsset: the imported asset
	//   - error: error if parsing or extraction fails
	Import(ctx context.Context, name string, data []byte, resolver resourceResolver) (*model.SceneAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - supported: the extensions an asset may list in extensionsRequired
//   - log: the logger receiving extraction warnings
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(supported map[string]bool, log *zap.Logger) gltfImporter {
	return &gltfImporterImpl{supported: supported, log: log}
}

func (imp *gltfImporterImpl) Import(ctx context.Context, name string, data []byte, resolver resourceResolver) (*model.SceneAsset, error) {
	parser := newGLTFParser(resolver)
	if err := parser.Parse(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	doc := parser.Document()

	for _, ext := range doc.ExtensionsRequired {
		if !imp.supported[ext] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	meshes, err := newGLTFMeshExtractor(parser, imp.log).ExtractAllMeshes(materials)
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	sceneExtractor := newGLTFSceneExtractor(parser)
	nodes, err := sceneExtractor.ExtractNodes(meshes)
	if err != nil {
		return nil, fmt.Errorf("node extraction failed: %w", err)
	}
	root, err := sceneExtractor.ExtractRoot(gltfSceneName(doc, name), nodes)
	if err != nil {
		return nil, fmt.Errorf("scene extraction failed: %w", err)
	}

	clips, err := newGLTFAnimationExtractor(parser).ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	return &model.SceneAsset{
		Name:      name,
		Generator: doc.Asset.Generator,
		Version:   doc.Asset.Version,
		Root:      root,
		Nodes:     nodes,
		Meshes:    meshes,
		Materials: materials,
		Clips:     clips,
	}, nil
}

// gltfSceneName names the synthetic root after the default scene, falling back to the asset name.
func gltfSceneName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	return fallback
}
