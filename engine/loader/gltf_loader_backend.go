package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"go.uber.org/zap"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - supported: the extensions an asset may require
//   - log: the logger receiving extraction warnings
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(supported map[string]bool, log *zap.Logger) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(supported, log),
	}
}

func (b *gltfLoaderBackendImpl) Decode(ctx context.Context, name string, data []byte, resolver resourceResolver) (*model.SceneAsset, error) {
	return b.importer.Import(ctx, name, data, resolver)
}
