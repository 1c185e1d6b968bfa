package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
)

// loaderBackend defines the generic interface for decoding scene assets.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details;
// fetching the top-level bytes is the Loader's job.
type loaderBackend interface {
	// Decode turns the bytes of one asset into a SceneAsset.
	//
	// Parameters:
	//   - ctx: context for cancellation of external resource fetches
	//   - name: the asset name
	//   - data: the encoded asset
	//   - resolver: resolves resources the asset references
	//
	// Returns:
	//   - *model.SceneAsset: the decoded asset
	//   - error: error if decoding fails
	Decode(ctx context.Context, name string, data []byte, resolver resourceResolver) (*model.SceneAsset, error)
}
