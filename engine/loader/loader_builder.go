package loader

import (
	"net/http"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"

	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets the number of worker goroutines used by LoadAsync.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithHTTPClient sets the client used for http and https locations.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(c *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithLogger sets the logger that receives load diagnostics.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(log *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}

// WithSupportedExtensions adds extensions an asset may list as required.
// Assets requiring any other extension fail with ErrUnsupportedExtension.
//
// Parameters:
//   - names: extension names, e.g. KHR_mesh_quantization
//
// Returns:
//   - LoaderBuilderOption: a function that applies the extension option to a loader
func WithSupportedExtensions(names ...string) LoaderBuilderOption {
	return func(l *loader) {
		for _, n := range names {
			l.supported[n] = true
		}
	}
}

// WithAsset pre-populates the asset cache.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *model.SceneAsset) LoaderBuilderOption {
	return func(l *loader) {
		l.assetCache[key] = asset
	}
}
