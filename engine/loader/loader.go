// package loader fetches and decodes glTF 2.0 scene assets (.gltf and .glb) into model.SceneAsset values.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-glb/engine/model"
	"github.com/Carmen-Shannon/oxy-glb/logger"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the asset format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	assetCache map[string]*model.SceneAsset

	backendType LoaderBackendType
	backend     loaderBackend
	supported   map[string]bool

	client  *http.Client
	log     *zap.Logger
	workers int

	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
	taskID   atomic.Int64
}

// Loader fetches scene assets by URL and caches the decoded result.
// Remote (http/https), file:// and plain filesystem locations are accepted, as well as
// data: URIs for external buffers and images. A failed load is reported once and never retried.
type Loader interface {
	// Load fetches and decodes the asset at url, blocking until done.
	// If the asset is already cached the cached value is returned.
	//
	// Parameters:
	//   - ctx: context for cancellation of the fetch
	//   - url: the asset URL or filesystem path
	//
	// Returns:
	//   - *model.SceneAsset: the loaded asset
	//   - error: a *LoadError if fetching or decoding fails
	Load(ctx context.Context, url string) (*model.SceneAsset, error)

	// LoadAsync starts loading url on the loader's worker pool and returns immediately.
	// Exactly one of onLoad or onError is invoked, from a worker goroutine.
	//
	// Parameters:
	//   - url: the asset URL or filesystem path
	//   - onLoad: called with the asset on success
	//   - onError: called with the *LoadError on failure
	LoadAsync(url string, onLoad func(*model.SceneAsset), onError func(*LoadError))

	// LoadReader decodes an asset from a reader and caches it by name.
	// Relative resources referenced by the asset resolve against baseURL.
	//
	// Parameters:
	//   - name: the cache key for the asset
	//   - r: the reader providing GLB or glTF JSON bytes
	//   - baseURL: the location relative resources resolve against (may be empty)
	//
	// Returns:
	//   - *model.SceneAsset: the loaded asset
	//   - error: a *LoadError if reading or decoding fails
	LoadReader(name string, r io.Reader, baseURL string) (*model.SceneAsset, error)

	// Get retrieves a cached asset by URL or name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.SceneAsset: the cached asset or nil
	Get(name string) *model.SceneAsset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		assetCache:  make(map[string]*model.SceneAsset),
		backendType: backendType,
		supported: map[string]bool{
			extEmissiveStrength: true,
			extTextureTransform: true,
			extMaterialsUnlit:   true,
			extTextureWebP:      true,
		},
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     logger.Named("loader"),
		workers: max(runtime.NumCPU()/2, 1),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.supported, l.log)
	}
	return l
}

func (l *loader) Load(ctx context.Context, url string) (*model.SceneAsset, error) {
	if cached := l.Get(url); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, newLoadError(url, "no backend", ErrUnsupportedFormat)
	}

	start := time.Now()
	data, err := fetch(ctx, l.client, url)
	if err != nil {
		return nil, newLoadError(url, "fetch failed", err)
	}

	asset, err := l.decode(ctx, assetName(url), data, newURIResolver(url, l.client))
	if err != nil {
		return nil, newLoadError(url, "decode failed", err)
	}

	l.store(url, asset)
	l.logAsset(url, asset, len(data), time.Since(start))
	return asset, nil
}

func (l *loader) LoadAsync(url string, onLoad func(*model.SceneAsset), onError func(*LoadError)) {
	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	})

	id := int(l.taskID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (result any, taskErr error) {
			reported := false
			defer func() {
				if r := recover(); r != nil {
					le := newLoadError(url, "load panicked", fmt.Errorf("%w: %v", ErrDecoderPanic, r))
					l.log.Error("asset load panicked", zap.String("url", url), zap.Any("panic", r))
					if onError != nil && !reported {
						onError(le)
					}
					result, taskErr = nil, le
				}
			}()

			asset, err := l.Load(context.Background(), url)
			reported = true
			if err != nil {
				le := newLoadError(url, "load failed", err)
				l.log.Error("asset load failed", zap.String("url", url), zap.Error(le))
				if onError != nil {
					onError(le)
				}
				return nil, le
			}
			if onLoad != nil {
				onLoad(asset)
			}
			return asset, nil
		},
	})
}

// decode runs the backend and turns a decoder panic into ErrDecoderPanic.
func (l *loader) decode(ctx context.Context, name string, data []byte, resolver resourceResolver) (asset *model.SceneAsset, err error) {
	defer func() {
		if r := recover(); r != nil {
			asset, err = nil, fmt.Errorf("%w: %v", ErrDecoderPanic, r)
		}
	}()
	return l.backend.Decode(ctx, name, data, resolver)
}

func (l *loader) LoadReader(name string, r io.Reader, baseURL string) (*model.SceneAsset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, newLoadError(name, "no backend", ErrUnsupportedFormat)
	}

	start := time.Now()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newLoadError(name, "read failed", err)
	}

	asset, err := l.decode(context.Background(), name, data, newURIResolver(baseURL, l.client))
	if err != nil {
		return nil, newLoadError(name, "decode failed", err)
	}

	l.store(name, asset)
	l.logAsset(name, asset, len(data), time.Since(start))
	return asset, nil
}

func (l *loader) Get(name string) *model.SceneAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) store(key string, asset *model.SceneAsset) {
	l.mu.Lock()
	l.assetCache[key] = asset
	l.mu.Unlock()
}

// logAsset writes the diagnostic summary of a freshly loaded asset, one line per clip.
func (l *loader) logAsset(url string, asset *model.SceneAsset, size int, took time.Duration) {
	primitives, vertices := 0, 0
	for _, m := range asset.Meshes {
		for _, p := range m.Primitives {
			primitives++
			vertices += p.VertexCount()
		}
	}

	l.log.Info("asset loaded",
		zap.String("url", url),
		zap.String("name", asset.Name),
		zap.String("generator", asset.Generator),
		zap.Int("bytes", size),
		zap.Int("nodes", len(asset.Nodes)),
		zap.Int("meshes", len(asset.Meshes)),
		zap.Int("primitives", primitives),
		zap.Int("vertices", vertices),
		zap.Int("materials", len(asset.Materials)),
		zap.Int("clips", len(asset.Clips)),
		zap.Duration("took", took),
	)
	for i, c := range asset.Clips {
		l.log.Info("animation clip",
			zap.String("asset", asset.Name),
			zap.Int("index", i),
			zap.String("name", c.Name),
			zap.Float64("duration", c.Duration),
			zap.Int("tracks", len(c.Tracks)),
		)
	}
}

// String implements fmt.Stringer for log output.
func (t LoaderBackendType) String() string {
	switch t {
	case BackendTypeGLTF:
		return "gltf"
	default:
		return fmt.Sprintf("LoaderBackendType(%d)", int(t))
	}
}
