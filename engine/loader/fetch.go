package loader

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// resourceResolver fetches the bytes behind a URI referenced from inside an asset.
// Relative URIs resolve against the location of the asset itself.
type resourceResolver interface {
	// Resolve returns the bytes referenced by uri.
	//
	// Parameters:
	//   - ctx: context for cancellation of remote fetches
	//   - uri: a data: URI, an absolute URL, or a path relative to the asset
	//
	// Returns:
	//   - []byte: the resource bytes
	//   - error: error if the resource cannot be fetched or decoded
	Resolve(ctx context.Context, uri string) ([]byte, error)
}

// uriResolver resolves URIs against a base location that is either a URL or a filesystem path.
type uriResolver struct {
	base   string
	client *http.Client
}

var _ resourceResolver = &uriResolver{}

// newURIResolver creates a resolver rooted at the given asset location.
//
// Parameters:
//   - base: the URL or path of the asset referencing the resources (may be empty)
//   - client: the HTTP client used for remote resources
//
// Returns:
//   - *uriResolver: the resolver
func newURIResolver(base string, client *http.Client) *uriResolver {
	return &uriResolver{base: base, client: client}
}

func (r *uriResolver) Resolve(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := decodeDataURI(uri)
		return data, err
	}
	location, err := resolveLocation(r.base, uri)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, r.client, location)
}

// resolveLocation joins a resource URI onto the location of the asset that references it.
func resolveLocation(base, uri string) (string, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURI, uri, err)
	}
	if ref.IsAbs() {
		return uri, nil
	}

	if isRemote(base) || strings.HasPrefix(base, "file://") {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidURI, base, err)
		}
		return baseURL.ResolveReference(ref).String(), nil
	}

	// URIs inside an asset are percent-encoded; the local filesystem wants the decoded form.
	decoded, err := url.PathUnescape(uri)
	if err != nil {
		decoded = uri
	}
	if base == "" {
		return filepath.FromSlash(decoded), nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(decoded)), nil
}

// fetch reads the bytes at location, which is an http(s) URL, a file:// URL, or a filesystem path.
func fetch(ctx context.Context, client *http.Client, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case isRemote(location):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %q: %w", location, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %q: %w", location, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch %q: %w: %s", location, ErrHTTPStatus, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body of %q: %w", location, err)
		}
		return data, nil

	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURI, location, err)
		}
		return readFile(filepath.FromSlash(u.Path))

	default:
		return readFile(location)
	}
}

func readFile(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", p, err)
	}
	return data, nil
}

// decodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
//
// Returns:
//   - []byte: the decoded payload
//   - string: the media type, empty if absent
//   - error: error if the URI is malformed or not base64 encoded
func decodeDataURI(uri string) ([]byte, string, error) {
	commaIdx := strings.Index(uri, ",")
	if !strings.HasPrefix(uri, "data:") || commaIdx < 0 {
		return nil, "", ErrInvalidURI
	}

	header := uri[len("data:"):commaIdx]
	payload := uri[commaIdx+1:]

	mediaType, params, _ := strings.Cut(header, ";")
	if !strings.Contains(params, "base64") {
		return nil, "", fmt.Errorf("%w: unsupported data URI encoding %q", ErrInvalidURI, header)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 data URI: %w", err)
	}
	return data, mediaType, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// assetName derives a display name from an asset location.
func assetName(location string) string {
	if isRemote(location) || strings.HasPrefix(location, "file://") {
		if u, err := url.Parse(location); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(location)
}
