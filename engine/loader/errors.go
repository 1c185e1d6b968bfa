package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by LoadError. Match them with errors.Is.
var (
	ErrUnsupportedFormat    = errors.New("unsupported asset container")
	ErrInvalidGLBMagic      = errors.New("invalid GLB magic number")
	ErrInvalidGLBVersion    = errors.New("invalid GLB version: must be 2")
	ErrTruncatedGLB         = errors.New("GLB data truncated")
	ErrMissingJSONChunk     = errors.New("GLB file missing JSON chunk")
	ErrUnsupportedVersion   = errors.New("unsupported glTF version: must be 2.x")
	ErrUnsupportedExtension = errors.New("required extension not supported")
	ErrInvalidURI           = errors.New("invalid URI")
	ErrHTTPStatus           = errors.New("unexpected HTTP status")
	ErrBufferSizeMismatch   = errors.New("buffer size mismatch")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrInvalidAccessor      = errors.New("invalid accessor")
	ErrInvalidAnimation     = errors.New("invalid animation")
	ErrNoScene              = errors.New("asset has no scene")
	ErrDecoderPanic         = errors.New("decoder panicked")
)

// LoadError reports a failed asset fetch or decode.
// The loader never retries; the caller decides what to do with the failure.
type LoadError struct {
	// URL is the location that was requested.
	URL string

	// Reason is a short human-readable cause.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %q: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %q: %s", e.URL, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// newLoadError builds a LoadError, reusing err when it already is one.
func newLoadError(url, reason string, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{URL: url, Reason: reason, Err: err}
}
