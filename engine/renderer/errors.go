package renderer

import (
	"errors"
	"fmt"
)

// Stages reported by RenderError.
const (
	StageSurface = "surface"
	StageAcquire = "acquire"
	StageUpload  = "upload"
	StageDraw    = "draw"
	StageSubmit  = "submit"
)

var (
	ErrNoCamera        = errors.New("no camera")
	ErrReleased        = errors.New("renderer released")
	ErrNoSurfaceFormat = errors.New("surface reports no supported formats")
	ErrFrameInFlight   = errors.New("previous frame surface not yet presented")
)

// RenderError reports a GPU failure while configuring the surface or drawing a frame.
// The engine stops its loop on the first one.
type RenderError struct {
	// Stage names the part of the frame that failed.
	Stage string

	// Err is the underlying cause.
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s failed: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
