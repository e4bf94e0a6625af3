package render

import (
	"errors"
	"fmt"
)

var (
	ErrFrameNotReady  = errors.New("render: no frame has reached the ready state")
	ErrFrameInFlight  = errors.New("render: a frame is already being rendered")
	ErrUnknownBackend = errors.New("render: unknown backend")
	ErrTileMismatch   = errors.New("render: cannot composite tiles with different dimensions")
	ErrUnknownChannel = errors.New("render: unknown framebuffer channel")
)

// The stage of the per-rank frame pipeline where a failure occurred.
type Stage uint8

const (
	StageRendering Stage = iota
	StageCompositing
)

func (s Stage) String() string {
	if s == StageRendering {
		return "rendering"
	}
	return "compositing"
}

// RenderFailure describes a render or composite error on a single rank. The
// rank's frame state is left at the failing stage; the only recovery is a
// fresh StartNewFrame.
type RenderFailure struct {
	Rank  int
	Stage Stage
	Err   error
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("render: rank %d failed while %s: %v", e.Rank, e.Stage, e.Err)
}

func (e *RenderFailure) Unwrap() error {
	return e.Err
}
