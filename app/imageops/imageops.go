// Package imageops performs pixel transformations on stored artifacts.
// Simple operations run in-process on top of the imaging and gg libraries;
// background removal and upscaling prefer external CLI tools when a startup
// probe finds them on PATH.
package imageops

import (
	"errors"
	"fmt"
)

// Op names a supported image operation.
type Op string

const (
	OpRemoveBackground Op = "remove_background"
	OpGrayscale        Op = "grayscale"
	OpResize           Op = "resize"
	OpRotate           Op = "rotate"
	OpOverlayText      Op = "overlay_text"
	OpUpscale          Op = "upscale"
)

// ErrUnavailable indicates that no implementation for the operation exists in
// this deployment (required external tool missing, no library fallback).
var ErrUnavailable = errors.New("imageops: operation unavailable")

// OpError wraps a failure of a specific operation.
type OpError struct {
	Op  Op
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	return fmt.Sprintf("imageops: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *OpError) Unwrap() error { return e.Err }

func opErr(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// TextStyle controls how overlay text is rendered.
type TextStyle struct {
	FontSize float64
	// Color is a hex color such as "#ffffff".
	Color string
	// Position is one of "top", "center", "bottom".
	Position string
	// Margin is the distance in pixels from the chosen edge.
	Margin int
}

// DefaultTextStyle is applied when the configuration leaves style fields empty.
var DefaultTextStyle = TextStyle{
	FontSize: 36,
	Color:    "#ffffff",
	Position: "bottom",
	Margin:   24,
}
