// Package editor implements the per-user image editing session machine: it
// interprets commands, uploads, menu presses, and awaited free-text input,
// drives the session store, and calls the image-operations collaborator.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/Sambhram1/tele-bot/app/artifact"
	"github.com/Sambhram1/tele-bot/app/imageops"
	"github.com/Sambhram1/tele-bot/app/metrics"
	"github.com/Sambhram1/tele-bot/core/logger"
	"github.com/Sambhram1/tele-bot/core/telegram/state"
	"log/slog"
)

// Operations is the image-operations collaborator consumed by the editor.
// Each call takes one input artifact and yields a new one or an error; calls
// may take seconds and are never retried here.
type Operations interface {
	Grayscale(ctx context.Context, in *artifact.File) (*artifact.File, error)
	Resize(ctx context.Context, in *artifact.File, width, height int) (*artifact.File, error)
	Rotate(ctx context.Context, in *artifact.File, degrees int) (*artifact.File, error)
	OverlayText(ctx context.Context, in *artifact.File, text string, style imageops.TextStyle) (*artifact.File, error)
	RemoveBackground(ctx context.Context, in *artifact.File) (*artifact.File, error)
	Upscale(ctx context.Context, in *artifact.File, scale int) (*artifact.File, error)
}

// Limits carries the validated configuration surface the editor enforces.
type Limits struct {
	MaxUploadBytes int64
	Formats        []string
	MaxWidth       int
	MaxHeight      int
	UpscaleFactor  int
	MaxTextLen     int
	TextStyle      imageops.TextStyle
}

// Result is a finished operation output. The file is owned by the session;
// callers send it but must not release it.
type Result struct {
	File       *artifact.File
	AsDocument bool
	Caption    string
}

// Editor drives editing sessions. All state mutations go through the session
// manager, which serializes concurrent updates for the same user.
type Editor struct {
	sessions state.Manager
	store    *artifact.Store
	ops      Operations
	limits   Limits
}

// New constructs an Editor.
func New(sessions state.Manager, store *artifact.Store, ops Operations, limits Limits) *Editor {
	return &Editor{sessions: sessions, store: store, ops: ops, limits: limits}
}

// Sessions exposes the session manager for routing and diagnostics.
func (e *Editor) Sessions() state.Manager { return e.sessions }

// StartRound resets the user's session for a new editing round: idle state,
// no artifact.
func (e *Editor) StartRound(userID int64) {
	e.sessions.Reset(userID)
	metrics.ActiveSessions.Set(float64(e.sessions.Count()))
}

// Cancel aborts whatever is pending and releases the current artifact.
func (e *Editor) Cancel(userID int64) {
	e.sessions.Reset(userID)
	metrics.ActiveSessions.Set(float64(e.sessions.Count()))
}

// AttachUpload materializes an uploaded image and makes it the session's
// current artifact, returning the session to idle. An upload is accepted in
// any state and supersedes whatever was pending.
func (e *Editor) AttachUpload(ctx context.Context, userID int64, src io.Reader, ext string) error {
	if !e.formatSupported(ext) {
		metrics.Downloads.WithLabelValues("fail").Inc()
		e.sessions.ClearState(userID)
		return newError(KindUnsupportedFormat,
			fmt.Sprintf("Unsupported format %q. Send one of: %s.", ext, strings.Join(e.limits.Formats, ", ")),
			nil)
	}

	file, size, err := e.store.Materialize(src, ext, e.limits.MaxUploadBytes)
	if err != nil {
		metrics.Downloads.WithLabelValues("fail").Inc()
		e.sessions.ClearState(userID)
		if errors.Is(err, artifact.ErrTooLarge) {
			return newError(KindDownloadFailure,
				fmt.Sprintf("Image is too large; the limit is %d bytes.", e.limits.MaxUploadBytes),
				err)
		}
		return newError(KindDownloadFailure, "Could not download the image. Please try again.", err)
	}

	e.sessions.SetResource(userID, file)
	e.sessions.ClearState(userID)
	metrics.Downloads.WithLabelValues("ok").Inc()
	metrics.ActiveSessions.Set(float64(e.sessions.Count()))

	logger.Info(ctx, "service.editor", "upload.attached",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("artifact_id", file.ID()),
		slog.Int64("bytes", size),
		slog.String("format", ext),
	)
	return nil
}

// SelectOperation handles an operation button press. Parameterless operations
// run immediately and return a Result; parameterized ones transition the
// session into the matching awaiting state and return a prompt.
func (e *Editor) SelectOperation(ctx context.Context, userID int64, op imageops.Op) (string, *Result, error) {
	if _, ok := e.currentArtifact(userID); !ok {
		return "", nil, e.noArtifact(userID)
	}

	switch op {
	case imageops.OpResize:
		e.sessions.SetState(userID, StateAwaitingDimensions)
		return fmt.Sprintf("Send the new size as WIDTHxHEIGHT (max %dx%d).", e.limits.MaxWidth, e.limits.MaxHeight), nil, nil
	case imageops.OpRotate:
		e.sessions.SetState(userID, StateAwaitingRotation)
		return "Send the rotation in degrees, between -360 and 360.", nil, nil
	case imageops.OpOverlayText:
		e.sessions.SetState(userID, StateAwaitingText)
		return fmt.Sprintf("Send the text to draw (up to %d characters).", e.limits.MaxTextLen), nil, nil
	case imageops.OpGrayscale:
		res, err := e.apply(ctx, userID, op, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.Grayscale(ctx, in)
		})
		return "", res, err
	case imageops.OpRemoveBackground:
		res, err := e.apply(ctx, userID, op, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.RemoveBackground(ctx, in)
		})
		return "", res, err
	case imageops.OpUpscale:
		res, err := e.apply(ctx, userID, op, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.Upscale(ctx, in, e.limits.UpscaleFactor)
		})
		return "", res, err
	}
	return "", nil, newError(KindOperationFailure, "Unknown operation.", fmt.Errorf("unknown op %q", op))
}

// SubmitInput consumes a free-text message while the session awaits operation
// parameters. Parse and validation failures keep the awaiting state so the
// user can retry; operation failures return the session to idle.
func (e *Editor) SubmitInput(ctx context.Context, userID int64, input string) (*Result, error) {
	switch e.sessions.GetState(userID) {
	case StateAwaitingDimensions:
		width, height, err := ParseDimensions(input)
		if err != nil {
			return nil, newError(KindInvalidParameters, err.Error()+" Try again, e.g. 800x600.", err)
		}
		if width > e.limits.MaxWidth || height > e.limits.MaxHeight {
			return nil, newError(KindInvalidParameters,
				fmt.Sprintf("Maximum size is %dx%d. Try again.", e.limits.MaxWidth, e.limits.MaxHeight),
				fmt.Errorf("dimensions %dx%d exceed limits", width, height))
		}
		return e.apply(ctx, userID, imageops.OpResize, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.Resize(ctx, in, width, height)
		})

	case StateAwaitingRotation:
		degrees, err := ParseRotation(input)
		if err != nil {
			return nil, newError(KindInvalidParameters, err.Error()+" Try again, e.g. 90.", err)
		}
		return e.apply(ctx, userID, imageops.OpRotate, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.Rotate(ctx, in, degrees)
		})

	case StateAwaitingText:
		text, err := SanitizeText(input, e.limits.MaxTextLen)
		if err != nil {
			return nil, newError(KindInvalidParameters, err.Error()+" Try again.", err)
		}
		return e.apply(ctx, userID, imageops.OpOverlayText, func(ctx context.Context, in *artifact.File) (*artifact.File, error) {
			return e.ops.OverlayText(ctx, in, text, e.limits.TextStyle)
		})
	}
	return nil, nil
}

// apply executes an operation against the session's current artifact. On
// success the result replaces the session artifact (the previous one is
// released by the session manager); on failure the prior artifact is left
// untouched and the session returns to idle.
func (e *Editor) apply(ctx context.Context, userID int64, op imageops.Op, fn func(context.Context, *artifact.File) (*artifact.File, error)) (*Result, error) {
	in, ok := e.currentArtifact(userID)
	if !ok {
		return nil, e.noArtifact(userID)
	}

	start := time.Now()
	out, err := fn(ctx, in)
	metrics.ObserveOperation(string(op), err, time.Since(start))
	if err != nil {
		e.sessions.ClearState(userID)
		if errors.Is(err, imageops.ErrUnavailable) {
			return nil, newError(KindOpUnavailable,
				"This operation is not available on this deployment.", err)
		}
		return nil, newError(KindOperationFailure,
			"The operation failed. Your image is unchanged; please try again.", err)
	}

	e.sessions.SetResource(userID, out)
	e.sessions.ClearState(userID)

	logger.Info(ctx, "service.editor", "op.finished",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("op", string(op)),
		slog.String("artifact_id", out.ID()),
		slog.Duration("duration", logger.Took(start)),
	)

	return &Result{
		File:       out,
		AsDocument: op == imageops.OpRemoveBackground,
		Caption:    captionFor(op),
	}, nil
}

func (e *Editor) currentArtifact(userID int64) (*artifact.File, bool) {
	res, ok := e.sessions.Resource(userID)
	if !ok {
		return nil, false
	}
	file, ok := res.(*artifact.File)
	return file, ok
}

func (e *Editor) noArtifact(userID int64) error {
	// The session stays idle; an operation without an image is not a flow.
	e.sessions.ClearState(userID)
	return newError(KindNoActiveArtifact, "Send me an image first.", nil)
}

func (e *Editor) formatSupported(ext string) bool {
	if len(e.limits.Formats) == 0 {
		return true
	}
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "jpeg" {
		ext = "jpg"
	}
	return slices.Contains(e.limits.Formats, ext)
}

func captionFor(op imageops.Op) string {
	switch op {
	case imageops.OpGrayscale:
		return "Converted to grayscale."
	case imageops.OpResize:
		return "Resized."
	case imageops.OpRotate:
		return "Rotated."
	case imageops.OpOverlayText:
		return "Text added."
	case imageops.OpRemoveBackground:
		return "Background removed."
	case imageops.OpUpscale:
		return "Upscaled."
	}
	return "Done."
}
