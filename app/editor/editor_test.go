package editor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sambhram1/tele-bot/app/artifact"
	"github.com/Sambhram1/tele-bot/app/imageops"
	"github.com/Sambhram1/tele-bot/core/telegram/state"
)

const testUser int64 = 42

// fakeOps satisfies Operations. Unset hooks succeed and produce a fresh
// artifact from the store.
type fakeOps struct {
	store *artifact.Store

	grayscaleFn func(in *artifact.File) (*artifact.File, error)
	resizeFn    func(in *artifact.File, w, h int) (*artifact.File, error)
	rotateFn    func(in *artifact.File, deg int) (*artifact.File, error)
	overlayFn   func(in *artifact.File, text string, style imageops.TextStyle) (*artifact.File, error)
	removeBGFn  func(in *artifact.File) (*artifact.File, error)
	upscaleFn   func(in *artifact.File, scale int) (*artifact.File, error)
}

func (f *fakeOps) output(ext string) (*artifact.File, error) {
	out, _, err := f.store.Materialize(strings.NewReader("result"), ext, 1024)
	return out, err
}

func (f *fakeOps) Grayscale(_ context.Context, in *artifact.File) (*artifact.File, error) {
	if f.grayscaleFn != nil {
		return f.grayscaleFn(in)
	}
	out, err := f.output("jpg")
	return out, err
}

func (f *fakeOps) Resize(_ context.Context, in *artifact.File, w, h int) (*artifact.File, error) {
	if f.resizeFn != nil {
		return f.resizeFn(in, w, h)
	}
	out, err := f.output("jpg")
	return out, err
}

func (f *fakeOps) Rotate(_ context.Context, in *artifact.File, deg int) (*artifact.File, error) {
	if f.rotateFn != nil {
		return f.rotateFn(in, deg)
	}
	out, err := f.output("jpg")
	return out, err
}

func (f *fakeOps) OverlayText(_ context.Context, in *artifact.File, text string, style imageops.TextStyle) (*artifact.File, error) {
	if f.overlayFn != nil {
		return f.overlayFn(in, text, style)
	}
	out, err := f.output("jpg")
	return out, err
}

func (f *fakeOps) RemoveBackground(_ context.Context, in *artifact.File) (*artifact.File, error) {
	if f.removeBGFn != nil {
		return f.removeBGFn(in)
	}
	out, err := f.output("png")
	return out, err
}

func (f *fakeOps) Upscale(_ context.Context, in *artifact.File, scale int) (*artifact.File, error) {
	if f.upscaleFn != nil {
		return f.upscaleFn(in, scale)
	}
	out, err := f.output("png")
	return out, err
}

func testLimits() Limits {
	return Limits{
		MaxUploadBytes: 1024,
		Formats:        []string{"jpg", "png", "webp"},
		MaxWidth:       2000,
		MaxHeight:      2000,
		UpscaleFactor:  2,
		MaxTextLen:     64,
		TextStyle:      imageops.DefaultTextStyle,
	}
}

func newTestEditor(t *testing.T) (*Editor, *fakeOps) {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	ops := &fakeOps{store: store}
	return New(state.NewMemoryManager(), store, ops, testLimits()), ops
}

func attachImage(t *testing.T, e *Editor) *artifact.File {
	t.Helper()
	require.NoError(t, e.AttachUpload(context.Background(), testUser, strings.NewReader("imagebytes"), "jpg"))
	file, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	return file.(*artifact.File)
}

func TestSelectOperationWithoutImage(t *testing.T) {
	e, _ := newTestEditor(t)

	_, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpGrayscale)
	assert.Nil(t, res)
	assert.Equal(t, KindNoActiveArtifact, KindOf(err))
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
}

func TestAttachUploadUnsupportedFormat(t *testing.T) {
	e, _ := newTestEditor(t)

	err := e.AttachUpload(context.Background(), testUser, strings.NewReader("x"), "gif")
	assert.Equal(t, KindUnsupportedFormat, KindOf(err))
	_, ok := e.Sessions().Resource(testUser)
	assert.False(t, ok)
}

func TestAttachUploadTooLarge(t *testing.T) {
	e, _ := newTestEditor(t)

	err := e.AttachUpload(context.Background(), testUser, strings.NewReader(strings.Repeat("a", 2048)), "jpg")
	assert.Equal(t, KindDownloadFailure, KindOf(err))
	_, ok := e.Sessions().Resource(testUser)
	assert.False(t, ok)
}

func TestFailedUploadReturnsToIdle(t *testing.T) {
	e, _ := newTestEditor(t)
	in := attachImage(t, e)

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	err = e.AttachUpload(context.Background(), testUser, strings.NewReader("x"), "gif")
	assert.Equal(t, KindUnsupportedFormat, KindOf(err))
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))

	// Previous artifact is untouched by the failed upload.
	current, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	assert.Equal(t, in, current)

	_, _, err = e.SelectOperation(context.Background(), testUser, imageops.OpRotate)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingRotation, e.Sessions().GetState(testUser))

	err = e.AttachUpload(context.Background(), testUser, strings.NewReader(strings.Repeat("a", 2048)), "jpg")
	assert.Equal(t, KindDownloadFailure, KindOf(err))
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
}

func TestAttachUploadReplacesPrevious(t *testing.T) {
	e, _ := newTestEditor(t)

	first := attachImage(t, e)
	second := attachImage(t, e)

	assert.NotEqual(t, first.ID(), second.ID())
	_, err := os.Stat(first.Path())
	assert.True(t, os.IsNotExist(err), "previous artifact must be released")
	_, err = os.Stat(second.Path())
	assert.NoError(t, err)
}

func TestUploadSupersedesPendingQuestion(t *testing.T) {
	e, _ := newTestEditor(t)

	attachImage(t, e)
	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	attachImage(t, e)
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
}

func TestGrayscaleRunsImmediately(t *testing.T) {
	e, ops := newTestEditor(t)
	in := attachImage(t, e)

	var sawInput string
	ops.grayscaleFn = func(f *artifact.File) (*artifact.File, error) {
		sawInput = f.Path()
		out, err := ops.output("jpg")
		return out, err
	}

	prompt, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpGrayscale)
	require.NoError(t, err)
	assert.Empty(t, prompt)
	require.NotNil(t, res)
	assert.False(t, res.AsDocument)
	assert.Equal(t, in.Path(), sawInput)

	// Result replaced the session artifact and the input was released.
	current, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	assert.Equal(t, res.File, current)
	_, statErr := os.Stat(in.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestResizeFlow(t *testing.T) {
	e, ops := newTestEditor(t)
	attachImage(t, e)

	var gotW, gotH int
	ops.resizeFn = func(_ *artifact.File, w, h int) (*artifact.File, error) {
		gotW, gotH = w, h
		out, err := ops.output("jpg")
		return out, err
	}

	prompt, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.NotEmpty(t, prompt)
	assert.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	// Unparseable input keeps the question open.
	_, err = e.SubmitInput(context.Background(), testUser, "abcxdef")
	assert.Equal(t, KindInvalidParameters, KindOf(err))
	assert.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	// Out-of-range input keeps the question open too.
	_, err = e.SubmitInput(context.Background(), testUser, "9000x100")
	assert.Equal(t, KindInvalidParameters, KindOf(err))
	assert.Equal(t, StateAwaitingDimensions, e.Sessions().GetState(testUser))

	out, err := e.SubmitInput(context.Background(), testUser, "800x600")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, 800, gotW)
	assert.Equal(t, 600, gotH)
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
}

func TestRotateFlow(t *testing.T) {
	e, ops := newTestEditor(t)
	attachImage(t, e)

	var gotDeg int
	ops.rotateFn = func(_ *artifact.File, deg int) (*artifact.File, error) {
		gotDeg = deg
		out, err := ops.output("jpg")
		return out, err
	}

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpRotate)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingRotation, e.Sessions().GetState(testUser))

	_, err = e.SubmitInput(context.Background(), testUser, "450")
	assert.Equal(t, KindInvalidParameters, KindOf(err))
	assert.Equal(t, StateAwaitingRotation, e.Sessions().GetState(testUser))

	out, err := e.SubmitInput(context.Background(), testUser, "-90")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, -90, gotDeg)
}

func TestOverlayTextFlow(t *testing.T) {
	e, ops := newTestEditor(t)
	attachImage(t, e)

	var gotText string
	var gotStyle imageops.TextStyle
	ops.overlayFn = func(_ *artifact.File, text string, style imageops.TextStyle) (*artifact.File, error) {
		gotText, gotStyle = text, style
		out, err := ops.output("jpg")
		return out, err
	}

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpOverlayText)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingText, e.Sessions().GetState(testUser))

	_, err = e.SubmitInput(context.Background(), testUser, "   ")
	assert.Equal(t, KindInvalidParameters, KindOf(err))

	out, err := e.SubmitInput(context.Background(), testUser, "  hello  ")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "hello", gotText)
	assert.Equal(t, testLimits().TextStyle, gotStyle)
}

func TestUpscaleUsesConfiguredFactor(t *testing.T) {
	e, ops := newTestEditor(t)
	attachImage(t, e)

	var gotScale int
	ops.upscaleFn = func(_ *artifact.File, scale int) (*artifact.File, error) {
		gotScale = scale
		out, err := ops.output("png")
		return out, err
	}

	_, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpUpscale)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, gotScale)
}

func TestRemoveBackgroundUnavailable(t *testing.T) {
	e, ops := newTestEditor(t)
	in := attachImage(t, e)

	ops.removeBGFn = func(_ *artifact.File) (*artifact.File, error) {
		return nil, imageops.ErrUnavailable
	}

	_, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpRemoveBackground)
	assert.Nil(t, res)
	assert.Equal(t, KindOpUnavailable, KindOf(err))

	// The image survives the failure.
	current, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	assert.Equal(t, in, current)
	_, statErr := os.Stat(in.Path())
	assert.NoError(t, statErr)
}

func TestRemoveBackgroundSendsDocument(t *testing.T) {
	e, _ := newTestEditor(t)
	attachImage(t, e)

	_, res, err := e.SelectOperation(context.Background(), testUser, imageops.OpRemoveBackground)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.AsDocument)
}

func TestOperationFailureKeepsArtifact(t *testing.T) {
	e, ops := newTestEditor(t)
	in := attachImage(t, e)

	ops.resizeFn = func(_ *artifact.File, _, _ int) (*artifact.File, error) {
		return nil, errors.New("decode failed")
	}

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	_, err = e.SubmitInput(context.Background(), testUser, "800x600")
	assert.Equal(t, KindOperationFailure, KindOf(err))

	// Back to idle, previous artifact intact.
	assert.Equal(t, state.StateIdle, e.Sessions().GetState(testUser))
	current, ok := e.Sessions().Resource(testUser)
	require.True(t, ok)
	assert.Equal(t, in, current)
	_, statErr := os.Stat(in.Path())
	assert.NoError(t, statErr)
}

func TestCancelFromAwaitingState(t *testing.T) {
	e, _ := newTestEditor(t)
	in := attachImage(t, e)

	_, _, err := e.SelectOperation(context.Background(), testUser, imageops.OpResize)
	require.NoError(t, err)
	require.True(t, e.Sessions().InProgress(testUser))

	e.Cancel(testUser)
	assert.False(t, e.Sessions().InProgress(testUser))
	_, ok := e.Sessions().Resource(testUser)
	assert.False(t, ok)
	_, statErr := os.Stat(in.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestSubmitInputWhenIdle(t *testing.T) {
	e, _ := newTestEditor(t)
	attachImage(t, e)

	res, err := e.SubmitInput(context.Background(), testUser, "whatever")
	assert.Nil(t, res)
	assert.NoError(t, err)
}
