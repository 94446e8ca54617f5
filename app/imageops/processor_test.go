package imageops

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sambhram1/tele-bot/app/artifact"
)

func newTestStore(t *testing.T) *artifact.Store {
	t.Helper()
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestArtifact(t *testing.T, store *artifact.Store, w, h int) *artifact.File {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	f := store.Allocate("jpg")
	require.NoError(t, imaging.Save(img, f.Path()))
	return f
}

func decode(t *testing.T, f *artifact.File) image.Image {
	t.Helper()
	img, err := imaging.Open(f.Path())
	require.NoError(t, err)
	return img
}

func TestGrayscaleProducesNewArtifact(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 8, 8)

	out, err := proc.Grayscale(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, in.Path(), out.Path())
	assert.FileExists(t, in.Path(), "input artifact must not be mutated or removed")

	img := decode(t, out)
	r, g, b, _ := img.At(4, 4).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestResizeDimensions(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 40, 20)

	out, err := proc.Resize(context.Background(), in, 10, 5)
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())
}

func TestRotateQuarterTurnSwapsDimensions(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 30, 10)

	for _, degrees := range []int{90, -90, 270} {
		out, err := proc.Rotate(context.Background(), in, degrees)
		require.NoError(t, err)
		img := decode(t, out)
		assert.Equal(t, 10, img.Bounds().Dx(), "degrees=%d", degrees)
		assert.Equal(t, 30, img.Bounds().Dy(), "degrees=%d", degrees)
	}

	out, err := proc.Rotate(context.Background(), in, 180)
	require.NoError(t, err)
	img := decode(t, out)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestOverlayTextKeepsDimensions(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 120, 60)

	out, err := proc.OverlayText(context.Background(), in, "hello", DefaultTextStyle)
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 60, img.Bounds().Dy())
}

func TestOverlayTextRejectsBadColor(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 20, 20)

	style := DefaultTextStyle
	style.Color = "#zzzzzz"
	_, err := proc.OverlayText(context.Background(), in, "hi", style)
	var opError *OpError
	require.ErrorAs(t, err, &opError)
	assert.Equal(t, OpOverlayText, opError.Op)
}

func TestRemoveBackgroundUnavailableWithoutTool(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 10, 10)

	_, err := proc.RemoveBackground(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRemoveBackgroundUsesTool(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{Rembg: Capability{Available: true, Path: "/usr/bin/rembg"}})
	in := newTestArtifact(t, store, 10, 10)

	var gotPath string
	var gotArgs []string
	proc.run = func(_ context.Context, path string, args ...string) error {
		gotPath = path
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("png"), 0o644)
	}

	out, err := proc.RemoveBackground(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/rembg", gotPath)
	assert.Equal(t, []string{"i", in.Path(), out.Path()}, gotArgs)
}

func TestRemoveBackgroundToolFailureReleasesOutput(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{Rembg: Capability{Available: true, Path: "/usr/bin/rembg"}})
	in := newTestArtifact(t, store, 10, 10)

	proc.run = func(context.Context, string, ...string) error {
		return errors.New("tool crashed")
	}

	_, err := proc.RemoveBackground(context.Background(), in)
	require.Error(t, err)
	assert.FileExists(t, in.Path())
}

func TestUpscaleFallsBackToResampling(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{})
	in := newTestArtifact(t, store, 12, 8)

	out, err := proc.Upscale(context.Background(), in, 2)
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestUpscalePrefersTool(t *testing.T) {
	store := newTestStore(t)
	proc := NewProcessor(store, Capabilities{Realesrgan: Capability{Available: true, Path: "/opt/realesrgan"}})
	in := newTestArtifact(t, store, 10, 10)

	var gotArgs []string
	proc.run = func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return os.WriteFile(args[3], []byte("png"), 0o644)
	}

	out, err := proc.Upscale(context.Background(), in, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"-i", in.Path(), "-o", out.Path(), "-s", "4"}, gotArgs)
}

func TestProbeUsesLookup(t *testing.T) {
	caps := Probe(func(name string) (string, error) {
		if name == ToolRembg {
			return "/usr/local/bin/rembg", nil
		}
		return "", errors.New("not found")
	})
	assert.True(t, caps.Rembg.Available)
	assert.Equal(t, "/usr/local/bin/rembg", caps.Rembg.Path)
	assert.False(t, caps.Realesrgan.Available)
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(0), c.B)

	c, err = parseHexColor("fff")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)

	_, err = parseHexColor("#12")
	assert.Error(t, err)
}
