package imageops

import (
	"context"
	"image"
	"time"

	"github.com/Sambhram1/tele-bot/app/artifact"
	"github.com/Sambhram1/tele-bot/core/logger"
	"log/slog"
)

// Processor applies operations to artifacts; each call reads one input
// artifact and produces a new one, never mutating the input. Calls may take
// seconds and are not retried here; the caller reports failures once.
type Processor struct {
	store *artifact.Store
	caps  Capabilities
	run   toolRunner
}

// NewProcessor builds a Processor bound to an artifact store and the tool
// capabilities discovered at startup.
func NewProcessor(store *artifact.Store, caps Capabilities) *Processor {
	return &Processor{store: store, caps: caps, run: runTool}
}

// Capabilities returns the probed tool capabilities.
func (p *Processor) Capabilities() Capabilities { return p.caps }

// Grayscale converts the artifact to grayscale.
func (p *Processor) Grayscale(ctx context.Context, in *artifact.File) (*artifact.File, error) {
	return p.applyLibrary(ctx, OpGrayscale, in, "jpg", func(img image.Image) (image.Image, error) {
		return grayscaleImage(img), nil
	})
}

// Resize scales the artifact to the exact width and height.
func (p *Processor) Resize(ctx context.Context, in *artifact.File, width, height int) (*artifact.File, error) {
	return p.applyLibrary(ctx, OpResize, in, "jpg", func(img image.Image) (image.Image, error) {
		return resizeImage(img, width, height), nil
	}, slog.Int("width", width), slog.Int("height", height))
}

// Rotate turns the artifact clockwise by the given degrees.
func (p *Processor) Rotate(ctx context.Context, in *artifact.File, degrees int) (*artifact.File, error) {
	return p.applyLibrary(ctx, OpRotate, in, "jpg", func(img image.Image) (image.Image, error) {
		return rotateImage(img, degrees), nil
	}, slog.Int("degrees", degrees))
}

// OverlayText draws the given text over the artifact using the style.
func (p *Processor) OverlayText(ctx context.Context, in *artifact.File, text string, style TextStyle) (*artifact.File, error) {
	return p.applyLibrary(ctx, OpOverlayText, in, "jpg", func(img image.Image) (image.Image, error) {
		return overlayTextImage(img, text, style)
	})
}

// RemoveBackground strips the image background using the rembg tool. The
// output keeps transparency, so it is produced as PNG. Without the tool the
// operation is unavailable; there is deliberately no silent pass-through.
func (p *Processor) RemoveBackground(ctx context.Context, in *artifact.File) (*artifact.File, error) {
	if !p.caps.Rembg.Available {
		return nil, opErr(OpRemoveBackground, ErrUnavailable)
	}
	out := p.store.Allocate("png")
	start := time.Now()
	if err := p.run(ctx, p.caps.Rembg.Path, rembgArgs(in.Path(), out.Path())...); err != nil {
		_ = out.Release()
		return nil, opErr(OpRemoveBackground, err)
	}
	p.logApplied(ctx, OpRemoveBackground, out, start, slog.String("tool", ToolRembg))
	return out, nil
}

// Upscale enlarges the artifact by an integer factor, preferring the
// realesrgan tool and degrading to plain resampling when it is absent.
func (p *Processor) Upscale(ctx context.Context, in *artifact.File, scale int) (*artifact.File, error) {
	if p.caps.Realesrgan.Available {
		out := p.store.Allocate("png")
		start := time.Now()
		if err := p.run(ctx, p.caps.Realesrgan.Path, realesrganArgs(in.Path(), out.Path(), scale)...); err != nil {
			_ = out.Release()
			return nil, opErr(OpUpscale, err)
		}
		p.logApplied(ctx, OpUpscale, out, start,
			slog.String("tool", ToolRealesrgan),
			slog.Int("scale", scale),
		)
		return out, nil
	}

	return p.applyLibrary(ctx, OpUpscale, in, "jpg", func(img image.Image) (image.Image, error) {
		bounds := img.Bounds()
		return resizeImage(img, bounds.Dx()*scale, bounds.Dy()*scale), nil
	}, slog.Int("scale", scale))
}

func (p *Processor) applyLibrary(ctx context.Context, op Op, in *artifact.File, ext string, transform func(image.Image) (image.Image, error), attrs ...slog.Attr) (*artifact.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, opErr(op, err)
	}

	start := time.Now()
	img, err := loadImage(in.Path())
	if err != nil {
		return nil, opErr(op, err)
	}
	result, err := transform(img)
	if err != nil {
		return nil, opErr(op, err)
	}

	out := p.store.Allocate(ext)
	if err := saveImage(result, out.Path()); err != nil {
		_ = out.Release()
		return nil, opErr(op, err)
	}
	p.logApplied(ctx, op, out, start, attrs...)
	return out, nil
}

func (p *Processor) logApplied(ctx context.Context, op Op, out *artifact.File, start time.Time, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.String("status", "ok"),
		slog.String("op", string(op)),
		slog.String("artifact_id", out.ID()),
		slog.Duration("duration", logger.Took(start)),
	}, attrs...)
	logger.Info(ctx, "images", "op.applied", all...)
}
