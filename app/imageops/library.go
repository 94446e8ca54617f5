package imageops

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const jpegQuality = 90

func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func saveImage(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func grayscaleImage(img image.Image) image.Image {
	return imaging.Grayscale(img)
}

func resizeImage(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// rotateImage rotates clockwise for positive degrees, matching what users
// expect from "rotate by 90". imaging.Rotate is counter-clockwise.
func rotateImage(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return imaging.Clone(img)
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return imaging.Rotate(img, -float64(degrees), color.White)
}

func overlayTextImage(img image.Image, text string, style TextStyle) (image.Image, error) {
	face, err := loadFontFace(style.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	col, err := parseHexColor(style.Color)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(face)

	w := float64(dc.Width())
	h := float64(dc.Height())
	margin := float64(style.Margin)

	var y, ay float64
	switch strings.ToLower(strings.TrimSpace(style.Position)) {
	case "top":
		y, ay = margin, 1
	case "center":
		y, ay = h/2, 0.5
	default: // bottom
		y, ay = h-margin, 0
	}

	// Thin dark outline keeps the text readable on light backgrounds.
	dc.SetColor(color.NRGBA{A: 200})
	for _, off := range [][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		dc.DrawStringAnchored(text, w/2+off[0], y+off[1], 0.5, ay)
	}
	dc.SetColor(col)
	dc.DrawStringAnchored(text, w/2, y, 0.5, ay)

	return dc.Image(), nil
}

func loadFontFace(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultTextStyle.FontSize
	}
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultTextStyle.Color
	}
	s = strings.TrimPrefix(s, "#")

	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
