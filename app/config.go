// Package app assembles the image editing bot on top of the reusable core:
// configuration, infrastructure bootstrap, and Telegram wiring.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Sambhram1/tele-bot/app/imageops"
	coreconfig "github.com/Sambhram1/tele-bot/core/config"
	"github.com/Sambhram1/tele-bot/core/telegram/format"
)

// ImagesConfig bounds uploads, operation parameters, and artifact retention.
type ImagesConfig struct {
	MaxUploadBytes int64    `yaml:"max_upload_bytes" envconfig:"IMAGES_MAX_UPLOAD_BYTES"`
	Formats        []string `yaml:"formats" envconfig:"IMAGES_FORMATS"`
	MaxWidth       int      `yaml:"max_width" envconfig:"IMAGES_MAX_WIDTH"`
	MaxHeight      int      `yaml:"max_height" envconfig:"IMAGES_MAX_HEIGHT"`
	UpscaleFactor  int      `yaml:"upscale_factor" envconfig:"IMAGES_UPSCALE_FACTOR"`
	MaxTextLen     int      `yaml:"max_text_len" envconfig:"IMAGES_MAX_TEXT_LEN"`

	// Overlay style overrides; nil keeps the built-in default.
	TextFontSize *int    `yaml:"text_font_size"`
	TextColor    *string `yaml:"text_color"`
	TextPosition *string `yaml:"text_position"`

	ArtifactDir   string `yaml:"artifact_dir" envconfig:"IMAGES_ARTIFACT_DIR"`
	SweepInterval string `yaml:"sweep_interval"`
	SweepMaxAge   string `yaml:"sweep_max_age"`
}

// MetricsConfig controls the prometheus listener. Empty listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

// Config is the full bot configuration: the core section plus app settings.
type Config struct {
	Core    coreconfig.Config `yaml:",inline"`
	Images  ImagesConfig      `yaml:"images"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// TextStyle builds the overlay style from configuration.
func (c *Config) TextStyle() imageops.TextStyle {
	style := imageops.DefaultTextStyle
	style.FontSize = float64(format.DerefInt(c.Images.TextFontSize, int(style.FontSize)))
	style.Color = format.DerefString(c.Images.TextColor, style.Color)
	style.Position = format.DerefString(c.Images.TextPosition, style.Position)
	return style
}

// LoadConfig reads YAML configuration, applies environment overrides, and
// validates both the core and the image sections.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeImages(&cfg.Images); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeImages(img *ImagesConfig) error {
	if img.MaxUploadBytes <= 0 {
		img.MaxUploadBytes = 20 << 20
	}
	if len(img.Formats) == 0 {
		img.Formats = []string{"jpg", "png", "webp"}
	}
	for i, f := range img.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpeg" {
			f = "jpg"
		}
		if f == "" {
			return fmt.Errorf("images.formats contains an empty entry")
		}
		img.Formats[i] = f
	}
	if img.MaxWidth <= 0 {
		img.MaxWidth = 4096
	}
	if img.MaxHeight <= 0 {
		img.MaxHeight = 4096
	}
	if img.UpscaleFactor == 0 {
		img.UpscaleFactor = 2
	}
	if img.UpscaleFactor < 2 || img.UpscaleFactor > 4 {
		return fmt.Errorf("images.upscale_factor must be between 2 and 4, got %d", img.UpscaleFactor)
	}
	if img.MaxTextLen <= 0 {
		img.MaxTextLen = 128
	}
	if img.TextFontSize != nil && *img.TextFontSize <= 0 {
		return fmt.Errorf("images.text_font_size must be > 0, got %d", *img.TextFontSize)
	}
	if img.TextPosition != nil {
		switch *img.TextPosition {
		case "top", "center", "bottom":
		default:
			return fmt.Errorf("images.text_position must be top, center, or bottom, got %q", *img.TextPosition)
		}
	}
	if img.ArtifactDir == "" {
		img.ArtifactDir = filepath.Join(os.TempDir(), "tele-bot-artifacts")
	}
	if img.SweepInterval == "" {
		img.SweepInterval = "10m"
	}
	if _, err := time.ParseDuration(img.SweepInterval); err != nil {
		return fmt.Errorf("images.sweep_interval: %w", err)
	}
	if img.SweepMaxAge == "" {
		img.SweepMaxAge = "1h"
	}
	if _, err := time.ParseDuration(img.SweepMaxAge); err != nil {
		return fmt.Errorf("images.sweep_max_age: %w", err)
	}
	return nil
}

// SweepIntervalDuration returns the parsed sweep interval.
func (c *ImagesConfig) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// SweepMaxAgeDuration returns the parsed artifact retention age.
func (c *ImagesConfig) SweepMaxAgeDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepMaxAge)
	return d
}
