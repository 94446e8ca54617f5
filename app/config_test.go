package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
`))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Core.Telegram.Token)
	assert.Equal(t, int64(20<<20), cfg.Images.MaxUploadBytes)
	assert.Equal(t, []string{"jpg", "png", "webp"}, cfg.Images.Formats)
	assert.Equal(t, 2, cfg.Images.UpscaleFactor)
	assert.Equal(t, 10*time.Minute, cfg.Images.SweepIntervalDuration())
	assert.Equal(t, time.Hour, cfg.Images.SweepMaxAgeDuration())
	assert.NotEmpty(t, cfg.Images.ArtifactDir)
}

func TestLoadConfigNormalizesFormats(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
images:
  formats: [JPEG, PNG]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"jpg", "png"}, cfg.Images.Formats)
}

func TestLoadConfigRejectsBadUpscaleFactor(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
images:
  upscale_factor: 7
`))
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadTextPosition(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
images:
  text_position: left
`))
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadSweepInterval(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
images:
  sweep_interval: soon
`))
	assert.Error(t, err)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	if os.Getenv("BOT_TOKEN") != "" {
		t.Skip("BOT_TOKEN set in environment")
	}
	_, err := LoadConfig(writeConfig(t, `
telegram:
  run_mode: longpoll
`))
	assert.Error(t, err)
}

func TestTextStyleOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
images:
  text_font_size: 48
  text_color: "#ff0000"
  text_position: top
`))
	require.NoError(t, err)

	style := cfg.TextStyle()
	assert.Equal(t, 48.0, style.FontSize)
	assert.Equal(t, "#ff0000", style.Color)
	assert.Equal(t, "top", style.Position)
}
