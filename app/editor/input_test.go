package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimensions(t *testing.T) {
	cases := []struct {
		input  string
		width  int
		height int
		ok     bool
	}{
		{"800x600", 800, 600, true},
		{"1920×1080", 1920, 1080, true},
		{"800,600", 800, 600, true},
		{"800 600", 800, 600, true},
		{"  640 x 480  ", 640, 480, true},
		{"abcxdef", 0, 0, false},
		{"800", 0, 0, false},
		{"", 0, 0, false},
		{"0x600", 0, 0, false},
		{"800x0", 0, 0, false},
		{"-800x600", 0, 0, false},
		{"800x600x400", 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			w, h, err := ParseDimensions(tc.input)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.width, w)
			assert.Equal(t, tc.height, h)
		})
	}
}

func TestParseRotation(t *testing.T) {
	cases := []struct {
		input   string
		degrees int
		ok      bool
	}{
		{"90", 90, true},
		{"-90", -90, true},
		{"360", 360, true},
		{"-360", -360, true},
		{"0", 0, true},
		{" 45 ", 45, true},
		{"361", 0, false},
		{"-400", 0, false},
		{"abc", 0, false},
		{"90.5", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseRotation(tc.input)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.degrees, d)
		})
	}
}

func TestSanitizeText(t *testing.T) {
	got, err := SanitizeText("  hello world  ", 64)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	_, err = SanitizeText("   ", 64)
	assert.Error(t, err)

	_, err = SanitizeText("line\x00break", 64)
	assert.Error(t, err)

	_, err = SanitizeText("tab\there", 64)
	assert.Error(t, err)

	_, err = SanitizeText("too long", 3)
	assert.Error(t, err)

	// Length is counted in runes, not bytes.
	got, err = SanitizeText("héllo", 5)
	require.NoError(t, err)
	assert.Equal(t, "héllo", got)
}
