package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// dimensionsRe accepts two positive integers separated by "x", "×", a comma,
// or whitespace, e.g. "800x600", "1920×1080", "800,600", "800 600".
var dimensionsRe = regexp.MustCompile(`^(\d+)(?:\s*[x×,]\s*|\s+)(\d+)$`)

// ParseDimensions extracts width and height from free-text input.
func ParseDimensions(input string) (int, int, error) {
	m := dimensionsRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0, 0, fmt.Errorf("expected two numbers like 800x600, got %q", input)
	}
	width, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", m[1])
	}
	height, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", m[2])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("dimensions must be positive, got %dx%d", width, height)
	}
	return width, height, nil
}

// ParseRotation extracts a rotation angle in [-360, 360] from free text.
func ParseRotation(input string) (int, error) {
	degrees, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("expected a whole number of degrees, got %q", input)
	}
	if degrees < -360 || degrees > 360 {
		return 0, fmt.Errorf("degrees must be between -360 and 360, got %d", degrees)
	}
	return degrees, nil
}

// SanitizeText validates overlay text: it trims surrounding whitespace,
// rejects empty input, control characters, and input longer than maxLen runes.
func SanitizeText(input string, maxLen int) (string, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return "", fmt.Errorf("text must not be empty")
	}
	if maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return "", fmt.Errorf("text exceeds %d characters", maxLen)
	}
	for _, r := range text {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return "", fmt.Errorf("text contains unsupported characters")
		}
	}
	return text, nil
}
