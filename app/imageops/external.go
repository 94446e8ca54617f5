package imageops

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// toolRunner executes an external tool. Split out so processor tests can
// substitute a fake instead of requiring the binaries.
type toolRunner func(ctx context.Context, path string, args ...string) error

func runTool(ctx context.Context, path string, args ...string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if len(detail) > 256 {
			detail = detail[:256]
		}
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", path, err, detail)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func rembgArgs(in, out string) []string {
	return []string{"i", in, out}
}

func realesrganArgs(in, out string, scale int) []string {
	return []string{"-i", in, "-o", out, "-s", strconv.Itoa(scale)}
}
