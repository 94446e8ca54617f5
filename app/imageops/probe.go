package imageops

import (
	"os/exec"

	"github.com/Sambhram1/tele-bot/core/logger"
	"log/slog"
)

// Tool names probed on PATH at startup.
const (
	ToolRembg      = "rembg"
	ToolRealesrgan = "realesrgan-ncnn-vulkan"
)

// Capability reports whether an external tool was found and where.
type Capability struct {
	Available bool
	Path      string
}

// Capabilities describes which external tools this deployment can use. The
// probe runs once at startup; operation strategies are selected from the
// result instead of being discovered through failed invocations per call.
type Capabilities struct {
	Rembg      Capability
	Realesrgan Capability
}

// Probe checks tool availability using the provided lookup function. Passing
// nil uses exec.LookPath.
func Probe(lookPath func(string) (string, error)) Capabilities {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return Capabilities{
		Rembg:      probeTool(lookPath, ToolRembg),
		Realesrgan: probeTool(lookPath, ToolRealesrgan),
	}
}

func probeTool(lookPath func(string) (string, error), name string) Capability {
	path, err := lookPath(name)
	if err != nil {
		logger.Info(logger.Background(), "images", "probe.tool",
			slog.String("status", "skip"),
			slog.String("tool", name),
		)
		return Capability{}
	}
	logger.Info(logger.Background(), "images", "probe.tool",
		slog.String("status", "ok"),
		slog.String("tool", name),
		slog.String("path", path),
	)
	return Capability{Available: true, Path: path}
}
