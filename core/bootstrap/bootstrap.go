package bootstrap

import (
	"fmt"

	coreconfig "github.com/Sambhram1/tele-bot/core/config"
	"github.com/Sambhram1/tele-bot/core/logger"
)

// Component is an infrastructure piece initialized during bootstrap. Init
// returns an optional cleanup function invoked in reverse order on Close.
type Component struct {
	Name string
	Init func() (func() error, error)
}

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config     *coreconfig.Config
	LoggerInit func(*coreconfig.Config) error
	Components []Component
}

// Result exposes cleanup for infrastructure initialized by the pipeline.
type Result struct {
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// Run initializes the logger and then each component in declaration order.
// On any failure the already-initialized components are closed before the
// error is returned.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	for _, comp := range opts.Components {
		if comp.Init == nil {
			continue
		}
		closeFn, err := comp.Init()
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("bootstrap: %s initialization failed: %w", comp.Name, err)
		}
		if closeFn != nil {
			res.closers = append(res.closers, namedCloser{name: comp.Name, close: closeFn})
		}
	}

	return res, nil
}

// Close tears down components in reverse initialization order, returning the
// first encountered error.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		c := r.closers[i]
		if err := c.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("bootstrap: %s shutdown failed: %w", c.name, err)
		}
	}
	r.closers = nil
	return firstErr
}
