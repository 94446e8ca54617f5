package app

import (
	"context"
	"fmt"

	"github.com/Sambhram1/tele-bot/app/artifact"
	"github.com/Sambhram1/tele-bot/app/editor"
	"github.com/Sambhram1/tele-bot/app/imageops"
	"github.com/Sambhram1/tele-bot/app/metrics"
	"github.com/Sambhram1/tele-bot/core/bootstrap"
	"github.com/Sambhram1/tele-bot/core/cmd"
	"github.com/Sambhram1/tele-bot/core/logger"
	coretelegram "github.com/Sambhram1/tele-bot/core/telegram"
	"github.com/Sambhram1/tele-bot/core/telegram/router"
	"github.com/Sambhram1/tele-bot/core/telegram/state"
	"github.com/Sambhram1/tele-bot/core/telegram/ui"
	"log/slog"
)

// App is the assembled bot: infrastructure plus the editing session wiring.
type App struct {
	cfg *Config

	boot     *bootstrap.Result
	store    *artifact.Store
	sweeper  *artifact.Sweeper
	sessions state.Manager
	editor   *editor.Editor
	handlers *editor.Handlers
	registry *coretelegram.Registry

	stopMetrics func() error
}

// New runs the bootstrap pipeline and wires the editor components.
func New(cfg *Config) (*App, error) {
	a := &App{cfg: cfg}

	boot, err := bootstrap.Run(bootstrap.Options{
		Config: cfg.CoreConfig(),
		Components: []bootstrap.Component{
			{
				Name: "metrics",
				Init: func() (func() error, error) {
					metrics.Init()
					return nil, nil
				},
			},
			{
				Name: "artifact_store",
				Init: func() (func() error, error) {
					store, err := artifact.NewStore(cfg.Images.ArtifactDir)
					if err != nil {
						return nil, err
					}
					a.store = store
					return nil, nil
				},
			},
			{
				Name: "artifact_sweeper",
				Init: func() (func() error, error) {
					sweeper, err := artifact.NewSweeper(
						a.store,
						cfg.Images.SweepIntervalDuration(),
						cfg.Images.SweepMaxAgeDuration(),
						func(n int) { metrics.SweptArtifacts.Add(float64(n)) },
					)
					if err != nil {
						return nil, err
					}
					a.sweeper = sweeper
					return nil, nil
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	a.boot = boot

	caps := imageops.Probe(nil)
	processor := imageops.NewProcessor(a.store, caps)

	a.sessions = state.NewMemoryManager()
	a.editor = editor.New(a.sessions, a.store, processor, editor.Limits{
		MaxUploadBytes: cfg.Images.MaxUploadBytes,
		Formats:        cfg.Images.Formats,
		MaxWidth:       cfg.Images.MaxWidth,
		MaxHeight:      cfg.Images.MaxHeight,
		UpscaleFactor:  cfg.Images.UpscaleFactor,
		MaxTextLen:     cfg.Images.MaxTextLen,
		TextStyle:      cfg.TextStyle(),
	})
	a.handlers = editor.NewHandlers(a.editor, caps)

	a.registry = coretelegram.NewRegistry()
	a.handlers.Register(a.registry)
	a.registry.SetCallbackNotFound(a.handlers.UnknownCallback())

	return a, nil
}

// TelegramRunOptions builds the bot runtime configuration for the core runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	cfg := a.cfg.CoreConfig()

	var fallbacks ui.FallbackProvider = a.handlers

	routes := []coretelegram.Route{a.handlers.PhotoRoute()}
	routes = append(routes, router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, _ coretelegram.Runtime) error {
	a.sweeper.Start()
	if addr := a.cfg.Metrics.Listen; addr != "" {
		a.stopMetrics = metrics.Serve(addr)
	}
	metrics.ActiveSessions.Set(float64(a.sessions.Count()))

	logger.Info(ctx, "app", "editor.ready",
		slog.String("artifact_dir", a.cfg.Images.ArtifactDir),
		slog.String("sweep_interval", a.cfg.Images.SweepInterval),
	)
	return nil
}

func (a *App) onStop(context.Context, coretelegram.Runtime) error {
	a.sweeper.Stop()
	var firstErr error
	if a.stopMetrics != nil {
		if err := a.stopMetrics(); err != nil {
			firstErr = fmt.Errorf("metrics shutdown: %w", err)
		}
	}
	if err := a.boot.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LoadCarrier adapts LoadConfig to the runner's config contract.
func LoadCarrier(path string) (cmd.ConfigCarrier, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Bootstrap adapts New to the runner's bootstrap contract.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}
