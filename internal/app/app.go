// Package app wires the loader, composers, and plan rendering into one
// application lifecycle: load the declarative spec, compose the experiment,
// and emit the resolved plan for an external launcher.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/expgrid/internal/ctxlog"
	"github.com/vk/expgrid/internal/hcl"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
	loader *hcl.Loader
}

// NewApp is the constructor for the main application. The resolved plan goes
// to outW; logs go to logW so piping the plan stays clean.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		config: cfg,
		loader: hcl.NewLoader(),
	}
}

// Run loads the spec, composes the experiment, and writes the plan as JSON.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	spec, err := a.loader.Load(ctx, a.config.SpecPath)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}

	composed, err := Compose(ctx, spec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(composed); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return nil
}
