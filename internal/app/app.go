package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/mehak151/unfurl/internal/loader"
	"github.com/mehak151/unfurl/internal/render"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logW   io.Writer
	logger *slog.Logger
	config *Config
	loader *loader.Loader
}

// New constructs a fully initialized App, including its own isolated
// logger and loader.
func New(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	delims := render.DefaultDelimiters
	if cfg.DelimStart != "" || cfg.DelimEnd != "" {
		delims = render.Delimiters{Start: cfg.DelimStart, End: cfg.DelimEnd}
	}

	ldr, err := loader.New(loader.Options{
		Delimiters:   delims,
		CacheRoot:    cfg.CacheDir,
		FetchTimeout: cfg.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure loader: %w", err)
	}
	logger.Debug("Loader configured.", "manifest", cfg.ManifestPath)

	return &App{
		outW:   outW,
		logW:   logW,
		logger: logger,
		config: cfg,
		loader: ldr,
	}, nil
}

// Loader returns the application's loader. This is primarily for testing.
func (a *App) Loader() *loader.Loader {
	return a.loader
}

// baseDir returns the directory that anchors relative paths in the
// manifest.
func (a *App) baseDir(manifestFile string) string {
	return filepath.Dir(manifestFile)
}
