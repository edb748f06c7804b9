package app

import (
	"errors"
	"time"
)

// Config holds everything an App instance needs to run.
type Config struct {
	ManifestPath string

	// RenderOnly emits the rendered document instead of loading it.
	RenderOnly bool
	// PlanOnly loads and prints the operation list without executing.
	PlanOnly bool
	// DryRun executes the plan with every operation stubbed out.
	DryRun bool

	CacheDir     string
	FetchTimeout time.Duration
	DelimStart   string
	DelimEnd     string

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
