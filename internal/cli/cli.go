// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mehak151/unfurl/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("unfurl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Unfurl - loads declarative ensemble manifests and plans their lifecycle operations.

Usage:
  unfurl [options] [MANIFEST_PATH]

Arguments:
  MANIFEST_PATH
    Path to an ensemble .yaml file, or a directory containing ensemble.yaml.

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the ensemble manifest file or directory.")
	mFlag := flagSet.String("m", "", "Path to the ensemble manifest file or directory (shorthand).")
	renderOnlyFlag := flagSet.Bool("render-only", false, "Print the rendered document and exit.")
	planOnlyFlag := flagSet.Bool("plan-only", false, "Print the ordered operation list and exit.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Plan execution without running any step.")
	cacheDirFlag := flagSet.String("cache-dir", "", "Directory for materialized repository references. Defaults to ~/.unfurl.")
	fetchTimeoutFlag := flagSet.Duration("fetch-timeout", 30*time.Second, "Timeout for a single repository fetch attempt.")
	delimStartFlag := flagSet.String("delim-start", "", "Expression start delimiter. Defaults to '[%'.")
	delimEndFlag := flagSet.String("delim-end", "", "Expression end delimiter. Defaults to '%]'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *manifestFlag != "" {
		path = *manifestFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if (*delimStartFlag == "") != (*delimEndFlag == "") {
		return nil, false, &ExitError{Code: 2, Message: "delim-start and delim-end must be set together"}
	}

	config, err := app.NewConfig(app.Config{
		ManifestPath: path,
		RenderOnly:   *renderOnlyFlag,
		PlanOnly:     *planOnlyFlag,
		DryRun:       *dryRunFlag,
		CacheDir:     *cacheDirFlag,
		FetchTimeout: *fetchTimeoutFlag,
		DelimStart:   *delimStartFlag,
		DelimEnd:     *delimEndFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
