// Package step prepares implementation steps for execution: it resolves
// the interpreter, the working directory, and the environment, and loads
// external script files. Preparation fails before any script content runs,
// so a step with a broken configuration never executes partially.
package step

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mehak151/unfurl/internal/config"
	"github.com/mehak151/unfurl/internal/helpers"
)

// DefaultShell is the interpreter used when a step declares none.
const DefaultShell = "/bin/sh"

// MissingExecutableError reports a step whose shell does not resolve to an
// existing executable on the execution host.
type MissingExecutableError struct {
	Shell string
	Err   error
}

func (e *MissingExecutableError) Error() string {
	return fmt.Sprintf("shell '%s' does not resolve to an executable: %v", e.Shell, e.Err)
}

func (e *MissingExecutableError) Unwrap() error { return e.Err }

// Prepared is a step ready for handoff to the execution engine.
type Prepared struct {
	// Script is the final script text.
	Script string
	// Shell is the absolute path of the resolved interpreter.
	Shell string
	// Dir is the working directory the step runs in.
	Dir string
	// Env is the full environment for the step, process env plus the
	// step's extra entries.
	Env []string
	// KeepLines indicates the script's line structure was preserved for
	// error reporting.
	KeepLines bool
}

// Prepare resolves a step's configuration against the execution host.
// baseDir is the directory of the manifest; it anchors relative file
// references and is the default working directory. searchPath backs the
// interpreter lookup, nil meaning $PATH.
func Prepare(s *config.Step, baseDir string, searchPath []string) (*Prepared, error) {
	shell := s.Options.Shell
	if shell == "" {
		shell = DefaultShell
	}
	resolvedShell, err := helpers.LookPath(shell, searchPath)
	if err != nil {
		return nil, &MissingExecutableError{Shell: shell, Err: err}
	}

	script := s.Implementation
	if s.File {
		scriptPath := s.Implementation
		if !filepath.IsAbs(scriptPath) {
			scriptPath = filepath.Join(baseDir, scriptPath)
		}
		content, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read step file '%s': %w", s.Implementation, err)
		}
		script = string(content)
	}
	if !s.Options.KeepLines {
		script = normalizeScript(script)
	}

	dir := baseDir
	if s.Options.Cwd != "" {
		dir = s.Options.Cwd
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
	}

	return &Prepared{
		Script:    script,
		Shell:     resolvedShell,
		Dir:       dir,
		Env:       mergeEnv(os.Environ(), s.Options.Env),
		KeepLines: s.Options.KeepLines,
	}, nil
}

// normalizeScript strips trailing whitespace and blank lines. With
// keeplines set the script passes through verbatim instead, so interpreter
// errors report line numbers that match the document.
func normalizeScript(script string) string {
	lines := strings.Split(script, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

// mergeEnv appends the step's extra entries over the base environment,
// sorted by key so the result is deterministic.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
