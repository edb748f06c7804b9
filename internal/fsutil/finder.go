// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultManifestName is the file looked up when a manifest path points at a
// directory rather than a file.
const DefaultManifestName = "ensemble.yaml"

// FindFilesByExtension recursively searches the given root path for all files
// ending with the specified extension. The returned paths are sorted so that
// callers observe a deterministic order regardless of directory traversal.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ResolveManifestPath maps a user supplied path to a concrete manifest file.
// A file path is returned as-is. For a directory the well-known manifest name
// is preferred; failing that, a single .yaml file in the directory is
// accepted, while zero or multiple candidates are an error.
func ResolveManifestPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat manifest path '%s': %w", path, err)
	}

	if !info.IsDir() {
		return path, nil
	}

	wellKnown := filepath.Join(path, DefaultManifestName)
	if _, err := os.Stat(wellKnown); err == nil {
		return wellKnown, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest directory '%s': %w", path, err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			candidates = append(candidates, filepath.Join(path, entry.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no manifest file found in directory '%s'", path)
	case 1:
		return candidates[0], nil
	default:
		sort.Strings(candidates)
		return "", fmt.Errorf("multiple manifest candidates in '%s' (%s); specify a file", path, strings.Join(candidates, ", "))
	}
}
