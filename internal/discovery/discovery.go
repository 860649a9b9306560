// Package discovery expands command-line inputs into the Dockerfiles to audit.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Patterns match build scripts inside a directory, relative to it.
var Patterns = []string{
	"**/Dockerfile",
	"**/Containerfile",
	"**/*.Dockerfile",
	"**/*.dockerfile",
	"**/Dockerfile.*",
	"**/Containerfile.*",
}

// Options configures Discover.
type Options struct {
	// Exclude patterns (.dockerignore syntax) are applied to files found in
	// directories, relative to the directory. Explicit file inputs are never
	// excluded.
	Exclude []string
}

// Discover returns the files to audit for inputs, in input order. Files are
// kept as given, "-" means stdin, and each directory is replaced by the
// sorted list of build scripts below it.
func Discover(inputs []string, opts Options) ([]string, error) {
	var (
		files []string
		seen  = make(map[string]bool)
	)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, input := range inputs {
		if input == "-" {
			add(input)
			continue
		}

		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		found, err := discoverDir(input, opts.Exclude)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

func discoverDir(dir string, exclude []string) ([]string, error) {
	patterns, err := LoadIgnoreFile(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Join(dir, IgnoreFileName), err)
	}
	patterns = append(patterns, exclude...)

	var pm *patternmatcher.PatternMatcher
	if len(patterns) > 0 {
		pm, err = patternmatcher.New(patterns)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	fsys := os.DirFS(dir)
	var matches []string
	for _, pattern := range Patterns {
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	slices.Sort(matches)
	matches = slices.Compact(matches)

	out := make([]string, 0, len(matches))
	for _, rel := range matches {
		if strings.HasSuffix(rel, ".dockerignore") {
			continue
		}
		if pm != nil {
			excluded, err := pm.MatchesOrParentMatches(rel)
			if err != nil {
				return nil, err
			}
			if excluded {
				logrus.WithField("file", rel).Debug("excluded")
				continue
			}
		}
		out = append(out, filepath.Join(dir, filepath.FromSlash(rel)))
	}
	return out, nil
}
