// Package audit runs the pinscan pipeline over a single build script:
// parse, resolve variables, then extract downloads or commands.
package audit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
	"github.com/tinovyatkin/pinscan/internal/extract"
	"github.com/tinovyatkin/pinscan/internal/variables"
)

// Options configures a run.
type Options struct {
	// BuildArgs override ARG values.
	BuildArgs map[string]string
	// Extract tunes URL extraction.
	Extract extract.Options
}

// Result contains the URL findings for a single file.
type Result struct {
	// File is the path as given ("-" for stdin).
	File string `json:"file"`
	// Lines is the total number of lines in the file.
	Lines int `json:"lines"`
	// URLs lists downloaded URLs in source order.
	URLs []extract.URLRef `json:"urls"`
	// Source is the raw file content.
	Source []byte `json:"-"`
}

// Run audits path and returns the URLs its RUN instructions download.
func Run(ctx context.Context, path string, opts Options) (*Result, error) {
	parsed, insts, err := resolved(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	urls := extract.FindURLs(insts, opts.Extract)
	if urls == nil {
		urls = []extract.URLRef{}
	}
	return &Result{
		File:   path,
		Lines:  parsed.TotalLines,
		URLs:   urls,
		Source: parsed.Source,
	}, nil
}

// Commands returns the command names invoked by the RUN instructions of
// path. A RUN that is not valid shell fails the whole file.
func Commands(ctx context.Context, path string, opts Options) ([]string, error) {
	_, insts, err := resolved(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return extract.Commands(insts)
}

// Dump is the parsed, unresolved instruction stream of a file.
type Dump struct {
	File         string                      `json:"file"`
	Instructions []extract.ParsedInstruction `json:"instructions"`
}

// ParseOnly parses path and its RUN arguments without resolving variables.
func ParseOnly(ctx context.Context, path string) (*Dump, error) {
	parsed, err := parse(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Dump{
		File:         path,
		Instructions: extract.BashTrees(parsed.Instructions),
	}, nil
}

func resolved(ctx context.Context, path string, opts Options) (*dockerfile.ParseResult, []dockerfile.Instruction, error) {
	parsed, err := parse(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	r := variables.Resolver{BuildArgs: opts.BuildArgs}
	return parsed, r.Resolve(parsed.Instructions), nil
}

func parse(ctx context.Context, path string) (*dockerfile.ParseResult, error) {
	parsed, err := dockerfile.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"file":         path,
		"lines":        parsed.TotalLines,
		"blank":        parsed.BlankLines,
		"comments":     parsed.CommentLines,
		"stages":       parsed.Stages,
		"instructions": len(parsed.Instructions),
	}).Debug("parsed build script")

	for _, w := range parsed.Warnings {
		entry := logrus.WithFields(logrus.Fields{"file": path, "rule": w.RuleName})
		if len(w.Location) > 0 {
			entry = entry.WithField("line", w.Location[0].Start.Line)
		}
		entry.Debug(w.Message)
	}
	return parsed, nil
}
