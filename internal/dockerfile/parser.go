package dockerfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/moby/buildkit/frontend/dockerfile/instructions"
	"github.com/moby/buildkit/frontend/dockerfile/linter"
	"github.com/moby/buildkit/frontend/dockerfile/parser"
	"github.com/sirupsen/logrus"
)

// Instruction is a single build instruction as written in the Dockerfile.
type Instruction struct {
	// Keyword is the uppercase directive (FROM, RUN, ENV, ARG, ...).
	Keyword string `json:"keyword"`
	// Argument is the instruction text after the keyword and any --flags,
	// with line continuations joined. RUN heredoc bodies are appended.
	Argument string `json:"argument"`
	// StartLine is the 1-based line the instruction starts on.
	StartLine int `json:"line"`
	// EndLine is the 1-based line the instruction ends on.
	EndLine int `json:"endLine"`
}

// Is reports whether the instruction has the given keyword (case-insensitive).
func (i Instruction) Is(keyword string) bool {
	return strings.EqualFold(i.Keyword, keyword)
}

// LintWarning captures parameters from BuildKit's linter.LintWarnFunc callback.
// Fields match the callback signature exactly:
//
//	func(rulename, description, url, fmtmsg string, location []parser.Range)
//
// BuildKit doesn't export a struct for this, so we provide one.
type LintWarning struct {
	RuleName    string
	Description string
	URL         string
	Message     string
	Location    []parser.Range
}

// ParseError is returned when the build script cannot be parsed into
// instructions. It is always fatal for the file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse Dockerfile: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseResult contains the parsed Dockerfile information
type ParseResult struct {
	// TotalLines is the total number of lines in the Dockerfile
	TotalLines int
	// BlankLines is the number of blank (empty or whitespace-only) lines
	BlankLines int
	// CommentLines is the number of comment lines (starting with #)
	CommentLines int
	// Instructions is the ordered instruction stream
	Instructions []Instruction
	// Stages is the number of build stages BuildKit recognized
	Stages int
	// Source is the raw source content of the Dockerfile
	Source []byte
	// Warnings contains lint warnings from BuildKit's built-in linter
	Warnings []LintWarning
}

// openDockerfile opens a Dockerfile path for reading.
// If path is "-", returns os.Stdin and a no-op closer.
// Otherwise, opens the file and returns it with its Close method.
func openDockerfile(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// ParseFile parses a Dockerfile and returns the parse result.
// Files not named "Dockerfile" are parsed from a staged copy that is removed
// before ParseFile returns.
func ParseFile(_ context.Context, path string) (*ParseResult, error) {
	if path == "-" {
		return parseFrom(path, path)
	}

	var result *ParseResult
	err := withCanonicalName(path, func(staged string) error {
		var err error
		result, err = parseFrom(path, staged)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseFrom(path, physical string) (*ParseResult, error) {
	r, closer, err := openDockerfile(physical)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer() }()

	result, err := Parse(r)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return result, nil
}

// Parse parses a Dockerfile from a reader
func Parse(r io.Reader) (*ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	stats := countLines(content)

	ast, err := parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var warnings []LintWarning
	warnFunc := func(rulename, description, url, fmtmsg string, location []parser.Range) {
		warnings = append(warnings, LintWarning{
			RuleName:    rulename,
			Description: description,
			URL:         url,
			Message:     fmtmsg,
			Location:    location,
		})
	}

	lint := linter.New(&linter.Config{
		Warn: warnFunc,
	})

	// Typed parsing only feeds the linter; the instruction stream comes from
	// the raw AST so scripts without FROM still produce instructions.
	stages, _, err := instructions.Parse(ast.AST, lint)
	if err != nil {
		logrus.WithError(err).Debug("typed instruction parsing failed")
	}

	return &ParseResult{
		TotalLines:   stats.total,
		BlankLines:   stats.blank,
		CommentLines: stats.comments,
		Instructions: instructionsFromAST(ast.AST),
		Stages:       len(stages),
		Source:       content,
		Warnings:     warnings,
	}, nil
}

// instructionsFromAST flattens the top-level AST nodes into instructions.
func instructionsFromAST(root *parser.Node) []Instruction {
	if root == nil {
		return nil
	}
	out := make([]Instruction, 0, len(root.Children))
	for _, node := range root.Children {
		out = append(out, Instruction{
			Keyword:   strings.ToUpper(node.Value),
			Argument:  argumentText(node),
			StartLine: node.StartLine,
			EndLine:   node.EndLine,
		})
	}
	return out
}

// argumentText recovers the argument as written: the logical line minus the
// keyword and leading --flags, followed by any heredoc bodies.
func argumentText(node *parser.Node) string {
	rest := strings.TrimSpace(node.Original)
	rest = dropField(rest)
	for range node.Flags {
		if !strings.HasPrefix(rest, "--") {
			break
		}
		rest = dropField(rest)
	}

	// RUN <<EOF with nothing else runs the body as the script.
	if len(node.Heredocs) == 1 && isHeredocMarker(rest, node.Heredocs[0].Name) {
		return strings.TrimSuffix(node.Heredocs[0].Content, "\n")
	}

	for _, h := range node.Heredocs {
		body := h.Content
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		rest += "\n" + body + h.Name
	}
	return rest
}

// isHeredocMarker reports whether s is only a heredoc redirection for name,
// e.g. <<EOF, <<-EOF or <<"EOF".
func isHeredocMarker(s, name string) bool {
	s, ok := strings.CutPrefix(s, "<<")
	if !ok {
		return false
	}
	s = strings.TrimPrefix(s, "-")
	s = strings.Trim(s, `"'`)
	return s == name
}

// dropField removes the first whitespace-delimited field and the blanks after it.
func dropField(s string) string {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// lineStats contains counts of different line types.
type lineStats struct {
	total    int
	blank    int
	comments int
}

// countLines counts total, blank, and comment lines in content.
func countLines(content []byte) lineStats {
	var stats lineStats
	scanner := bufio.NewScanner(bytes.NewReader(content))

	for scanner.Scan() {
		stats.total++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			stats.blank++
		} else if strings.HasPrefix(line, "#") {
			stats.comments++
		}
	}

	return stats
}
