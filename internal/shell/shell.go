// Package shell provides shell script parsing utilities for Dockerfile auditing.
// It wraps mvdan.cc/sh/v3/syntax and reduces each top-level statement of a
// RUN argument to a small tree of command, word and assignment nodes.
package shell

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ParseError is returned when a script is not valid shell syntax.
type ParseError struct {
	Script string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("can not parse shell script: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses a shell script into one Tree per top-level statement.
// Dockerfile RUN uses bash syntax by default.
func Parse(script string) ([]*Tree, error) {
	parser := syntax.NewParser(
		syntax.Variant(syntax.LangBash),
		syntax.KeepComments(false),
	)

	file, err := parser.Parse(strings.NewReader(script), "")
	if err != nil {
		return nil, &ParseError{Script: script, Err: err}
	}

	trees := make([]*Tree, 0, len(file.Stmts))
	for _, stmt := range file.Stmts {
		trees = append(trees, newTree(stmt))
	}
	return trees, nil
}

// newTree collects every command node reachable from stmt. Words of a command
// are not searched for nested commands ($(...), backticks).
func newTree(stmt *syntax.Stmt) *Tree {
	root := &Node{Kind: KindOther, Line: int(stmt.Pos().Line())}

	syntax.Walk(stmt, func(n syntax.Node) bool {
		switch x := n.(type) {
		case *syntax.CallExpr:
			root.Children = append(root.Children, callNode(x))
			return false
		case *syntax.DeclClause:
			root.Children = append(root.Children, declNode(x))
			return false
		}
		return true
	})

	return &Tree{Root: root, stmt: stmt}
}

// callNode converts `a=1 b=2 cmd arg...` into a command node whose children
// are the assignments followed by the words.
func callNode(call *syntax.CallExpr) *Node {
	cmd := &Node{Kind: KindCommand, Line: int(call.Pos().Line())}
	for _, a := range call.Assigns {
		cmd.Children = append(cmd.Children, &Node{
			Kind: KindAssignment,
			Text: assignText(a),
			Line: int(a.Pos().Line()),
		})
	}
	for _, w := range call.Args {
		cmd.Children = append(cmd.Children, &Node{
			Kind: KindWord,
			Text: wordText(w),
			Line: int(w.Pos().Line()),
		})
	}
	return cmd
}

// declNode converts `export A=1 B` and friends into a command node. The
// builtin name and its operands are all words, as they would be for any
// other command.
func declNode(decl *syntax.DeclClause) *Node {
	cmd := &Node{Kind: KindCommand, Line: int(decl.Pos().Line())}
	cmd.Children = append(cmd.Children, &Node{
		Kind: KindWord,
		Text: decl.Variant.Value,
		Line: int(decl.Variant.Pos().Line()),
	})
	for _, a := range decl.Args {
		text := assignText(a)
		if text == "" {
			continue
		}
		cmd.Children = append(cmd.Children, &Node{
			Kind: KindWord,
			Text: text,
			Line: int(a.Pos().Line()),
		})
	}
	return cmd
}

// wordText renders a word the way the shell would see it after quote
// removal, leaving expansions ($VAR, $(cmd), ...) in source form.
func wordText(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		writePart(&sb, part)
	}
	return sb.String()
}

func writePart(sb *strings.Builder, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(p.Value)
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, sub := range p.Parts {
			writePart(sb, sub)
		}
	default:
		sb.WriteString(printNode(p))
	}
}

func assignText(a *syntax.Assign) string {
	if a.Name == nil {
		// declare/export options such as -x
		if a.Value != nil {
			return wordText(a.Value)
		}
		return ""
	}
	if a.Naked {
		return a.Name.Value
	}
	if a.Index != nil || a.Array != nil {
		return printNode(a)
	}

	op := "="
	if a.Append {
		op = "+="
	}
	value := ""
	if a.Value != nil {
		value = wordText(a.Value)
	}
	return a.Name.Value + op + value
}

func printNode(n syntax.Node) string {
	var sb strings.Builder
	if err := syntax.NewPrinter(syntax.SingleLine(true)).Print(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}
