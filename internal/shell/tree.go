package shell

import (
	"encoding/json"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Kind tags a Node. Only commands, words and assignments carry meaning for
// auditing; everything else is KindOther.
type Kind int

const (
	KindOther Kind = iota
	KindCommand
	KindWord
	KindAssignment
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindWord:
		return "word"
	case KindAssignment:
		return "assignment"
	default:
		return "other"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Node is a shell syntax tree node.
type Node struct {
	Kind Kind `json:"kind"`
	// Text is the token text for words and assignments, after quote removal.
	Text string `json:"text,omitempty"`
	// Children holds the ordered parts of a command, or the commands of a
	// statement for the tree root.
	Children []*Node `json:"children,omitempty"`
	// Line is the 1-based line within the parsed script.
	Line int `json:"-"`
}

// String renders the node compactly, e.g. command(word:"curl" word:"-O").
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case KindWord, KindAssignment:
		sb.WriteString(n.Kind.String())
		sb.WriteByte(':')
		sb.WriteString(strconv.Quote(n.Text))
		return
	}
	sb.WriteString(n.Kind.String())
	sb.WriteByte('(')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.write(sb)
	}
	sb.WriteByte(')')
}

// FirstWord returns the text of the first word child, if any.
func (n *Node) FirstWord() (string, bool) {
	for _, c := range n.Children {
		if c.Kind == KindWord {
			return c.Text, true
		}
	}
	return "", false
}

// Tree is the syntax tree of one top-level shell statement.
type Tree struct {
	Root *Node
	stmt *syntax.Stmt
}

// String prints the statement back as shell source on a single line.
func (t *Tree) String() string {
	if t.stmt == nil {
		return t.Root.String()
	}
	return printNode(t.stmt)
}

// MarshalJSON encodes the tree as its root node.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Root)
}

// Walk visits node and its descendants depth-first, in order. Children of a
// node are skipped when fn returns false.
func Walk(node *Node, fn func(*Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, c := range node.Children {
		Walk(c, fn)
	}
}

// Commands returns every command node of the trees in visit order.
func Commands(trees []*Tree) []*Node {
	var cmds []*Node
	for _, t := range trees {
		Walk(t.Root, func(n *Node) bool {
			if n.Kind == KindCommand {
				cmds = append(cmds, n)
				return false
			}
			return true
		})
	}
	return cmds
}
