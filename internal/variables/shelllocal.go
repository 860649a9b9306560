package variables

import (
	"strings"

	"github.com/tinovyatkin/pinscan/internal/shell"
)

// ShellLocals collects the variables assigned inside a single RUN argument:
// assignment tokens (`FOO=bar cmd`, `FOO=bar`) and words of the form
// NAME=value with exactly one '='.
func ShellLocals(script string) (*Table, error) {
	trees, err := shell.Parse(script)
	if err != nil {
		return nil, err
	}

	locals := NewTable()
	for _, cmd := range shell.Commands(trees) {
		for _, part := range cmd.Children {
			switch part.Kind {
			case shell.KindAssignment:
				name, value, ok := strings.Cut(part.Text, "=")
				if ok && isName(name) {
					locals.Set(name, value)
				}
			case shell.KindWord:
				if strings.Count(part.Text, "=") != 1 {
					continue
				}
				name, value, _ := strings.Cut(part.Text, "=")
				if isName(name) {
					locals.Set(name, value)
				}
			}
		}
	}
	return locals, nil
}
