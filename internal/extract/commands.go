// Package extract recovers command invocations and downloaded URLs from the
// RUN instructions of a variable-resolved instruction stream.
package extract

import (
	"fmt"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
	"github.com/tinovyatkin/pinscan/internal/shell"
)

// Commands returns the invoked command name of every command in every RUN
// instruction, in visit order. The name is the first word of the command.
//
// Unlike URLs, a RUN argument that is not valid shell is an error.
func Commands(insts []dockerfile.Instruction) ([]string, error) {
	var commands []string
	for _, inst := range insts {
		if !inst.Is("RUN") {
			continue
		}

		trees, err := shell.Parse(inst.Argument)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.StartLine, err)
		}

		for _, cmd := range shell.Commands(trees) {
			if name, ok := cmd.FirstWord(); ok {
				commands = append(commands, name)
			}
		}
	}
	return commands, nil
}
