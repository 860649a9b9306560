package extract

import (
	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
	"github.com/tinovyatkin/pinscan/internal/shell"
)

// ParsedInstruction is an instruction whose RUN argument has been parsed.
// Trees is nil for every other keyword.
type ParsedInstruction struct {
	dockerfile.Instruction
	Trees []*shell.Tree `json:"trees,omitempty"`
}

// BashTrees parses the argument of every RUN instruction. An instruction
// whose argument is not valid shell is dropped from the result with a
// warning; other instructions pass through unchanged.
func BashTrees(insts []dockerfile.Instruction) []ParsedInstruction {
	out := make([]ParsedInstruction, 0, len(insts))
	for _, inst := range insts {
		if !inst.Is("RUN") {
			out = append(out, ParsedInstruction{Instruction: inst})
			continue
		}

		trees, err := shell.Parse(inst.Argument)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"line":    inst.StartLine,
				"keyword": inst.Keyword,
			}).WithError(err).Warn("can not parse RUN instruction, dropping it")
			continue
		}
		out = append(out, ParsedInstruction{Instruction: inst, Trees: trees})
	}
	return out
}
