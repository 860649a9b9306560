package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tinovyatkin/pinscan/internal/audit"
)

// Dumps writes parse-only output. In text form every instruction is one
// line, `LINE KEYWORD argument`; a RUN is followed by its shell trees, one
// indented line per tree.
func (r *Reporter) Dumps(dumps []*audit.Dump) error {
	if r.opts.Format != "text" {
		return writeJSON(r.w, dumps)
	}

	keyword := r.renderer.NewStyle().Bold(true)
	for i, d := range dumps {
		if len(dumps) > 1 {
			header := fmt.Sprintf("# %s\n", d.File)
			if i > 0 {
				header = "\n" + header
			}
			if _, err := io.WriteString(r.w, header); err != nil {
				return err
			}
		}
		for _, inst := range d.Instructions {
			if inst.Trees == nil {
				if _, err := fmt.Fprintf(r.w, "%d %s %s\n", inst.StartLine, keyword.Render(inst.Keyword), oneLine(inst.Argument)); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(r.w, "%d %s\n", inst.StartLine, keyword.Render(inst.Keyword)); err != nil {
				return err
			}
			for _, tree := range inst.Trees {
				if _, err := fmt.Fprintf(r.w, "    %s\n", tree.Root); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// oneLine folds heredoc bodies so each instruction stays on one line.
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
