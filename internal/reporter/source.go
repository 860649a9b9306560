package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// printSource renders the lines [start, end] of source with context, in the
// style of `docker buildx build --check`:
//
//	Dockerfile:5
//	--------------------
//	   3 |     ENV BASE=https://example.com
//	   4 |     RUN apk add curl
//	   5 | >>> RUN curl -fsSLO $BASE/lib.tgz
//	   6 |     COPY . /src
//	--------------------
//
// Lines are 1-based. Adapted from github.com/moby/buildkit/solver/errdefs.Source.Print.
func printSource(w io.Writer, r *lipgloss.Renderer, file string, start, end int, source []byte) error {
	lines := strings.Split(strings.TrimSuffix(string(source), "\n"), "\n")
	if end < start {
		end = start
	}
	if start > len(lines) || start < 1 {
		return nil
	}
	if end > len(lines) {
		end = len(lines)
	}

	pad := 2
	if end == start {
		pad = 4
	}

	marked := r.NewStyle().Bold(true)
	header := r.NewStyle().Faint(true)

	first, last := start, end
	p := 0
	for p < pad {
		if first > 1 {
			first--
			p++
		}
		if last < len(lines) {
			last++
			p++
		}
		p++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d\n", file, start)
	fmt.Fprintln(&sb, header.Render("--------------------"))
	for i := first; i <= last; i++ {
		if i >= start && i <= end {
			fmt.Fprintf(&sb, " %3d | %s %s\n", i, marked.Render(">>>"), marked.Render(lines[i-1]))
			continue
		}
		fmt.Fprintf(&sb, " %3d |     %s\n", i, lines[i-1])
	}
	fmt.Fprintln(&sb, header.Render("--------------------"))

	_, err := io.WriteString(w, sb.String())
	return err
}
