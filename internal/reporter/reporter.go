// Package reporter provides output formatters for audit results.
//
// The text format is the plain URL list: one URL per line on stdout, nothing
// else. JSON and SARIF carry file, line and trigger details.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tinovyatkin/pinscan/internal/audit"
)

// Options configures a reporter.
type Options struct {
	// Format is text, json or sarif.
	Format string
	// Profile is the color profile for text output. termenv.Ascii disables
	// styling.
	Profile termenv.Profile
	// ShowSource adds a source snippet after each URL in text output.
	ShowSource bool
	// ToolVersion is recorded in SARIF output.
	ToolVersion string
}

// Reporter writes results to w in one format.
type Reporter struct {
	w        io.Writer
	opts     Options
	renderer *lipgloss.Renderer
}

// New returns a reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.Format == "" {
		opts.Format = "text"
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(opts.Profile))
	renderer.SetColorProfile(opts.Profile)
	return &Reporter{
		w:        w,
		opts:     opts,
		renderer: renderer,
	}
}

// URLs writes the URL findings of every result.
func (r *Reporter) URLs(results []*audit.Result) error {
	switch r.opts.Format {
	case "json":
		return writeJSON(r.w, results)
	case "sarif":
		return writeSARIF(r.w, results, r.opts.ToolVersion)
	case "text":
		return r.urlText(results)
	default:
		return fmt.Errorf("unsupported format %q", r.opts.Format)
	}
}

func (r *Reporter) urlText(results []*audit.Result) error {
	url := r.renderer.NewStyle().Foreground(lipgloss.Color("6"))
	archive := url.Bold(true)

	for _, res := range results {
		for _, ref := range res.URLs {
			style := url
			if ref.Archive {
				style = archive
			}
			if _, err := fmt.Fprintln(r.w, style.Render(ref.URL)); err != nil {
				return err
			}
			if r.opts.ShowSource {
				if err := printSource(r.w, r.renderer, res.File, ref.Line, ref.EndLine, res.Source); err != nil {
					return err
				}
				if _, err := fmt.Fprintln(r.w); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Commands writes a command invocation list.
func (r *Reporter) Commands(file string, commands []string) error {
	switch r.opts.Format {
	case "json", "sarif":
		if commands == nil {
			commands = []string{}
		}
		return writeJSON(r.w, struct {
			File     string   `json:"file"`
			Commands []string `json:"commands"`
		}{file, commands})
	default:
		for _, c := range commands {
			if _, err := fmt.Fprintln(r.w, c); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
