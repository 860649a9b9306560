package extract

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/pinscan/internal/dockerfile"
	"github.com/tinovyatkin/pinscan/internal/shell"
)

// DefaultURLPrefix is the prefix a word must have to count as a URL.
const DefaultURLPrefix = "http"

// Options tunes URL extraction.
type Options struct {
	// Triggers are the words that start a download context.
	// Defaults to shell.DownloadCommands.
	Triggers []string
	// URLPrefix defaults to DefaultURLPrefix.
	URLPrefix string
}

func (o Options) withDefaults() Options {
	if len(o.Triggers) == 0 {
		o.Triggers = shell.DownloadCommands
	}
	if o.URLPrefix == "" {
		o.URLPrefix = DefaultURLPrefix
	}
	return o
}

// URLRef is a URL found after a download command.
type URLRef struct {
	URL string `json:"url"`
	// Trigger is the download command word that preceded the URL.
	Trigger string `json:"command"`
	// Line and EndLine are the 1-based Dockerfile lines of the RUN
	// instruction.
	Line    int `json:"line"`
	EndLine int `json:"endLine"`
	// Archive reports whether the URL names an archive file.
	Archive bool `json:"archive"`
}

// URLs returns the URL list of insts with the default options.
func URLs(insts []dockerfile.Instruction) []string {
	refs := FindURLs(insts, Options{})
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}
	return urls
}

// FindURLs scans every command of every RUN instruction for URLs that
// follow a download command within the same command. RUN arguments that
// are not valid shell are skipped.
func FindURLs(insts []dockerfile.Instruction, opts Options) []URLRef {
	opts = opts.withDefaults()

	var refs []URLRef
	for _, inst := range insts {
		if !inst.Is("RUN") {
			continue
		}

		trees, err := shell.Parse(inst.Argument)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"line":    inst.StartLine,
				"keyword": inst.Keyword,
			}).WithError(err).Debug("skipping URL extraction")
			continue
		}

		for _, cmd := range shell.Commands(trees) {
			refs = append(refs, scanCommand(cmd, inst, opts)...)
		}
	}
	return refs
}

// scanState is the per-command state of the URL scan.
type scanState int

const (
	seekingTrigger scanState = iota
	collecting
)

// scanCommand walks the parts of one command left to right. The first
// trigger word moves the scan to collecting; from then on every word with
// the URL prefix is reported. There is no way back to seekingTrigger.
func scanCommand(cmd *shell.Node, inst dockerfile.Instruction, opts Options) []URLRef {
	var (
		refs    []URLRef
		state   = seekingTrigger
		trigger string
	)

	for _, part := range cmd.Children {
		if part.Kind != shell.KindWord {
			continue
		}
		if state == seekingTrigger && shell.IsDownloadCommand(part.Text, opts.Triggers...) {
			state = collecting
			trigger = part.Text
		}
		if state == collecting && strings.HasPrefix(part.Text, opts.URLPrefix) {
			refs = append(refs, URLRef{
				URL:     part.Text,
				Trigger: trigger,
				Line:    inst.StartLine,
				EndLine: inst.EndLine,
				Archive: shell.IsArchiveURL(part.Text),
			})
		}
	}
	return refs
}
