package reporter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/tinovyatkin/pinscan/internal/audit"
)

const (
	toolName = "pinscan"
	toolURI  = "https://github.com/tinovyatkin/pinscan"

	// RuleUnpinnedDownload is the SARIF rule for every URL finding.
	RuleUnpinnedDownload = "unpinned-download"
)

func writeSARIF(w io.Writer, results []*audit.Result, version string) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if version != "" {
		run.Tool.Driver.Version = &version
	}
	run.AddRule(RuleUnpinnedDownload).
		WithDescription("A RUN instruction downloads a remote resource whose content is not pinned.").
		WithHelpURI(toolURI + "#unpinned-download")

	for _, res := range results {
		uri := filepath.ToSlash(res.File)
		for _, ref := range res.URLs {
			msg := fmt.Sprintf("%s downloads %s", ref.Trigger, ref.URL)
			if ref.Archive {
				msg += " (archive)"
			}

			region := sarif.NewRegion().WithStartLine(ref.Line)
			if ref.EndLine > ref.Line {
				region = region.WithEndLine(ref.EndLine)
			}

			run.CreateResultForRule(RuleUnpinnedDownload).
				WithLevel("warning").
				WithMessage(sarif.NewTextMessage(msg)).
				AddLocation(sarif.NewLocationWithPhysicalLocation(
					sarif.NewPhysicalLocation().
						WithArtifactLocation(sarif.NewSimpleArtifactLocation(uri)).
						WithRegion(region),
				))
		}
	}

	report.AddRun(run)
	return report.PrettyWrite(w)
}
