// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"svnmigrate/internal/runner"
)

// maxDetailWidth caps a failure message in the summary; the log file keeps
// the full text.
const maxDetailWidth = 100

type summaryStyles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	path  lipgloss.Style
	muted lipgloss.Style
}

func newSummaryStyles(r *lipgloss.Renderer, flavor catppuccin.Flavor) summaryStyles {
	return summaryStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color(flavor.Mauve().Hex)),
		ok:    r.NewStyle().Foreground(lipgloss.Color(flavor.Green().Hex)),
		fail:  r.NewStyle().Foreground(lipgloss.Color(flavor.Red().Hex)),
		path:  r.NewStyle().Foreground(lipgloss.Color(flavor.Text().Hex)),
		muted: r.NewStyle().Foreground(lipgloss.Color(flavor.Overlay0().Hex)),
	}
}

// WriteSummary renders the run summary to w, colored when w is a terminal.
func WriteSummary(w io.Writer, title string, s runner.Summary, elapsed time.Duration) error {
	st := newSummaryStyles(lipgloss.NewRenderer(w), catppuccin.Mocha)

	var b strings.Builder
	b.WriteString(st.title.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d project(s): %s, %s\n",
		s.Total,
		st.ok.Render(fmt.Sprintf("%d succeeded", s.Succeeded)),
		failedStyle(st, s.Failed).Render(fmt.Sprintf("%d failed", s.Failed)),
	)

	if len(s.Failures) > 0 {
		width := 0
		for _, f := range s.Failures {
			width = max(width, ansi.StringWidth(f.Project.FullPath()))
		}
		b.WriteString("\n")
		b.WriteString(st.fail.Render("Failures"))
		b.WriteString("\n")
		for _, f := range s.Failures {
			path := f.Project.FullPath()
			pad := strings.Repeat(" ", width-ansi.StringWidth(path))
			detail := ansi.Truncate(f.ErrorDetail(), maxDetailWidth, "…")
			fmt.Fprintf(&b, "  %s%s  %s\n", st.path.Render(path), pad, st.muted.Render(detail))
		}
	}

	b.WriteString("\n")
	b.WriteString(FormatElapsed(elapsed))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func failedStyle(st summaryStyles, failed int) lipgloss.Style {
	if failed == 0 {
		return st.muted
	}
	return st.fail
}

// FormatElapsed renders a run duration the way the migration scripts always
// reported it.
func FormatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("Done in %d hours, %d minutes and %d seconds.", total/3600, (total/60)%60, total%60)
}
