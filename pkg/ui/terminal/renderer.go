// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/syssetup/pkg/core"
	"github.com/arthur-debert/syssetup/pkg/merge"
	"github.com/arthur-debert/syssetup/pkg/ui/display"
	"github.com/arthur-debert/syssetup/pkg/ui/styles"
)

// Renderer renders reports with lipgloss styles from the styles registry
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *core.Result:
		return r.render(display.FromResult(v))
	case *merge.Report:
		return r.render(display.FromReport(v, ""))
	case *display.DisplayResult:
		return r.render(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) render(dr *display.DisplayResult) error {
	var b strings.Builder

	b.WriteString(styles.Render("Header", dr.Header()))
	b.WriteString("\n")
	if dr.DryRun {
		b.WriteString(styles.Render("DryRunBanner", "Dry run: nothing was written"))
		b.WriteString("\n")
	}

	for _, e := range dr.Entries {
		b.WriteString("  ")
		b.WriteString(styles.Render(e.Outcome, e.Outcome))
		b.WriteString(" ")
		b.WriteString(styles.Render("Path", e.Path))
		if e.Detail != "" {
			b.WriteString(" ")
			b.WriteString(styles.Render("Detail", "("+e.Detail+")"))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.Render("Summary", dr.Summary()))
	b.WriteString("\n")

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %v\n", styles.Render("Error", "Error:"), err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.Render("Info", msg))
	return err
}
