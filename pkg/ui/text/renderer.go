// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/syssetup/pkg/core"
	"github.com/arthur-debert/syssetup/pkg/merge"
	"github.com/arthur-debert/syssetup/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *core.Result:
		return r.render(display.FromResult(v))
	case *merge.Report:
		return r.render(display.FromReport(v, ""))
	case *display.DisplayResult:
		return r.render(v)
	default:
		// For unknown types, just print them
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) render(dr *display.DisplayResult) error {
	header := dr.Header()
	if dr.DryRun {
		header += " (dry run)"
	}
	if _, err := fmt.Fprintln(r.output, header); err != nil {
		return err
	}

	for _, e := range dr.Entries {
		line := fmt.Sprintf("  %-8s %s", e.Outcome, e.Path)
		if e.Detail != "" {
			line += " (" + e.Detail + ")"
		}
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.output, dr.Summary())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
