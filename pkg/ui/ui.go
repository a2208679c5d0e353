// Package ui writes setup results, messages and errors as a styled
// terminal report, plain text or JSON.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/syssetup/pkg/config"
	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/ui/json"
	"github.com/arthur-debert/syssetup/pkg/ui/terminal"
	"github.com/arthur-debert/syssetup/pkg/ui/text"
)

// Renderer writes command output in one format
type Renderer interface {
	// RenderResult renders a *core.Result, a *merge.Report or any other value
	RenderResult(result interface{}) error

	RenderError(err error) error

	RenderMessage(msg string) error
}

// NewRenderer returns the renderer for format. Auto is resolved with
// DetectFormat when output is a file and falls back to term otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatTerminal, output)
	case FormatTerminal:
		return terminal.New(output)
	case FormatText:
		return text.New(output)
	case FormatJSON:
		return json.New(output)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

// NewRendererForConfig returns the renderer named by the output section
// of the configuration. The returned Format is the one actually used,
// with auto resolved.
func NewRendererForConfig(cfg config.Output, output io.Writer) (Renderer, Format, error) {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, FormatAuto, err
	}
	if format == FormatAuto {
		format = FormatTerminal
		if file, ok := output.(*os.File); ok {
			format = DetectFormat(file)
		}
	}
	renderer, err := NewRenderer(format, output)
	if err != nil {
		return nil, format, err
	}
	return renderer, format, nil
}
