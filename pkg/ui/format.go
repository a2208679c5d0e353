package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how a setup report is written
type Format int

const (
	// FormatAuto picks term or text from the output it writes to
	FormatAuto Format = iota
	// FormatTerminal is the styled report
	FormatTerminal
	// FormatText is the plain report, one line per entry
	FormatText
	// FormatJSON is the machine-readable result
	FormatJSON
)

// formatNames maps accepted names to formats; the first name of each
// format is its canonical one
var formatNames = map[string]Format{
	"":         FormatAuto,
	"auto":     FormatAuto,
	"term":     FormatTerminal,
	"terminal": FormatTerminal,
	"text":     FormatText,
	"plain":    FormatText,
	"json":     FormatJSON,
}

// FormatNames returns the canonical format names, as accepted by --format
func FormatNames() []string {
	return []string{"auto", "term", "text", "json"}
}

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat accepts any casing of a canonical name or its alias
// (terminal, plain). Empty means auto.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s (expected one of: %s)",
		s, strings.Join(FormatNames(), ", ")).
		WithDetail("format", s)
}

// DetectFormat resolves auto for a report written to output. Pipes and
// redirects get text, as does any terminal without color (NO_COLOR, dumb
// terminals).
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(output).EnvColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
