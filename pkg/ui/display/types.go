// Package display converts setup results into the view shared by the
// text and terminal renderers.
package display

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/syssetup/pkg/core"
	"github.com/arthur-debert/syssetup/pkg/merge"
)

// DisplayResult is a setup result prepared for humans
type DisplayResult struct {
	Mode    string
	Dest    string
	DryRun  bool
	Entries []DisplayEntry
	Counts  []OutcomeCount
}

// DisplayEntry is one report line
type DisplayEntry struct {
	// Outcome is the outcome name, also the style name
	Outcome string

	// Path is relative to the destination root
	Path string

	// Detail is an optional parenthesized note
	Detail string
}

// OutcomeCount is one item of the summary line
type OutcomeCount struct {
	Outcome string
	Count   int
}

// FromResult builds the display view of a setup result
func FromResult(result *core.Result) *DisplayResult {
	dr := &DisplayResult{}
	if result == nil {
		return dr
	}
	if result.Layout != nil {
		dr.Mode = string(result.Layout.Mode)
		dr.Dest = result.Layout.DestDir
	}
	if result.Report != nil {
		fillFromReport(dr, result.Report)
	}
	return dr
}

// FromReport builds the display view of a bare merge report
func FromReport(report *merge.Report, dest string) *DisplayResult {
	dr := &DisplayResult{Dest: dest}
	if report != nil {
		fillFromReport(dr, report)
	}
	return dr
}

func fillFromReport(dr *DisplayResult, report *merge.Report) {
	dr.DryRun = report.DryRun
	for _, e := range report.Entries {
		dr.Entries = append(dr.Entries, DisplayEntry{
			Outcome: e.Outcome.String(),
			Path:    relativePath(dr.Dest, e.Dest),
			Detail:  detail(e),
		})
	}
	for _, o := range merge.Outcomes() {
		if n := report.Count(o); n > 0 {
			dr.Counts = append(dr.Counts, OutcomeCount{Outcome: o.String(), Count: n})
		}
	}
}

func detail(e merge.Entry) string {
	switch e.Outcome {
	case merge.OutcomeSkipped:
		return string(e.Reason)
	case merge.OutcomeDirRecursed:
		if e.Created {
			return "created"
		}
	case merge.OutcomeFileMerged:
		if e.Directives == 1 {
			return "1 include"
		}
		return fmt.Sprintf("%d includes", e.Directives)
	}
	if e.Pass == merge.PassOverlay {
		return "overlay only"
	}
	return ""
}

func relativePath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Summary returns "2 merged, 5 copied" style text, or "nothing to do"
func (dr *DisplayResult) Summary() string {
	if len(dr.Counts) == 0 {
		return "nothing to do"
	}
	parts := make([]string, 0, len(dr.Counts))
	for _, c := range dr.Counts {
		parts = append(parts, fmt.Sprintf("%d %s", c.Count, c.Outcome))
	}
	return strings.Join(parts, ", ")
}

// Header returns the first line of a report
func (dr *DisplayResult) Header() string {
	header := "syssetup"
	if dr.Mode != "" {
		header += " " + dr.Mode
	}
	if dr.Dest != "" {
		header += " → " + dr.Dest
	}
	return header
}
