package merge

import (
	"bufio"
	"bytes"
	"io"
)

// Directive is the line prefix, matched case-insensitively, that is
// replaced by the overlay file's content
const Directive = "#!include"

var directive = []byte(Directive)

// IsDirective reports whether line starts with the include directive.
// Leading whitespace is not skipped.
func IsDirective(line []byte) bool {
	return len(line) >= len(directive) && bytes.EqualFold(line[:len(directive)], directive)
}

// ExpandIncludes copies src to dst line by line, replacing every directive
// line (including its newline) with the whole of overlay. Each occurrence
// embeds the overlay again. Other lines are copied unchanged, so a last
// line without a newline stays without one. It returns the number of
// directives expanded.
func ExpandIncludes(src io.Reader, overlay []byte, dst io.Writer) (int, error) {
	r := bufio.NewReader(src)
	expanded := 0
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			out := line
			if IsDirective(line) {
				out = overlay
				expanded++
			}
			if _, werr := dst.Write(out); werr != nil {
				return expanded, werr
			}
		}
		if err == io.EOF {
			return expanded, nil
		}
		if err != nil {
			return expanded, err
		}
	}
}
