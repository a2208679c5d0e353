package merge

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDirective(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"#!include\n", true},
		{"#!Include\n", true},
		{"#!INCLUDE", true},
		{"#!include whatever follows\n", true},
		{"#!includes\n", true},
		{" #!include\n", false},
		{"# !include\n", false},
		{"//!include\n", false},
		{"#!inclu\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.line), func(t *testing.T) {
			assert.Equal(t, tt.want, IsDirective([]byte(tt.line)))
		})
	}
}

func TestExpandIncludes(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		overlay    string
		want       string
		directives int
	}{
		{
			name:       "directive replaced by overlay",
			source:     "a\n#!Include\nb\n",
			overlay:    "X\nY\n",
			want:       "a\nX\nY\nb\n",
			directives: 1,
		},
		{
			name:       "no directive",
			source:     "a\nb\n",
			overlay:    "X\n",
			want:       "a\nb\n",
			directives: 0,
		},
		{
			name:       "each directive embeds the whole overlay",
			source:     "#!include\nmid\n#!INCLUDE\n",
			overlay:    "X\n",
			want:       "X\nmid\nX\n",
			directives: 2,
		},
		{
			name:       "directive arguments are discarded",
			source:     "#!include custom.sh <10,20>\n",
			overlay:    "X\n",
			want:       "X\n",
			directives: 1,
		},
		{
			name:       "last line without newline is kept",
			source:     "a\nb",
			overlay:    "X\n",
			want:       "a\nb",
			directives: 0,
		},
		{
			name:       "directive on last line without newline",
			source:     "a\n#!include",
			overlay:    "X\nY",
			want:       "a\nX\nY",
			directives: 1,
		},
		{
			name:       "overlay without trailing newline joins next line",
			source:     "#!include\nb\n",
			overlay:    "X",
			want:       "Xb\n",
			directives: 1,
		},
		{
			name:       "crlf lines pass through",
			source:     "a\r\n#!include\r\nb\r\n",
			overlay:    "X\r\n",
			want:       "a\r\nX\r\nb\r\n",
			directives: 1,
		},
		{
			name:       "empty overlay removes the directive line",
			source:     "a\n#!include\nb\n",
			overlay:    "",
			want:       "a\nb\n",
			directives: 1,
		},
		{
			name:       "empty source",
			source:     "",
			overlay:    "X\n",
			want:       "",
			directives: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			n, err := ExpandIncludes(strings.NewReader(tt.source), []byte(tt.overlay), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, tt.directives, n)
		})
	}
}

func TestExpandIncludesLongLines(t *testing.T) {
	long := strings.Repeat("x", 256*1024)
	var out bytes.Buffer
	n, err := ExpandIncludes(strings.NewReader(long+"\n#!include\n"), []byte("X\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, long+"\nX\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestExpandIncludesWriteError(t *testing.T) {
	_, err := ExpandIncludes(strings.NewReader("a\n"), nil, failingWriter{})
	assert.EqualError(t, err, "disk full")
}
