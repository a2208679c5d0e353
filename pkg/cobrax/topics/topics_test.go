package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"help/dry-run.txt":        {Data: []byte("Information about dry-run mode")},
		"help/layout.md":          {Data: []byte("# Layout\n\nLayer details")},
		"help/config.txxt":        {Data: []byte("Configuration Guide")},
		"help/ignore.json":        {Data: []byte("This should be ignored")},
		"help/nested/include.txt": {Data: []byte("Include directives")},
	}
}

func TestTopicManagerScan(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(testFS())
		require.NoError(t, tm.Scan())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"dry-run", true, "Information about dry-run mode"},
			{"layout", true, "# Layout\n\nLayer details"},
			{"include", true, "Include directives"},
			{"config", false, ""},
			{"ignore", false, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
		assert.Equal(t, []string{"dry-run", "include", "layout"}, tm.ListTopics())
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(testFS(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.Scan())
		assert.Equal(t, []string{"config"}, tm.ListTopics())
	})

	t.Run("nil filesystem", func(t *testing.T) {
		tm := New(nil)
		require.NoError(t, tm.Scan())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopicFlagStyle(t *testing.T) {
	tm := New(fstest.MapFS{
		"option-dry-run.txt": {Data: []byte("dry run option")},
	})
	require.NoError(t, tm.Scan())

	for _, name := range []string{"--dry-run", "-dry-run", "dry-run", "option-dry-run"} {
		t.Run(name, func(t *testing.T) {
			topic, ok := tm.GetTopic(name)
			require.True(t, ok)
			assert.Equal(t, "dry run option", topic.Content)
		})
	}
}

type upperRenderer struct{}

func (upperRenderer) Render(content, format string) string {
	return strings.ToUpper(content) + "[" + format + "]"
}

func newRoot(t *testing.T, opts Options) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "app", Short: "Test app", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(&cobra.Command{Use: "version", Short: "Print version", Run: func(*cobra.Command, []string) {}})
	require.NoError(t, InitializeWithOptions(root, testFS(), opts))

	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	return root, buf
}

func TestHelpCommand(t *testing.T) {
	t.Run("topic", func(t *testing.T) {
		root, buf := newRoot(t, Options{Renderer: upperRenderer{}})
		root.SetArgs([]string{"help", "layout"})
		require.NoError(t, root.Execute())
		assert.Equal(t, "# LAYOUT\n\nLAYER DETAILS[.md]", buf.String())
	})

	t.Run("topic list", func(t *testing.T) {
		root, buf := newRoot(t, Options{})
		root.SetArgs([]string{"help", "topics"})
		require.NoError(t, root.Execute())
		out := buf.String()
		assert.Contains(t, out, "General topics:")
		assert.Contains(t, out, "  layout\n")
		assert.Contains(t, out, "Use 'app help <topic>'")
	})

	t.Run("command help", func(t *testing.T) {
		root, buf := newRoot(t, Options{})
		root.SetArgs([]string{"help", "version"})
		require.NoError(t, root.Execute())
		assert.Contains(t, buf.String(), "Print version")
	})

	t.Run("root help", func(t *testing.T) {
		root, buf := newRoot(t, Options{})
		root.SetArgs([]string{"help"})
		require.NoError(t, root.Execute())
		assert.Contains(t, buf.String(), "Test app")
	})
}

func TestPlainRenderer(t *testing.T) {
	r := &PlainRenderer{}
	assert.Equal(t, "# Title", r.Render("# Title", ".md"))
}

func TestGlamourRendererSkipsNonMarkdown(t *testing.T) {
	r := NewGlamourRenderer()
	assert.Equal(t, "plain *text*", r.Render("plain *text*", ".txt"))
}

func TestGlamourRendererMarkdown(t *testing.T) {
	r := &GlamourRenderer{Style: "notty", Width: 60}
	out := r.Render("# Layout\n\nSome **bold** text", ".md")
	assert.Contains(t, out, "Layout")
	assert.Contains(t, out, "bold")
}
