package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps config and log files inside the test's temp dirs
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("SYSSETUP_CONFIG_DIR", t.TempDir())
	t.Setenv("SYSSETUP_STATE_DIR", t.TempDir())
	t.Setenv("NO_COLOR", "1")
}

func filesDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "files")
	testutil.WriteTree(t, dir, testutil.Tree{
		"main/.bashrc":  testutil.File("base\n#!include\n"),
		"main/.profile": testutil.File("profile\n"),
		"home/.bashrc":  testutil.File("home\n"),
		"root/etc/motd": testutil.File("motd\n"),
	})
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSetupCommand(t *testing.T) {
	isolate(t)
	files := filesDir(t)

	t.Run("home", func(t *testing.T) {
		dest := t.TempDir()
		out, _, err := execute(t, "home", "--files-dir", files, "--dest", dest, "--format", "text")
		require.NoError(t, err)

		got := testutil.ReadTree(t, dest)
		assert.Equal(t, "base\nhome\n", got[".bashrc"].Content)
		assert.Equal(t, "profile\n", got[".profile"].Content)
		assert.Contains(t, out, "merged   .bashrc (1 include)")
		assert.Contains(t, out, "1 merged, 1 copied")
	})

	t.Run("root", func(t *testing.T) {
		dest := t.TempDir()
		_, _, err := execute(t, "root", "--files-dir", files, "--dest", dest, "--format", "text")
		require.NoError(t, err)

		got := testutil.ReadTree(t, dest)
		assert.Equal(t, "base\n#!include\n", got[".bashrc"].Content)
		assert.Equal(t, "motd\n", got["etc/motd"].Content)
	})

	t.Run("dry run", func(t *testing.T) {
		dest := t.TempDir()
		out, _, err := execute(t, "home", "--files-dir", files, "--dest", dest, "--dry-run", "--format", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "(dry run)")
		assert.Empty(t, testutil.ReadTree(t, dest))
	})

	t.Run("json report", func(t *testing.T) {
		dest := t.TempDir()
		out, _, err := execute(t, "home", "--files-dir", files, "--dest", dest, "--format", "json")
		require.NoError(t, err)

		var result struct {
			Report struct {
				Entries []map[string]interface{} `json:"entries"`
			} `json:"report"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Len(t, result.Report.Entries, 3)
	})

	t.Run("configuration from environment", func(t *testing.T) {
		dest := t.TempDir()
		t.Setenv("SYSSETUP_FILES_DIR", files)
		t.Setenv("SYSSETUP_MERGE_DRY_RUN", "true")
		t.Setenv("SYSSETUP_OUTPUT_FORMAT", "text")
		out, _, err := execute(t, "home", "--dest", dest)
		require.NoError(t, err)
		assert.Contains(t, out, "(dry run)")
		assert.Empty(t, testutil.ReadTree(t, dest))

		_, _, err = execute(t, "home", "--dest", dest, "--dry-run=false")
		require.NoError(t, err)
		assert.NotEmpty(t, testutil.ReadTree(t, dest), "flag wins over environment")
	})
}

func TestSetupCommandErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"missing base layer", []string{"home", "--files-dir", t.TempDir(), "--dest", t.TempDir()}, errors.ErrNotFound},
		{"missing destination", []string{"home", "--files-dir", filesDir(t), "--dest", filepath.Join(t.TempDir(), "nope")}, errors.ErrNotFound},
		{"bad format", []string{"home", "--files-dir", filesDir(t), "--dest", t.TempDir(), "--format", "xml"}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("invalid mode", func(t *testing.T) {
		_, _, err := execute(t, "work")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid argument "work"`)
	})

	t.Run("no mode", func(t *testing.T) {
		_, _, err := execute(t)
		require.Error(t, err)
	})
}

func TestSubcommands(t *testing.T) {
	isolate(t)

	t.Run("version", func(t *testing.T) {
		out, _, err := execute(t, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "syssetup version dev")
	})

	t.Run("completion", func(t *testing.T) {
		out, _, err := execute(t, "completion", "bash")
		require.NoError(t, err)
		assert.Contains(t, out, "syssetup")
	})

	t.Run("man", func(t *testing.T) {
		out, _, err := execute(t, "man")
		require.NoError(t, err)
		assert.Contains(t, out, "SYSSETUP")
	})

	t.Run("genconfig", func(t *testing.T) {
		t.Setenv("SYSSETUP_FILES_BASE", "common")
		out, _, err := execute(t, "genconfig")
		require.NoError(t, err)
		assert.Contains(t, out, "[files]")
		assert.Contains(t, out, "common")
		assert.Contains(t, out, "dry_run = false")
	})

	t.Run("genconfig template", func(t *testing.T) {
		out, _, err := execute(t, "genconfig", "--template")
		require.NoError(t, err)
		assert.Contains(t, out, `# base = "main"`)
	})
}

func TestHelpTopics(t *testing.T) {
	isolate(t)

	t.Run("topic list", func(t *testing.T) {
		out, _, err := execute(t, "help", "topics")
		require.NoError(t, err)
		for _, name := range []string{"layout", "include", "config"} {
			assert.Contains(t, out, "  "+name+"\n")
		}
		assert.Contains(t, out, "--dry-run")
	})

	t.Run("include topic", func(t *testing.T) {
		out, _, err := execute(t, "help", "include")
		require.NoError(t, err)
		assert.Contains(t, out, "directives")
	})

	t.Run("root help", func(t *testing.T) {
		out, _, err := execute(t, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "syssetup <home|root>")
		assert.Contains(t, out, "--files-dir")
	})
}
