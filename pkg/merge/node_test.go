package merge

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/syssetup/pkg/filesystem"
	"github.com/arthur-debert/syssetup/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNode(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, testutil.Tree{
		"file":     testutil.FileMode("data\n", 0640),
		"sub":      testutil.DirMode(0750),
		"link":     testutil.Symlink("sub"),
		"dangling": testutil.Symlink("nowhere"),
	})
	fsys := filesystem.NewOS()

	tests := []struct {
		name    string
		kind    Kind
		dir     bool
		symlink bool
		regular bool
	}{
		{"file", KindFile, false, false, true},
		{"sub", KindDir, true, false, false},
		{"link", KindSymlink, false, true, false},
		{"dangling", KindSymlink, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := LoadNode(fsys, filepath.Join(dir, tt.name))
			require.NoError(t, err)
			assert.Equal(t, tt.name, node.Name)
			assert.Equal(t, tt.kind, node.Kind)
			assert.Equal(t, tt.dir, node.IsDir())
			assert.Equal(t, tt.symlink, node.IsSymlink())
			assert.Equal(t, tt.regular, node.IsRegular())
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := LoadNode(fsys, filepath.Join(dir, "missing"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("link target and content", func(t *testing.T) {
		link, err := LoadNode(fsys, filepath.Join(dir, "link"))
		require.NoError(t, err)
		target, err := link.LinkTarget(fsys)
		require.NoError(t, err)
		assert.Equal(t, "sub", target)

		file, err := LoadNode(fsys, filepath.Join(dir, "file"))
		require.NoError(t, err)
		data, err := file.ReadBytes(fsys)
		require.NoError(t, err)
		assert.Equal(t, "data\n", string(data))
		assert.Equal(t, fs.FileMode(0640), file.Perm())
	})
}

func TestNodePerm(t *testing.T) {
	node := &Node{Mode: fs.ModeDir | fs.ModeSetgid | fs.ModeSticky | 0755}
	assert.Equal(t, fs.ModeSetgid|fs.ModeSticky|0755, node.Perm())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "dir", KindDir.String())
	assert.Equal(t, "symlink", KindSymlink.String())
	assert.Equal(t, "other", KindOther.String())
}
