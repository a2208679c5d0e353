package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Node describes one entry in a Tree. Exactly one of Content, Link or Dir
// is meaningful; Mode defaults to 0644 for files and 0755 for directories.
type Node struct {
	Content string
	Link    string
	Dir     bool
	Mode    fs.FileMode
}

// File returns a regular file node
func File(content string) Node {
	return Node{Content: content}
}

// FileMode returns a regular file node with explicit permission bits
func FileMode(content string, mode fs.FileMode) Node {
	return Node{Content: content, Mode: mode}
}

// Symlink returns a symlink node pointing at target
func Symlink(target string) Node {
	return Node{Link: target}
}

// Dir returns a directory node
func Dir() Node {
	return Node{Dir: true}
}

// DirMode returns a directory node with explicit permission bits
func DirMode(mode fs.FileMode) Node {
	return Node{Dir: true, Mode: mode}
}

// Tree maps slash-separated relative paths to nodes. Parent directories
// are created implicitly with mode 0755 unless listed.
type Tree map[string]Node

// WriteTree materializes tree under root. Directories are created before
// their contents; explicit modes are applied last so read-only
// directories can still be populated.
func WriteTree(t *testing.T, root string, tree Tree) {
	t.Helper()

	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	var dirModes []string
	for _, name := range names {
		node := tree[name]
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

		switch {
		case node.Dir:
			require.NoError(t, os.MkdirAll(path, 0755))
			if node.Mode != 0 {
				dirModes = append(dirModes, name)
			}
		case node.Link != "":
			require.NoError(t, os.Symlink(node.Link, path))
		default:
			mode := node.Mode
			if mode == 0 {
				mode = 0644
			}
			require.NoError(t, os.WriteFile(path, []byte(node.Content), 0644))
			require.NoError(t, os.Chmod(path, mode))
		}
	}

	// deepest first
	for i := len(dirModes) - 1; i >= 0; i-- {
		name := dirModes[i]
		require.NoError(t, os.Chmod(filepath.Join(root, filepath.FromSlash(name)), tree[name].Mode))
	}
}

// ReadTree walks root without following symlinks and returns what it finds
// as a Tree with every mode filled in.
func ReadTree(t *testing.T, root string) Tree {
	t.Helper()

	tree := Tree{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			tree[name] = Node{Link: target, Mode: info.Mode().Perm()}
		case info.IsDir():
			tree[name] = Node{Dir: true, Mode: info.Mode().Perm()}
		default:
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			tree[name] = Node{Content: string(content), Mode: info.Mode().Perm()}
		}
		return nil
	})
	require.NoError(t, err)
	return tree
}

// Names returns the sorted relative paths of a tree
func (tr Tree) Names() []string {
	names := make([]string, 0, len(tr))
	for name := range tr {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
