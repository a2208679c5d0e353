package merge

import (
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/syssetup/pkg/filesystem"
)

// Kind classifies a filesystem node without following symlinks
type Kind int

const (
	// KindOther covers sockets, FIFOs and devices
	KindOther Kind = iota
	KindFile
	KindDir
	KindSymlink
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// specialBits are the mode bits that chmod preserves besides permissions
const specialBits = fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// Node is a view of one filesystem entry, read with Lstat at the time of
// the call. Nothing is cached between engine steps.
type Node struct {
	Path    string
	Name    string
	Kind    Kind
	Mode    fs.FileMode
	ModTime time.Time
}

// LoadNode reads the node at path without following a final symlink
func LoadNode(fsys filesystem.FS, path string) (*Node, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return nil, err
	}
	return &Node{
		Path:    path,
		Name:    filepath.Base(path),
		Kind:    kindOf(info.Mode()),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
	}, nil
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// IsDir reports whether the node is a directory (never a symlink to one)
func (n *Node) IsDir() bool { return n.Kind == KindDir }

// IsSymlink reports whether the node is a symbolic link, dangling or not
func (n *Node) IsSymlink() bool { return n.Kind == KindSymlink }

// IsRegular reports whether the node is a regular file
func (n *Node) IsRegular() bool { return n.Kind == KindFile }

// Perm returns the bits to apply with chmod: permissions plus setuid,
// setgid and sticky.
func (n *Node) Perm() fs.FileMode {
	return n.Mode & (fs.ModePerm | specialBits)
}

// ReadBytes returns the full content of a regular file node
func (n *Node) ReadBytes(fsys filesystem.FS) ([]byte, error) {
	f, err := fsys.Open(n.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(f)
}

// LinkTarget returns the target of a symlink node
func (n *Node) LinkTarget(fsys filesystem.FS) (string, error) {
	return fsys.Readlink(n.Path)
}
