package testutil

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/syssetup/pkg/filesystem"
)

// Op names an FS method that FaultFS can fail
type Op string

const (
	OpStat       Op = "stat"
	OpLstat      Op = "lstat"
	OpReadDir    Op = "readdir"
	OpOpen       Op = "open"
	OpReadlink   Op = "readlink"
	OpSymlink    Op = "symlink"
	OpMkdir      Op = "mkdir"
	OpChmod      Op = "chmod"
	OpChtimes    Op = "chtimes"
	OpRename     Op = "rename"
	OpRemove     Op = "remove"
	OpCreateTemp Op = "createtemp"
)

type fault struct {
	op      Op
	pattern string
	err     error
}

// FaultFS wraps a filesystem.FS and returns a configured error when an
// operation's path matches a glob pattern (filepath.Match against the
// base name). Every call is recorded.
type FaultFS struct {
	filesystem.FS

	mu     sync.Mutex
	faults []fault
	calls  []Call
}

// Call is one recorded FS operation
type Call struct {
	Op   Op
	Path string
}

// NewFaultFS wraps base
func NewFaultFS(base filesystem.FS) *FaultFS {
	return &FaultFS{FS: base}
}

// FailOn makes op fail with err for paths whose base name matches pattern
func (f *FaultFS) FailOn(op Op, pattern string, err error) *FaultFS {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faults = append(f.faults, fault{op: op, pattern: pattern, err: err})
	return f
}

// Calls returns the operations seen so far
func (f *FaultFS) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the paths passed to op
func (f *FaultFS) CallsTo(op Op) []string {
	var paths []string
	for _, c := range f.Calls() {
		if c.Op == op {
			paths = append(paths, c.Path)
		}
	}
	return paths
}

func (f *FaultFS) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: op, Path: path})
	for _, flt := range f.faults {
		if flt.op != op {
			continue
		}
		if ok, _ := filepath.Match(flt.pattern, filepath.Base(path)); ok {
			return &fs.PathError{Op: string(op), Path: path, Err: flt.err}
		}
	}
	return nil
}

func (f *FaultFS) Stat(name string) (fs.FileInfo, error) {
	if err := f.check(OpStat, name); err != nil {
		return nil, err
	}
	return f.FS.Stat(name)
}

func (f *FaultFS) Lstat(name string) (fs.FileInfo, error) {
	if err := f.check(OpLstat, name); err != nil {
		return nil, err
	}
	return f.FS.Lstat(name)
}

func (f *FaultFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check(OpReadDir, name); err != nil {
		return nil, err
	}
	return f.FS.ReadDir(name)
}

func (f *FaultFS) Open(name string) (filesystem.File, error) {
	if err := f.check(OpOpen, name); err != nil {
		return nil, err
	}
	return f.FS.Open(name)
}

func (f *FaultFS) Readlink(name string) (string, error) {
	if err := f.check(OpReadlink, name); err != nil {
		return "", err
	}
	return f.FS.Readlink(name)
}

func (f *FaultFS) Symlink(oldname, newname string) error {
	if err := f.check(OpSymlink, newname); err != nil {
		return err
	}
	return f.FS.Symlink(oldname, newname)
}

func (f *FaultFS) Mkdir(name string, perm fs.FileMode) error {
	if err := f.check(OpMkdir, name); err != nil {
		return err
	}
	return f.FS.Mkdir(name, perm)
}

func (f *FaultFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check(OpChmod, name); err != nil {
		return err
	}
	return f.FS.Chmod(name, mode)
}

func (f *FaultFS) Chtimes(name string, atime, mtime time.Time) error {
	if err := f.check(OpChtimes, name); err != nil {
		return err
	}
	return f.FS.Chtimes(name, atime, mtime)
}

// Rename is matched against the destination path
func (f *FaultFS) Rename(oldpath, newpath string) error {
	if err := f.check(OpRename, newpath); err != nil {
		return err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultFS) Remove(name string) error {
	if err := f.check(OpRemove, name); err != nil {
		return err
	}
	return f.FS.Remove(name)
}

// CreateTemp is matched against the pattern argument
func (f *FaultFS) CreateTemp(dir, pattern string) (filesystem.File, error) {
	if err := f.check(OpCreateTemp, filepath.Join(dir, pattern)); err != nil {
		return nil, err
	}
	return f.FS.CreateTemp(dir, pattern)
}
