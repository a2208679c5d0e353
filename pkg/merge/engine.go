package merge

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/filesystem"
	"github.com/arthur-debert/syssetup/pkg/logging"
	"github.com/rs/zerolog"
)

// scratchSuffix marks scratch files created next to their destination
const scratchSuffix = ".syssetup-*"

// Engine merges a base tree, an optional overlay tree and a destination
// tree. An Engine holds no per-run state and can be reused.
type Engine struct {
	fs     filesystem.FS
	logger zerolog.Logger
	dryRun bool
}

// Option configures an Engine
type Option func(*Engine)

// WithDryRun makes the engine report its decisions without writing
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithLogger replaces the engine's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine operating on fsys
func New(fsys filesystem.FS, opts ...Option) *Engine {
	e := &Engine{
		fs:     fsys,
		logger: logging.GetLogger("merge"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge materializes baseDir into destDir, expanding include directives
// against overlayDir and then copying overlay-only entries. An empty
// overlayDir means there is no overlay.
//
// The returned report is non-nil even when err is not: it lists what was
// done before the failure.
func (e *Engine) Merge(ctx context.Context, baseDir, destDir, overlayDir string) (*Report, error) {
	done := logging.LogOperationStart(e.logger, "merge")
	defer done()

	r := &run{
		Engine:  e,
		report:  &Report{DryRun: e.dryRun},
		planned: make(map[string]Kind),
		links:   make(map[string]string),
	}
	err := r.mergeDir(ctx, baseDir, destDir, overlayDir, PassBase)
	return r.report, err
}

// run carries the state of a single Merge call
type run struct {
	*Engine
	report *Report

	// planned tracks destinations a dry run would have created, so later
	// steps see them as existing just like a real run would.
	planned map[string]Kind

	// links holds the targets of planned symlinks
	links map[string]string
}

func (r *run) mergeDir(ctx context.Context, baseDir, destDir, overlayDir string, pass Pass) error {
	entries, err := r.fs.ReadDir(baseDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read directory %s", baseDir).
			WithDetail("path", baseDir)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "merge cancelled")
		}

		name := entry.Name()
		overlay := ""
		if overlayDir != "" {
			overlay = filepath.Join(overlayDir, name)
		}
		if err := r.mergeEntry(ctx, filepath.Join(baseDir, name), filepath.Join(destDir, name), overlay, pass); err != nil {
			return err
		}
	}

	if overlayDir == "" {
		return nil
	}
	isDir, err := r.isDir(overlayDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat overlay %s", overlayDir).
			WithDetail("path", overlayDir)
	}
	if !isDir {
		r.logger.Trace().Str("overlay", overlayDir).Msg("No overlay directory, skipping overlay pass")
		return nil
	}
	return r.mergeDir(ctx, overlayDir, destDir, "", PassOverlay)
}

func (r *run) mergeEntry(ctx context.Context, src, dest, overlay string, pass Pass) error {
	node, err := LoadNode(r.fs, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", src).WithDetail("path", src)
	}

	entry := Entry{
		Pass:   pass,
		Source: src,
		Dest:   dest,
		Kind:   node.Kind.String(),
	}

	exists, destIsDir, err := r.destState(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", dest).WithDetail("path", dest)
	}
	if exists && !destIsDir {
		r.skip(entry, SkipExists)
		return nil
	}

	switch {
	case node.IsSymlink():
		if exists {
			r.skip(entry, SkipDirConflict)
			return nil
		}
		return r.copySymlink(node, entry)
	case node.IsDir():
		return r.mergeSubdir(ctx, node, overlay, exists, entry, pass)
	case node.IsRegular():
		if exists {
			r.skip(entry, SkipDirConflict)
			return nil
		}
		return r.copyOrMergeFile(node, overlay, entry)
	default:
		r.logger.Warn().Str("source", src).Str("mode", node.Mode.String()).Msg("Skipping unsupported file type")
		r.skip(entry, SkipUnsupported)
		return nil
	}
}

// destState reports whether dest exists (a dangling symlink counts) and
// whether it is, or points to, a directory.
func (r *run) destState(dest string) (exists, isDir bool, err error) {
	if _, ok := r.planned[dest]; ok {
		isDir, err = r.isDir(dest)
		return true, isDir, err
	}
	exists, err = filesystem.Exists(r.fs, dest)
	if err != nil || !exists {
		return false, false, err
	}
	isDir, err = r.isDir(dest)
	return true, isDir, err
}

// maxLinkHops bounds symlink resolution through planned links
const maxLinkHops = 40

// isDir follows symlinks, including those a dry run only planned. Absent
// paths are not directories.
func (r *run) isDir(path string) (bool, error) {
	for hops := 0; ; hops++ {
		kind, ok := r.planned[path]
		if !ok {
			break
		}
		if kind != KindSymlink {
			return kind == KindDir, nil
		}
		if hops == maxLinkHops {
			return false, &fs.PathError{Op: "stat", Path: path, Err: syscall.ELOOP}
		}
		target := r.links[path]
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (r *run) mergeSubdir(ctx context.Context, node *Node, overlay string, exists bool, entry Entry, pass Pass) error {
	if !exists {
		if !r.dryRun {
			if err := r.fs.Mkdir(entry.Dest, node.Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", entry.Dest).
					WithDetail("path", entry.Dest)
			}
			// Mkdir is subject to the umask
			if err := r.fs.Chmod(entry.Dest, node.Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to set mode on %s", entry.Dest).
					WithDetail("path", entry.Dest)
			}
		} else {
			r.planned[entry.Dest] = KindDir
		}
		entry.Created = true
	}

	entry.Outcome = OutcomeDirRecursed
	r.record(entry)
	return r.mergeDir(ctx, node.Path, entry.Dest, overlay, pass)
}

func (r *run) copySymlink(node *Node, entry Entry) error {
	target, err := node.LinkTarget(r.fs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read symlink %s", node.Path).
			WithDetail("path", node.Path)
	}
	if !r.dryRun {
		if err := r.fs.Symlink(target, entry.Dest); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s", entry.Dest).
				WithDetail("path", entry.Dest).
				WithDetail("target", target)
		}
	} else {
		r.planned[entry.Dest] = KindSymlink
		r.links[entry.Dest] = target
	}

	entry.Outcome = OutcomeSymlinkCopied
	r.record(entry)
	return nil
}

func (r *run) copyOrMergeFile(node *Node, overlay string, entry Entry) error {
	overlayFile, err := r.overlayFile(overlay)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat overlay %s", overlay).
			WithDetail("path", overlay)
	}
	if overlayFile {
		binary, err := IsBinary(r.fs, node.Path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to inspect %s", node.Path).
				WithDetail("path", node.Path)
		}
		if !binary {
			return r.mergeFile(node, overlay, entry)
		}
		r.logger.Debug().Str("source", node.Path).Msg("Binary file, ignoring overlay")
	}
	return r.copyFile(node, entry)
}

// overlayFile reports whether overlay names a regular file (symlinks
// followed). Anything else means there is nothing to include.
func (r *run) overlayFile(overlay string) (bool, error) {
	if overlay == "" {
		return false, nil
	}
	info, err := r.fs.Stat(overlay)
	if err != nil {
		if isAbsent(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (r *run) copyFile(node *Node, entry Entry) error {
	err := r.writeFile(node, entry.Dest, true, func(w io.Writer) error {
		src, err := r.fs.Open(node.Path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to open %s", node.Path).
				WithDetail("path", node.Path)
		}
		defer func() {
			_ = src.Close()
		}()
		if _, err := io.Copy(w, src); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to copy %s", node.Path).
				WithDetail("path", entry.Dest)
		}
		return nil
	})
	if err != nil {
		return err
	}

	entry.Outcome = OutcomeFileCopied
	r.record(entry)
	return nil
}

func (r *run) mergeFile(node *Node, overlay string, entry Entry) error {
	overlayNode := &Node{Path: overlay}
	overlayData, err := overlayNode.ReadBytes(r.fs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "failed to read overlay %s", overlay).
			WithDetail("path", overlay)
	}

	directives := 0
	err = r.writeFile(node, entry.Dest, false, func(w io.Writer) error {
		src, err := r.fs.Open(node.Path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "failed to open %s", node.Path).
				WithDetail("path", node.Path)
		}
		defer func() {
			_ = src.Close()
		}()
		directives, err = ExpandIncludes(src, overlayData, w)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to expand includes in %s", node.Path).
				WithDetail("path", entry.Dest)
		}
		return nil
	})
	if err != nil {
		return err
	}

	entry.Outcome = OutcomeFileMerged
	entry.Directives = directives
	r.record(entry)
	return nil
}

// writeFile produces dest through a scratch file in dest's directory that is
// renamed into place once complete and carries node's permission bits.
// The scratch file is removed if anything fails. In a dry run fill writes
// to io.Discard and nothing is created.
func (r *run) writeFile(node *Node, dest string, keepModTime bool, fill func(w io.Writer) error) error {
	if r.dryRun {
		if err := fill(io.Discard); err != nil {
			return err
		}
		r.planned[dest] = KindFile
		return nil
	}

	tmp, err := r.fs.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+scratchSuffix)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create scratch file for %s", dest).
			WithDetail("path", dest)
	}
	scratch := tmp.Name()
	placed := false
	defer func() {
		if !placed {
			_ = r.fs.Remove(scratch)
		}
	}()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", scratch).
			WithDetail("path", dest)
	}
	if err := r.fs.Chmod(scratch, node.Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set mode on %s", scratch).
			WithDetail("path", dest)
	}
	if keepModTime {
		if err := r.fs.Chtimes(scratch, node.ModTime, node.ModTime); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to set times on %s", scratch).
				WithDetail("path", dest)
		}
	}
	if err := r.fs.Rename(scratch, dest); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move %s into place", dest).
			WithDetail("path", dest)
	}
	placed = true
	return nil
}

func (r *run) skip(entry Entry, reason SkipReason) {
	entry.Outcome = OutcomeSkipped
	entry.Reason = reason
	r.record(entry)
}

func (r *run) record(entry Entry) {
	r.report.add(entry)
	r.logger.Debug().
		Str("pass", string(entry.Pass)).
		Str("source", entry.Source).
		Str("dest", entry.Dest).
		Str("outcome", entry.Outcome.String()).
		Str("reason", string(entry.Reason)).
		Bool("dryRun", r.dryRun).
		Msg("Entry processed")
}

// isAbsent treats a missing path, or a path whose parent is not a
// directory, as nonexistent.
func isAbsent(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, syscall.ENOTDIR)
}
