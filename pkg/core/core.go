package core

import (
	"context"
	"os"

	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/filesystem"
	"github.com/arthur-debert/syssetup/pkg/logging"
	"github.com/arthur-debert/syssetup/pkg/merge"
	"github.com/arthur-debert/syssetup/pkg/paths"
)

// SetupOptions contains options for a setup run
type SetupOptions struct {
	Mode paths.Mode

	// FilesDir overrides the files directory next to the executable
	FilesDir string

	// BaseLayer overrides the base layer name (main)
	BaseLayer string

	// DestDir overrides the mode's destination root
	DestDir string

	DryRun bool

	// FileSystem defaults to the OS filesystem
	FileSystem filesystem.FS
}

// Result is what a setup run produced
type Result struct {
	Layout *paths.Layout `json:"layout"`
	Report *merge.Report `json:"report"`
}

// Setup materializes the base and mode layers into the mode's destination.
// On a merge failure the partial result is returned along with the error.
func Setup(ctx context.Context, opts SetupOptions) (*Result, error) {
	logger := logging.GetLogger("core.setup")
	logger.Info().
		Str("mode", string(opts.Mode)).
		Str("filesDir", opts.FilesDir).
		Str("destDir", opts.DestDir).
		Bool("dryRun", opts.DryRun).
		Msg("Starting setup")

	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewOS()
	}

	layout, err := paths.ResolveLayout(paths.LayoutOptions{
		Mode:       opts.Mode,
		FilesDir:   opts.FilesDir,
		BaseLayer:  opts.BaseLayer,
		DestDir:    opts.DestDir,
		FileSystem: fs,
	})
	if err != nil {
		return nil, err
	}

	if err := checkDestination(fs, layout.DestDir); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("base", layout.BaseDir).
		Str("overlay", layout.OverlayDir).
		Str("dest", layout.DestDir).
		Msg("Layout resolved")

	engine := merge.New(fs, merge.WithDryRun(opts.DryRun))
	report, err := engine.Merge(ctx, layout.BaseDir, layout.DestDir, layout.OverlayDir)
	result := &Result{Layout: layout, Report: report}
	if err != nil {
		logger.Error().Err(err).Msg("Setup failed")
		return result, err
	}

	logger.Info().
		Int("entries", len(report.Entries)).
		Int("changed", len(report.Changed())).
		Msg("Setup completed")
	return result, nil
}

// checkDestination requires the destination root to be an existing
// directory. It is never created.
func checkDestination(fs filesystem.FS, dest string) error {
	info, err := fs.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrNotFound, "destination %s does not exist", dest).
				WithDetail("path", dest)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat destination %s", dest).
			WithDetail("path", dest)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "destination %s is not a directory", dest).
			WithDetail("path", dest)
	}
	return nil
}
