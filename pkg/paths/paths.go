package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/syssetup/pkg/errors"
	"github.com/arthur-debert/syssetup/pkg/filesystem"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for syssetup
	EnvConfigDir = "SYSSETUP_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for syssetup
	EnvStateDir = "SYSSETUP_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for syssetup-specific files
	AppDirName = "syssetup"

	// FilesDirName is the layout directory that sits next to the binary
	FilesDirName = "files"

	// DefaultBaseLayer is the name of the base layer under the files directory
	DefaultBaseLayer = "main"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "syssetup.log"

	// RootDestination is the destination root for ModeRoot
	RootDestination = "/"
)

// Mode selects the overlay layer and the destination root.
type Mode string

const (
	// ModeHome installs into the invoking user's home directory
	ModeHome Mode = "home"
	// ModeRoot installs into the filesystem root
	ModeRoot Mode = "root"
)

// ValidModes returns the accepted mode names in display order
func ValidModes() []string {
	return []string{string(ModeHome), string(ModeRoot)}
}

// ParseMode converts a mode name into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHome, ModeRoot:
		return Mode(s), nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid mode %q (expected one of: %s)",
		s, strings.Join(ValidModes(), ", ")).WithDetail("mode", s)
}

// Layout holds the three directories handed to the merge engine.
type Layout struct {
	Mode Mode

	// FilesDir is the directory holding every layer
	FilesDir string

	// BaseDir is the base layer, FilesDir/main by default
	BaseDir string

	// OverlayDir is the mode layer, FilesDir/<mode>. It may not exist.
	OverlayDir string

	// DestDir is where the merged tree is materialized
	DestDir string
}

// LayoutOptions controls ResolveLayout. Empty fields use defaults.
type LayoutOptions struct {
	Mode      Mode
	FilesDir  string
	BaseLayer string
	DestDir   string

	// FileSystem checks the base layer; defaults to the OS filesystem
	FileSystem filesystem.FS
}

// ResolveLayout resolves the base, overlay and destination directories for a run.
// The base layer must exist; the overlay layer is optional.
func ResolveLayout(opts LayoutOptions) (*Layout, error) {
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}

	filesDir := opts.FilesDir
	if filesDir == "" {
		dir, err := ExecutableFilesDir()
		if err != nil {
			return nil, err
		}
		filesDir = dir
	}
	filesDir, err := filepath.Abs(expandHome(filesDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLayoutResolve, "failed to get absolute path for files directory")
	}

	baseLayer := opts.BaseLayer
	if baseLayer == "" {
		baseLayer = DefaultBaseLayer
	}

	destDir := opts.DestDir
	if destDir == "" {
		destDir, err = DestinationRoot(opts.Mode)
		if err != nil {
			return nil, err
		}
	}
	destDir, err = filepath.Abs(expandHome(destDir))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLayoutResolve, "failed to get absolute path for destination")
	}

	layout := &Layout{
		Mode:       opts.Mode,
		FilesDir:   filesDir,
		BaseDir:    filepath.Join(filesDir, baseLayer),
		OverlayDir: filepath.Join(filesDir, string(opts.Mode)),
		DestDir:    destDir,
	}

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	info, err := fsys.Stat(layout.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "base layer %s does not exist", layout.BaseDir).
				WithDetail("path", layout.BaseDir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat base layer").
			WithDetail("path", layout.BaseDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "base layer %s is not a directory", layout.BaseDir).
			WithDetail("path", layout.BaseDir)
	}

	return layout, nil
}

// ExecutableFilesDir returns the files directory sitting next to the
// running binary, with symlinks to the binary resolved.
func ExecutableFilesDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrLayoutResolve, "failed to locate executable")
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrLayoutResolve, "failed to resolve executable path %s", exe)
	}
	return filepath.Join(filepath.Dir(resolved), FilesDirName), nil
}

// DestinationRoot returns the destination root for a mode
func DestinationRoot(mode Mode) (string, error) {
	switch mode {
	case ModeHome:
		return GetHomeDirectory()
	case ModeRoot:
		return RootDestination, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid mode %q", mode)
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// ConfigDir returns syssetup's configuration directory.
// SYSSETUP_CONFIG_DIR wins over XDG_CONFIG_HOME.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return expandHome(dir)
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// ConfigFilePath returns the path of the user configuration file
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// StateDir returns syssetup's state directory.
// SYSSETUP_STATE_DIR wins over XDG_STATE_HOME.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return expandHome(dir)
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// LogFilePath returns the path to the syssetup log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := GetHomeDirectory()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}
	return path
}
