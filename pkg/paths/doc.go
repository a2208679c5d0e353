// Package paths provides centralized path handling for syssetup.
//
// It resolves the on-disk layout handed to the merge engine and the
// locations of syssetup's own files:
//
//   - Layers: <files>/main (base) and <files>/<mode> (overlay), where
//     <files> defaults to the "files" directory next to the binary
//   - Destination: the user's home directory for "home", / for "root"
//   - Config: $SYSSETUP_CONFIG_DIR or $XDG_CONFIG_HOME/syssetup
//   - State (log file): $SYSSETUP_STATE_DIR or $XDG_STATE_HOME/syssetup
//
// # Usage
//
//	layout, err := paths.ResolveLayout(paths.LayoutOptions{Mode: paths.ModeHome})
//	if err != nil {
//	    return err
//	}
//	// layout.BaseDir, layout.OverlayDir, layout.DestDir
package paths
