// Package testutil provides utilities for testing syssetup components.
//
// Key components:
//   - Tree: declarative description of a directory tree, written to disk
//     with WriteTree and read back with ReadTree
//   - FaultFS: filesystem.FS wrapper that fails selected operations
//
// Tests run against real temporary directories; every test builds its own
// fixtures inline with t.TempDir().
package testutil
