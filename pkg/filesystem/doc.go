// Package filesystem provides the filesystem used by syssetup.
//
// All reads and mutations performed by the merge engine go through the FS
// interface. NewOS returns the real implementation; tests wrap it to
// inject failures.
package filesystem
