// Package config handles configuration management for syssetup.
// Settings are layered from the embedded defaults, the user's TOML file
// and SYSSETUP_* environment variables; command-line flags are applied
// on top by the caller.
package config
