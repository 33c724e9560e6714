// Package fsutil provides utility functions and constants for file system
// permission handling.
package fsutil

import "io/fs"

// Permission mode constants.
// These follow standard Unix permission conventions and are used consistently
// throughout the application.
const (
	// ModeMask is the full owner/group/other permission mask.
	ModeMask fs.FileMode = 0o777

	// ModeNone removes all permissions (the default simulation target).
	ModeNone fs.FileMode = 0o000

	// Default file modes.
	FileModeDefault fs.FileMode = 0o644 // -rw-r--r--
	FileModeExec    fs.FileMode = 0o755 // -rwxr-xr-x

	// Default directory modes.
	DirModeDefault fs.FileMode = 0o755 // drwxr-xr-x
	DirModePrivate fs.FileMode = 0o700 // drwx------
)
