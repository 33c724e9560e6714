// Package errors defines the error taxonomy shared across permsim.
// Fatal errors (parse, pattern, root resolution) abort a session before any
// mutation; per-path errors are recorded in the session report and never
// abort processing.
package errors

import "fmt"

// Fatal errors. A session must not mutate anything after one of these.
var (
	// ErrInvalidPermissionFormat indicates a permission string that is
	// neither valid octal nor valid symbolic notation.
	ErrInvalidPermissionFormat = fmt.Errorf("invalid permission format")

	// ErrInvalidPattern indicates an exclusion pattern that failed to compile.
	ErrInvalidPattern = fmt.Errorf("invalid exclusion pattern")

	// ErrRootNotFound indicates the target root path does not exist.
	ErrRootNotFound = fmt.Errorf("root path not found")

	// ErrNotADirectory indicates the target root path is not a directory.
	ErrNotADirectory = fmt.Errorf("root path is not a directory")
)

// Per-path errors. These are recorded and the session proceeds.
var (
	// ErrAccessDenied indicates a mode could not be read or set on a path.
	ErrAccessDenied = fmt.Errorf("access denied")

	// ErrPathVanished indicates a path disappeared between visit and mutation.
	ErrPathVanished = fmt.Errorf("path vanished")

	// ErrRestoreFailed indicates an original mode could not be reapplied.
	ErrRestoreFailed = fmt.Errorf("restore failed")
)

// Config errors.
var (
	ErrEmptyConfigPath = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse     = fmt.Errorf("failed to parse config")
	ErrConfigEncode    = fmt.Errorf("failed to encode config")
	ErrConfigDirectory = fmt.Errorf("failed to create config directory")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
