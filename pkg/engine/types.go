//go:generate mockgen -destination=./mocks/engine.go -package=mocks . TreeWalker,Matcher

// Package engine drives one simulation session: it walks the target tree,
// applies the requested mode to every non-excluded path while recording the
// original mode in an undo log, holds the simulated state, and restores
// every touched path in reverse order of application.
package engine

import (
	"io/fs"
	"time"

	"github.com/glorpus-work/permsim/pkg/walker"
)

// State tracks the session through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateApplying
	StateApplied
	StateRestoring
	StateRestored
)

// String returns a label for logging.
func (s State) String() string {
	switch s {
	case StateApplying:
		return "applying"
	case StateApplied:
		return "applied"
	case StateRestoring:
		return "restoring"
	case StateRestored:
		return "restored"
	default:
		return "idle"
	}
}

// TreeWalker is the subset of the walker used by the engine.
type TreeWalker interface {
	Root() string
	Walk(fn walker.WalkFunc) error
}

// Matcher decides whether a session-relative path is excluded from mutation.
type Matcher interface {
	Matches(relPath string) bool
}

// PathEntry is one undo log record: a mutated path and the mode it carried
// before mutation. Entries are owned exclusively by the engine for the
// duration of the session.
type PathEntry struct {
	Path     string // absolute path
	Rel      string // session-relative path, for reporting
	Kind     walker.Kind
	Original fs.FileMode

	// done marks the entry as handled by the restore phase, either
	// successfully restored or recorded as a restore failure. Restoration is
	// idempotent: done entries are skipped.
	done bool
}

// Options control a session run.
type Options struct {
	// Recursive marks the session as covering the whole tree. Without it,
	// directory candidates are skipped rather than mutated: restricting a
	// directory the session does not descend into would deny access to
	// paths outside the undo log.
	Recursive bool

	// Restore reapplies every original mode when the run ends. Disabling it
	// leaves the tree in the simulated state (the caller owns cleanup).
	Restore bool

	// Hold keeps the simulated state for the given duration before
	// restoring. Zero means no hold.
	Hold time.Duration

	// HoldUntilCancel keeps the simulated state until the run context is
	// cancelled, typically by an interrupt signal. Takes precedence over
	// Hold.
	HoldUntilCancel bool
}
