package engine

import (
	"context"
	stderrors "errors"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/glorpus-work/permsim/internal/logger"
	"github.com/glorpus-work/permsim/pkg/errors"
	"github.com/glorpus-work/permsim/pkg/fsutil"
	"github.com/glorpus-work/permsim/pkg/permspec"
	"github.com/glorpus-work/permsim/pkg/report"
	"github.com/glorpus-work/permsim/pkg/walker"
)

// Engine is the mutation engine for one session. It is not reusable: a new
// engine is created per invocation.
type Engine struct {
	walker  TreeWalker
	matcher Matcher
	spec    permspec.Spec
	opts    Options

	mu     sync.Mutex
	state  State
	undo   []*PathEntry
	report *report.Report
}

// New creates an engine for one session. The walker must already be
// validated; the matcher may be nil to exclude nothing.
func New(w TreeWalker, m Matcher, spec permspec.Spec, opts Options) *Engine {
	return &Engine{
		walker:  w,
		matcher: m,
		spec:    spec,
		opts:    opts,
		state:   StateIdle,
		report:  report.New(),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// UndoLog returns the recorded entries in application order.
func (e *Engine) UndoLog() []*PathEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*PathEntry, len(e.undo))
	copy(out, e.undo)
	return out
}

// Run executes the session: apply, hold, restore. Restoration is attempted
// on every exit path when opts.Restore is set, including cancellation
// partway through the apply phase; whatever the undo log holds at that
// instant is reverted, in reverse order of application. Per-path failures
// never abort the run; they are recorded in the returned report.
func (e *Engine) Run(ctx context.Context) (rep *report.Report, err error) {
	e.setState(StateApplying)

	defer func() {
		if e.opts.Restore {
			if rerr := e.Restore(); rerr != nil {
				err = multierror.Append(err, rerr).ErrorOrNil()
			}
		}
		rep = e.report
	}()

	if aerr := e.apply(ctx); aerr != nil && !stderrors.Is(aerr, context.Canceled) {
		err = aerr
	}
	e.setState(StateApplied)

	e.hold(ctx)
	return e.report, err
}

// apply walks the tree and mutates every non-excluded candidate. Files are
// mutated as they are visited; directories are queued and mutated
// deepest-first after the walk, so that restricting a directory can neither
// stop the walk from descending into it nor block the chmod of anything
// beneath it. The resulting undo log order guarantees that its reversal
// restores parents before children.
func (e *Engine) apply(ctx context.Context) error {
	var dirs []walker.Candidate

	walkErr := e.walker.Walk(func(c walker.Candidate, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			e.recordApplyFailure(c, err)
			return nil
		}
		if e.excluded(c) {
			return nil
		}

		switch c.Kind {
		case walker.KindSymlink:
			// chmod would follow the link target; never mutate through one.
			logger.Debug("skipping symlink", logger.Fields{"path": c.Rel})
			e.report.Add(report.Outcome{Path: c.Rel, Kind: c.Kind.String(), Status: report.StatusSkipped})
		case walker.KindDir:
			if !e.opts.Recursive {
				logger.Debug("skipping directory in non-recursive session", logger.Fields{"path": c.Rel})
				e.report.Add(report.Outcome{Path: c.Rel, Kind: c.Kind.String(), Status: report.StatusSkipped})
				return nil
			}
			dirs = append(dirs, c)
		default:
			e.applyCandidate(c)
		}
		return nil
	})

	if walkErr != nil {
		// Cancelled mid-walk: go straight to restore with the log as is.
		return walkErr
	}

	// Deepest directories first: the queue is in parent-first visit order,
	// and every ancestor still carries its original, traversable mode when
	// a child is chmodded.
	for i := len(dirs) - 1; i >= 0; i-- {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		e.applyCandidate(dirs[i])
	}
	return nil
}

// applyCandidate records the original mode in the undo log and sets the
// target mode. Failures are recorded and the session proceeds.
func (e *Engine) applyCandidate(c walker.Candidate) {
	entry := &PathEntry{Path: c.Path, Rel: c.Rel, Kind: c.Kind, Original: c.Mode}
	e.appendUndo(entry)

	if err := os.Chmod(c.Path, e.spec.Mode()); err != nil {
		// Nothing was mutated, so there is nothing to undo for this entry.
		entry.done = true
		e.recordApplyFailure(c, err)
		return
	}

	logger.Debug("applied mode", logger.Fields{
		"path": c.Rel,
		"from": fsutil.FormatOctal(c.Mode),
		"to":   e.spec.Octal(),
	})
	e.report.Add(report.Outcome{
		Path:     c.Rel,
		Kind:     c.Kind.String(),
		Status:   report.StatusApplied,
		Original: c.Mode,
		Target:   e.spec.Mode(),
	})
}

// Restore reapplies the original mode of every undo log entry in reverse
// order of application. It is idempotent: entries already handled are
// skipped, and a second call on a restored session is a no-op. Per-path
// failures are recorded as restore failures and aggregated into the
// returned error; the session still reaches StateRestored.
func (e *Engine) Restore() error {
	e.mu.Lock()
	if e.state == StateRestored {
		e.mu.Unlock()
		return nil
	}
	e.state = StateRestoring
	entries := make([]*PathEntry, len(e.undo))
	copy(entries, e.undo)
	e.mu.Unlock()

	var result *multierror.Error
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.done {
			continue
		}
		entry.done = true

		if err := os.Chmod(entry.Path, entry.Original); err != nil {
			rerr := errors.Wrapf(errors.ErrRestoreFailed, "%s: %v", entry.Rel, err)
			logger.Warn("restore failed", logger.Fields{"path": entry.Rel, "error": err.Error()})
			e.report.Add(report.Outcome{
				Path:     entry.Rel,
				Kind:     entry.Kind.String(),
				Status:   report.StatusRestoreFailed,
				Original: entry.Original,
				Err:      rerr,
			})
			result = multierror.Append(result, rerr)
			continue
		}

		logger.Debug("restored mode", logger.Fields{
			"path": entry.Rel,
			"mode": fsutil.FormatOctal(entry.Original),
		})
		e.report.Add(report.Outcome{
			Path:     entry.Rel,
			Kind:     entry.Kind.String(),
			Status:   report.StatusRestored,
			Original: entry.Original,
		})
	}

	e.setState(StateRestored)
	return result.ErrorOrNil()
}

// hold keeps the simulated state in place per the session options. It
// returns as soon as the context is cancelled.
func (e *Engine) hold(ctx context.Context) {
	if !e.opts.Restore {
		return
	}
	switch {
	case e.opts.HoldUntilCancel:
		logger.Info("holding simulated state, interrupt to restore")
		<-ctx.Done()
	case e.opts.Hold > 0:
		logger.Info("holding simulated state", logger.Fields{"duration": e.opts.Hold.String()})
		timer := time.NewTimer(e.opts.Hold)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
}

func (e *Engine) excluded(c walker.Candidate) bool {
	if e.matcher == nil || !e.matcher.Matches(c.Rel) {
		return false
	}
	logger.Debug("excluded", logger.Fields{"path": c.Rel})
	e.report.Add(report.Outcome{Path: c.Rel, Kind: c.Kind.String(), Status: report.StatusExcluded})
	return true
}

func (e *Engine) recordApplyFailure(c walker.Candidate, cause error) {
	reason := errors.ErrAccessDenied
	if fsutil.IsVanished(cause) {
		reason = errors.ErrPathVanished
	}
	err := errors.Wrapf(reason, "%s: %v", c.Rel, cause)
	logger.Warn("apply failed", logger.Fields{"path": c.Rel, "error": cause.Error()})
	e.report.Add(report.Outcome{
		Path:   c.Rel,
		Kind:   c.Kind.String(),
		Status: report.StatusFailed,
		Err:    err,
	})
}

func (e *Engine) appendUndo(entry *PathEntry) {
	e.mu.Lock()
	e.undo = append(e.undo, entry)
	e.mu.Unlock()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
