// Package report aggregates per-path outcomes of a simulation session into
// a structured summary for the CLI layer. It is purely observational.
package report

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/fatih/color"

	"github.com/glorpus-work/permsim/pkg/fsutil"
)

// Status classifies the outcome of one operation on one path.
type Status string

const (
	// StatusApplied: the target mode was set on the path.
	StatusApplied Status = "applied"
	// StatusExcluded: the path matched the exclusion pattern.
	StatusExcluded Status = "excluded"
	// StatusSkipped: the path was left alone for a non-error reason
	// (symlinks are not chmodded).
	StatusSkipped Status = "skipped"
	// StatusFailed: the mode could not be read or set during apply.
	StatusFailed Status = "failed"
	// StatusRestored: the original mode was reapplied.
	StatusRestored Status = "restored"
	// StatusRestoreFailed: the original mode could not be reapplied.
	StatusRestoreFailed Status = "restore-failed"
)

// Outcome records one operation on one path.
type Outcome struct {
	Path     string // session-relative path
	Kind     string // file|dir|symlink
	Status   Status
	Original fs.FileMode
	Target   fs.FileMode
	Err      error
}

// Report is the ordered collection of outcomes for one session.
type Report struct {
	outcomes []Outcome
	counts   map[Status]int
}

// New returns an empty report.
func New() *Report {
	return &Report{counts: make(map[Status]int)}
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.outcomes = append(r.outcomes, o)
	r.counts[o.Status]++
}

// Outcomes returns the recorded outcomes in order.
func (r *Report) Outcomes() []Outcome {
	return r.outcomes
}

// Count returns how many outcomes carry the given status.
func (r *Report) Count(status Status) int {
	return r.counts[status]
}

// HasFailures reports whether any per-path operation failed, during apply or
// restore. The CLI maps this to a nonzero exit code.
func (r *Report) HasFailures() bool {
	return r.counts[StatusFailed] > 0 || r.counts[StatusRestoreFailed] > 0
}

// Summary renders the aggregate counters on one line.
func (r *Report) Summary() string {
	return fmt.Sprintf("applied=%d excluded=%d skipped=%d failed=%d restored=%d restore-failed=%d",
		r.counts[StatusApplied], r.counts[StatusExcluded], r.counts[StatusSkipped],
		r.counts[StatusFailed], r.counts[StatusRestored], r.counts[StatusRestoreFailed])
}

var statusColors = map[Status]*color.Color{
	StatusApplied:       color.New(color.FgGreen),
	StatusExcluded:      color.New(color.FgYellow),
	StatusSkipped:       color.New(color.FgYellow),
	StatusFailed:        color.New(color.FgRed),
	StatusRestored:      color.New(color.FgCyan),
	StatusRestoreFailed: color.New(color.FgRed, color.Bold),
}

// Render writes the report to w. In verbose mode every outcome is printed;
// otherwise only the summary line. Color output honors the package-level
// color.NoColor switch set by the CLI.
func (r *Report) Render(w io.Writer, verbose bool) {
	if verbose {
		for _, o := range r.outcomes {
			fmt.Fprintln(w, formatOutcome(o))
		}
	}
	fmt.Fprintln(w, r.Summary())
}

func formatOutcome(o Outcome) string {
	label := string(o.Status)
	if c, ok := statusColors[o.Status]; ok {
		label = c.Sprint(label)
	}
	line := fmt.Sprintf("%-16s %s", label, o.Path)
	switch o.Status {
	case StatusApplied:
		line += fmt.Sprintf(" (%s -> %s)", fsutil.FormatOctal(o.Original), fsutil.FormatOctal(o.Target))
	case StatusRestored:
		line += fmt.Sprintf(" (%s)", fsutil.FormatOctal(o.Original))
	case StatusFailed, StatusRestoreFailed:
		if o.Err != nil {
			line += fmt.Sprintf(": %v", o.Err)
		}
	}
	return line
}
