// Package permspec parses permission strings into a canonical mode value.
//
// Two notations are accepted:
//
//   - octal: three octal digits, optionally with a leading zero
//     ("755", "0644")
//   - symbolic: either the fixed nine character form ("rwxr-xr-x") or
//     comma-separated clauses ("u+rwx,g-w", "a=r") applied left to right
//     starting from an empty mode
//
// A Spec is immutable after parse and keeps the raw input for diagnostics.
package permspec

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/glorpus-work/permsim/pkg/errors"
	"github.com/glorpus-work/permsim/pkg/fsutil"
)

// Spec is a parsed permission specification.
type Spec struct {
	mode fs.FileMode
	raw  string
}

// Parse converts a permission string in either notation into a Spec.
// It returns an error wrapping errors.ErrInvalidPermissionFormat when the
// string matches neither grammar.
func Parse(s string) (Spec, error) {
	if s == "" {
		return Spec{}, errors.Wrap(errors.ErrInvalidPermissionFormat, "empty permission string")
	}

	if isOctal(s) {
		mode, err := parseOctal(s)
		if err != nil {
			return Spec{}, err
		}
		return Spec{mode: mode, raw: s}, nil
	}

	if len(s) == 9 && !strings.ContainsAny(s, "+-=,") {
		mode, err := parseFixedSymbolic(s)
		if err != nil {
			return Spec{}, err
		}
		return Spec{mode: mode, raw: s}, nil
	}

	if strings.ContainsAny(s, "+-=") {
		mode, err := parseClauses(s)
		if err != nil {
			return Spec{}, err
		}
		return Spec{mode: mode, raw: s}, nil
	}

	return Spec{}, errors.Wrapf(errors.ErrInvalidPermissionFormat, "unrecognized notation %q", s)
}

// Mode returns the canonical permission bits, always within 0o777.
func (s Spec) Mode() fs.FileMode {
	return s.mode
}

// Raw returns the original input string.
func (s Spec) Raw() string {
	return s.raw
}

// String renders the canonical mode in fixed symbolic notation.
func (s Spec) String() string {
	return fsutil.FormatSymbolic(s.mode)
}

// Octal renders the canonical mode as a four digit octal string.
func (s Spec) Octal() string {
	return fsutil.FormatOctal(s.mode)
}

func isOctal(s string) bool {
	if len(s) != 3 && len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return true
}

func parseOctal(s string) (fs.FileMode, error) {
	// A four digit form must carry a leading zero so the value stays within
	// the owner/group/other mask (no setuid/setgid/sticky bits).
	if len(s) == 4 && s[0] != '0' {
		return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat, "octal mode %q exceeds 0777", s)
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat, "octal mode %q", s)
	}
	return fs.FileMode(v), nil
}

func parseFixedSymbolic(s string) (fs.FileMode, error) {
	const letters = "rwxrwxrwx"
	if len(s) != 9 {
		return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat, "symbolic mode %q must be 9 characters", s)
	}
	var mode fs.FileMode
	for i := 0; i < 9; i++ {
		switch s[i] {
		case letters[i]:
			mode |= 1 << uint(8-i)
		case '-':
		default:
			return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat,
				"symbolic mode %q: unexpected %q at position %d", s, s[i], i)
		}
	}
	return mode, nil
}

// Class bit shifts for clause notation.
const (
	shiftOwner = 6
	shiftGroup = 3
	shiftOther = 0
)

func parseClauses(s string) (fs.FileMode, error) {
	var mode fs.FileMode
	for _, clause := range strings.Split(s, ",") {
		if clause == "" {
			return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat, "empty clause in %q", s)
		}
		opIdx := strings.IndexAny(clause, "+-=")
		if opIdx < 0 {
			return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat, "clause %q has no operator", clause)
		}
		classes, op, perms := clause[:opIdx], clause[opIdx], clause[opIdx+1:]

		shifts, err := classShifts(classes, clause)
		if err != nil {
			return 0, err
		}
		bits, err := permBits(perms, clause)
		if err != nil {
			return 0, err
		}

		for _, shift := range shifts {
			classBits := fs.FileMode(bits) << shift
			classMask := fs.FileMode(0o7) << shift
			switch op {
			case '+':
				mode |= classBits
			case '-':
				mode &^= classBits
			case '=':
				mode = mode&^classMask | classBits
			}
		}
	}
	return mode, nil
}

// classShifts resolves the class letters of a clause. An empty class list
// means all three classes, as in chmod.
func classShifts(classes, clause string) ([]uint, error) {
	if classes == "" || classes == "a" {
		return []uint{shiftOwner, shiftGroup, shiftOther}, nil
	}
	shifts := make([]uint, 0, len(classes))
	for _, c := range classes {
		switch c {
		case 'u':
			shifts = append(shifts, shiftOwner)
		case 'g':
			shifts = append(shifts, shiftGroup)
		case 'o':
			shifts = append(shifts, shiftOther)
		case 'a':
			shifts = append(shifts, shiftOwner, shiftGroup, shiftOther)
		default:
			return nil, errors.Wrapf(errors.ErrInvalidPermissionFormat,
				"clause %q: unknown class %q", clause, string(c))
		}
	}
	return shifts, nil
}

func permBits(perms, clause string) (uint, error) {
	var bits uint
	for _, p := range perms {
		switch p {
		case 'r':
			bits |= 0o4
		case 'w':
			bits |= 0o2
		case 'x':
			bits |= 0o1
		default:
			return 0, errors.Wrapf(errors.ErrInvalidPermissionFormat,
				"clause %q: unknown permission %q", clause, string(p))
		}
	}
	return bits, nil
}
