// Package walker enumerates the files and directories under a session root
// in a stable, lexicographic order so that re-runs over an unchanged tree
// visit nodes identically.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/permsim/pkg/errors"
)

// Kind classifies a visited filesystem node.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

// String returns a short label for logging and reports.
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// Candidate is one visited filesystem node. Mode holds the permission bits
// observed at visit time (lstat, links are not followed).
type Candidate struct {
	Path string // absolute path
	Rel  string // slash-separated path relative to the root, "." for the root
	Kind Kind
	Mode fs.FileMode
}

// WalkFunc receives each candidate in visit order. A non-nil err carries a
// per-path read failure (unreadable directory, vanished entry); the
// candidate then holds whatever is known about the path. Returning a non-nil
// error from fn aborts the walk.
type WalkFunc func(c Candidate, err error) error

// Walker produces a single-pass, lazy enumeration of a validated root.
type Walker struct {
	root      string
	recursive bool
}

// New validates root and returns a walker. The root is resolved to an
// absolute path with symlinks evaluated, mirroring how the target is
// addressed on the command line. Fails with errors.ErrRootNotFound if the
// root does not exist and errors.ErrNotADirectory if it is not a directory.
func New(root string, recursive bool) (*Walker, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRootNotFound, "resolve %s", root)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrRootNotFound, "%s", root)
		}
		return nil, errors.Wrapf(errors.ErrRootNotFound, "stat %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrNotADirectory, "%s", root)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrRootNotFound, "resolve %s: %v", root, err)
	}

	return &Walker{root: resolved, recursive: recursive}, nil
}

// Root returns the resolved absolute root path.
func (w *Walker) Root() string {
	return w.root
}

// Walk visits the root and its contents in lexicographic order, parents
// before children. Symlinks are yielded as leaf nodes and never traversed.
// When the walker is non-recursive only the root and its immediate children
// are visited.
func (w *Walker) Walk(fn WalkFunc) error {
	if w.recursive {
		return w.walkRecursive(fn)
	}
	return w.walkShallow(fn)
}

func (w *Walker) walkRecursive(fn WalkFunc) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		c := Candidate{Path: path, Rel: w.rel(path)}
		if err != nil {
			// Directory read failure or vanished entry. Report it and let
			// WalkDir skip the unreadable subtree.
			return fn(c, err)
		}
		c.Kind = entryKind(d.Type())

		info, infoErr := d.Info()
		if infoErr != nil {
			return fn(c, infoErr)
		}
		c.Mode = info.Mode().Perm()
		return fn(c, nil)
	})
}

func (w *Walker) walkShallow(fn WalkFunc) error {
	rootInfo, err := os.Lstat(w.root)
	if err != nil {
		return fn(Candidate{Path: w.root, Rel: "."}, err)
	}
	err = fn(Candidate{
		Path: w.root,
		Rel:  ".",
		Kind: KindDir,
		Mode: rootInfo.Mode().Perm(),
	}, nil)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root) // sorted by filename
	if err != nil {
		return fn(Candidate{Path: w.root, Rel: "."}, err)
	}

	for _, entry := range entries {
		path := filepath.Join(w.root, entry.Name())
		c := Candidate{Path: path, Rel: w.rel(path), Kind: entryKind(entry.Type())}

		info, infoErr := entry.Info()
		if infoErr != nil {
			if err := fn(c, infoErr); err != nil {
				return err
			}
			continue
		}
		c.Mode = info.Mode().Perm()
		if err := fn(c, nil); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func entryKind(mode fs.FileMode) Kind {
	switch {
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	default:
		return KindFile
	}
}
