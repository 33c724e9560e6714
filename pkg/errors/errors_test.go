package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "chmod target",
			expected: "",
		},
		{
			name:     "wrap sentinel",
			err:      ErrAccessDenied,
			msg:      "apply mode to /tmp/x",
			expected: "apply mode to /tmp/x: access denied",
		},
		{
			name:     "wrap plain error",
			err:      errors.New("disk on fire"),
			msg:      "walk",
			expected: "walk: disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}
			if result.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result.Error())
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("expected wrapped error to contain original error")
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrPathVanished, "restore %s (entry %d)", "a/b", 3)
	if err.Error() != "restore a/b (entry 3): path vanished" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, ErrPathVanished) {
		t.Errorf("expected wrapped error to match ErrPathVanished")
	}
	if Wrapf(nil, "whatever %d", 1) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidPermissionFormat,
		ErrInvalidPattern,
		ErrRootNotFound,
		ErrNotADirectory,
		ErrAccessDenied,
		ErrPathVanished,
		ErrRestoreFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
