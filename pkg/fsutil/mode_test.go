package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSymbolic(t *testing.T) {
	tests := []struct {
		mode     fs.FileMode
		expected string
	}{
		{0o777, "rwxrwxrwx"},
		{0o755, "rwxr-xr-x"},
		{0o644, "rw-r--r--"},
		{0o400, "r--------"},
		{0o000, "---------"},
		{0o111, "--x--x--x"},
		{0o321, "-wx-w---x"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSymbolic(tt.mode))
		})
	}
}

func TestFormatSymbolic_IgnoresTypeBits(t *testing.T) {
	assert.Equal(t, "rwxr-xr-x", FormatSymbolic(fs.ModeDir|0o755))
}

func TestFormatOctal(t *testing.T) {
	assert.Equal(t, "0755", FormatOctal(0o755))
	assert.Equal(t, "0000", FormatOctal(0))
	assert.Equal(t, "0400", FormatOctal(fs.ModeDir|0o400))
}

func TestIsVanished(t *testing.T) {
	_, err := os.Lstat(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, IsVanished(err))
	assert.False(t, IsVanished(os.ErrPermission))
	assert.False(t, IsVanished(nil))
}
