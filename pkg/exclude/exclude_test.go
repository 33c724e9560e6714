package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/permsim/pkg/errors"
)

func TestCompile_Empty(t *testing.T) {
	p, err := Compile("")
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.False(t, p.Matches("anything/at/all"))
	assert.False(t, p.Matches("."))
}

func TestCompile_Invalid(t *testing.T) {
	for _, pattern := range []string{"a/[", "a/[]", "!"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Compile(pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidPattern)
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern  string
		path     string
		excluded bool
	}{
		// Single segment wildcard.
		{"a/b/*", "a/b/y.txt", true},
		{"a/b/*", "a/x.txt", false},
		{"a/b/*", "a/b", false},
		{"a/b/*", "a/b/sub/deep.txt", true}, // sub matched as directory

		// Recursive wildcard.
		{"**/*.log", "x/y/z.log", true},
		{"**/*.log", "z.log", true},
		{"**/*.log", "x/y/z.txt", false},
		{"build/**", "build/out/bin", true},
		{"build/**", "builder/out", false},

		// Question mark.
		{"f?.txt", "f1.txt", true},
		{"f?.txt", "f12.txt", false},

		// Separator-free patterns match basenames at any depth.
		{"*.log", "deep/nested/trace.log", true},
		{"*.log", "deep/nested/trace.txt", false},
		{"node_modules", "node_modules/lib/index.js", true},
		{"node_modules", "src/main.go", false},

		// Directory match excludes the directory node itself.
		{"a/b", "a/b", true},
		{"a/b", "a/b/y.txt", true},

		// Alternation.
		{"{build,dist}/**", "dist/app.js", true},
		{"{build,dist}/**", "src/app.js", false},

		// Root is never excluded.
		{"**", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.excluded, p.Matches(tt.path),
				"pattern %q against %q", tt.pattern, tt.path)
		})
	}
}

func TestMatches_Negation(t *testing.T) {
	p, err := Compile("!keep/**")
	require.NoError(t, err)

	assert.False(t, p.Matches("keep/data.txt"), "paths under keep/ stay in scope")
	assert.True(t, p.Matches("other/data.txt"), "paths outside keep/ are excluded")
	assert.False(t, p.Matches("."), "root is never excluded")
}

func TestRaw(t *testing.T) {
	p, err := Compile("!a/*")
	require.NoError(t, err)
	assert.Equal(t, "!a/*", p.Raw())

	empty, err := Compile("")
	require.NoError(t, err)
	assert.Equal(t, "", empty.Raw())
}
