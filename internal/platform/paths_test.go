package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Run("Relative", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)

		got, err := NormalizePath("some/../dir")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "dir"), got)
	})

	t.Run("Home", func(t *testing.T) {
		home, err := homedir.Dir()
		require.NoError(t, err)

		got, err := NormalizePath("~/mirror")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "mirror"), got)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NormalizePath("  ")
		var pathErr *PathError
		assert.True(t, errors.As(err, &pathErr))
	})
}

func TestIsNested(t *testing.T) {
	root := filepath.FromSlash("/data/src")

	tests := []struct {
		name     string
		child    string
		expected bool
	}{
		{"Child", "/data/src/sub", true},
		{"Deep", "/data/src/a/b/c", true},
		{"Same", "/data/src", false},
		{"Sibling", "/data/src2", false},
		{"Parent", "/data", false},
		{"DotDotPrefixedName", "/data/src/..hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNested(root, filepath.FromSlash(tt.child)))
		})
	}
}

func TestSamePath(t *testing.T) {
	assert.True(t, SamePath("/a/b", "/a/b/"))
	assert.True(t, SamePath("/a/./b", "/a/b"))
	assert.False(t, SamePath("/a/b", "/a/c"))
}
