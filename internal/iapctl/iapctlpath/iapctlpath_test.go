// Copyright 2026 Peter Edge
//
// All rights reserved.

package iapctlpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Parallel()
	require.Equal(t, filepath.Join("base", "iapctl.yaml"), ConfigFilePath("base"))
	require.Equal(t, filepath.Join("base", "cache"), CacheDirPath("base"))
}

func TestResolve(t *testing.T) {
	t.Parallel()
	path, err := Resolve("base", DefaultCacheFileRelPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("base", "cache", "iapctl.db"), path)
	path, err = Resolve("base", DefaultCountriesFileName)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("base", "countries.csv"), path)
	absPath := filepath.Join(t.TempDir(), "games.csv")
	path, err = Resolve("base", absPath)
	require.NoError(t, err)
	require.Equal(t, absPath, path)
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	path, err = Resolve("base", "~/games.csv")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(homeDir, "games.csv"), path)
}
