// Copyright 2026 Peter Edge
//
// All rights reserved.

package xos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	t.Parallel()
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	path, err := ExpandHome("~/iapctl/countries.csv")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(homeDir, "iapctl", "countries.csv"), path)
	path, err = ExpandHome("~")
	require.NoError(t, err)
	require.Equal(t, homeDir, path)
	path, err = ExpandHome("~other/games.csv")
	require.NoError(t, err)
	require.Equal(t, "~other/games.csv", path)
	path, err = ExpandHome("cache/iapctl.db")
	require.NoError(t, err)
	require.Equal(t, "cache/iapctl.db", path)
}
