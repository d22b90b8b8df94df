// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlpath derives file paths from the iapctl base directory.
// All layout is defined here so callers don't duplicate path construction logic.
//
// The base directory (--dir flag) contains:
//
//	iapctl.yaml          Config file
//	countries.csv        Country catalog (default name)
//	games.csv            Game catalog (default name)
//	cache/iapctl.db      SQLite table cache (default location, blow-away safe)
package iapctlpath

import (
	"path/filepath"

	"github.com/bufdev/iapctl/internal/standard/xos"
)

const (
	// ConfigFileName is the well-known config file name within the base directory.
	ConfigFileName = "iapctl.yaml"
	// DefaultCountriesFileName is the default country catalog file name.
	DefaultCountriesFileName = "countries.csv"
	// DefaultGamesFileName is the default game catalog file name.
	DefaultGamesFileName = "games.csv"
	// DefaultCacheFileRelPath is the default SQLite cache path relative to the base directory.
	DefaultCacheFileRelPath = "cache/iapctl.db"
)

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// CacheDirPath returns the directory for cached data.
func CacheDirPath(dirPath string) string {
	return filepath.Join(dirPath, "cache")
}

// Resolve returns the cleaned filePath if it is absolute, otherwise filePath
// joined to the base directory. A leading "~" is expanded to the home directory.
func Resolve(dirPath string, filePath string) (string, error) {
	filePath, err := xos.ExpandHome(filePath)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(filePath) {
		return filepath.Clean(filePath), nil
	}
	return filepath.Join(dirPath, filepath.FromSlash(filePath)), nil
}
