// Copyright 2026 Peter Edge
//
// All rights reserved.

package iapctlconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/iapctl/internal/pkg/tablestore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Parallel()
	dirPath := filepath.Join(t.TempDir(), "prices")
	filePath, err := InitConfig(dirPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dirPath, "iapctl.yaml"), filePath)

	// The template is itself a valid configuration.
	config, err := ReadConfig(dirPath)
	require.NoError(t, err)
	expected := &Config{
		DirPath:           dirPath,
		HomeCurrency:      "TWD",
		CountriesFilePath: filepath.Join(dirPath, "countries.csv"),
		GamesFilePath:     filepath.Join(dirPath, "games.csv"),
		RatesBaseURL:      "https://www.twrates.com/card/mastercard",
		PlayStoreLanguage: "en",
		CacheDriver:       CacheDriverSQLite,
		CacheFilePath:     filepath.Join(dirPath, "cache", "iapctl.db"),
		CacheFreshness:    72 * time.Hour,
		MaxAttempts:       1,
	}
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	_, err = InitConfig(dirPath)
	require.ErrorContains(t, err, "already exists")
}

func TestReadConfigMissing(t *testing.T) {
	t.Parallel()
	_, err := ReadConfig(t.TempDir())
	require.ErrorContains(t, err, "iapctl config init")
}

func TestReadConfigPostgres(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	writeConfig(t, dirPath, `version: v1
countries_file: /etc/iapctl/countries.csv
playstore:
  language: zh-TW
cache:
  driver: postgres
  freshness: 24h
  postgres:
    host: db.internal
    database: iapctl
    user: iapctl
    ssl_mode: require
fetch:
  max_workers: 8
  max_attempts: 3
`)
	config, err := ReadConfig(dirPath)
	require.NoError(t, err)
	require.Equal(t, CacheDriverPostgres, config.CacheDriver)
	require.Equal(
		t,
		tablestore.PostgresConfig{
			Host:     "db.internal",
			Port:     5432,
			Database: "iapctl",
			User:     "iapctl",
			SSLMode:  "require",
		},
		config.Postgres,
	)
	require.Equal(t, 24*time.Hour, config.CacheFreshness)
	require.Equal(t, 8, config.MaxWorkers)
	require.Equal(t, 3, config.MaxAttempts)
	require.Equal(t, "zh-TW", config.PlayStoreLanguage)
	require.Equal(t, filepath.Clean("/etc/iapctl/countries.csv"), config.CountriesFilePath)
	require.Empty(t, config.CacheFilePath)
}

func TestReadConfigInvalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		data     string
		expected string
	}{
		{name: "version", data: "version: v2\n", expected: "unsupported config version"},
		{name: "unknown_field", data: "version: v1\nhome: TWD\n", expected: "field home not found"},
		{name: "home_currency", data: "version: v1\nhome_currency: USD\n", expected: "home_currency \"USD\" is not supported"},
		{name: "invalid_currency", data: "version: v1\nhome_currency: XX\n", expected: "not an ISO 4217 currency"},
		{name: "freshness", data: "version: v1\ncache:\n  freshness: 3d\n", expected: "cache.freshness"},
		{name: "negative_freshness", data: "version: v1\ncache:\n  freshness: -1h\n", expected: "cache.freshness must be positive"},
		{name: "driver", data: "version: v1\ncache:\n  driver: redis\n", expected: "cache.driver \"redis\" is not supported"},
		{name: "postgres_host", data: "version: v1\ncache:\n  driver: postgres\n", expected: "cache.postgres.host is required"},
		{name: "base_url", data: "version: v1\nrates:\n  base_url: ftp://example.com\n", expected: "rates.base_url"},
		{name: "max_workers", data: "version: v1\nfetch:\n  max_workers: -1\n", expected: "fetch.max_workers"},
		{name: "max_attempts", data: "version: v1\nfetch:\n  max_attempts: -2\n", expected: "fetch.max_attempts"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			dirPath := t.TempDir()
			writeConfig(t, dirPath, test.data)
			_, err := ReadConfig(dirPath)
			require.ErrorContains(t, err, test.expected)
		})
	}
}

func writeConfig(t *testing.T, dirPath string, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dirPath, "iapctl.yaml"), []byte(data), 0o644))
}
