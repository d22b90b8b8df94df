// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlconfig provides configuration parsing and validation for iapctl.
//
// Configuration is stored at iapctl.yaml within the base directory (--dir flag).
// Relative paths in the configuration are relative to the base directory.
package iapctlconfig

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bufdev/iapctl/internal/iapctl/iapctlcache"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlpath"
	"github.com/bufdev/iapctl/internal/pkg/playstore"
	"github.com/bufdev/iapctl/internal/pkg/tablestore"
	"github.com/bufdev/iapctl/internal/pkg/twrates"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const (
	// HomeCurrency is the only home currency the rate source quotes into.
	HomeCurrency = "TWD"
	// defaultPostgresPort is the default PostgreSQL port.
	defaultPostgresPort = 5432
)

// CacheDriver is the backing store of the table cache.
type CacheDriver string

const (
	// CacheDriverSQLite stores the cache in a local SQLite file.
	CacheDriverSQLite CacheDriver = "sqlite"
	// CacheDriverPostgres stores the cache in a PostgreSQL database.
	CacheDriverPostgres CacheDriver = "postgres"
)

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# The currency that prices are converted into.
#
# Optional. The only supported value is TWD.
home_currency: TWD
# The country catalog, a CSV file with the columns
# country_name,country_code,currency_code,currency_display_name.
#
# Optional. Defaults to countries.csv. Relative to this directory.
countries_file: countries.csv
# The game catalog, a CSV file with the columns name,package_id.
#
# Optional. Defaults to games.csv. Relative to this directory.
games_file: games.csv
# Exchange rate source configuration.
#
# Optional.
# rates:
#   base_url: https://www.twrates.com/card/mastercard
# Play Store configuration.
#
# Optional. The language the listing is requested in.
# playstore:
#   language: en
# Table cache configuration.
#
# Optional. Cached tables older than the freshness window are refetched.
cache:
  # sqlite or postgres.
  driver: sqlite
  # The SQLite file. Relative to this directory.
  path: cache/iapctl.db
  freshness: 72h
  # PostgreSQL connection, used when driver is postgres.
  #
  # The password may be set via the IAPCTL_POSTGRES_PASSWORD environment variable.
  # postgres:
  #   host: localhost
  #   port: 5432
  #   database: iapctl
  #   user: iapctl
  #   ssl_mode: prefer
# Fetch configuration.
#
# Optional. max_workers bounds concurrent requests, 0 uses the number of CPUs.
# max_attempts is the number of requests made per page before the item is
# skipped. Only network errors and 429 or 5xx responses are retried.
# fetch:
#   max_workers: 0
#   max_attempts: 1
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// HomeCurrency is the currency prices are converted into.
	HomeCurrency string `yaml:"home_currency"`
	// CountriesFile is the country catalog path.
	CountriesFile string `yaml:"countries_file"`
	// GamesFile is the game catalog path.
	GamesFile string `yaml:"games_file"`
	// Rates holds the exchange rate source configuration.
	Rates ExternalRatesConfig `yaml:"rates"`
	// PlayStore holds the Play Store configuration.
	PlayStore ExternalPlayStoreConfig `yaml:"playstore"`
	// Cache holds the table cache configuration.
	Cache ExternalCacheConfig `yaml:"cache"`
	// Fetch holds the fetch configuration.
	Fetch ExternalFetchConfig `yaml:"fetch"`
}

// ExternalRatesConfig holds exchange rate source configuration.
type ExternalRatesConfig struct {
	// BaseURL is the base URL of the rate pages.
	BaseURL string `yaml:"base_url"`
}

// ExternalPlayStoreConfig holds Play Store configuration.
type ExternalPlayStoreConfig struct {
	// Language is the listing language (e.g., "en", "zh-TW").
	Language string `yaml:"language"`
}

// ExternalCacheConfig holds table cache configuration.
type ExternalCacheConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the SQLite file path.
	Path string `yaml:"path"`
	// Freshness is the freshness window as a Go duration (e.g., "72h").
	Freshness string `yaml:"freshness"`
	// Postgres holds the PostgreSQL connection configuration.
	Postgres ExternalPostgresConfig `yaml:"postgres"`
}

// ExternalPostgresConfig holds PostgreSQL connection configuration.
type ExternalPostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ExternalFetchConfig holds fetch configuration.
type ExternalFetchConfig struct {
	// MaxWorkers bounds concurrent requests. Zero uses the number of CPUs.
	MaxWorkers int `yaml:"max_workers"`
	// MaxAttempts is the number of requests per page. Zero means one.
	MaxAttempts int `yaml:"max_attempts"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// DirPath is the base directory path containing iapctl.yaml.
	DirPath string
	// HomeCurrency is the currency prices are converted into.
	HomeCurrency string
	// CountriesFilePath is the resolved country catalog path.
	CountriesFilePath string
	// GamesFilePath is the resolved game catalog path.
	GamesFilePath string
	// RatesBaseURL is the base URL of the rate pages.
	RatesBaseURL string
	// PlayStoreLanguage is the Play Store listing language.
	PlayStoreLanguage string
	// CacheDriver is the backing store of the table cache.
	CacheDriver CacheDriver
	// CacheFilePath is the resolved SQLite file path. Only used by the sqlite driver.
	CacheFilePath string
	// Postgres is the PostgreSQL connection. Only used by the postgres driver.
	//
	// The password may be empty here and supplied from the environment.
	Postgres tablestore.PostgresConfig
	// CacheFreshness is the freshness window.
	CacheFreshness time.Duration
	// MaxWorkers bounds concurrent requests. Zero uses the number of CPUs.
	MaxWorkers int
	// MaxAttempts is the number of requests per page, at least 1.
	MaxAttempts int
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
//
// Relative paths are resolved against dirPath.
func NewConfig(dirPath string, externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	homeCurrency := strings.ToUpper(defaultString(externalConfig.HomeCurrency, HomeCurrency))
	if _, err := currency.ParseISO(homeCurrency); err != nil {
		return nil, fmt.Errorf("home_currency %q is not an ISO 4217 currency", homeCurrency)
	}
	if homeCurrency != HomeCurrency {
		return nil, fmt.Errorf("home_currency %q is not supported, must be %s", homeCurrency, HomeCurrency)
	}
	ratesBaseURL := defaultString(externalConfig.Rates.BaseURL, twrates.DefaultBaseURL)
	if err := validateHTTPURL(ratesBaseURL); err != nil {
		return nil, fmt.Errorf("rates.base_url: %w", err)
	}
	cacheFreshness := iapctlcache.DefaultFreshness
	if externalConfig.Cache.Freshness != "" {
		freshness, err := time.ParseDuration(externalConfig.Cache.Freshness)
		if err != nil {
			return nil, fmt.Errorf("cache.freshness: %w", err)
		}
		if freshness <= 0 {
			return nil, fmt.Errorf("cache.freshness must be positive, got %s", externalConfig.Cache.Freshness)
		}
		cacheFreshness = freshness
	}
	if externalConfig.Fetch.MaxWorkers < 0 {
		return nil, fmt.Errorf("fetch.max_workers must not be negative, got %d", externalConfig.Fetch.MaxWorkers)
	}
	if externalConfig.Fetch.MaxAttempts < 0 {
		return nil, fmt.Errorf("fetch.max_attempts must not be negative, got %d", externalConfig.Fetch.MaxAttempts)
	}
	countriesFilePath, err := iapctlpath.Resolve(dirPath, defaultString(externalConfig.CountriesFile, iapctlpath.DefaultCountriesFileName))
	if err != nil {
		return nil, fmt.Errorf("countries_file: %w", err)
	}
	gamesFilePath, err := iapctlpath.Resolve(dirPath, defaultString(externalConfig.GamesFile, iapctlpath.DefaultGamesFileName))
	if err != nil {
		return nil, fmt.Errorf("games_file: %w", err)
	}
	config := &Config{
		DirPath:           dirPath,
		HomeCurrency:      homeCurrency,
		CountriesFilePath: countriesFilePath,
		GamesFilePath:     gamesFilePath,
		RatesBaseURL:      ratesBaseURL,
		PlayStoreLanguage: defaultString(externalConfig.PlayStore.Language, playstore.DefaultLanguage),
		CacheDriver:       CacheDriver(strings.ToLower(defaultString(externalConfig.Cache.Driver, string(CacheDriverSQLite)))),
		CacheFreshness:    cacheFreshness,
		MaxWorkers:        externalConfig.Fetch.MaxWorkers,
		MaxAttempts:       max(externalConfig.Fetch.MaxAttempts, 1),
	}
	switch config.CacheDriver {
	case CacheDriverSQLite:
		cacheFilePath, err := iapctlpath.Resolve(dirPath, defaultString(externalConfig.Cache.Path, iapctlpath.DefaultCacheFileRelPath))
		if err != nil {
			return nil, fmt.Errorf("cache.path: %w", err)
		}
		config.CacheFilePath = cacheFilePath
	case CacheDriverPostgres:
		postgres, err := newPostgresConfig(externalConfig.Cache.Postgres)
		if err != nil {
			return nil, err
		}
		config.Postgres = postgres
	default:
		return nil, fmt.Errorf("cache.driver %q is not supported, must be one of: sqlite, postgres", externalConfig.Cache.Driver)
	}
	return config, nil
}

// ReadConfig reads and validates the configuration file from the given base directory.
// Returns a clear error message directing users to run "iapctl config init" if the file is missing.
func ReadConfig(dirPath string) (*Config, error) {
	filePath := iapctlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s, run \"iapctl config init\" to create one", filePath)
	}
	return ReadConfigFile(filePath)
}

// ReadConfigFile reads and validates the configuration file at the given path.
// Relative paths in the file are resolved against the file's directory.
func ReadConfigFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	config, err := NewConfig(filepath.Dir(filePath), externalConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return config, nil
}

// InitConfig creates a new configuration file with a documented template in the
// given base directory, creating the directory if it does not exist.
// Returns the path to the created file, or an error if the file already exists.
func InitConfig(dirPath string) (string, error) {
	filePath := iapctlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return "", fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(configTemplate), 0o644); err != nil {
		return "", err
	}
	return filePath, nil
}

// *** PRIVATE ***

func newPostgresConfig(externalPostgresConfig ExternalPostgresConfig) (tablestore.PostgresConfig, error) {
	if externalPostgresConfig.Host == "" {
		return tablestore.PostgresConfig{}, errors.New("cache.postgres.host is required")
	}
	if externalPostgresConfig.Database == "" {
		return tablestore.PostgresConfig{}, errors.New("cache.postgres.database is required")
	}
	if externalPostgresConfig.User == "" {
		return tablestore.PostgresConfig{}, errors.New("cache.postgres.user is required")
	}
	port := externalPostgresConfig.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	if port < 0 || port > 65535 {
		return tablestore.PostgresConfig{}, fmt.Errorf("cache.postgres.port %d is out of range", port)
	}
	return tablestore.PostgresConfig{
		Host:     externalPostgresConfig.Host,
		Port:     port,
		Database: externalPostgresConfig.Database,
		User:     externalPostgresConfig.User,
		Password: externalPostgresConfig.Password,
		SSLMode:  externalPostgresConfig.SSLMode,
	}, nil
}

func validateHTTPURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%q must be an http or https URL", rawURL)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%q has no host", rawURL)
	}
	return nil
}

func defaultString(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
