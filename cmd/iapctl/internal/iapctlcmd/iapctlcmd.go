// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlcmd provides shared wiring for iapctl commands (reading config
// and catalogs, opening the cache store, constructing fetchers).
package iapctlcmd

import (
	"context"
	"fmt"

	"buf.build/go/app/appext"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcache"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlconfig"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlprices"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlrates"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlupdate"
	"github.com/bufdev/iapctl/internal/pkg/backoff"
	"github.com/bufdev/iapctl/internal/pkg/playstore"
	"github.com/bufdev/iapctl/internal/pkg/tablestore"
	"github.com/bufdev/iapctl/internal/pkg/twrates"
)

// DirFlagName is the flag name for the base directory containing iapctl.yaml.
const DirFlagName = "dir"

// DirFlagUsage is the usage string of the base directory flag.
const DirFlagUsage = "The iapctl directory containing iapctl.yaml"

// postgresPasswordEnvVar is the environment variable name for the PostgreSQL password.
const postgresPasswordEnvVar = "IAPCTL_POSTGRES_PASSWORD"

// ReadConfigAndCatalog reads the configuration file from the base directory and
// the catalogs it references.
func ReadConfigAndCatalog(dirPath string) (*iapctlconfig.Config, *iapctlcatalog.Catalog, error) {
	config, err := iapctlconfig.ReadConfig(dirPath)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := iapctlcatalog.ReadCatalog(config.CountriesFilePath, config.GamesFilePath)
	if err != nil {
		return nil, nil, err
	}
	return config, catalog, nil
}

// NewStore opens the table store selected by the configuration.
//
// The caller must close the returned store.
func NewStore(ctx context.Context, container appext.Container, config *iapctlconfig.Config) (tablestore.Store, error) {
	switch config.CacheDriver {
	case iapctlconfig.CacheDriverSQLite:
		return tablestore.NewSQLiteStore(config.CacheFilePath), nil
	case iapctlconfig.CacheDriverPostgres:
		postgresConfig := config.Postgres
		if postgresConfig.Password == "" {
			postgresConfig.Password = container.Env(postgresPasswordEnvVar)
		}
		store, err := tablestore.NewPostgresStore(ctx, postgresConfig)
		if err != nil {
			return nil, fmt.Errorf("opening postgres cache at %s:%d: %w", postgresConfig.Host, postgresConfig.Port, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", config.CacheDriver)
	}
}

// NewCache creates the staleness-checked cache over the store.
func NewCache(config *iapctlconfig.Config, store tablestore.Store) iapctlcache.Cache {
	return iapctlcache.NewCache(store, iapctlcache.CacheWithFreshness(config.CacheFreshness))
}

// NewRatesFetcher creates the exchange rate fetcher.
func NewRatesFetcher(container appext.Container, config *iapctlconfig.Config) iapctlrates.Fetcher {
	return iapctlrates.NewFetcher(
		container.Logger(),
		twrates.NewClient(
			twrates.ClientWithBaseURL(config.RatesBaseURL),
			twrates.ClientWithRetryPolicy(backoff.NewPolicy(config.MaxAttempts)),
		),
		iapctlrates.FetcherWithMaxWorkers(config.MaxWorkers),
	)
}

// NewPricesFetcher creates the game price fetcher.
func NewPricesFetcher(container appext.Container, config *iapctlconfig.Config) iapctlprices.Fetcher {
	return iapctlprices.NewFetcher(
		container.Logger(),
		playstore.NewClient(
			playstore.ClientWithLanguage(config.PlayStoreLanguage),
			playstore.ClientWithRetryPolicy(backoff.NewPolicy(config.MaxAttempts)),
		),
		iapctlprices.FetcherWithMaxWorkers(config.MaxWorkers),
	)
}

// NewUpdater creates the Updater over the given store.
func NewUpdater(
	container appext.Container,
	config *iapctlconfig.Config,
	catalog *iapctlcatalog.Catalog,
	store tablestore.Store,
) iapctlupdate.Updater {
	return iapctlupdate.NewUpdater(
		container.Logger(),
		catalog,
		NewCache(config, store),
		NewRatesFetcher(container, config),
		NewPricesFetcher(container, config),
	)
}
