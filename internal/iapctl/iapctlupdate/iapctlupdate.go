// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlupdate serves exchange rate tables and price tables from the
// cache, refetching and storing them when the cached copy is missing or stale.
package iapctlupdate

import (
	"context"
	"log/slog"

	"github.com/bufdev/iapctl/internal/iapctl/iapctlcache"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlnormalize"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlprices"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlrates"
)

// CurrencyRatesKey is the cache key of the exchange rate table.
const CurrencyRatesKey = iapctlcatalog.RatesTableName

// Updater serves cached-or-refetched tables.
type Updater interface {
	// CurrencyRates returns the exchange rate table of every catalog currency.
	//
	// If force is true, the cache is bypassed and the table is refetched.
	CurrencyRates(ctx context.Context, force bool) (iapctlrates.Table, error)
	// PriceTable returns the normalized price table of a game across every
	// catalog country. The cache key is the game's display name.
	//
	// If force is true, the cache is bypassed and both the exchange rate table
	// and the price table are refetched.
	PriceTable(ctx context.Context, game iapctlcatalog.Game, force bool) ([]*iapctlnormalize.Row, error)
}

// NewUpdater creates a new Updater.
func NewUpdater(
	logger *slog.Logger,
	catalog *iapctlcatalog.Catalog,
	cache iapctlcache.Cache,
	ratesFetcher iapctlrates.Fetcher,
	pricesFetcher iapctlprices.Fetcher,
) Updater {
	return &updater{
		logger:        logger,
		catalog:       catalog,
		cache:         cache,
		ratesFetcher:  ratesFetcher,
		pricesFetcher: pricesFetcher,
	}
}

// *** PRIVATE ***

type updater struct {
	logger        *slog.Logger
	catalog       *iapctlcatalog.Catalog
	cache         iapctlcache.Cache
	ratesFetcher  iapctlrates.Fetcher
	pricesFetcher iapctlprices.Fetcher
}

func (u *updater) CurrencyRates(ctx context.Context, force bool) (iapctlrates.Table, error) {
	if !force {
		if table, ok := getCached[iapctlrates.Table](ctx, u, CurrencyRatesKey); ok {
			return table, nil
		}
	}
	table, err := u.ratesFetcher.Fetch(ctx, u.catalog.Currencies())
	if err != nil {
		return nil, err
	}
	displayNames := u.catalog.CurrencyDisplayNames()
	for _, record := range table {
		if record.CurrencyDisplayName == "" {
			record.CurrencyDisplayName = displayNames[record.CurrencyCode]
		}
	}
	putCached(ctx, u, CurrencyRatesKey, table)
	return table, nil
}

func (u *updater) PriceTable(ctx context.Context, game iapctlcatalog.Game, force bool) ([]*iapctlnormalize.Row, error) {
	if !force {
		if rows, ok := getCached[[]*iapctlnormalize.Row](ctx, u, game.Name); ok {
			return rows, nil
		}
	}
	rates, err := u.CurrencyRates(ctx, force)
	if err != nil {
		return nil, err
	}
	prices := u.pricesFetcher.Fetch(ctx, game, u.catalog.Countries)
	rows := iapctlnormalize.Normalize(u.catalog.Countries, rates, prices)
	putCached(ctx, u, game.Name, rows)
	return rows, nil
}

// getCached returns the cached table for the key. Cache read failures are
// logged and treated as a miss.
func getCached[T any](ctx context.Context, u *updater, key string) (T, bool) {
	table, ok, err := iapctlcache.GetTable[T](ctx, u.cache, key)
	if err != nil {
		u.logger.Warn("cache read failed, refetching", "key", key, "error", err)
		return table, false
	}
	if ok {
		u.logger.Debug("cache hit", "key", key)
	} else {
		u.logger.Debug("cache miss", "key", key)
	}
	return table, ok
}

// putCached stores a table unless it is empty. Cache write failures are logged.
func putCached[T any](ctx context.Context, u *updater, key string, table []T) {
	if len(table) == 0 {
		u.logger.Warn("not caching empty table", "key", key)
		return
	}
	if err := iapctlcache.PutTable(ctx, u.cache, key, table); err != nil {
		u.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
