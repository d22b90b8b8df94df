// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlprices fetches the localized in-app purchase price range of
// games for every catalog country.
//
// One request is made per (game, country) pair and all pairs of a batch run in
// parallel. A pair that fails for any reason, whether a network error, a missing
// listing, or an unparseable price, yields a Record with nil prices instead of
// an error.
package iapctlprices

import (
	"context"
	"log/slog"

	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/pkg/parallel"
	"github.com/bufdev/iapctl/internal/pkg/playstore"
	"github.com/bufdev/iapctl/internal/pkg/pricetext"
)

// Record is the in-app price range of a game in a country, in local currency units.
type Record struct {
	// GameName is the display name of the game.
	GameName string `json:"game_name"`
	// CountryCode is the upper-case ISO country code.
	CountryCode string `json:"country_code"`
	// Lowest is the lowest in-app price, or nil if unavailable.
	Lowest *float64 `json:"lowest"`
	// Highest is the highest in-app price, or nil if unavailable.
	Highest *float64 `json:"highest"`
}

// Available returns true if both ends of the price range are known.
func (r *Record) Available() bool {
	return r.Lowest != nil && r.Highest != nil
}

// Fetcher fetches game price records.
type Fetcher interface {
	// Fetch fetches the price range of a game in each country.
	//
	// One Record is returned per country, in country order.
	Fetch(ctx context.Context, game iapctlcatalog.Game, countries []iapctlcatalog.Country) []*Record
	// FetchAll fetches the price range of every game in each country as a single batch.
	//
	// Records are ordered by game, then by country.
	FetchAll(ctx context.Context, games []iapctlcatalog.Game, countries []iapctlcatalog.Country) []*Record
}

// FetcherOption is a functional option for configuring the Fetcher.
type FetcherOption func(*fetcher)

// FetcherWithMaxWorkers sets the maximum number of concurrent requests.
//
// Values less than 1 use parallel.DefaultMaxWorkers.
func FetcherWithMaxWorkers(maxWorkers int) FetcherOption {
	return func(f *fetcher) {
		f.maxWorkers = maxWorkers
	}
}

// NewFetcher creates a new Fetcher over the given store client.
func NewFetcher(logger *slog.Logger, client playstore.Client, options ...FetcherOption) Fetcher {
	f := &fetcher{
		logger: logger,
		client: client,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// *** PRIVATE ***

type fetcher struct {
	logger     *slog.Logger
	client     playstore.Client
	maxWorkers int
}

// task is a single (game, country) pair.
type task struct {
	game    iapctlcatalog.Game
	country iapctlcatalog.Country
}

func (f *fetcher) Fetch(ctx context.Context, game iapctlcatalog.Game, countries []iapctlcatalog.Country) []*Record {
	return f.FetchAll(ctx, []iapctlcatalog.Game{game}, countries)
}

func (f *fetcher) FetchAll(ctx context.Context, games []iapctlcatalog.Game, countries []iapctlcatalog.Country) []*Record {
	tasks := make([]task, 0, len(games)*len(countries))
	for _, game := range games {
		for _, country := range countries {
			tasks = append(tasks, task{game: game, country: country})
		}
	}
	f.logger.Info("fetching game prices", "games", len(games), "countries", len(countries))
	results := parallel.Map(ctx, tasks, f.maxWorkers, f.fetchRecord)
	records := make([]*Record, len(tasks))
	var available int
	for i, result := range results {
		if result.Err != nil {
			// Only cancellation reaches here, fetchRecord contains its own failures.
			records[i] = newUnavailableRecord(tasks[i])
			continue
		}
		records[i] = result.Value
		if result.Value.Available() {
			available++
		}
	}
	f.logger.Info("fetched game prices", "available", available, "unavailable", len(records)-available)
	return records
}

func (f *fetcher) fetchRecord(ctx context.Context, task task) (*Record, error) {
	record := newUnavailableRecord(task)
	price, err := f.client.GetInAppPriceRange(ctx, task.game.PackageID, task.country.Code)
	if err != nil {
		f.logger.Debug("no price", "game", task.game.Name, "country", task.country.Code, "error", err)
		return record, nil
	}
	priceRange, ok := pricetext.ParseRange(price)
	if !ok {
		f.logger.Debug("unparseable price", "game", task.game.Name, "country", task.country.Code, "price", price)
		return record, nil
	}
	record.Lowest = &priceRange.Low
	record.Highest = &priceRange.High
	return record, nil
}

func newUnavailableRecord(task task) *Record {
	return &Record{
		GameName:    task.game.Name,
		CountryCode: task.country.Code,
	}
}
