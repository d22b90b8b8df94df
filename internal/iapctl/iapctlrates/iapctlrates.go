// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlrates fetches per-card-network exchange rates into the home
// currency for a set of currencies.
//
// Each currency is fetched independently and in parallel. A currency whose page
// cannot be fetched or parsed is logged and left out of the result, so a partial
// outage yields a smaller table rather than an error.
package iapctlrates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bufdev/iapctl/internal/pkg/parallel"
	"github.com/bufdev/iapctl/internal/pkg/pricetext"
	"github.com/bufdev/iapctl/internal/pkg/twrates"
	"github.com/bufdev/iapctl/internal/standard/xtime"
)

// AllCurrencies is the wildcard currency code that selects every currency
// available at the rate source.
const AllCurrencies = "all"

// CardNetwork is a card network that publishes its own exchange rates.
type CardNetwork string

const (
	// CardNetworkJCB is JCB.
	CardNetworkJCB CardNetwork = "jcb"
	// CardNetworkMastercard is Mastercard.
	CardNetworkMastercard CardNetwork = "mastercard"
	// CardNetworkVisa is Visa.
	CardNetworkVisa CardNetwork = "visa"
)

// CardNetworks are all card networks in output column order.
var CardNetworks = []CardNetwork{
	CardNetworkJCB,
	CardNetworkMastercard,
	CardNetworkVisa,
}

// cardNetworkLabels maps the labels used by the rate source to card networks.
var cardNetworkLabels = map[string]CardNetwork{
	"jcb":        CardNetworkJCB,
	"萬事達":        CardNetworkMastercard,
	"mastercard": CardNetworkMastercard,
	"master":     CardNetworkMastercard,
	"visa":       CardNetworkVisa,
}

// ParseCardNetwork returns the card network for a rate source label such as
// "JCB", "萬事達", or "VISA".
func ParseCardNetwork(label string) (CardNetwork, bool) {
	cardNetwork, ok := cardNetworkLabels[strings.ToLower(strings.TrimSpace(label))]
	return cardNetwork, ok
}

// Record is the exchange rate of a single currency into the home currency.
type Record struct {
	// CurrencyCode is the upper-case ISO currency code (e.g., "USD").
	CurrencyCode string `json:"currency_code"`
	// CurrencyDisplayName is the display name of the currency (e.g., "美金").
	CurrencyDisplayName string `json:"currency_display_name"`
	// Rates are the decimal rate strings by card network, exactly as published.
	// A card network missing from the map has no published rate.
	Rates map[CardNetwork]string `json:"rates"`
	// LastUpdated is the most recent publication date across the card networks.
	LastUpdated xtime.Date `json:"last_updated"`
}

// Table is a set of exchange rate records sorted by currency code.
type Table []*Record

// Get returns the record for a currency code.
func (t Table) Get(currencyCode string) (*Record, bool) {
	index, found := slices.BinarySearchFunc(t, currencyCode, func(record *Record, currencyCode string) int {
		return strings.Compare(record.CurrencyCode, currencyCode)
	})
	if !found {
		return nil, false
	}
	return t[index], true
}

// Fetcher fetches exchange rate tables.
type Fetcher interface {
	// Fetch fetches the exchange rates of the given currency codes.
	//
	// If currencyCodes is exactly ["all"] (case-insensitive), every currency
	// available at the rate source is fetched. Currencies that fail are logged
	// and omitted. An error is returned only if the currency list cannot be
	// enumerated or no currencies were requested.
	Fetch(ctx context.Context, currencyCodes []string) (Table, error)
	// ListCurrencies lists the currencies available at the rate source.
	ListCurrencies(ctx context.Context) ([]twrates.Currency, error)
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

// NewFetcher creates a new Fetcher over the given rate source client.
func NewFetcher(logger *slog.Logger, client twrates.Client, options ...FetcherOption) Fetcher {
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
	client     twrates.Client
	maxWorkers int
}

func (f *fetcher) Fetch(ctx context.Context, currencyCodes []string) (Table, error) {
	if len(currencyCodes) == 0 {
		return nil, errors.New("no currency codes requested")
	}
	if len(currencyCodes) == 1 && strings.EqualFold(currencyCodes[0], AllCurrencies) {
		currencies, err := f.client.ListCurrencies(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing currencies: %w", err)
		}
		currencyCodes = make([]string, 0, len(currencies))
		for _, currency := range currencies {
			currencyCodes = append(currencyCodes, currency.Code)
		}
	}
	currencyCodes = uniqueUpper(currencyCodes)
	f.logger.Info("fetching exchange rates", "currencies", len(currencyCodes))
	results := parallel.Map(ctx, currencyCodes, f.maxWorkers, f.fetchRecord)
	table := make(Table, 0, len(results))
	for i, result := range results {
		if result.Err != nil {
			f.logger.Warn("skipping currency", "currency", currencyCodes[i], "error", result.Err)
			continue
		}
		table = append(table, result.Value)
	}
	slices.SortFunc(table, func(a *Record, b *Record) int {
		return strings.Compare(a.CurrencyCode, b.CurrencyCode)
	})
	f.logger.Info("fetched exchange rates", "fetched", len(table), "skipped", len(currencyCodes)-len(table))
	return table, nil
}

func (f *fetcher) ListCurrencies(ctx context.Context) ([]twrates.Currency, error) {
	return f.client.ListCurrencies(ctx)
}

// fetchRecord fetches and converts the rate page of a single currency.
func (f *fetcher) fetchRecord(ctx context.Context, currencyCode string) (*Record, error) {
	rate, err := f.client.GetRate(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	record := &Record{
		CurrencyCode:        rate.CurrencyCode,
		CurrencyDisplayName: rate.DisplayName,
		Rates:               make(map[CardNetwork]string, len(CardNetworks)),
	}
	for _, row := range rate.Rows {
		cardNetwork, ok := ParseCardNetwork(row.Label)
		if !ok {
			f.logger.Debug("ignoring unknown card network", "currency", currencyCode, "label", row.Label)
			continue
		}
		if _, ok := pricetext.ParseDecimal(row.Rate); !ok {
			f.logger.Debug("ignoring unparseable rate", "currency", currencyCode, "label", row.Label, "rate", row.Rate)
			continue
		}
		record.Rates[cardNetwork] = row.Rate
		if row.Date == "" {
			continue
		}
		date, err := xtime.ParseDate(row.Date)
		if err != nil {
			f.logger.Debug("ignoring unparseable rate date", "currency", currencyCode, "date", row.Date)
			continue
		}
		if date.After(record.LastUpdated) {
			record.LastUpdated = date
		}
	}
	if len(record.Rates) == 0 {
		return nil, fmt.Errorf("no card network rates found for %s", currencyCode)
	}
	return record, nil
}

// uniqueUpper upper-cases the codes and removes duplicates, keeping the first occurrence.
func uniqueUpper(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}
	return result
}
