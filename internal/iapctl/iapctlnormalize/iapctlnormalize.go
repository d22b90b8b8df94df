// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlnormalize joins game price records with exchange rate records
// into a price table in the home currency.
//
// A price record joins to its country, the country to its currency, and the
// currency to its exchange rate record. Rows are produced only when every step
// of the join succeeds, the price range is known, and every card network has a
// parseable rate. Converted prices are exact decimal products of the local price
// and the card network rate.
package iapctlnormalize

import (
	"cmp"
	"slices"

	"github.com/bufdev/iapctl/internal/iapctl/iapctlcatalog"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlprices"
	"github.com/bufdev/iapctl/internal/iapctl/iapctlrates"
	"github.com/bufdev/iapctl/internal/pkg/pricetext"
	"github.com/bufdev/iapctl/internal/standard/xtime"
	"github.com/shopspring/decimal"
)

// convertedPlaces is the number of decimal places shown for converted prices.
const convertedPlaces = 2

// Row is a single row of the price table.
type Row struct {
	GameName            string     `json:"game_name"`
	CountryCode         string     `json:"country_code"`
	CurrencyCode        string     `json:"currency_code"`
	CurrencyDisplayName string     `json:"currency_display_name"`
	LastUpdated         xtime.Date `json:"last_updated"`
	// Lowest is the lowest price in local currency units.
	Lowest float64 `json:"lowest"`
	// Highest is the highest price in local currency units.
	Highest float64 `json:"highest"`
	// ConvertedLowest is Lowest in home currency units by card network.
	ConvertedLowest map[iapctlrates.CardNetwork]decimal.Decimal `json:"converted_lowest"`
	// ConvertedHighest is Highest in home currency units by card network.
	ConvertedHighest map[iapctlrates.CardNetwork]decimal.Decimal `json:"converted_highest"`
}

// Normalize joins price records with exchange rate records.
//
// Price records with no game name, an unavailable price, an unknown country, or
// a currency with no rate record are dropped, as are records whose currency is
// missing a parseable rate for any card network. If several records have the
// same game and country, the first one wins. Rows are sorted by game name, then
// by country code.
func Normalize(
	countries []iapctlcatalog.Country,
	rates iapctlrates.Table,
	prices []*iapctlprices.Record,
) []*Row {
	countryByCode := make(map[string]iapctlcatalog.Country, len(countries))
	for _, country := range countries {
		if _, ok := countryByCode[country.Code]; !ok {
			countryByCode[country.Code] = country
		}
	}
	type rowKey struct {
		gameName    string
		countryCode string
	}
	seen := make(map[rowKey]struct{})
	var rows []*Row
	for _, price := range prices {
		if price == nil || price.GameName == "" || !price.Available() {
			continue
		}
		key := rowKey{gameName: price.GameName, countryCode: price.CountryCode}
		if _, ok := seen[key]; ok {
			continue
		}
		country, ok := countryByCode[price.CountryCode]
		if !ok {
			continue
		}
		rate, ok := rates.Get(country.CurrencyCode)
		if !ok {
			continue
		}
		row, ok := newRow(country, rate, price)
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	slices.SortStableFunc(rows, func(a *Row, b *Row) int {
		return cmp.Or(
			cmp.Compare(a.GameName, b.GameName),
			cmp.Compare(a.CountryCode, b.CountryCode),
		)
	})
	return rows
}

// Headers returns the column headers of the price table.
func Headers() []string {
	headers := []string{
		"game_name",
		"country_code",
		"currency_code",
		"currency_display_name",
		"last_updated",
	}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		headers = append(headers, "converted_lowest_"+string(cardNetwork))
	}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		headers = append(headers, "converted_highest_"+string(cardNetwork))
	}
	return headers
}

// ToRow converts a Row to a string slice matching Headers.
func ToRow(row *Row) []string {
	values := []string{
		row.GameName,
		row.CountryCode,
		row.CurrencyCode,
		row.CurrencyDisplayName,
		row.LastUpdated.String(),
	}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		values = append(values, formatConverted(row.ConvertedLowest, cardNetwork))
	}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		values = append(values, formatConverted(row.ConvertedHighest, cardNetwork))
	}
	return values
}

// *** PRIVATE ***

func newRow(country iapctlcatalog.Country, rate *iapctlrates.Record, price *iapctlprices.Record) (*Row, bool) {
	lowest := decimal.NewFromFloat(*price.Lowest)
	highest := decimal.NewFromFloat(*price.Highest)
	row := &Row{
		GameName:            price.GameName,
		CountryCode:         country.Code,
		CurrencyCode:        country.CurrencyCode,
		CurrencyDisplayName: cmp.Or(country.CurrencyDisplayName, rate.CurrencyDisplayName),
		LastUpdated:         rate.LastUpdated,
		Lowest:              *price.Lowest,
		Highest:             *price.Highest,
		ConvertedLowest:     make(map[iapctlrates.CardNetwork]decimal.Decimal, len(iapctlrates.CardNetworks)),
		ConvertedHighest:    make(map[iapctlrates.CardNetwork]decimal.Decimal, len(iapctlrates.CardNetworks)),
	}
	for _, cardNetwork := range iapctlrates.CardNetworks {
		rateValue, ok := pricetext.ParseDecimal(rate.Rates[cardNetwork])
		if !ok {
			return nil, false
		}
		row.ConvertedLowest[cardNetwork] = lowest.Mul(rateValue)
		row.ConvertedHighest[cardNetwork] = highest.Mul(rateValue)
	}
	return row, true
}

func formatConverted(converted map[iapctlrates.CardNetwork]decimal.Decimal, cardNetwork iapctlrates.CardNetwork) string {
	value, ok := converted[cardNetwork]
	if !ok {
		return ""
	}
	return value.StringFixed(convertedPlaces)
}
