// Copyright 2026 Peter Edge
//
// All rights reserved.

package iapctlcatalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReadCatalog(t *testing.T) {
	t.Parallel()
	catalog, err := ReadCatalog("testdata/countries.csv", "testdata/games.csv")
	require.NoError(t, err)
	expectedCountries := []Country{
		{Name: "United States", Code: "US", CurrencyCode: "USD", CurrencyDisplayName: "美金"},
		{Name: "Taiwan", Code: "TW", CurrencyCode: "TWD", CurrencyDisplayName: "新台幣"},
		{Name: "Japan", Code: "JP", CurrencyCode: "JPY", CurrencyDisplayName: "日圓"},
		{Name: "Ecuador", Code: "EC", CurrencyCode: "USD"},
		{Name: "Germany", Code: "DE", CurrencyCode: "EUR", CurrencyDisplayName: "歐元"},
	}
	if diff := cmp.Diff(expectedCountries, catalog.Countries); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, catalog.Games, 3)
	require.Equal(t, Game{Name: "Genshin Impact", PackageID: "com.miHoYo.GenshinImpact"}, catalog.Games[0])
}

func TestCurrencies(t *testing.T) {
	t.Parallel()
	catalog := &Catalog{
		Countries: []Country{
			{Code: "US", CurrencyCode: "USD"},
			{Code: "TW", CurrencyCode: "TWD", CurrencyDisplayName: "新台幣"},
			{Code: "EC", CurrencyCode: "USD", CurrencyDisplayName: "美元"},
			{Code: "PR", CurrencyCode: "USD", CurrencyDisplayName: "美金"},
			{Code: "JP", CurrencyCode: "JPY"},
		},
	}
	// Shared currencies are listed once, in first-seen order.
	require.Equal(t, []string{"USD", "TWD", "JPY"}, catalog.Currencies())
	require.Equal(
		t,
		map[string]string{"USD": "美元", "TWD": "新台幣", "JPY": ""},
		catalog.CurrencyDisplayNames(),
	)
}

func TestFindGame(t *testing.T) {
	t.Parallel()
	catalog, err := ReadCatalog("testdata/countries.csv", "testdata/games.csv")
	require.NoError(t, err)
	tests := []struct {
		query    string
		expected string
		found    bool
	}{
		{query: "Genshin Impact", expected: "Genshin Impact", found: true},
		{query: "genshin", expected: "Genshin Impact", found: true},
		{query: "hkrpgoversea", expected: "Honkai: Star Rail", found: true},
		{query: "com.scopely.monopolygo", expected: "Monopoly Go", found: true},
		{query: "  Star Rail ", expected: "Honkai: Star Rail", found: true},
		{query: "Clash of Clans", found: false},
		{query: "", found: false},
	}
	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			t.Parallel()
			game, ok := catalog.FindGame(test.query)
			require.Equal(t, test.found, ok)
			require.Equal(t, test.expected, game.Name)
		})
	}
}

func TestReadCountriesValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		filePath string
		line     int
		reason   string
	}{
		{filePath: "testdata/countries_missing_column.csv", line: 1, reason: `missing required column "currency_code"`},
		{filePath: "testdata/countries_empty_value.csv", line: 3, reason: `empty value for required column "country_code"`},
		{filePath: "testdata/countries_invalid_currency.csv", line: 3, reason: `invalid currency code "ABCD"`},
		{filePath: "testdata/games.csv", line: 1, reason: `missing required column "country_name"`},
	}
	for _, test := range tests {
		t.Run(test.filePath, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCountries(test.filePath)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			require.Equal(t, test.filePath, validationErr.Path)
			require.Equal(t, test.line, validationErr.Line)
			require.Equal(t, test.reason, validationErr.Reason)
		})
	}
}

func TestReadGamesValidation(t *testing.T) {
	t.Parallel()
	_, err := ReadGames("testdata/games_empty_value.csv")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, 3, validationErr.Line)
	require.Equal(t, `testdata/games_empty_value.csv:3: empty value for required column "name"`, err.Error())

	_, err = ReadGames("testdata/games_reserved_name.csv")
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, `testdata/games_reserved_name.csv:3: game name "currency_rates" is reserved`, err.Error())

	_, err = ReadGames("testdata/games_duplicate_name.csv")
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, `testdata/games_duplicate_name.csv:3: duplicate game name "Monopoly Go", first seen on line 2`, err.Error())

	_, err = ReadGames("testdata/does_not_exist.csv")
	require.Error(t, err)
}
