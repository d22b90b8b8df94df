// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package iapctlcatalog loads the static reference data that drives a run: the
// country catalog (which countries to query and which currency each one uses)
// and the game catalog (which store listings to query).
//
// Both catalogs are CSV files with a header row. Columns are matched by header
// name, so column order does not matter and extra columns are ignored. A missing
// required column or an empty required value fails the whole load with a
// *ValidationError.
package iapctlcatalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	countryNameColumn         = "country_name"
	countryCodeColumn         = "country_code"
	currencyCodeColumn        = "currency_code"
	currencyDisplayNameColumn = "currency_display_name"
	gameNameColumn            = "name"
	gamePackageIDColumn       = "package_id"
)

// RatesTableName is the cache key of the exchange rate table. Price tables are
// keyed by game name, so no game may use it.
const RatesTableName = "currency_rates"

// Country is a row of the country catalog.
type Country struct {
	// Name is the display name of the country (e.g., "United States").
	Name string `json:"country_name"`
	// Code is the upper-case ISO 3166 alpha-2 country code (e.g., "US").
	Code string `json:"country_code"`
	// CurrencyCode is the upper-case ISO 4217 currency code used in the country (e.g., "USD").
	CurrencyCode string `json:"currency_code"`
	// CurrencyDisplayName is the display name of the currency. Optional.
	CurrencyDisplayName string `json:"currency_display_name"`
}

// Game is a row of the game catalog.
type Game struct {
	// Name is the display name of the game. Also used as the cache key of its price table.
	Name string `json:"name"`
	// PackageID is the store package ID (e.g., "com.miHoYo.GenshinImpact").
	PackageID string `json:"package_id"`
}

// ValidationError is returned when a catalog file is malformed.
type ValidationError struct {
	// Path is the catalog file path.
	Path string
	// Line is the 1-based line of the offending record, or 0 if the error is not
	// specific to a record.
	Line int
	// Reason describes what is wrong.
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Catalog is the loaded reference data.
type Catalog struct {
	// Countries are the catalog countries in file order.
	Countries []Country
	// Games are the catalog games in file order.
	Games []Game
}

// ReadCatalog reads the country catalog and game catalog files.
func ReadCatalog(countriesFilePath string, gamesFilePath string) (*Catalog, error) {
	countries, err := ReadCountries(countriesFilePath)
	if err != nil {
		return nil, err
	}
	games, err := ReadGames(gamesFilePath)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		Countries: countries,
		Games:     games,
	}, nil
}

// ReadCountries reads a country catalog file.
//
// Required columns are country_name, country_code, and currency_code. The
// currency_display_name column is optional. Country codes must be ISO 3166
// regions and currency codes must be ISO 4217 currencies. A country code may
// appear at most once.
func ReadCountries(filePath string) ([]Country, error) {
	var countries []Country
	seenCodes := make(map[string]int)
	if err := readRecords(
		filePath,
		[]string{countryNameColumn, countryCodeColumn, currencyCodeColumn},
		func(line int, get func(string) string) error {
			country := Country{
				Name:                get(countryNameColumn),
				Code:                strings.ToUpper(get(countryCodeColumn)),
				CurrencyCode:        strings.ToUpper(get(currencyCodeColumn)),
				CurrencyDisplayName: get(currencyDisplayNameColumn),
			}
			if _, err := language.ParseRegion(country.Code); err != nil || len(country.Code) != 2 {
				return fmt.Errorf("invalid country code %q", country.Code)
			}
			if _, err := currency.ParseISO(country.CurrencyCode); err != nil {
				return fmt.Errorf("invalid currency code %q", country.CurrencyCode)
			}
			if firstLine, ok := seenCodes[country.Code]; ok {
				return fmt.Errorf("duplicate country code %q, first seen on line %d", country.Code, firstLine)
			}
			seenCodes[country.Code] = line
			countries = append(countries, country)
			return nil
		},
	); err != nil {
		return nil, err
	}
	return countries, nil
}

// ReadGames reads a game catalog file.
//
// Required columns are name and package_id. A name may appear at most once and
// must not be RatesTableName.
func ReadGames(filePath string) ([]Game, error) {
	var games []Game
	seenNames := make(map[string]int)
	if err := readRecords(
		filePath,
		[]string{gameNameColumn, gamePackageIDColumn},
		func(line int, get func(string) string) error {
			game := Game{
				Name:      get(gameNameColumn),
				PackageID: get(gamePackageIDColumn),
			}
			if game.Name == RatesTableName {
				return fmt.Errorf("game name %q is reserved", game.Name)
			}
			if firstLine, ok := seenNames[game.Name]; ok {
				return fmt.Errorf("duplicate game name %q, first seen on line %d", game.Name, firstLine)
			}
			seenNames[game.Name] = line
			games = append(games, game)
			return nil
		},
	); err != nil {
		return nil, err
	}
	return games, nil
}

// Currencies returns the unique currency codes of the catalog countries.
//
// Several countries may share a currency. The order is the order in which each
// currency is first seen.
func (c *Catalog) Currencies() []string {
	var currencyCodes []string
	seen := make(map[string]struct{})
	for _, country := range c.Countries {
		if _, ok := seen[country.CurrencyCode]; ok {
			continue
		}
		seen[country.CurrencyCode] = struct{}{}
		currencyCodes = append(currencyCodes, country.CurrencyCode)
	}
	return currencyCodes
}

// CurrencyDisplayNames returns the currency display names keyed by currency code.
//
// When countries sharing a currency disagree, the first non-empty name wins.
func (c *Catalog) CurrencyDisplayNames() map[string]string {
	displayNames := make(map[string]string)
	for _, country := range c.Countries {
		if displayNames[country.CurrencyCode] == "" {
			displayNames[country.CurrencyCode] = country.CurrencyDisplayName
		}
	}
	return displayNames
}

// FindGame returns the first game whose name or package ID contains the query,
// compared case-insensitively. An exact name or package ID match takes precedence.
func (c *Catalog) FindGame(query string) (Game, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Game{}, false
	}
	for _, game := range c.Games {
		if strings.EqualFold(game.Name, query) || strings.EqualFold(game.PackageID, query) {
			return game, true
		}
	}
	lowerQuery := strings.ToLower(query)
	for _, game := range c.Games {
		if strings.Contains(strings.ToLower(game.Name), lowerQuery) ||
			strings.Contains(strings.ToLower(game.PackageID), lowerQuery) {
			return game, true
		}
	}
	return Game{}, false
}

// *** PRIVATE ***

// readRecords reads a CSV file with a header row, calling f for every data record.
//
// The get function passed to f returns the trimmed value of a column by header
// name, or empty if the file has no such column. Required columns must be present
// in the header and non-empty in every record. Errors returned by f are reported
// as a *ValidationError for the record's line.
func readRecords(
	filePath string,
	requiredColumns []string,
	f func(line int, get func(string) string) error,
) (retErr error) {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	csvReader := csv.NewReader(file)
	// Short records read as empty trailing values.
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return &ValidationError{Path: filePath, Reason: "missing header row"}
		}
		return &ValidationError{Path: filePath, Line: 1, Reason: err.Error()}
	}
	columnIndex := make(map[string]int, len(header))
	for i, column := range header {
		// Spreadsheet exports often start with a byte order mark.
		column = strings.TrimPrefix(column, "\ufeff")
		columnIndex[strings.ToLower(strings.TrimSpace(column))] = i
	}
	for _, requiredColumn := range requiredColumns {
		if _, ok := columnIndex[requiredColumn]; !ok {
			return &ValidationError{
				Path:   filePath,
				Line:   1,
				Reason: fmt.Sprintf("missing required column %q", requiredColumn),
			}
		}
	}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return &ValidationError{Path: filePath, Line: parseErr.Line, Reason: parseErr.Err.Error()}
			}
			return err
		}
		line, _ := csvReader.FieldPos(0)
		get := func(column string) string {
			i, ok := columnIndex[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		for _, requiredColumn := range requiredColumns {
			if get(requiredColumn) == "" {
				return &ValidationError{
					Path:   filePath,
					Line:   line,
					Reason: fmt.Sprintf("empty value for required column %q", requiredColumn),
				}
			}
		}
		if err := f(line, get); err != nil {
			return &ValidationError{Path: filePath, Line: line, Reason: err.Error()}
		}
	}
}
