// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package pricetext parses locale-formatted price and exchange rate strings.
//
// Store listings quote in-app purchase prices as ranges such as
// "US$0.99 - US$99.99 per item" or "每個項目 NT$30 - NT$3,290", and rate
// listings quote rates as "32.244 (2024-01-01)". The functions in this package
// strip currency symbols, unit phrases, thousands separators, and non-breaking
// whitespace, and report absence with a false return instead of an error.
package pricetext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Range is a parsed price range. Low is always less than or equal to High.
type Range struct {
	// Low is the lowest price in the range.
	Low float64
	// High is the highest price in the range.
	High float64
}

var (
	// numberRegexp matches the first numeric token, including separators.
	numberRegexp = regexp.MustCompile(`[0-9][0-9.,']*`)
	// rangeDelimiterRegexp matches the delimiter between the two ends of a range.
	// Numeric tokens never carry a sign, so a bare hyphen is always a delimiter.
	rangeDelimiterRegexp = regexp.MustCompile(`\s*[-–—~～]\s*`)
	// unitPhraseRegexp matches unit phrases such as "per item" at either end of the string.
	unitPhraseRegexp = regexp.MustCompile(`(?i)^\s*per\s+item\s*|\s*per\s+item\s*$`)
	// unitPhrases are literal unit phrases removed wherever they appear.
	unitPhrases = []string{
		"每個項目",
		"每项",
	}
	// spaceReplacer maps the Unicode spaces used as separators to nothing.
	spaceReplacer = strings.NewReplacer(
		"\u00a0", "",
		"\u202f", "",
		"\u2009", "",
	)
)

// ParseAmount parses the first numeric token in s as a price.
//
// Currency symbols, letters, and non-breaking spaces are ignored. A single
// separator followed by exactly three digits is a thousands separator, so
// "Rp 15.000" is 15000. Returns false if s contains no parseable numeric token.
func ParseAmount(s string) (float64, bool) {
	number, ok := normalizeNumber(s, true)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseDecimal parses the first numeric token in s as an exact decimal, such as
// an exchange rate.
//
// A single "." is always a decimal separator, so "4.412" is 4.412. Returns false
// if s contains no parseable numeric token.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	number, ok := normalizeNumber(s, false)
	if !ok {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// ParseRange parses a price range such as "US$12.99 - $49.99 per item".
//
// Trailing and leading unit phrases are removed before splitting on the range
// delimiter. A single price yields a range where Low equals High. Returns false
// if either end of the range has no parseable numeric token, or if text without
// a recognized delimiter holds more than one numeric token.
func ParseRange(s string) (Range, bool) {
	cleaned := unitPhraseRegexp.ReplaceAllString(s, "")
	for _, unitPhrase := range unitPhrases {
		cleaned = strings.ReplaceAll(cleaned, unitPhrase, "")
	}
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "\u00a0", " "))
	if cleaned == "" {
		return Range{}, false
	}
	parts := rangeDelimiterRegexp.Split(cleaned, -1)
	switch len(parts) {
	case 1:
		if len(numberRegexp.FindAllString(spaceReplacer.Replace(parts[0]), -1)) != 1 {
			return Range{}, false
		}
		value, ok := ParseAmount(parts[0])
		if !ok {
			return Range{}, false
		}
		return Range{Low: value, High: value}, true
	case 2:
		low, ok := ParseAmount(parts[0])
		if !ok {
			return Range{}, false
		}
		high, ok := ParseAmount(parts[1])
		if !ok {
			return Range{}, false
		}
		if low > high {
			low, high = high, low
		}
		return Range{Low: low, High: high}, true
	default:
		return Range{}, false
	}
}

// ParseRate splits an exchange rate cell such as "32.244 (2024-01-01)" into the
// rate text and the date text.
//
// The date is empty if there is no parenthesized suffix. Non-breaking spaces are
// removed from both values.
func ParseRate(s string) (string, string) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	rate, rest, found := strings.Cut(s, "(")
	rate = strings.TrimSpace(rate)
	if !found {
		return rate, ""
	}
	date, _, _ := strings.Cut(rest, ")")
	return rate, strings.TrimSpace(date)
}

// *** PRIVATE ***

// normalizeNumber extracts the first numeric token from s and rewrites it with
// no thousands separators and "." as the decimal separator.
//
// When both "," and "." are present, the last one is the decimal separator.
// A repeated separator is a thousands separator. A single "," followed by exactly
// three digits is a thousands separator, otherwise it is a decimal separator.
// A single "." follows the same rule if dotThousands is true, and is always a
// decimal separator otherwise.
func normalizeNumber(s string, dotThousands bool) (string, bool) {
	token := numberRegexp.FindString(spaceReplacer.Replace(s))
	token = strings.TrimRight(token, ".,'")
	if token == "" {
		return "", false
	}
	token = strings.ReplaceAll(token, "'", "")
	lastComma := strings.LastIndex(token, ",")
	lastDot := strings.LastIndex(token, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(token, ",") > 1 || len(token)-lastComma-1 == 3 {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.Replace(token, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(token, ".") > 1 || (dotThousands && len(token)-lastDot-1 == 3) {
			token = strings.ReplaceAll(token, ".", "")
		}
	}
	return token, true
}
