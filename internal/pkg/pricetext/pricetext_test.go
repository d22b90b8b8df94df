// Copyright 2026 Peter Edge
//
// All rights reserved.

package pricetext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		input string
		want  Range
	}{
		{"US$12.99 - $49.99 per item", Range{Low: 12.99, High: 49.99}},
		{"$0.99 - $99.99 per item", Range{Low: 0.99, High: 99.99}},
		{"每個項目 NT$30 - NT$3,290", Range{Low: 30, High: 3290}},
		{"NT$30 - NT$3,290 每個項目", Range{Low: 30, High: 3290}},
		{"1,49 € - 109,99 € per item", Range{Low: 1.49, High: 109.99}},
		{"¥160 – ¥12,000", Range{Low: 160, High: 12000}},
		{"Rp 15.000,00 - Rp 1.599.000,00 per item", Range{Low: 15000, High: 1599000}},
		{"CHF 1.00\u00a0-\u00a0CHF 99.00", Range{Low: 1, High: 99}},
		{"$4.99 per item", Range{Low: 4.99, High: 4.99}},
		{"$49.99 - $0.99", Range{Low: 0.99, High: 49.99}},
		{"Rp 15.000 - Rp 1.500.000 per item", Range{Low: 15000, High: 1500000}},
		{"₫22.000 - ₫2.299.000 per item", Range{Low: 22000, High: 2299000}},
		{"$0.99-$99.99 per item", Range{Low: 0.99, High: 99.99}},
		{"¥120～¥12,000", Range{Low: 120, High: 12000}},
	} {
		got, ok := ParseRange(test.input)
		require.True(t, ok, test.input)
		require.InDelta(t, test.want.Low, got.Low, 1e-9, test.input)
		require.InDelta(t, test.want.High, got.High, 1e-9, test.input)
		require.LessOrEqual(t, got.Low, got.High, test.input)
		require.GreaterOrEqual(t, got.Low, 0.0, test.input)
	}
}

func TestParseRangeUnavailable(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"",
		"per item",
		"Free",
		"Contains ads",
		"$ - $ per item",
		"US$1.99 - unavailable",
		"$1 - $2 - $3",
		"$0.99 / $99.99 per item",
		"US$0.99 to US$99.99",
	} {
		_, ok := ParseRange(input)
		require.False(t, ok, input)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		input string
		want  float64
	}{
		{"US$12.99", 12.99},
		{"NT$3,290", 3290},
		{"1.234,56 €", 1234.56},
		{"1\u00a0234,56\u00a0€", 1234.56},
		{"₩1,200,000", 1200000},
		{"CHF 1'000.50", 1000.5},
		{"Rp 15.000", 15000},
		{"$12.5", 12.5},
	} {
		got, ok := ParseAmount(test.input)
		require.True(t, ok, test.input)
		require.InDelta(t, test.want, got, 1e-9, test.input)
	}
	_, ok := ParseAmount("no digits here")
	require.False(t, ok)
}

func TestParseDecimal(t *testing.T) {
	t.Parallel()
	got, ok := ParseDecimal("32.24400000")
	require.True(t, ok)
	require.Equal(t, "32.244", got.String())
	got, ok = ParseDecimal("4.412")
	require.True(t, ok)
	require.Equal(t, "4.412", got.String())
	_, ok = ParseDecimal("--")
	require.False(t, ok)
}

func TestParseRate(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		input    string
		wantRate string
		wantDate string
	}{
		{"32.244 (2024-01-01)", "32.244", "2024-01-01"},
		{"32.24400000\u00a0(2023-11-09)", "32.24400000", "2023-11-09"},
		{"0.2151", "0.2151", ""},
		{"  4.5 ( 2024-09-12 ) ", "4.5", "2024-09-12"},
	} {
		rate, date := ParseRate(test.input)
		require.Equal(t, test.wantRate, rate, test.input)
		require.Equal(t, test.wantDate, date, test.input)
	}
}
