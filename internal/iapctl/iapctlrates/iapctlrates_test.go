// Copyright 2026 Peter Edge
//
// All rights reserved.

package iapctlrates

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bufdev/iapctl/internal/pkg/twrates"
	"github.com/bufdev/iapctl/internal/standard/xtime"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseCardNetwork(t *testing.T) {
	t.Parallel()
	for label, expected := range map[string]CardNetwork{
		"JCB":        CardNetworkJCB,
		"萬事達":        CardNetworkMastercard,
		"MasterCard": CardNetworkMastercard,
		" VISA ":     CardNetworkVisa,
		"Visa":       CardNetworkVisa,
	} {
		cardNetwork, ok := ParseCardNetwork(label)
		require.True(t, ok, label)
		require.Equal(t, expected, cardNetwork, label)
	}
	_, ok := ParseCardNetwork("銀聯")
	require.False(t, ok)
}

func TestFetch(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	fetcher := NewFetcher(newTestLogger(), client, FetcherWithMaxWorkers(2))

	table, err := fetcher.Fetch(context.Background(), []string{"usd", "JPY", "XYZ", "USD"})
	require.NoError(t, err)
	expected := Table{
		{
			CurrencyCode:        "JPY",
			CurrencyDisplayName: "日圓",
			Rates: map[CardNetwork]string{
				CardNetworkJCB:        "0.2201",
				CardNetworkMastercard: "0.2215",
				CardNetworkVisa:       "0.2209",
			},
			LastUpdated: xtime.Date{Year: 2024, Month: 9, Day: 12},
		},
		{
			CurrencyCode:        "USD",
			CurrencyDisplayName: "美金",
			Rates: map[CardNetwork]string{
				CardNetworkMastercard: "32.189",
				CardNetworkVisa:       "32.0",
			},
			LastUpdated: xtime.Date{Year: 2024, Month: 9, Day: 12},
		},
	}
	if diff := cmp.Diff(expected, table); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	// Duplicates are fetched once and the failing currency is skipped.
	require.ElementsMatch(t, []string{"USD", "JPY", "XYZ"}, client.requested())

	record, ok := table.Get("USD")
	require.True(t, ok)
	require.Equal(t, "32.0", record.Rates[CardNetworkVisa])
	_, ok = table.Get("XYZ")
	require.False(t, ok)
}

func TestFetchAll(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	fetcher := NewFetcher(newTestLogger(), client)

	table, err := fetcher.Fetch(context.Background(), []string{"ALL"})
	require.NoError(t, err)
	require.Len(t, table, 2)
	require.Equal(t, "JPY", table[0].CurrencyCode)
	require.Equal(t, "USD", table[1].CurrencyCode)
	require.ElementsMatch(t, []string{"USD", "JPY", "XYZ"}, client.requested())
}

func TestFetchErrors(t *testing.T) {
	t.Parallel()
	client := newFakeClient()
	client.listErr = errors.New("index unavailable")
	fetcher := NewFetcher(newTestLogger(), client)

	_, err := fetcher.Fetch(context.Background(), []string{"all"})
	require.ErrorContains(t, err, "index unavailable")
	_, err = fetcher.Fetch(context.Background(), nil)
	require.Error(t, err)

	// Every currency failing is an empty table, not an error.
	table, err := fetcher.Fetch(context.Background(), []string{"XYZ", "EMPTY"})
	require.NoError(t, err)
	require.Empty(t, table)
}

type fakeClient struct {
	rates   map[string]*twrates.Rate
	listErr error

	lock     sync.Mutex
	requests []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		rates: map[string]*twrates.Rate{
			"USD": {
				CurrencyCode: "USD",
				DisplayName:  "美金",
				Rows: []twrates.Row{
					{Label: "萬事達", Rate: "32.189", Date: "2024-09-12"},
					{Label: "VISA", Rate: "32.0", Date: "2024-09-11"},
					{Label: "JCB", Rate: "--", Date: "2024-09-13"},
					{Label: "銀聯", Rate: "32.1", Date: "2024-09-14"},
				},
			},
			"JPY": {
				CurrencyCode: "JPY",
				DisplayName:  "日圓",
				Rows: []twrates.Row{
					{Label: "JCB", Rate: "0.2201", Date: "2024-09-12"},
					{Label: "萬事達", Rate: "0.2215", Date: "2024-09-12"},
					{Label: "VISA", Rate: "0.2209"},
				},
			},
			"EMPTY": {
				CurrencyCode: "EMPTY",
				Rows: []twrates.Row{
					{Label: "銀聯", Rate: "1.0"},
				},
			},
		},
	}
}

func (c *fakeClient) GetRate(_ context.Context, currencyCode string) (*twrates.Rate, error) {
	c.lock.Lock()
	c.requests = append(c.requests, currencyCode)
	c.lock.Unlock()
	rate, ok := c.rates[currencyCode]
	if !ok {
		return nil, errors.New("unexpected status 404")
	}
	return rate, nil
}

func (c *fakeClient) ListCurrencies(context.Context) ([]twrates.Currency, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return []twrates.Currency{
		{Code: "USD", DisplayName: "美金"},
		{Code: "JPY", DisplayName: "日圓"},
		{Code: "XYZ"},
	}, nil
}

func (c *fakeClient) requested() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.requests...)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
