// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twrates provides a client for scraping card-network exchange rates
// from twrates.com.
//
// Each currency has a page at {base}/{code}.html listing one table row per card
// network, with the rate into TWD followed by the date the network published it,
// e.g. "32.244 (2024-01-01)". Every currency page also carries the index of all
// available currencies as "li.itm" entries. The site requires no authentication.
package twrates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bufdev/iapctl/internal/pkg/backoff"
	"github.com/bufdev/iapctl/internal/pkg/pricetext"
)

const (
	// DefaultBaseURL is the base URL of the Mastercard-ordered rate pages.
	DefaultBaseURL = "https://www.twrates.com/card/mastercard"
	// indexCurrencyCode is the currency whose page is used to enumerate all currencies.
	indexCurrencyCode = "usd"
	// requestTimeout bounds every request made by the default HTTP client.
	requestTimeout = 10 * time.Second
	// userAgent is sent with every request, the site rejects the Go default.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Rate is the parsed rate page for a single currency.
type Rate struct {
	// CurrencyCode is the upper-case ISO currency code that was requested (e.g., "USD").
	CurrencyCode string
	// DisplayName is the site's display name for the currency (e.g., "美金").
	// Empty if the page does not carry one.
	DisplayName string
	// Rows are the per-card-network rows in page order.
	Rows []Row
}

// Row is a single card-network row of a rate page.
type Row struct {
	// Label is the card network label as shown by the site (e.g., "JCB", "萬事達", "VISA").
	Label string
	// Rate is the rate into TWD as a decimal string (e.g., "32.244").
	Rate string
	// Date is the YYYY-MM-DD date the rate was published, or empty if not shown.
	Date string
}

// Currency is a currency listed in the site's index.
type Currency struct {
	// Code is the upper-case ISO currency code (e.g., "USD").
	Code string `json:"currency_code"`
	// DisplayName is the site's display name for the currency (e.g., "美金").
	DisplayName string `json:"currency_display_name"`
	// URL is the absolute URL of the currency's rate page.
	URL string `json:"url"`
}

// Client is the interface for fetching exchange rates.
type Client interface {
	// GetRate fetches and parses the rate page for a currency code.
	//
	// Returns an error for non-200 responses and for pages with no rate rows.
	GetRate(ctx context.Context, currencyCode string) (*Rate, error)
	// ListCurrencies fetches the index of all currencies available on the site.
	ListCurrencies(ctx context.Context) ([]Currency, error)
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*client)

// ClientWithHTTPClient sets the HTTP client to use for requests.
func ClientWithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// ClientWithBaseURL sets the base URL of the rate pages.
//
// The default is DefaultBaseURL.
func ClientWithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// ClientWithRetryPolicy sets the policy for retrying transient failures.
//
// The default is backoff.DefaultPolicy.
func ClientWithRetryPolicy(retryPolicy backoff.Policy) ClientOption {
	return func(c *client) {
		c.retryPolicy = retryPolicy
	}
}

// NewClient creates a new exchange rate client with the given options.
func NewClient(options ...ClientOption) Client {
	c := &client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     DefaultBaseURL,
		retryPolicy: backoff.DefaultPolicy,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// *** PRIVATE ***

type client struct {
	httpClient  *http.Client
	baseURL     string
	retryPolicy backoff.Policy
}

func (c *client) GetRate(ctx context.Context, currencyCode string) (*Rate, error) {
	if currencyCode == "" {
		return nil, errors.New("currency code is required")
	}
	document, err := c.getDocument(ctx, c.pageURL(currencyCode))
	if err != nil {
		return nil, err
	}
	rate := &Rate{
		CurrencyCode: strings.ToUpper(currencyCode),
		DisplayName:  parseDisplayName(document),
	}
	document.Find("tr").Each(func(_ int, selection *goquery.Selection) {
		cells := selection.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		value, date := pricetext.ParseRate(cells.Eq(1).Text())
		if label == "" || value == "" {
			return
		}
		rate.Rows = append(rate.Rows, Row{
			Label: label,
			Rate:  value,
			Date:  date,
		})
	})
	if len(rate.Rows) == 0 {
		return nil, fmt.Errorf("no rate rows found for %s", rate.CurrencyCode)
	}
	return rate, nil
}

func (c *client) ListCurrencies(ctx context.Context) ([]Currency, error) {
	indexURL := c.pageURL(indexCurrencyCode)
	document, err := c.getDocument(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, err
	}
	var currencies []Currency
	document.Find("li.itm").Each(func(_ int, selection *goquery.Selection) {
		// Entries look like "USD - 美金".
		code, displayName, _ := strings.Cut(strings.TrimSpace(selection.Text()), " - ")
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return
		}
		href, ok := selection.Find("a").Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		currencies = append(currencies, Currency{
			Code:        code,
			DisplayName: strings.TrimSpace(displayName),
			URL:         base.ResolveReference(ref).String(),
		})
	})
	if len(currencies) == 0 {
		return nil, errors.New("no currencies found in index")
	}
	return currencies, nil
}

// pageURL returns the rate page URL for a currency code.
func (c *client) pageURL(currencyCode string) string {
	return fmt.Sprintf("%s/%s.html", c.baseURL, strings.ToLower(currencyCode))
}

// getDocument fetches a page and parses it as HTML.
//
// Transient failures are retried according to the retry policy.
func (c *client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return backoff.Retry(ctx, c.retryPolicy, func(ctx context.Context, _ int) (*goquery.Document, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			err := fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, pageURL, string(body))
			if !backoff.RetryableStatus(resp.StatusCode) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		document, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("parsing %s: %w", pageURL, err))
		}
		return document, nil
	})
}

// parseDisplayName extracts the currency display name from the currency switcher
// anchor, whose text looks like "USD - 美金\u00a0\u00a0▼".
func parseDisplayName(document *goquery.Document) string {
	text := document.Find(`a[onclick="change_ccy()"]`).First().Text()
	_, displayName, found := strings.Cut(text, " - ")
	if !found {
		return ""
	}
	displayName, _, _ = strings.Cut(displayName, "\u00a0")
	return strings.TrimSpace(displayName)
}
