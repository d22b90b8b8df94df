// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package playstore provides a client for reading app metadata from the
// Google Play Store app-details page.
//
// The details page embeds its data as JSON arrays passed to
// AF_initDataCallback calls, one per data key ("ds:5" carries the app details).
// The localized in-app purchase price range, e.g. "$0.99 - $99.99 per item",
// lives at a fixed position in the "ds:5" array. If the page layout changes and
// the embedded data cannot be read, the rendered page text is searched instead.
package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bufdev/iapctl/internal/pkg/backoff"
)

const (
	// DefaultBaseURL is the Play Store app-details endpoint.
	DefaultBaseURL = "https://play.google.com/store/apps/details"
	// DefaultLanguage is the default display language of the details page.
	DefaultLanguage = "en"
	// detailsDataKey is the AF_initDataCallback key carrying the app details.
	detailsDataKey = "ds:5"
	// requestTimeout bounds every request made by the default HTTP client.
	requestTimeout = 10 * time.Second
	// maxFallbackTextLength bounds the length of a rendered price range element.
	maxFallbackTextLength = 80
)

var (
	// inAppPricePath is the index path of the price range within the details data.
	inAppPricePath = []int{1, 2, 19, 0}
	// dataCallbackRegexp matches an AF_initDataCallback call, capturing its key and data.
	dataCallbackRegexp = regexp.MustCompile(`(?s)AF_initDataCallback\(\{key:\s*'(ds:\d+)'.*?data:(.*?), sideChannel: \{\}\}\);`)
	// pricePhrases identify the rendered price range element in the fallback path.
	pricePhrases = []string{
		"per item",
		"每個項目",
	}
)

// ErrNoInAppPrice is returned when the app has no in-app price range for the country.
var ErrNoInAppPrice = errors.New("no in-app price range")

// Client is the interface for reading app metadata from the Play Store.
type Client interface {
	// GetInAppPriceRange returns the raw localized in-app price range string for
	// an app as shown to users in the given country (ISO 3166 alpha-2 code).
	//
	// Returns ErrNoInAppPrice if the listing has no in-app price range, and other
	// errors for network failures and non-200 responses.
	GetInAppPriceRange(ctx context.Context, packageID string, countryCode string) (string, error)
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*client)

// ClientWithHTTPClient sets the HTTP client to use for requests.
func ClientWithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// ClientWithBaseURL sets the app-details endpoint URL.
//
// The default is DefaultBaseURL.
func ClientWithBaseURL(baseURL string) ClientOption {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// ClientWithLanguage sets the display language (the "hl" parameter).
//
// The default is DefaultLanguage.
func ClientWithLanguage(language string) ClientOption {
	return func(c *client) {
		c.language = language
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

// NewClient creates a new Play Store client with the given options.
func NewClient(options ...ClientOption) Client {
	c := &client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     DefaultBaseURL,
		language:    DefaultLanguage,
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
	language    string
	retryPolicy backoff.Policy
}

func (c *client) GetInAppPriceRange(ctx context.Context, packageID string, countryCode string) (string, error) {
	if packageID == "" {
		return "", errors.New("package ID is required")
	}
	if countryCode == "" {
		return "", errors.New("country code is required")
	}
	query := url.Values{}
	query.Set("id", packageID)
	query.Set("hl", c.language)
	query.Set("gl", strings.ToLower(countryCode))
	reqURL := c.baseURL + "?" + query.Encode()
	body, err := backoff.Retry(ctx, c.retryPolicy, func(ctx context.Context, _ int) ([]byte, error) {
		return c.getBody(ctx, reqURL)
	})
	if err != nil {
		return "", fmt.Errorf("%s in %s: %w", packageID, countryCode, err)
	}
	if price, ok := priceFromDataCallbacks(body); ok {
		return price, nil
	}
	price, err := priceFromRenderedText(body)
	if err != nil {
		return "", fmt.Errorf("%s in %s: %w", packageID, countryCode, err)
	}
	return price, nil
}

// getBody fetches the details page, marking failures that should not be retried
// as permanent.
func (c *client) getBody(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if !backoff.RetryableStatus(resp.StatusCode) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	return body, nil
}

// priceFromDataCallbacks reads the price range from the embedded "ds:5" data.
func priceFromDataCallbacks(body []byte) (string, bool) {
	for _, match := range dataCallbackRegexp.FindAllSubmatch(body, -1) {
		if string(match[1]) != detailsDataKey {
			continue
		}
		var data any
		if err := json.Unmarshal(match[2], &data); err != nil {
			return "", false
		}
		value, ok := lookupPath(data, inAppPricePath)
		if !ok {
			return "", false
		}
		price, ok := value.(string)
		if !ok || strings.TrimSpace(price) == "" {
			return "", false
		}
		return price, true
	}
	return "", false
}

// priceFromRenderedText searches the rendered page for the shortest element
// whose text contains a price phrase.
func priceFromRenderedText(body []byte) (string, error) {
	document, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing details page: %w", err)
	}
	var best string
	document.Find("div, span").Each(func(_ int, selection *goquery.Selection) {
		text := strings.TrimSpace(selection.Text())
		if text == "" || len(text) > maxFallbackTextLength || !containsPricePhrase(text) {
			return
		}
		if best == "" || len(text) < len(best) {
			best = text
		}
	})
	if best == "" {
		return "", ErrNoInAppPrice
	}
	return best, nil
}

// lookupPath walks nested JSON arrays by index.
func lookupPath(value any, path []int) (any, bool) {
	for _, index := range path {
		array, ok := value.([]any)
		if !ok || index < 0 || index >= len(array) {
			return nil, false
		}
		value = array[index]
	}
	return value, true
}

func containsPricePhrase(text string) bool {
	for _, pricePhrase := range pricePhrases {
		if strings.Contains(text, pricePhrase) {
			return true
		}
	}
	return false
}
