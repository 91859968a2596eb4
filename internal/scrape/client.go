// Package scrape talks to the external scraping provider. The provider
// handles page retrieval, anti-bot evasion and JavaScript rendering;
// this package only issues requests and parses what comes back.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"pricecheck/internal/currency"
	"pricecheck/internal/errs"
	"pricecheck/internal/httpx"
	"pricecheck/internal/product"
)

const (
	defaultAPIURL     = "https://api.zenrows.com/v1/"
	amazonProductsURL = "https://ecommerce.api.zenrows.com/v1/targets/amazon/products/"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=scrape_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the scraping transport. It is long-lived and safe for
// concurrent use by multiple simultaneous comparisons.
type Client struct {
	apiURL     string
	productURL string
	apiKey     string
	httpClient HTTPClient
	limiter    *rate.Limiter
	retry      httpx.Retry
	header     http.Header
}

// Option configures the Client.
type Option func(*Client)

// WithAPIURL overrides the universal scraper endpoint.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) { c.apiURL = apiURL }
}

// WithProductAPIURL overrides the structured product lookup endpoint.
func WithProductAPIURL(productURL string) Option {
	return func(c *Client) { c.productURL = productURL }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLimiter sets the shared request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(r httpx.Retry) Option {
	return func(c *Client) { c.retry = r }
}

// WithHeader adds headers sent with every request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, v := range values {
				c.header.Add(key, v)
			}
		}
	}
}

// NewClient creates a scraping transport client. The API key is
// required: enabling a scraped source without one is a configuration
// error.
func NewClient(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errs.New(errs.KindInternal, "scraping API key is required")
	}
	c := &Client{
		apiURL:     defaultAPIURL,
		productURL: amazonProductsURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		retry:      httpx.DefaultRetry(),
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

func (c *Client) do(ctx context.Context, target string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errs.Wrap(errs.KindNetwork, "rate limiter wait", err)
		}
	}
	return c.retry.Do(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return nil, err
		}
		for k, vs := range c.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return c.httpClient.Do(req)
	})
}

// RenderPage fetches the HTML of a page through the scraping provider,
// optionally with JavaScript rendering.
func (c *Client) RenderPage(ctx context.Context, pageURL string, renderJS bool) (string, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("url", pageURL)
	if renderJS {
		q.Set("js_render", "true")
	}

	resp, err := c.do(ctx, c.apiURL+"?"+q.Encode())
	if err != nil {
		return "", errs.Wrap(errs.KindNetwork, "scrape request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return "", errs.Newf(errs.KindNetwork, "scrape API error %d: %s", resp.StatusCode, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Wrap(errs.KindNetwork, "read scrape response", err)
	}
	return string(body), nil
}

// amazonProductResponse is the structured product lookup payload.
type amazonProductResponse struct {
	Title      string `json:"title"`
	Price      string `json:"price"`
	Image      string `json:"image"`
	ProductURL string `json:"product_url"`
	ASIN       string `json:"asin"`
}

// AmazonProduct looks a product up directly by ASIN through the
// provider's structured e-commerce endpoint. The lookup is exact by
// construction, so the returned quote carries confidence 100.
func (c *Client) AmazonProduct(ctx context.Context, asin string) (product.SitePrice, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)

	resp, err := c.do(ctx, c.productURL+asin+"?"+q.Encode())
	if err != nil {
		return product.SitePrice{}, errs.Wrap(errs.KindNetwork, "product lookup failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return product.SitePrice{}, errs.Newf(errs.KindNetwork, "product lookup error %d for asin %s", resp.StatusCode, asin)
	}

	var rec amazonProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return product.SitePrice{}, errs.Wrap(errs.KindParse, "decode product lookup response", err)
	}
	if rec.Title == "" {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product title")
	}
	if rec.Price == "" {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product price")
	}

	amount, cur, err := currency.ParsePrice(rec.Price, "amazon.com")
	if err != nil {
		return product.SitePrice{}, err
	}

	link := rec.ProductURL
	if link == "" {
		link = fmt.Sprintf("https://www.amazon.com/dp/%s", asin)
	}

	p := product.SitePrice{
		Site:     "Amazon",
		Title:    rec.Title,
		Price:    amount,
		Currency: string(cur),
		Link:     link,
		Image:    rec.Image,
	}
	p.SetConfidence(100)
	return p, nil
}
