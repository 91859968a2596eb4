package source

import (
	"context"
	"log/slog"
	"net/url"

	"pricecheck/internal/errs"
	"pricecheck/internal/product"
	"pricecheck/internal/scrape"
)

// AmazonConfig controls the Amazon adapter.
type AmazonConfig struct {
	Enabled   bool
	SearchURL string
}

// Amazon looks products up by ASIN when one is supplied and falls back
// to a text search otherwise.
type Amazon struct {
	cfg    AmazonConfig
	client *scrape.Client
	log    *slog.Logger
}

func NewAmazon(cfg AmazonConfig, client *scrape.Client, log *slog.Logger) *Amazon {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.amazon.com/s?k="
	}
	if log == nil {
		log = slog.Default()
	}
	return &Amazon{cfg: cfg, client: client, log: log}
}

func (a *Amazon) Name() string { return "Amazon" }

func (a *Amazon) Fetch(ctx context.Context, ids product.Identifiers, query string) (product.SitePrice, error) {
	if !a.cfg.Enabled {
		return product.SitePrice{}, errs.New(errs.KindInternal, "amazon source disabled")
	}
	if a.client == nil {
		return product.SitePrice{}, errs.New(errs.KindInternal, "amazon source requires the scraping transport")
	}

	// Direct ASIN lookup is exact by construction; a failed lookup
	// falls back to search rather than propagating.
	if ids.ASIN != "" {
		p, err := a.client.AmazonProduct(ctx, ids.ASIN)
		if err == nil {
			return p, nil
		}
		a.log.Debug("asin lookup failed, falling back to search", "asin", ids.ASIN, "error", err)
	}

	searchURL := a.cfg.SearchURL + url.QueryEscape(query)
	html, err := a.client.RenderPage(ctx, searchURL, true)
	if err != nil {
		return product.SitePrice{}, err
	}

	sel := scrape.Selectors{
		Container: "div[data-component-type='s-search-result']",
		Title:     "h2 a span",
		Price:     "span.a-price span.a-offscreen",
		Link:      "h2 a",
		Image:     "img.s-image",
	}
	p, err := scrape.FirstProduct(html, sel, searchURL, "amazon.com")
	if err != nil {
		return product.SitePrice{}, err
	}
	p.Site = a.Name()
	return p, nil
}
