package source

import (
	"context"
	"net/url"
	"strings"

	"pricecheck/internal/errs"
	"pricecheck/internal/product"
	"pricecheck/internal/scrape"
)

// EbayConfig controls the eBay adapter.
type EbayConfig struct {
	Enabled   bool
	SearchURL string
}

type Ebay struct {
	cfg    EbayConfig
	client *scrape.Client
}

func NewEbay(cfg EbayConfig, client *scrape.Client) *Ebay {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.ebay.com/sch/i.html?_nkw="
	}
	return &Ebay{cfg: cfg, client: client}
}

func (e *Ebay) Name() string { return "eBay" }

func (e *Ebay) Fetch(ctx context.Context, ids product.Identifiers, query string) (product.SitePrice, error) {
	if !e.cfg.Enabled {
		return product.SitePrice{}, errs.New(errs.KindInternal, "ebay source disabled")
	}
	if e.client == nil {
		return product.SitePrice{}, errs.New(errs.KindInternal, "ebay source requires the scraping transport")
	}

	searchURL := e.cfg.SearchURL + url.QueryEscape(enrichQuery(query, ids))
	html, err := e.client.RenderPage(ctx, searchURL, true)
	if err != nil {
		return product.SitePrice{}, err
	}

	sel := scrape.Selectors{
		Container: "li.s-item",
		Title:     ".s-item__title",
		Price:     ".s-item__price",
		Link:      ".s-item__link",
		Image:     ".s-item__image-img",
	}
	p, err := scrape.FirstProduct(html, sel, searchURL, "ebay.com")
	if err != nil {
		return product.SitePrice{}, err
	}
	p.Site = e.Name()
	return p, nil
}

// enrichQuery appends brand and model number when the plain query does
// not already carry them, which narrows listing noise considerably.
func enrichQuery(query string, ids product.Identifiers) string {
	lower := strings.ToLower(query)
	parts := []string{query}
	if ids.Brand != "" && !strings.Contains(lower, strings.ToLower(ids.Brand)) {
		parts = append(parts, ids.Brand)
	}
	if ids.ModelNumber != "" && !strings.Contains(lower, strings.ToLower(ids.ModelNumber)) {
		parts = append(parts, ids.ModelNumber)
	}
	return strings.Join(parts, " ")
}
