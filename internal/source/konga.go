package source

import (
	"context"
	"net/url"

	"pricecheck/internal/errs"
	"pricecheck/internal/product"
	"pricecheck/internal/scrape"
)

// KongaConfig controls the Konga adapter.
type KongaConfig struct {
	Enabled   bool
	SearchURL string
}

type Konga struct {
	cfg    KongaConfig
	client *scrape.Client
}

func NewKonga(cfg KongaConfig, client *scrape.Client) *Konga {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.konga.com/search?search="
	}
	return &Konga{cfg: cfg, client: client}
}

func (k *Konga) Name() string { return "Konga" }

func (k *Konga) Fetch(ctx context.Context, ids product.Identifiers, query string) (product.SitePrice, error) {
	if !k.cfg.Enabled {
		return product.SitePrice{}, errs.New(errs.KindInternal, "konga source disabled")
	}
	if k.client == nil {
		return product.SitePrice{}, errs.New(errs.KindInternal, "konga source requires the scraping transport")
	}

	searchURL := k.cfg.SearchURL + url.QueryEscape(query)
	html, err := k.client.RenderPage(ctx, searchURL, true)
	if err != nil {
		return product.SitePrice{}, err
	}

	// Konga ships hashed class names; these track the current product
	// card markup and need refreshing when the site rebuilds.
	sel := scrape.Selectors{
		Container: "div._588b5_3MtNs, li.bbv-product",
		Title:     "h3, .name",
		Price:     ".d7c0f_sJAqi, .price",
		Link:      "a",
		Image:     "img",
	}
	p, err := scrape.FirstProduct(html, sel, searchURL, "konga")
	if err != nil {
		return product.SitePrice{}, err
	}
	p.Site = k.Name()
	return p, nil
}
