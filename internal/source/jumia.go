package source

import (
	"context"
	"net/url"

	"pricecheck/internal/errs"
	"pricecheck/internal/product"
	"pricecheck/internal/scrape"
)

// JumiaConfig controls the Jumia adapter.
type JumiaConfig struct {
	Enabled   bool
	SearchURL string
}

type Jumia struct {
	cfg    JumiaConfig
	client *scrape.Client
}

func NewJumia(cfg JumiaConfig, client *scrape.Client) *Jumia {
	if cfg.SearchURL == "" {
		cfg.SearchURL = "https://www.jumia.com.ng/catalog/?q="
	}
	return &Jumia{cfg: cfg, client: client}
}

func (j *Jumia) Name() string { return "Jumia" }

func (j *Jumia) Fetch(ctx context.Context, ids product.Identifiers, query string) (product.SitePrice, error) {
	if !j.cfg.Enabled {
		return product.SitePrice{}, errs.New(errs.KindInternal, "jumia source disabled")
	}
	if j.client == nil {
		return product.SitePrice{}, errs.New(errs.KindInternal, "jumia source requires the scraping transport")
	}

	searchURL := j.cfg.SearchURL + url.QueryEscape(query)
	html, err := j.client.RenderPage(ctx, searchURL, true)
	if err != nil {
		return product.SitePrice{}, err
	}

	sel := scrape.Selectors{
		Container: "article.prd",
		Title:     ".name",
		Price:     ".prc",
		Link:      "a.core",
		Image:     "img.img",
	}
	p, err := scrape.FirstProduct(html, sel, searchURL, "jumia")
	if err != nil {
		return product.SitePrice{}, err
	}
	p.Site = j.Name()
	return p, nil
}
