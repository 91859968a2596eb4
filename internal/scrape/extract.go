package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricecheck/internal/currency"
	"pricecheck/internal/errs"
	"pricecheck/internal/product"
)

// Selectors are the per-source CSS selectors for pulling a product out
// of a search results page.
type Selectors struct {
	Container string
	Title     string
	Price     string
	Link      string
	Image     string
}

// FirstProduct extracts the first result from a search results page.
// Relative links are resolved against the scheme+host of searchURL.
// The returned quote is unscored; the identity matcher assigns its
// confidence.
func FirstProduct(html string, sel Selectors, searchURL, siteHint string) (product.SitePrice, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return product.SitePrice{}, errs.Wrap(errs.KindParse, "parse search results html", err)
	}

	base, err := baseURL(searchURL)
	if err != nil {
		return product.SitePrice{}, err
	}

	container := doc.Find(sel.Container).First()
	if container.Length() == 0 {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product container")
	}

	title := strings.TrimSpace(container.Find(sel.Title).First().Text())
	if title == "" {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product title")
	}

	priceText := strings.TrimSpace(container.Find(sel.Price).First().Text())
	if priceText == "" {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product price")
	}
	amount, cur, err := currency.ParsePrice(priceText, siteHint)
	if err != nil {
		return product.SitePrice{}, err
	}

	href, ok := container.Find(sel.Link).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return product.SitePrice{}, errs.New(errs.KindMissingField, "product link")
	}

	// PriceUSD stays zero here; the orchestrator owns currency
	// normalization.
	return product.SitePrice{
		Title:    title,
		Price:    amount,
		Currency: string(cur),
		Link:     resolveLink(base, href),
		Image:    firstImage(container, sel.Image),
	}, nil
}

// firstImage prefers data-src over src to pick up lazy-loaded images,
// skipping inline SVG placeholders.
func firstImage(container *goquery.Selection, selector string) string {
	img := container.Find(selector).First()
	if src, ok := img.Attr("data-src"); ok && src != "" && !strings.Contains(src, "data:image/svg") {
		return src
	}
	src, _ := img.Attr("src")
	return src
}

// baseURL reduces a URL to scheme://host.
func baseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errs.Newf(errs.KindInternal, "invalid search url %q", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}

func resolveLink(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
