package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"pricecheck/internal/currency"
	"pricecheck/internal/product"
)

// siteFactor skews the base price per site so mocked comparisons have a
// stable, distinguishable ordering.
var siteFactor = map[string]float64{
	"Amazon": 1.05,
	"eBay":   0.95,
	"Jumia":  1.02,
	"Konga":  0.98,
}

// Mock produces deterministic quotes derived from the query text. The
// same query always yields the same price for a given site.
type Mock struct {
	site string
}

func NewMock(site string) *Mock {
	return &Mock{site: site}
}

func (m *Mock) Name() string { return m.site }

func (m *Mock) Fetch(_ context.Context, _ product.Identifiers, query string) (product.SitePrice, error) {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	base := 50 + float64(h.Sum32()%95000)/100

	factor, ok := siteFactor[m.site]
	if !ok {
		factor = 1
	}
	price := decimal.NewFromFloat(base * factor).Round(2)

	p := product.SitePrice{
		Site:     m.site,
		Title:    query,
		Price:    price,
		Currency: string(currency.USD),
		PriceUSD: price,
		Link:     fmt.Sprintf("https://example.com/%s/%s", strings.ToLower(m.site), url.PathEscape(query)),
		Image:    fmt.Sprintf("https://example.com/%s/image.jpg", strings.ToLower(m.site)),
	}
	p.SetConfidence(100)
	return p, nil
}
