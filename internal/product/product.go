package product

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Spec is a single named specification value, e.g. "color" -> "black".
// Specifications keep their input order, so they are a slice rather
// than a map.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Identifiers holds the structured identity of a product as supplied by
// the caller. All fields are optional; an empty field means "unknown",
// never "no match". Identifiers are immutable input to a comparison.
type Identifiers struct {
	UPC         string `json:"upc,omitempty"`
	EAN         string `json:"ean,omitempty"`
	GTIN        string `json:"gtin,omitempty"`
	ASIN        string `json:"asin,omitempty"`
	EbayItemID  string `json:"ebay_item_id,omitempty"`
	ModelNumber string `json:"model_number,omitempty"`
	MPN         string `json:"mpn,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Specs       []Spec `json:"specifications,omitempty"`
}

// SitePrice is one site's quote for a product. Price keeps exact decimal
// precision; PriceUSD is the normalized amount used for ranking.
// MatchConfidence is nil until the quote has been scored, and is set
// exactly once.
type SitePrice struct {
	Site     string          `json:"site"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	PriceUSD decimal.Decimal `json:"price_usd"`
	// PriceConverted is the amount in the caller-requested target
	// currency, when one was requested and conversion succeeded.
	PriceConverted  *decimal.Decimal `json:"price_converted,omitempty"`
	TargetCurrency  string           `json:"target_currency,omitempty"`
	Link            string           `json:"link"`
	Image           string           `json:"image,omitempty"`
	MatchConfidence *int             `json:"match_confidence,omitempty"`
}

// Scored reports whether a confidence score has been assigned.
func (p *SitePrice) Scored() bool { return p.MatchConfidence != nil }

// SetConfidence assigns the confidence score. The first assignment wins;
// later calls are ignored so that direct strong-identifier lookups are
// never re-scored.
func (p *SitePrice) SetConfidence(c int) {
	if p.MatchConfidence != nil {
		return
	}
	p.MatchConfidence = &c
}

// ComparisonResult is the ordered outcome of a comparison. AllPrices is
// sorted ascending by USD price and BestDeal, when present, is its first
// element.
type ComparisonResult struct {
	BestDeal  *SitePrice  `json:"best_deal,omitempty"`
	AllPrices []SitePrice `json:"all_prices"`
}

// NewComparisonResult sorts the given quotes ascending by USD price and
// selects the best deal. The sort is stable: quotes with equal USD prices
// keep their input order.
func NewComparisonResult(prices []SitePrice) ComparisonResult {
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].PriceUSD.LessThan(prices[j].PriceUSD)
	})
	res := ComparisonResult{AllPrices: prices}
	if len(prices) > 0 {
		best := prices[0]
		res.BestDeal = &best
	}
	return res
}
