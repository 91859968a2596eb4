package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pricecheck/internal/product"
)

func quote(site, title, link string) product.SitePrice {
	return product.SitePrice{Site: site, Title: title, Link: link}
}

func TestConfidence_ExactUPCWholeToken(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{UPC: "123456789012"}

	// Whole-token match wins outright, even though the fuzzy tier would
	// score this title 0.
	got := Confidence(ids, quote("eBay", "Widget with UPC 123456789012 included", "https://example.com"))
	require.Equal(t, 100, got)

	// The identifier buried inside a longer token is not a match.
	got = Confidence(ids, quote("eBay", "Widget SKU-1234567890123456", "https://example.com"))
	require.Equal(t, 0, got)
}

func TestConfidence_ShortIdentifierNeverExact(t *testing.T) {
	t.Parallel()

	// 7 characters is below the whole-token minimum, even on an exact
	// token hit.
	ids := product.Identifiers{UPC: "1234567"}
	got := Confidence(ids, quote("eBay", "Gadget 1234567 original", "https://example.com"))
	require.NotEqual(t, 100, got)
}

func TestConfidence_MarketplaceIDRequiresSiteMatch(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{ASIN: "B07FZ8S74R"}

	got := Confidence(ids, quote("Amazon", "Echo Dot", "https://www.amazon.com/dp/B07FZ8S74R"))
	require.Equal(t, 100, got)

	// Same ASIN in a non-Amazon link must not assert identity.
	got = Confidence(ids, quote("Jumia", "Echo Dot", "https://jumia.com.ng/B07FZ8S74R"))
	require.Equal(t, 0, got)
}

func TestConfidence_EbayItemIDInLink(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{EbayItemID: "12345678910"}
	got := Confidence(ids, quote("eBay", "Dell XPS", "https://www.ebay.com/itm/12345678910"))
	require.Equal(t, 100, got)
}

func TestConfidence_ModelBrandTiers(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{Brand: "Dell", ModelNumber: "XPS-13"}

	tests := []struct {
		name  string
		title string
		specs []product.Spec
		want  int
	}{
		{name: "model and brand", title: "Dell XPS-13 Laptop 16GB", want: 90},
		{
			name:  "model brand and spec agreement",
			title: "Dell XPS-13 Laptop Silver 512GB",
			specs: []product.Spec{{Name: "color", Value: "Silver"}},
			want:  95,
		},
		{
			name:  "spec value not mentioned stays at 90",
			title: "Dell XPS-13 Laptop",
			specs: []product.Spec{{Name: "color", Value: "Silver"}},
			want:  90,
		},
		{name: "brand only", title: "Dell Inspiron Laptop", want: 75},
		{name: "model only", title: "Refurbished XPS-13 ultrabook", want: 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := quote("eBay", tt.title, "https://example.com")
			got := Confidence(product.Identifiers{
				Brand:       ids.Brand,
				ModelNumber: ids.ModelNumber,
				Specs:       tt.specs,
			}, q)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestConfidence_MPNCountsAsModelIdentifier(t *testing.T) {
	t.Parallel()

	// A manufacturer part number stands in for the model number.
	ids := product.Identifiers{Brand: "Logitech", MPN: "910-005880"}

	got := Confidence(ids, quote("eBay", "Logitech MX Master 3 910-005880 Wireless Mouse", "https://example.com"))
	require.Equal(t, 90, got)

	got = Confidence(ids, quote("eBay", "Wireless mouse 910-005880 graphite", "https://example.com"))
	require.Equal(t, 75, got)
}

func TestConfidence_SpecComparisonIgnoresCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{
		Brand:       "Samsung",
		ModelNumber: "S24",
		Specs:       []product.Spec{{Name: "storage", Value: "256 GB"}},
	}
	got := Confidence(ids, quote("Amazon", "Samsung Galaxy S24 256GB Phantom Black", "https://example.com"))
	require.Equal(t, 95, got)
}

func TestConfidence_FuzzyRange(t *testing.T) {
	t.Parallel()

	ids := product.Identifiers{Brand: "Sony", ModelNumber: ""}

	// Brand alone (no model) cannot use tier 3; the fuzzy fallback
	// applies and stays within [0,80].
	got := Confidence(ids, quote("eBay", "Sony WH-1000XM5 Wireless Headphones", "https://example.com"))
	require.GreaterOrEqual(t, got, 1)
	require.LessOrEqual(t, got, 80)
}

func TestConfidence_NoIdentityInformation(t *testing.T) {
	t.Parallel()

	got := Confidence(product.Identifiers{}, quote("eBay", "Anything at all", "https://example.com"))
	require.Equal(t, 0, got)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	c90, c60 := 90, 60
	in := []product.SitePrice{
		{Site: "a", MatchConfidence: &c90},
		{Site: "b", MatchConfidence: &c60},
		{Site: "c"}, // unscored
	}
	out := Filter(in, 70)
	require.Len(t, out, 1)
	require.Equal(t, "a", out[0].Site)
}

func TestExtractFromURL(t *testing.T) {
	t.Parallel()

	ids := ExtractFromURL("https://www.amazon.com/dp/B07FZ8S74R/ref=xyz")
	require.Equal(t, "B07FZ8S74R", ids.ASIN)

	ids = ExtractFromURL("https://www.amazon.com/gp/product/B08N5WRWNW")
	require.Equal(t, "B08N5WRWNW", ids.ASIN)

	ids = ExtractFromURL("https://www.ebay.com/itm/Product-Name/12345678910?hash=xyz")
	require.Equal(t, "12345678910", ids.EbayItemID)

	ids = ExtractFromURL("https://www.jumia.com.ng/some-product.html")
	require.Empty(t, ids.ASIN)
	require.Empty(t, ids.EbayItemID)
}
