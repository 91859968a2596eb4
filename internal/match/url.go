package match

import (
	"strings"

	"pricecheck/internal/product"
)

// ExtractFromURL pulls marketplace identifiers out of common e-commerce
// URL shapes, so a caller pasting a product page link still gets
// identifier-grade matching.
func ExtractFromURL(url string) product.Identifiers {
	var ids product.Identifiers
	if strings.Contains(url, "amazon.") {
		ids.ASIN = extractASIN(url)
	}
	if strings.Contains(url, "ebay.") {
		ids.EbayItemID = extractEbayItemID(url)
	}
	return ids
}

// extractASIN handles /dp/B07FZ8S74R, /gp/product/B07FZ8S74R and
// /product/B07FZ8S74R. An ASIN is exactly 10 alphanumeric characters.
func extractASIN(url string) string {
	for _, pattern := range []string{"/dp/", "/gp/product/", "/product/"} {
		idx := strings.Index(url, pattern)
		if idx < 0 {
			continue
		}
		rest := url[idx+len(pattern):]
		var b strings.Builder
		for _, r := range rest {
			if !isAlphanum(r) || b.Len() == 10 {
				break
			}
			b.WriteRune(r)
		}
		if b.Len() == 10 {
			return b.String()
		}
	}
	return ""
}

// extractEbayItemID handles /itm/12345678910 and
// /itm/Product-Name/12345678910?hash=xyz: the last all-digit path
// segment after /itm/.
func extractEbayItemID(url string) string {
	idx := strings.Index(url, "/itm/")
	if idx < 0 {
		return ""
	}
	path := url[idx+len("/itm/"):]
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" && isAllDigits(parts[i]) {
			return parts[i]
		}
	}
	return ""
}

func isAlphanum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
