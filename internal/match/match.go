// Package match scores how confidently a site quote refers to the same
// physical product as a query's identifiers.
package match

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"pricecheck/internal/product"
)

// minStrongIDLen guards against short numeric strings colliding with
// unrelated tokens: anything shorter is never treated as an exact
// identifier match.
const minStrongIDLen = 8

// fuzzyCeiling caps the fallback similarity score so that fuzzy matches
// can never outrank identifier-based tiers.
const fuzzyCeiling = 80

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "for": {}, "in": {}, "new": {},
	"of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

// Confidence scores a quote against the source identifiers on a 0-100
// scale. Tiers are checked in priority order and the first matching tier
// wins, so an exact identifier is never softened by an unrelated fuzzy
// score. Deterministic and side-effect-free.
func Confidence(ids product.Identifiers, quote product.SitePrice) int {
	title := strings.ToLower(quote.Title)

	// Tier 1: a global trade identifier appearing as a whole token in
	// the title.
	for _, id := range []string{ids.UPC, ids.EAN, ids.GTIN} {
		if len(id) >= minStrongIDLen && containsToken(title, id) {
			return 100
		}
	}

	// Tier 2: a marketplace item ID in the quote's own link, only when
	// the quote actually comes from that marketplace.
	site := strings.ToLower(quote.Site)
	if ids.ASIN != "" && strings.Contains(site, "amazon") && strings.Contains(quote.Link, ids.ASIN) {
		return 100
	}
	if ids.EbayItemID != "" && strings.Contains(site, "ebay") && strings.Contains(quote.Link, ids.EbayItemID) {
		return 100
	}

	// Tier 3: model number (or manufacturer part number) and brand.
	if (ids.ModelNumber != "" || ids.MPN != "") && ids.Brand != "" {
		modelMatch := (ids.ModelNumber != "" && strings.Contains(title, strings.ToLower(ids.ModelNumber))) ||
			(ids.MPN != "" && strings.Contains(title, strings.ToLower(ids.MPN)))
		brandMatch := strings.Contains(title, strings.ToLower(ids.Brand))
		switch {
		case modelMatch && brandMatch:
			if specsCorroborated(ids.Specs, title) {
				return 95
			}
			return 90
		case modelMatch || brandMatch:
			return 75
		}
	}

	// Tier 4: fuzzy title similarity. Without brand/model text on the
	// source side there is no identity information to compare, so no
	// match is asserted.
	return fuzzyScore(ids, title)
}

// containsToken reports whether id equals a whole token of the title,
// split on non-alphanumeric boundaries. A bare substring inside a longer
// token does not count.
func containsToken(title, id string) bool {
	id = strings.ToLower(id)
	tokens := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if tok == id {
			return true
		}
	}
	return false
}

// specsCorroborated reports whether any source specification value is
// present in the title, compared case- and whitespace-insensitively.
// Absent values are unchecked rather than conflicting: a title that
// simply omits the color neither confirms nor denies it.
func specsCorroborated(specs []product.Spec, title string) bool {
	flatTitle := squash(title)
	for _, s := range specs {
		v := squash(s.Value)
		if v != "" && strings.Contains(flatTitle, v) {
			return true
		}
	}
	return false
}

func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// fuzzyScore combines Jaro-Winkler similarity between "brand model" and
// the title (weight 0.6) with a stop-word-stripped keyword overlap ratio
// (weight 0.4), scaled into [0,80].
func fuzzyScore(ids product.Identifiers, title string) int {
	model := ids.ModelNumber
	if model == "" {
		model = ids.MPN
	}
	source := strings.TrimSpace(strings.ToLower(ids.Brand + " " + model))
	if source == "" {
		return 0
	}

	sim := strutil.Similarity(source, title, metrics.NewJaroWinkler())
	overlap := keywordOverlap(source, title)

	score := int((0.6*sim + 0.4*overlap) * fuzzyCeiling)
	if score < 0 {
		score = 0
	}
	if score > fuzzyCeiling {
		score = fuzzyCeiling
	}
	return score
}

// keywordOverlap is the fraction of source keywords found among the
// title's keywords, after stripping stop words.
func keywordOverlap(source, title string) float64 {
	src := keywords(source)
	if len(src) == 0 {
		return 0
	}
	got := make(map[string]struct{})
	for _, w := range keywords(title) {
		got[w] = struct{}{}
	}
	var hits int
	for _, w := range src {
		if _, ok := got[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(src))
}

func keywords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; !stop {
			out = append(out, f)
		}
	}
	return out
}

// Filter keeps only quotes whose confidence meets the threshold.
func Filter(prices []product.SitePrice, minConfidence int) []product.SitePrice {
	out := make([]product.SitePrice, 0, len(prices))
	for _, p := range prices {
		if p.MatchConfidence != nil && *p.MatchConfidence >= minConfidence {
			out = append(out, p)
		}
	}
	return out
}
