// Package currency parses locale-ambiguous price strings and converts
// amounts between currencies using live or fallback exchange rates.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"pricecheck/internal/errs"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	NGN Currency = "NGN"
	INR Currency = "INR"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
	JPY Currency = "JPY"
)

// supported lists all currencies the engine knows about, in display order.
var supported = []Currency{USD, EUR, GBP, NGN, INR, CAD, AUD, JPY}

var symbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	NGN: "₦",
	INR: "₹",
	CAD: "C$",
	AUD: "A$",
	JPY: "¥",
}

var names = map[Currency]string{
	USD: "US Dollar",
	EUR: "Euro",
	GBP: "British Pound",
	NGN: "Nigerian Naira",
	INR: "Indian Rupee",
	CAD: "Canadian Dollar",
	AUD: "Australian Dollar",
	JPY: "Japanese Yen",
}

// fallbackRates are static units-per-USD rates used whenever the live
// rate API is unavailable. Rate data is advisory; staleness here is
// acceptable.
var fallbackRates = map[Currency]decimal.Decimal{
	USD: decimal.NewFromInt(1),
	EUR: decimal.RequireFromString("0.93"),
	GBP: decimal.RequireFromString("0.79"),
	NGN: decimal.RequireFromString("1550"),
	INR: decimal.RequireFromString("83.3"),
	CAD: decimal.RequireFromString("1.36"),
	AUD: decimal.RequireFromString("1.52"),
	JPY: decimal.RequireFromString("149.5"),
}

// Supported returns the supported currencies in a stable order.
func Supported() []Currency {
	out := make([]Currency, len(supported))
	copy(out, supported)
	return out
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string { return symbols[c] }

// Name returns the English display name for the currency.
func (c Currency) Name() string { return names[c] }

// FromString validates a currency code, case-insensitively.
func FromString(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := symbols[c]; !ok {
		return "", errs.Newf(errs.KindParse, "unsupported currency %q", s)
	}
	return c, nil
}

// siteHints maps storefront substrings to the currency they trade in,
// used when the price text itself carries no symbol or code.
var siteHints = []struct {
	substr   string
	currency Currency
}{
	{"jumia", NGN},
	{"konga", NGN},
	{"amazon.co.uk", GBP},
	{"ebay.co.uk", GBP},
	{"amazon.de", EUR},
	{"amazon.fr", EUR},
	{"amazon.ca", CAD},
	{"amazon.com.au", AUD},
	{"amazon.in", INR},
	{"amazon.co.jp", JPY},
}

// Detect identifies the currency of a price string. Detection order:
// explicit symbol (multi-character symbols like "C$" before the bare
// "$"), then a 3-letter ISO code substring, then the site hint table,
// then USD.
func Detect(priceText, siteHint string) Currency {
	// C$ and A$ must be checked before the plain dollar sign.
	switch {
	case strings.Contains(priceText, "C$"):
		return CAD
	case strings.Contains(priceText, "A$"):
		return AUD
	case strings.Contains(priceText, "$"):
		return USD
	case strings.Contains(priceText, "€"):
		return EUR
	case strings.Contains(priceText, "£"):
		return GBP
	case strings.Contains(priceText, "₦"):
		return NGN
	case strings.Contains(priceText, "₹"):
		return INR
	case strings.Contains(priceText, "¥"):
		return JPY
	}

	upper := strings.ToUpper(priceText)
	for _, c := range supported {
		if strings.Contains(upper, string(c)) {
			return c
		}
	}

	if siteHint != "" {
		lower := strings.ToLower(siteHint)
		for _, h := range siteHints {
			if strings.Contains(lower, h.substr) {
				return h.currency
			}
		}
	}

	return USD
}

// ParsePrice extracts the numeric amount and currency from a price
// string such as "$1,299.99", "€1.299,99" or "₦50,000".
func ParsePrice(priceText, siteHint string) (decimal.Decimal, Currency, error) {
	cur := Detect(priceText, siteHint)

	var b strings.Builder
	for _, r := range priceText {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || !strings.ContainsAny(cleaned, "0123456789") {
		return decimal.Zero, cur, errs.Newf(errs.KindParse, "no numeric value in price %q", priceText)
	}

	normalized := normalizeSeparators(cleaned)
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, cur, errs.Newf(errs.KindParse, "invalid price format %q", priceText)
	}
	return amount, cur, nil
}

// normalizeSeparators resolves thousands vs decimal separators. When
// both "." and "," appear, whichever occurs last is the decimal
// separator. A lone comma is a decimal separator only when exactly two
// digits follow it.
func normalizeSeparators(cleaned string) string {
	dot := strings.LastIndex(cleaned, ".")
	comma := strings.LastIndex(cleaned, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			// European style: 1.299,99
			return strings.ReplaceAll(strings.ReplaceAll(cleaned, ".", ""), ",", ".")
		}
		// US style: 1,299.99
		return strings.ReplaceAll(cleaned, ",", "")
	case comma >= 0:
		after := cleaned[strings.Index(cleaned, ",")+1:]
		if len(after) == 2 {
			// Decimal comma: 50,00
			return strings.ReplaceAll(cleaned, ",", ".")
		}
		// Thousands separators: 50,000 or 1,000,000
		return strings.ReplaceAll(cleaned, ",", "")
	default:
		return cleaned
	}
}

// fallbackRate returns the static units-per-USD rate for a code, or 1
// when the code is entirely unknown so that a comparison is never
// blocked on rate availability.
func fallbackRate(code string) decimal.Decimal {
	if r, ok := fallbackRates[Currency(strings.ToUpper(code))]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}
