// Package compare orchestrates a price comparison: fan out to every
// configured source, score candidates against the product identity,
// normalize currencies and rank what survives.
package compare

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pricecheck/internal/currency"
	"pricecheck/internal/errs"
	"pricecheck/internal/match"
	"pricecheck/internal/product"
	"pricecheck/internal/source"
)

// ResultCache stores finished comparison results keyed by query.
type ResultCache interface {
	Get(ctx context.Context, query string) (*product.ComparisonResult, error)
	Put(ctx context.Context, query string, result *product.ComparisonResult) error
}

// RateConverter converts amounts between currencies.
type RateConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to currency.Currency) decimal.Decimal
	ToUSD(ctx context.Context, amount decimal.Decimal, from currency.Currency) decimal.Decimal
}

var (
	// ErrNoCandidates means every source failed or returned nothing.
	ErrNoCandidates = errs.New(errs.KindNoMatch, "no source returned a candidate quote")

	// ErrBelowConfidence means candidates arrived but none scored at or
	// above the configured threshold.
	ErrBelowConfidence = errs.New(errs.KindNoMatch, "no product met the confidence threshold")
)

// Config controls a comparison run.
type Config struct {
	// MinConfidence is the lowest match score a quote may carry and
	// still appear in results.
	MinConfidence int

	// Timeout bounds each individual source fetch.
	Timeout time.Duration
}

// Request is one comparison invocation.
type Request struct {
	Query          string
	Identifiers    product.Identifiers
	TargetCurrency currency.Currency

	// Refresh bypasses the cached result and overwrites it.
	Refresh bool
}

// Service runs comparisons. The cache and rate converter are optional;
// a nil cache disables result caching and a nil converter leaves prices
// in their native currency.
type Service struct {
	cfg     Config
	sources []source.Source
	cache   ResultCache
	rates   RateConverter
	log     *slog.Logger
}

func NewService(cfg Config, sources []source.Source, cache ResultCache, rates RateConverter, log *slog.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, sources: sources, cache: cache, rates: rates, log: log}
}

// Compare runs the full pipeline for one product. The second return
// value reports whether the result came from the cache.
func (s *Service) Compare(ctx context.Context, req Request) (*product.ComparisonResult, bool, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, false, errs.New(errs.KindParse, "product query is required")
	}
	req.Query = query

	if s.cache != nil && !req.Refresh {
		cached, err := s.cache.Get(ctx, query)
		if err != nil {
			s.log.Warn("result cache read failed", "error", err)
		}
		if cached != nil {
			s.convertToTarget(ctx, cached, req.TargetCurrency)
			return cached, true, nil
		}
	}

	quotes := s.fetchAll(ctx, req)
	if len(quotes) == 0 {
		return nil, false, ErrNoCandidates
	}

	for i := range quotes {
		q := &quotes[i]
		if !q.Scored() {
			q.SetConfidence(match.Confidence(req.Identifiers, *q))
		}
		// Normalize unconditionally for non-USD quotes: a pre-filled
		// PriceUSD is only trusted when the quote already trades in USD.
		if !q.Price.IsZero() && (q.PriceUSD.IsZero() || q.Currency != string(currency.USD)) {
			q.PriceUSD = s.toUSD(ctx, q.Price, currency.Currency(q.Currency))
		}
	}

	matched := match.Filter(quotes, s.cfg.MinConfidence)
	if len(matched) == 0 {
		return nil, false, ErrBelowConfidence
	}

	ranked := product.NewComparisonResult(matched)
	result := &ranked

	if s.cache != nil {
		if err := s.cache.Put(ctx, query, result); err != nil {
			s.log.Warn("result cache write failed", "error", err)
		}
	}

	s.convertToTarget(ctx, result, req.TargetCurrency)
	return result, false, nil
}

type fetchOutcome struct {
	site  string
	quote product.SitePrice
	err   error
}

// fetchAll queries every source concurrently. A failed source drops out
// of the comparison instead of failing it.
func (s *Service) fetchAll(ctx context.Context, req Request) []product.SitePrice {
	outcomes := make(chan fetchOutcome, len(s.sources))
	for _, src := range s.sources {
		go func(src source.Source) {
			fctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()

			quote, err := src.Fetch(fctx, req.Identifiers, req.Query)
			outcomes <- fetchOutcome{site: src.Name(), quote: quote, err: err}
		}(src)
	}

	quotes := make([]product.SitePrice, 0, len(s.sources))
	for range s.sources {
		out := <-outcomes
		if out.err != nil {
			s.log.Warn("source fetch failed", "site", out.site, "error", out.err)
			continue
		}
		quotes = append(quotes, out.quote)
	}
	return quotes
}

func (s *Service) toUSD(ctx context.Context, amount decimal.Decimal, from currency.Currency) decimal.Decimal {
	if s.rates == nil {
		return amount
	}
	return s.rates.ToUSD(ctx, amount, from)
}

// convertToTarget annotates every quote, and the best deal, with its
// price in the requested currency. Cached results are converted per
// request so one cached entry serves every target currency.
func (s *Service) convertToTarget(ctx context.Context, result *product.ComparisonResult, target currency.Currency) {
	if target == "" || s.rates == nil || result == nil {
		return
	}
	annotate := func(p *product.SitePrice) {
		converted := s.rates.Convert(ctx, p.Price, currency.Currency(p.Currency), target)
		p.PriceConverted = &converted
		p.TargetCurrency = string(target)
	}
	for i := range result.AllPrices {
		annotate(&result.AllPrices[i])
	}
	if result.BestDeal != nil {
		annotate(result.BestDeal)
	}
}
