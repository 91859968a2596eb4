package currency

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pricecheck/internal/httpx"
)

const ratesCacheKey = "exchange_rates:usd"

// ExchangeRates is an immutable snapshot of units-per-base rates.
type ExchangeRates struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// rateAPIResponse is the remote rate API payload. Some deployments name
// the base field "base", others "base_code".
type rateAPIResponse struct {
	Result   string             `json:"result"`
	Base     string             `json:"base"`
	BaseCode string             `json:"base_code"`
	Rates    map[string]float64 `json:"rates"`
}

// RatesConfig controls rate retrieval and caching.
type RatesConfig struct {
	APIURL   string
	CacheTTL time.Duration
}

// Rates owns the shared exchange-rate slot: cache-first retrieval with a
// remote API on miss and a static fallback on any API failure. Rate
// unavailability never blocks a price comparison. Safe for concurrent
// use; racing refreshes are coalesced and last-write-wins on the cache
// slot is acceptable.
type Rates struct {
	cfg    RatesConfig
	rdb    *redis.Client
	client *httpx.Client
	retry  httpx.Retry
	log    *slog.Logger

	sf singleflight.Group
}

// NewRates builds the rate service. rdb may be nil, which disables
// caching and makes every call hit the API (or the fallback table).
func NewRates(cfg RatesConfig, rdb *redis.Client, client *httpx.Client, retry httpx.Retry, log *slog.Logger) *Rates {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://open.er-api.com/v6/latest/USD"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Rates{cfg: cfg, rdb: rdb, client: client, retry: retry, log: log}
}

// Current returns the current rate set: cached when fresh, otherwise
// fetched from the API, otherwise the static fallback table. It never
// fails.
func (r *Rates) Current(ctx context.Context) ExchangeRates {
	if cached, ok := r.cached(ctx); ok {
		return cached
	}

	v, _, _ := r.sf.Do(ratesCacheKey, func() (any, error) {
		rates := r.fetch(ctx)
		r.cache(ctx, rates)
		return rates, nil
	})
	return v.(ExchangeRates)
}

func (r *Rates) cached(ctx context.Context) (ExchangeRates, bool) {
	if r.rdb == nil {
		return ExchangeRates{}, false
	}
	raw, err := r.rdb.Get(ctx, ratesCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("rate cache read failed", "error", err)
		}
		return ExchangeRates{}, false
	}
	var rates ExchangeRates
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		r.log.Warn("rate cache payload corrupt", "error", err)
		return ExchangeRates{}, false
	}
	return rates, true
}

func (r *Rates) cache(ctx context.Context, rates ExchangeRates) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	if err := r.rdb.SetEx(ctx, ratesCacheKey, raw, r.cfg.CacheTTL).Err(); err != nil {
		r.log.Warn("rate cache write failed", "error", err)
	}
}

// fetch calls the remote rate API, substituting the fallback table on
// any failure.
func (r *Rates) fetch(ctx context.Context) ExchangeRates {
	resp, err := r.retry.Do(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.APIURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return r.client.Do(ctx, req)
	})
	if err != nil {
		r.log.Warn("exchange rate API unreachable, using fallback rates", "error", err)
		return FallbackRates()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.Warn("exchange rate API returned non-success, using fallback rates", "status", resp.StatusCode)
		return FallbackRates()
	}

	var api rateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		r.log.Warn("exchange rate payload malformed, using fallback rates", "error", err)
		return FallbackRates()
	}
	if api.Result != "success" {
		r.log.Warn("exchange rate API result not success, using fallback rates", "result", api.Result)
		return FallbackRates()
	}

	base := api.Base
	if base == "" {
		base = api.BaseCode
	}
	if base == "" {
		base = string(USD)
	}

	rates := make(map[string]decimal.Decimal, len(api.Rates))
	for code, rate := range api.Rates {
		rates[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return ExchangeRates{Base: base, Rates: rates, UpdatedAt: time.Now().UTC()}
}

// FallbackRates synthesizes a rate set from the static table.
func FallbackRates() ExchangeRates {
	rates := make(map[string]decimal.Decimal, len(fallbackRates))
	for c, r := range fallbackRates {
		rates[string(c)] = r
	}
	return ExchangeRates{Base: string(USD), Rates: rates, UpdatedAt: time.Now().UTC()}
}

// Convert converts amount between currencies, routing through the base:
// divide by the source's units-per-base rate, multiply by the target's.
// Same-currency conversion returns the exact input. Codes absent from
// the live rate set fall back per-currency to the static table.
func (r *Rates) Convert(ctx context.Context, amount decimal.Decimal, from, to Currency) decimal.Decimal {
	if from == to {
		return amount
	}
	rates := r.Current(ctx)
	fromRate := lookupRate(rates, string(from))
	toRate := lookupRate(rates, string(to))
	return amount.Div(fromRate).Mul(toRate)
}

// ToUSD converts amount into US dollars.
func (r *Rates) ToUSD(ctx context.Context, amount decimal.Decimal, from Currency) decimal.Decimal {
	return r.Convert(ctx, amount, from, USD)
}

func lookupRate(rates ExchangeRates, code string) decimal.Decimal {
	if rate, ok := rates.Rates[strings.ToUpper(code)]; ok && !rate.IsZero() {
		return rate
	}
	return fallbackRate(code)
}
