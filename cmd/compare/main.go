// Command compare runs a one-shot price comparison from the terminal
// and prints the ranked result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pricecheck/internal/compare"
	"pricecheck/internal/config"
	"pricecheck/internal/currency"
	"pricecheck/internal/httpx"
	"pricecheck/internal/match"
	"pricecheck/internal/product"
	"pricecheck/internal/source"
)

func main() {
	var (
		query      string
		pageURL    string
		brand      string
		model      string
		mpn        string
		upc        string
		asin       string
		target     string
		mock       bool
		minConf    int
		timeout    int
		configPath string
	)
	flag.StringVar(&query, "q", "", "product name to compare (required)")
	flag.StringVar(&pageURL, "url", "", "product page URL to derive identifiers from")
	flag.StringVar(&brand, "brand", "", "brand name")
	flag.StringVar(&model, "model", "", "model number")
	flag.StringVar(&mpn, "mpn", "", "manufacturer part number")
	flag.StringVar(&upc, "upc", "", "UPC code")
	flag.StringVar(&asin, "asin", "", "Amazon ASIN")
	flag.StringVar(&target, "currency", "", "target currency code for converted prices")
	flag.BoolVar(&mock, "mock", false, "force deterministic mock sources")
	flag.IntVar(&minConf, "min-confidence", 0, "override minimum match confidence")
	flag.IntVar(&timeout, "timeout", 0, "per-source timeout seconds")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: compare -q \"product name\" [-url ...] [-currency EUR]")
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}
	if mock {
		cfg.Scraper.UseMockData = true
	}
	if minConf > 0 {
		cfg.Scraper.MinConfidence = minConf
	}
	if timeout > 0 {
		cfg.Scraper.RequestTimeoutSec = timeout
	}

	var targetCur currency.Currency
	if target != "" {
		c, err := currency.FromString(target)
		if err != nil {
			logger.Error("currency", "error", err)
			os.Exit(2)
		}
		targetCur = c
	}

	httpClient := httpx.New(time.Duration(cfg.Scraper.RequestTimeoutSec) * time.Second)
	retry := httpx.DefaultRetry()
	if cfg.Scraper.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Scraper.MaxRetries
	}

	// The one-shot run skips Redis entirely; rates fall back to the
	// remote API or the static table.
	rates := currency.NewRates(currency.RatesConfig{APIURL: cfg.Currency.APIURL}, nil, httpClient, retry, logger)

	sources := source.FromConfig(cfg.Scraper, httpClient, retry, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	svc := compare.NewService(compare.Config{
		MinConfidence: cfg.Scraper.MinConfidence,
		Timeout:       time.Duration(cfg.Scraper.RequestTimeoutSec) * time.Second,
	}, sources, nil, rates, logger)

	ids := product.Identifiers{UPC: upc, ASIN: asin, ModelNumber: model, MPN: mpn, Brand: brand}
	if pageURL != "" {
		fromURL := match.ExtractFromURL(pageURL)
		if ids.ASIN == "" {
			ids.ASIN = fromURL.ASIN
		}
		if ids.EbayItemID == "" {
			ids.EbayItemID = fromURL.EbayItemID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.Scraper.RequestTimeoutSec)*time.Second)
	defer cancel()

	result, _, err := svc.Compare(ctx, compare.Request{
		Query:          query,
		Identifiers:    ids,
		TargetCurrency: targetCur,
	})
	if err != nil {
		logger.Error("comparison failed", "error", err)
		os.Exit(1)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
