package source

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"pricecheck/internal/config"
	"pricecheck/internal/httpx"
	"pricecheck/internal/scrape"
)

// FromConfig builds the enabled sources for a scraper configuration.
// Mock sources replace the scraped ones when mock data is requested or
// when no scraping API key is available, so credential-less setups
// still answer comparisons.
func FromConfig(sc config.Scraper, httpClient *httpx.Client, retry httpx.Retry, log *slog.Logger) []Source {
	if log == nil {
		log = slog.Default()
	}

	useMock := sc.UseMockData
	if !useMock && sc.ZenRowsAPIKey == "" {
		log.Warn("no scraping API key configured, using mock sources")
		useMock = true
	}

	var scraper *scrape.Client
	if !useMock {
		perSec := sc.RateLimitPerSecond
		if perSec <= 0 {
			perSec = 2
		}
		options := []scrape.Option{
			scrape.WithHTTPClient(httpClient.HTTP),
			scrape.WithLimiter(rate.NewLimiter(rate.Limit(perSec), perSec)),
			scrape.WithRetry(retry),
		}
		if sc.UserAgent != "" {
			options = append(options, scrape.WithHeader(http.Header{"User-Agent": []string{sc.UserAgent}}))
		}
		client, err := scrape.NewClient(sc.ZenRowsAPIKey, options...)
		if err != nil {
			log.Warn("scrape client unavailable, using mock sources", "error", err)
			useMock = true
		} else {
			scraper = client
		}
	}

	var sources []Source
	add := func(enabled bool, name string, real func() Source) {
		if !enabled {
			return
		}
		if useMock {
			sources = append(sources, NewMock(name))
			return
		}
		sources = append(sources, real())
	}
	add(sc.Amazon.Enabled, "Amazon", func() Source {
		return NewAmazon(AmazonConfig{Enabled: true}, scraper, log)
	})
	add(sc.Ebay.Enabled, "eBay", func() Source {
		return NewEbay(EbayConfig{Enabled: true}, scraper)
	})
	add(sc.Jumia.Enabled, "Jumia", func() Source {
		return NewJumia(JumiaConfig{Enabled: true}, scraper)
	})
	add(sc.Konga.Enabled, "Konga", func() Source {
		return NewKonga(KongaConfig{Enabled: true}, scraper)
	})
	return sources
}
