package main

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"pricecheck/internal/cache"
	"pricecheck/internal/compare"
	"pricecheck/internal/config"
	"pricecheck/internal/currency"
	"pricecheck/internal/httpx"
	"pricecheck/internal/source"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	rdb := connectRedis(cfg.Redis.URL, logger)

	httpClient := httpx.New(time.Duration(cfg.Scraper.RequestTimeoutSec) * time.Second)
	if cfg.Scraper.UserAgent != "" {
		httpClient.UserAgent = cfg.Scraper.UserAgent
	}
	retry := httpx.DefaultRetry()
	if cfg.Scraper.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Scraper.MaxRetries
	}

	rates := currency.NewRates(currency.RatesConfig{
		APIURL:   cfg.Currency.APIURL,
		CacheTTL: time.Duration(cfg.Currency.CacheTTLHours) * time.Hour,
	}, rdb, httpClient, retry, logger)

	var resultCache compare.ResultCache
	if rdb != nil {
		resultCache = cache.NewResults(rdb, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}

	sources := source.FromConfig(cfg.Scraper, httpClient, retry, logger)
	if len(sources) == 0 {
		logger.Error("no sources enabled")
		os.Exit(1)
	}

	svc := compare.NewService(compare.Config{
		MinConfidence: cfg.Scraper.MinConfidence,
		Timeout:       time.Duration(cfg.Scraper.RequestTimeoutSec) * time.Second,
	}, sources, resultCache, rates, logger)

	s := &server{svc: svc, rdb: rdb, log: logger}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(limitBody(s.routes())))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port, "mock", cfg.Scraper.UseMockData)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// connectRedis parses and dials the Redis URL. A missing or unreachable
// Redis degrades to uncached operation rather than refusing to start.
func connectRedis(rawURL string, log *slog.Logger) *redis.Client {
	if rawURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		log.Warn("invalid redis url, caching disabled", "error", err)
		return nil
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, caching disabled", "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
