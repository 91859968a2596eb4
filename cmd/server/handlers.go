package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"pricecheck/internal/compare"
	"pricecheck/internal/currency"
	"pricecheck/internal/errs"
	"pricecheck/internal/match"
	"pricecheck/internal/product"
)

type server struct {
	svc *compare.Service
	rdb *redis.Client
	log *slog.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/ready", s.handleReady)
	mux.HandleFunc("/api/compare", s.handleCompare)
	mux.HandleFunc("/api/currencies", s.handleCurrencies)
	return mux
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether dependencies are reachable. Redis being
// down degrades readiness because both caches sit on it.
func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.rdb == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "redis": "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "redis": "ok"})
}

// compareRequest is the POST body. The GET form maps query params onto
// the same fields.
type compareRequest struct {
	ProductName    string              `json:"product_name"`
	URL            string              `json:"url,omitempty"`
	Identifiers    product.Identifiers `json:"identifiers"`
	TargetCurrency string              `json:"target_currency,omitempty"`
	Refresh        bool                `json:"refresh,omitempty"`
}

type compareResponse struct {
	BestDeal  *product.SitePrice  `json:"best_deal,omitempty"`
	AllPrices []product.SitePrice `json:"all_prices"`
	Cached    bool                `json:"cached"`
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.ProductName = q.Get("q")
		if req.ProductName == "" {
			req.ProductName = q.Get("item")
		}
		req.URL = q.Get("url")
		req.TargetCurrency = q.Get("currency")
		req.Refresh = q.Get("refresh") == "true" || q.Get("refresh") == "1"
		req.Identifiers = product.Identifiers{
			UPC:         q.Get("upc"),
			ASIN:        q.Get("asin"),
			ModelNumber: q.Get("model"),
			MPN:         q.Get("mpn"),
			Brand:       q.Get("brand"),
		}
	case http.MethodPost:
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if strings.TrimSpace(req.ProductName) == "" {
		writeError(w, http.StatusBadRequest, "product_name is required")
		return
	}

	var target currency.Currency
	if req.TargetCurrency != "" {
		c, err := currency.FromString(req.TargetCurrency)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		target = c
	}

	ids := req.Identifiers
	if req.URL != "" {
		fromURL := match.ExtractFromURL(req.URL)
		if ids.ASIN == "" {
			ids.ASIN = fromURL.ASIN
		}
		if ids.EbayItemID == "" {
			ids.EbayItemID = fromURL.EbayItemID
		}
	}

	result, cached, err := s.svc.Compare(r.Context(), compare.Request{
		Query:          req.ProductName,
		Identifiers:    ids,
		TargetCurrency: target,
		Refresh:        req.Refresh,
	})
	if err != nil {
		s.log.Warn("comparison failed", "query", req.ProductName, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, compareResponse{
		BestDeal:  result.BestDeal,
		AllPrices: result.AllPrices,
		Cached:    cached,
	})
}

type currencyInfo struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (s *server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	supported := currency.Supported()
	out := make([]currencyInfo, 0, len(supported))
	for _, c := range supported {
		out = append(out, currencyInfo{Code: string(c), Symbol: c.Symbol(), Name: c.Name()})
	}
	writeJSON(w, http.StatusOK, map[string][]currencyInfo{"currencies": out})
}

func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNoMatch:
		return http.StatusNotFound
	case errs.KindNetwork:
		return http.StatusBadGateway
	case errs.KindParse, errs.KindMissingField:
		return http.StatusUnprocessableEntity
	case errs.KindCache:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
