package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pricecheck/internal/compare"
	"pricecheck/internal/source"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *server {
	sources := []source.Source{
		source.NewMock("Amazon"),
		source.NewMock("eBay"),
		source.NewMock("Jumia"),
		source.NewMock("Konga"),
	}
	svc := compare.NewService(compare.Config{MinConfidence: 70}, sources, nil, nil, nil)
	return &server{svc: svc, log: newTestLogger()}
}

func TestCompareGet(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/compare?q=sony+wh-1000xm5", nil)
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp compareResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.AllPrices, 4)
	require.NotNil(t, resp.BestDeal)
	require.False(t, resp.Cached)

	// Mock prices skew eBay cheapest for any query.
	require.Equal(t, "eBay", resp.BestDeal.Site)
	for i := 1; i < len(resp.AllPrices); i++ {
		require.False(t, resp.AllPrices[i].PriceUSD.LessThan(resp.AllPrices[i-1].PriceUSD))
	}
}

func TestComparePost(t *testing.T) {
	s := newTestServer()

	body := `{
		"product_name": "Sony WH-1000XM5",
		"url": "https://www.amazon.com/dp/B09XS7JWHH",
		"identifiers": {"brand": "Sony", "model_number": "WH-1000XM5", "mpn": "WH1000XM5/B"}
	}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(body))
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp compareResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.AllPrices, 4)
}

func TestCompareMissingProductName(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/compare", nil)
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompareUnknownTargetCurrency(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/compare?q=sony&currency=XXX", nil)
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCompareRejectsUnknownBodyFields(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/compare", strings.NewReader(`{"name":"x"}`))
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCurrenciesEndpoint(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/currencies", nil)
	s.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Currencies []currencyInfo `json:"currencies"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Currencies)
	require.Equal(t, "USD", resp.Currencies[0].Code)
	require.Equal(t, "$", resp.Currencies[0].Symbol)
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer()

	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	// Without Redis configured, readiness reports the cache as disabled.
	rr = httptest.NewRecorder()
	s.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "disabled")
}
