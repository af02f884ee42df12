package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/rate"
)

func testRateManager() *rate.Manager {
	return rate.NewManager(rate.Config{RequestsPerSecond: 100, Burst: 100})
}

func TestGetMarkets(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-cg-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"solana","symbol":"sol","name":"Solana","current_price":152.34,"price_change_percentage_24h":1.8,"total_volume":2400000000,"market_cap":71000000000},
			{"id":"bonk","symbol":"bonk","name":"Bonk","current_price":0.0000231,"price_change_percentage_24h":null,"total_volume":null,"market_cap":null}
		]`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "test-key", testRateManager())
	markets, err := c.GetMarkets(context.Background(), "solana-ecosystem")
	require.NoError(t, err)

	assert.Equal(t, "/api/v3/coins/markets", gotPath)
	assert.Contains(t, gotQuery, "vs_currency=usd")
	assert.Contains(t, gotQuery, "precision=full")
	assert.Contains(t, gotQuery, "category=solana-ecosystem")
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, markets, 2)
	assert.Equal(t, "sol", markets[0].Symbol)
	assert.Equal(t, 152.34, markets[0].CurrentPrice)
	require.NotNil(t, markets[0].PriceChangePercentage24H)
	assert.Equal(t, 1.8, *markets[0].PriceChangePercentage24H)
	assert.Nil(t, markets[1].PriceChangePercentage24H)
}

func TestGetMarkets_NoKeyHeaderWhenUnset(t *testing.T) {
	var sawKeyHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawKeyHeader = r.Header["X-Cg-Api-Key"]
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "", testRateManager())
	_, err := c.GetMarkets(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, sawKeyHeader)
}

func TestGetMarkets_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient(zap.NewNop(), srv.URL, "bad", testRateManager())
	_, err := c.GetMarkets(context.Background(), "solana-ecosystem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coingecko returned 403")
}
