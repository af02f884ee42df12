package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/httpclient"
	"github.com/basketfy/dex-adapter/internal/rate"
)

// DefaultBaseURL is the public CoinGecko API endpoint.
const DefaultBaseURL = "https://api.coingecko.com"

const rateLimitKey = "coingecko_api"

// Market is one entry of the coins/markets listing, keyed by symbol.
// Pointer fields are null in the provider response when unknown.
type Market struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24H *float64 `json:"price_change_percentage_24h"`
	TotalVolume              *float64 `json:"total_volume"`
	MarketCap                *float64 `json:"market_cap"`
}

// Client is a thin market-data client used only as the fallback price source
// when the aggregator's bulk price endpoint fails.
type Client struct {
	logger  *zap.Logger
	baseURL string
	apiKey  string
	exec    *httpclient.Executor
}

// NewClient constructs a CoinGecko client. baseURL falls back to the public
// endpoint when empty.
func NewClient(logger *zap.Logger, baseURL, apiKey string, rateMgr *rate.Manager) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 1, "coingecko", func(status int, body []byte) error {
		return fmt.Errorf("coingecko returned %d: %s", status, string(body))
	})
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		exec:    exec,
	}
}

// GetMarkets fetches USD market data for all coins in a category
// (e.g. "solana-ecosystem").
func (c *Client) GetMarkets(ctx context.Context, category string) ([]Market, error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("precision", "full")
	if category != "" {
		q.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v3/coins/markets?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-api-key", c.apiKey)
	}

	var markets []Market
	if err := c.exec.DoJSON(ctx, req, rateLimitKey, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}
