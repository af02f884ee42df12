package okx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/httpclient"
	"github.com/basketfy/dex-adapter/internal/rate"
)

// DefaultBaseURL is the production aggregator endpoint.
const DefaultBaseURL = "https://www.okx.com"

// timestampLayout matches the ISO-8601 millisecond format the aggregator
// expects in OK-ACCESS-TIMESTAMP.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const rateLimitKey = "okx_api"

// Client wraps low-level HTTP communication with the OKX DEX API.
// Every request is signed; transient transport faults are retried by the
// shared executor.
type Client struct {
	logger  *zap.Logger
	baseURL string
	creds   Credentials
	exec    *httpclient.Executor
	now     func() time.Time
}

// NewClient constructs a signed OKX DEX client. baseURL falls back to the
// production endpoint when empty.
func NewClient(logger *zap.Logger, baseURL string, creds Credentials, rateMgr *rate.Manager) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := &http.Client{Timeout: 15 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "okx", func(status int, body []byte) error {
		logger.Warn("okx.non_200",
			zap.Int("status", status),
			zap.String("body", string(body)))
		return fmt.Errorf("okx returned %d: %s", status, string(body))
	})
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		creds:   creds,
		exec:    exec,
		now:     time.Now,
	}
}

// Credentials exposes the configured credential set (for validation at startup).
func (c *Client) Credentials() Credentials {
	return c.creds
}

// getJSON performs a signed GET request and decodes the JSON response into out.
// The signature covers the request path and the full query string.
func (c *Client) getJSON(ctx context.Context, requestPath string, params url.Values, out any) error {
	queryString := ""
	if len(params) > 0 {
		queryString = "?" + params.Encode()
	}

	timestamp := c.now().UTC().Format(timestampLayout)
	headers, err := SignRequest(c.creds, timestamp, http.MethodGet, requestPath, queryString, "")
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+requestPath+queryString, nil)
	if err != nil {
		return err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.exec.DoJSON(ctx, req, rateLimitKey, out)
}

// postJSON performs a signed POST request with a JSON body.
// The signature covers the request path and the serialized body.
func (c *Client) postJSON(ctx context.Context, requestPath string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	timestamp := c.now().UTC().Format(timestampLayout)
	headers, err := SignRequest(c.creds, timestamp, http.MethodPost, requestPath, "", string(data))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+requestPath, bytes.NewReader(data))
	if err != nil {
		return err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.exec.DoJSON(ctx, req, rateLimitKey, out)
}
