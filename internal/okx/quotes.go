package okx

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/pkg/model"
)

// Aggregator API request paths.
const (
	pathQuote           = "/api/v5/dex/aggregator/quote"
	pathSwap            = "/api/v5/dex/aggregator/swap"
	pathAllTokens       = "/api/v5/dex/aggregator/all-tokens"
	pathLiquidity       = "/api/v5/dex/aggregator/get-liquidity"
	pathPriceInfo       = "/api/v5/dex/market/price-info"
	pathCrossQuote      = "/api/v5/dex/cross-chain/quote"
	pathCrossBuildTx    = "/api/v5/dex/cross-chain/build-tx"
	DefaultSlippage     = "0.05"
	providerCodeSuccess = "0"
)

// GetQuote fetches a same-chain swap quote. Amount and both asset addresses
// are required; slippage defaults to 0.05 and the chain to Solana.
func (c *Client) GetQuote(ctx context.Context, params QuoteParams) ([]QuoteData, error) {
	if params.Amount == "" || params.Amount == "0" {
		return nil, fmt.Errorf("%w: amount is required", ErrInvalidParameters)
	}
	if params.FromTokenAddress == "" || params.ToTokenAddress == "" {
		return nil, fmt.Errorf("%w: from and to token addresses are required", ErrInvalidParameters)
	}
	if params.Slippage == "" {
		params.Slippage = DefaultSlippage
	}
	if params.ChainID == "" {
		params.ChainID = model.SolanaChainID
	}

	q := url.Values{}
	q.Set("chainId", params.ChainID)
	q.Set("amount", params.Amount)
	q.Set("fromTokenAddress", params.FromTokenAddress)
	q.Set("toTokenAddress", params.ToTokenAddress)
	q.Set("slippage", params.Slippage)

	var resp QuoteResponse
	if err := c.getJSON(ctx, pathQuote, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyQuote
	}
	return resp.Data, nil
}

// Swap requests a routed swap together with a ready-to-sign transaction.
// Status validation is left to the orchestrator.
func (c *Client) Swap(ctx context.Context, params SwapParams) (*SwapResponse, error) {
	if params.Amount == "" || params.FromTokenAddress == "" || params.ToTokenAddress == "" {
		return nil, fmt.Errorf("%w: amount and token addresses are required", ErrInvalidParameters)
	}
	if params.Slippage == "" {
		params.Slippage = DefaultSlippage
	}
	if params.ChainID == "" {
		params.ChainID = model.SolanaChainID
	}

	q := url.Values{}
	q.Set("chainId", params.ChainID)
	q.Set("amount", params.Amount)
	q.Set("fromTokenAddress", params.FromTokenAddress)
	q.Set("toTokenAddress", params.ToTokenAddress)
	q.Set("slippage", params.Slippage)
	if params.UserWalletAddress != "" {
		q.Set("userWalletAddress", params.UserWalletAddress)
	}

	var resp SwapResponse
	if err := c.getJSON(ctx, pathSwap, q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAllTokens fetches the full token list for one chain.
func (c *Client) GetAllTokens(ctx context.Context, chainIndex string) ([]model.TokenMetadata, error) {
	if chainIndex == "" {
		chainIndex = model.SolanaChainID
	}

	q := url.Values{}
	q.Set("chainIndex", chainIndex)

	var resp TokenListResponse
	if err := c.getJSON(ctx, pathAllTokens, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyCatalog
	}
	return resp.Data, nil
}

// GetTokenPrices fetches market data for up to 100 contract addresses in one
// call. Callers are responsible for chunking; see catalog.FetchPricesBulk.
func (c *Client) GetTokenPrices(ctx context.Context, chainIndex string, addresses []string) ([]TokenPrice, error) {
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: at least one address is required", ErrInvalidParameters)
	}
	if chainIndex == "" {
		chainIndex = model.SolanaChainID
	}

	body := make([]priceInfoRequest, 0, len(addresses))
	for _, addr := range addresses {
		body = append(body, priceInfoRequest{ChainIndex: chainIndex, TokenContractAddress: addr})
	}

	var resp PriceResponse
	if err := c.postJSON(ctx, pathPriceInfo, body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != providerCodeSuccess {
		return nil, &ProviderStatusError{Endpoint: pathPriceInfo, Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data, nil
}

// GetLiquidity returns the liquidity sources available on a chain.
func (c *Client) GetLiquidity(ctx context.Context, chainID string) ([]LiquiditySource, error) {
	if chainID == "" {
		chainID = model.SolanaChainID
	}

	q := url.Values{}
	q.Set("chainId", chainID)

	var resp LiquidityResponse
	if err := c.getJSON(ctx, pathLiquidity, q, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: liquidity data missing", ErrMalformedResponse)
	}
	return resp.Data, nil
}

// GetCrossChainQuote fetches a cross-chain quote. A non-zero provider status
// code is a quote-level error carrying the provider's message and code.
func (c *Client) GetCrossChainQuote(ctx context.Context, params CrossChainParams) ([]QuoteData, error) {
	amount, err := NormalizeAmount(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	q := url.Values{}
	q.Set("fromChainId", params.FromChainID)
	q.Set("toChainId", params.ToChainID)
	q.Set("fromTokenAddress", params.FromTokenAddress)
	q.Set("toTokenAddress", params.ToTokenAddress)
	q.Set("amount", amount)
	q.Set("slippage", params.Slippage)
	if params.PriceImpactProtectionPercentage != "" {
		q.Set("priceImpactProtectionPercentage", params.PriceImpactProtectionPercentage)
	}

	var resp QuoteResponse
	if err := c.getJSON(ctx, pathCrossQuote, q, &resp); err != nil {
		return nil, err
	}
	if resp.Code != providerCodeSuccess {
		return nil, &ProviderStatusError{Endpoint: pathCrossQuote, Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data, nil
}

// BuildCrossChainTx asks the provider to construct a cross-chain transaction.
// The first returned payload is what the execution engine consumes; no
// multi-leg sequencing happens on this side.
func (c *Client) BuildCrossChainTx(ctx context.Context, params CrossChainParams) ([]SwapData, error) {
	amount, err := NormalizeAmount(params.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	q := url.Values{}
	q.Set("fromChainId", params.FromChainID)
	q.Set("toChainId", params.ToChainID)
	q.Set("fromTokenAddress", params.FromTokenAddress)
	q.Set("toTokenAddress", params.ToTokenAddress)
	q.Set("amount", amount)
	q.Set("slippage", params.Slippage)
	q.Set("userWalletAddress", params.UserWalletAddress)
	if params.ReceiveAddress != "" {
		q.Set("receiveAddress", params.ReceiveAddress)
	}
	if params.PriceImpactProtectionPercentage != "" {
		q.Set("priceImpactProtectionPercentage", params.PriceImpactProtectionPercentage)
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}

	var resp SwapResponse
	if err := c.getJSON(ctx, pathCrossBuildTx, q, &resp); err != nil {
		return nil, err
	}
	if resp.Code != providerCodeSuccess {
		return nil, &ProviderStatusError{Endpoint: pathCrossBuildTx, Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data, nil
}

// DexInfoByID returns the liquidity source matching dexID, or nil. It is used
// for optional UI enrichment only, so invalid input logs instead of erroring.
func DexInfoByID(logger *zap.Logger, sources []LiquiditySource, dexID string) *LiquiditySource {
	if len(sources) == 0 || dexID == "" {
		if logger != nil {
			logger.Warn("okx.dex_lookup_invalid_params",
				zap.Int("sources", len(sources)),
				zap.String("dex_id", dexID))
		}
		return nil
	}
	for i := range sources {
		if sources[i].ID == dexID {
			return &sources[i]
		}
	}
	return nil
}
