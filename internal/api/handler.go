package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/engine"
	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/internal/swap"
	"github.com/basketfy/dex-adapter/pkg/model"
)

// QuoteAPI is the read-only slice of the aggregator client the API serves.
type QuoteAPI interface {
	GetQuote(ctx context.Context, params okx.QuoteParams) ([]okx.QuoteData, error)
	GetCrossChainQuote(ctx context.Context, params okx.CrossChainParams) ([]okx.QuoteData, error)
	GetLiquidity(ctx context.Context, chainID string) ([]okx.LiquiditySource, error)
}

// SwapExecutor runs swaps end to end.
type SwapExecutor interface {
	ExecuteSwap(ctx context.Context, params okx.SwapParams) (*swap.Result, error)
	ExecuteCrossChainSwap(ctx context.Context, params okx.CrossChainParams) (*swap.Result, error)
}

// CatalogReader serves the cached token catalog.
type CatalogReader interface {
	Get(ctx context.Context, chainID string) ([]model.TokenRecord, bool, error)
}

// History lists persisted swap executions.
type History interface {
	ListSwaps(ctx context.Context, walletAddress string, limit int) ([]model.SwapRecord, error)
	HealthCheck(ctx context.Context) error
}

type Handler struct {
	Logger  *zap.Logger
	Quotes  QuoteAPI
	Swaps   SwapExecutor
	Catalog CatalogReader
	Store   History
	ChainID string
}

// GetTokens serves the cached token catalog for the configured chain.
func (h *Handler) GetTokens(c *fiber.Ctx) error {
	chainID := c.Query("chainId", h.ChainID)

	records, ok, err := h.Catalog.Get(c.Context(), chainID)
	if err != nil {
		h.Logger.Error("api.get_tokens_failed", zap.Error(err), zap.String("chain_id", chainID))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	if !ok {
		// The refresher has not completed a cycle yet.
		return c.Status(http.StatusServiceUnavailable).JSON(ErrorResponse{Error: "token catalog not ready"})
	}
	return c.Status(http.StatusOK).JSON(records)
}

// GetQuote serves a same-chain quote.
func (h *Handler) GetQuote(c *fiber.Ctx) error {
	params := okx.QuoteParams{
		Amount:           c.Query("amount"),
		FromTokenAddress: c.Query("fromTokenAddress"),
		ToTokenAddress:   c.Query("toTokenAddress"),
		Slippage:         c.Query("slippage"),
		ChainID:          c.Query("chainId", h.ChainID),
	}

	quotes, err := h.Quotes.GetQuote(c.Context(), params)
	if err != nil {
		return h.providerError(c, "api.get_quote_failed", err)
	}
	return c.Status(http.StatusOK).JSON(quotes)
}

// GetCrossChainQuote serves a cross-chain quote.
func (h *Handler) GetCrossChainQuote(c *fiber.Ctx) error {
	params := okx.CrossChainParams{
		FromChainID:      c.Query("fromChainId", h.ChainID),
		ToChainID:        c.Query("toChainId"),
		FromTokenAddress: c.Query("fromTokenAddress"),
		ToTokenAddress:   c.Query("toTokenAddress"),
		Amount:           c.Query("amount"),
		Slippage:         c.Query("slippage"),
	}

	quotes, err := h.Quotes.GetCrossChainQuote(c.Context(), params)
	if err != nil {
		return h.providerError(c, "api.get_cross_chain_quote_failed", err)
	}
	return c.Status(http.StatusOK).JSON(quotes)
}

// GetLiquidity lists the venues the aggregator can route through.
func (h *Handler) GetLiquidity(c *fiber.Ctx) error {
	sources, err := h.Quotes.GetLiquidity(c.Context(), c.Query("chainId", h.ChainID))
	if err != nil {
		return h.providerError(c, "api.get_liquidity_failed", err)
	}
	return c.Status(http.StatusOK).JSON(sources)
}

// ExecuteSwap runs a same-chain swap to on-chain confirmation.
func (h *Handler) ExecuteSwap(c *fiber.Ctx) error {
	var req SwapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	result, err := h.Swaps.ExecuteSwap(c.Context(), okx.SwapParams{
		Amount:            req.Amount,
		FromTokenAddress:  req.FromTokenAddress,
		ToTokenAddress:    req.ToTokenAddress,
		Slippage:          req.Slippage,
		UserWalletAddress: req.UserWalletAddress,
		ChainID:           req.ChainID,
	})
	if err != nil {
		return h.providerError(c, "api.execute_swap_failed", err)
	}

	h.Logger.Info("api.swap_executed",
		zap.String("swap_id", result.SwapID),
		zap.String("transaction_id", result.Execution.TransactionID))
	return c.Status(http.StatusOK).JSON(result)
}

// ExecuteCrossChainSwap builds and executes a cross-chain swap.
func (h *Handler) ExecuteCrossChainSwap(c *fiber.Ctx) error {
	var req CrossChainSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	result, err := h.Swaps.ExecuteCrossChainSwap(c.Context(), okx.CrossChainParams{
		FromChainID:       req.FromChainID,
		ToChainID:         req.ToChainID,
		FromTokenAddress:  req.FromTokenAddress,
		ToTokenAddress:    req.ToTokenAddress,
		Amount:            req.Amount,
		Slippage:          req.Slippage,
		UserWalletAddress: req.UserWalletAddress,
		ReceiveAddress:    req.ReceiveAddress,
	})
	if err != nil {
		return h.providerError(c, "api.execute_cross_chain_swap_failed", err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// ListSwaps serves persisted execution history.
func (h *Handler) ListSwaps(c *fiber.Ctx) error {
	wallet := c.Query("wallet")
	limit := c.QueryInt("limit", 50)

	records, err := h.Store.ListSwaps(c.Context(), wallet, limit)
	if err != nil {
		h.Logger.Error("api.list_swaps_failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	if records == nil {
		records = []model.SwapRecord{}
	}
	return c.Status(http.StatusOK).JSON(records)
}

// Health reports readiness of the backing stores.
func (h *Handler) Health(c *fiber.Ctx) error {
	if h.Store != nil {
		if err := h.Store.HealthCheck(c.Context()); err != nil {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) providerError(c *fiber.Ctx, event string, err error) error {
	h.Logger.Error(event, zap.Error(err))

	var statusErr *okx.ProviderStatusError
	switch {
	case errors.Is(err, okx.ErrInvalidParameters),
		errors.Is(err, okx.ErrInvalidOutput),
		errors.Is(err, engine.ErrInvalidPayload):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, okx.ErrEmptyQuote), errors.Is(err, okx.ErrEmptyCatalog):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	case errors.As(err, &statusErr):
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	default:
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
}
