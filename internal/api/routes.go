package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	v1.Get("/tokens", h.GetTokens)
	v1.Get("/quote", h.GetQuote)
	v1.Get("/quote/cross-chain", h.GetCrossChainQuote)
	v1.Get("/liquidity", h.GetLiquidity)
	v1.Post("/swap", h.ExecuteSwap)
	v1.Post("/swap/cross-chain", h.ExecuteCrossChainSwap)
	v1.Get("/swaps", h.ListSwaps)
}
