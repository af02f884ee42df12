package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/coingecko"
	"github.com/basketfy/dex-adapter/internal/metrics"
	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/pkg/model"
)

// PriceChunkSize is the provider's request-size limit for bulk price lookups.
const PriceChunkSize = 100

// Source labels for catalog refresh events and metrics. SourceNone marks a
// refresh where neither price provider answered; records then carry their
// zero/nil price defaults.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// TokenAPI is the slice of the aggregator client the builder needs.
type TokenAPI interface {
	GetAllTokens(ctx context.Context, chainIndex string) ([]model.TokenMetadata, error)
	GetTokenPrices(ctx context.Context, chainIndex string, addresses []string) ([]okx.TokenPrice, error)
}

// MarketAPI is the fallback market-data source, keyed by symbol.
type MarketAPI interface {
	GetMarkets(ctx context.Context, category string) ([]coingecko.Market, error)
}

// Builder assembles the unified token catalog: bulk metadata joined with
// bulk prices, falling back to the secondary provider when the primary
// price pipeline fails.
type Builder struct {
	logger   *zap.Logger
	tokens   TokenAPI
	markets  MarketAPI
	category string
}

// NewBuilder constructs a catalog builder. category scopes the fallback
// market lookup (e.g. "solana-ecosystem").
func NewBuilder(logger *zap.Logger, tokens TokenAPI, markets MarketAPI, category string) *Builder {
	return &Builder{
		logger:   logger,
		tokens:   tokens,
		markets:  markets,
		category: category,
	}
}

// Build produces one TokenRecord per metadata entry for the chain. The
// returned source reports which price provider supplied the data. A fallback
// provider failure does not abort the build — unmatched records keep their
// zero/nil defaults.
func (b *Builder) Build(ctx context.Context, chainID string) ([]model.TokenRecord, string, error) {
	start := time.Now()

	meta, err := b.tokens.GetAllTokens(ctx, chainID)
	if err != nil {
		return nil, "", err
	}

	addresses := make([]string, 0, len(meta))
	for _, m := range meta {
		addresses = append(addresses, m.TokenContractAddress)
	}

	source := SourcePrimary
	priceMap := make(map[string]model.PriceInfo, len(meta))

	prices, err := b.FetchPricesBulk(ctx, chainID, addresses)
	if err != nil {
		// Whole-pipeline fallback: abandon all chunks and query the
		// secondary provider exactly once, keyed by symbol.
		b.logger.Warn("catalog.primary_prices_failed",
			zap.Error(err),
			zap.Int("tokens", len(meta)))
		source = SourceFallback

		markets, gerr := b.markets.GetMarkets(ctx, b.category)
		if gerr != nil {
			b.logger.Error("catalog.fallback_prices_failed", zap.Error(gerr))
			source = SourceNone
		} else {
			priceMap = PriceMapFromMarkets(meta, markets)
		}
	} else {
		priceMap = PriceMapFromPrices(prices)
	}

	records := Merge(meta, priceMap)

	metrics.ObserveDuration(metrics.CatalogRefreshDuration, start, source)
	b.logger.Info("catalog.built",
		zap.String("chain_id", chainID),
		zap.String("source", source),
		zap.Int("tokens", len(records)))

	return records, source, nil
}

// FetchPricesBulk partitions addresses into chunks of PriceChunkSize and
// issues one request per chunk sequentially, concatenating results in input
// order. Any chunk failure abandons the whole fetch — the verdict is per
// pipeline run, not per chunk.
func (b *Builder) FetchPricesBulk(ctx context.Context, chainID string, addresses []string) ([]okx.TokenPrice, error) {
	var all []okx.TokenPrice
	for _, chunk := range Chunk(addresses, PriceChunkSize) {
		prices, err := b.tokens.GetTokenPrices(ctx, chainID, chunk)
		if err != nil {
			return nil, err
		}
		all = append(all, prices...)
	}
	return all, nil
}

// Chunk splits addresses into ceil(len/size) slices; the final chunk may be
// shorter than size.
func Chunk(addresses []string, size int) [][]string {
	if size <= 0 || len(addresses) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(addresses)+size-1)/size)
	for start := 0; start < len(addresses); start += size {
		end := start + size
		if end > len(addresses) {
			end = len(addresses)
		}
		chunks = append(chunks, addresses[start:end])
	}
	return chunks
}

// PriceMapFromPrices indexes primary-provider prices by contract address.
// Unparseable numeric fields degrade to the zero/nil defaults.
func PriceMapFromPrices(prices []okx.TokenPrice) map[string]model.PriceInfo {
	out := make(map[string]model.PriceInfo, len(prices))
	for _, p := range prices {
		info := model.PriceInfo{
			Price:          parseDecimal(p.Price),
			PriceChange24H: parseOptionalDecimal(p.PriceChange24H),
			Volume24H:      parseOptionalDecimal(p.Volume24H),
			MarketCap:      parseOptionalDecimal(p.MarketCap),
		}
		out[p.TokenContractAddress] = info
	}
	return out
}

// PriceMapFromMarkets joins fallback market data onto metadata entries by
// case-insensitive symbol equality, keyed by contract address. Symbols with
// no market match are simply absent from the result.
func PriceMapFromMarkets(meta []model.TokenMetadata, markets []coingecko.Market) map[string]model.PriceInfo {
	bySymbol := make(map[string]coingecko.Market, len(markets))
	for _, m := range markets {
		bySymbol[strings.ToLower(m.Symbol)] = m
	}

	out := make(map[string]model.PriceInfo)
	for _, t := range meta {
		m, ok := bySymbol[strings.ToLower(t.TokenSymbol)]
		if !ok {
			continue
		}
		out[t.TokenContractAddress] = model.PriceInfo{
			Price:          decimal.NewFromFloat(m.CurrentPrice),
			PriceChange24H: optionalFromFloat(m.PriceChangePercentage24H),
			Volume24H:      optionalFromFloat(m.TotalVolume),
			MarketCap:      optionalFromFloat(m.MarketCap),
		}
	}
	return out
}

// Merge produces exactly one TokenRecord per metadata entry, looking up price
// info by contract address. Entries with no match get price 0 and nil
// change/volume/market-cap fields — the merge is total over the metadata list.
func Merge(meta []model.TokenMetadata, prices map[string]model.PriceInfo) []model.TokenRecord {
	records := make([]model.TokenRecord, 0, len(meta))
	for _, t := range meta {
		rec := model.TokenRecord{
			Ticker:       t.TokenSymbol,
			Name:         t.TokenName,
			IsNative:     t.TokenContractAddress == model.NativeSOL,
			TokenAddress: t.TokenContractAddress,
			TokenLogoUrl: t.TokenLogoUrl,
		}
		if info, ok := prices[t.TokenContractAddress]; ok {
			rec.Price = info.Price
			rec.PriceChange24H = info.PriceChange24H
			rec.Volume24H = info.Volume24H
			rec.MarketCap = info.MarketCap
		}
		records = append(records, rec)
	}
	return records
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseOptionalDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func optionalFromFloat(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
