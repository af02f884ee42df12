package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/coingecko"
	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/pkg/model"
)

type stubTokenAPI struct {
	meta       []model.TokenMetadata
	metaErr    error
	priceCalls [][]string
	priceErr   error
	priceFn    func(addresses []string) ([]okx.TokenPrice, error)
}

func (s *stubTokenAPI) GetAllTokens(_ context.Context, _ string) ([]model.TokenMetadata, error) {
	return s.meta, s.metaErr
}

func (s *stubTokenAPI) GetTokenPrices(_ context.Context, _ string, addresses []string) ([]okx.TokenPrice, error) {
	s.priceCalls = append(s.priceCalls, addresses)
	if s.priceFn != nil {
		return s.priceFn(addresses)
	}
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	prices := make([]okx.TokenPrice, 0, len(addresses))
	for _, a := range addresses {
		prices = append(prices, okx.TokenPrice{TokenContractAddress: a, Price: "1"})
	}
	return prices, nil
}

type stubMarketAPI struct {
	calls   int
	markets []coingecko.Market
	err     error
}

func (s *stubMarketAPI) GetMarkets(_ context.Context, _ string) ([]coingecko.Market, error) {
	s.calls++
	return s.markets, s.err
}

func metaN(n int) []model.TokenMetadata {
	out := make([]model.TokenMetadata, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.TokenMetadata{
			TokenContractAddress: fmt.Sprintf("addr-%03d", i),
			TokenSymbol:          fmt.Sprintf("TOK%d", i),
			TokenName:            fmt.Sprintf("Token %d", i),
		})
	}
	return out
}

func addrsN(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("addr-%03d", i))
	}
	return out
}

// ─── Chunking ────────────────────────────────────────────────────────────────

func TestChunk_Boundaries(t *testing.T) {
	cases := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{99, 1},
		{100, 1},
		{101, 2},
		{250, 3},
	}

	for _, tc := range cases {
		chunks := Chunk(addrsN(tc.n), PriceChunkSize)
		assert.Len(t, chunks, tc.want, "n=%d", tc.n)
	}

	// Final chunk may be smaller than the chunk size.
	chunks := Chunk(addrsN(250), PriceChunkSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestFetchPricesBulk_RequestCountAndOrder(t *testing.T) {
	api := &stubTokenAPI{}
	b := NewBuilder(zap.NewNop(), api, &stubMarketAPI{}, "solana-ecosystem")

	prices, err := b.FetchPricesBulk(context.Background(), "501", addrsN(205))
	require.NoError(t, err)

	assert.Len(t, api.priceCalls, 3, "ceil(205/100) requests")
	require.Len(t, prices, 205)
	// Concatenated result preserves input chunk order.
	assert.Equal(t, "addr-000", prices[0].TokenContractAddress)
	assert.Equal(t, "addr-100", prices[100].TokenContractAddress)
	assert.Equal(t, "addr-204", prices[204].TokenContractAddress)
}

func TestFetchPricesBulk_AnyChunkFailureAbandonsAll(t *testing.T) {
	boom := errors.New("chunk 2 failed")
	api := &stubTokenAPI{priceFn: func(addresses []string) ([]okx.TokenPrice, error) {
		if addresses[0] == "addr-100" {
			return nil, boom
		}
		return []okx.TokenPrice{}, nil
	}}
	b := NewBuilder(zap.NewNop(), api, &stubMarketAPI{}, "solana-ecosystem")

	_, err := b.FetchPricesBulk(context.Background(), "501", addrsN(150))
	require.ErrorIs(t, err, boom)
	assert.Len(t, api.priceCalls, 2, "no further chunks after a failure")
}

// ─── Merge ───────────────────────────────────────────────────────────────────

func TestMerge_TotalOverMetadata(t *testing.T) {
	meta := metaN(5)
	prices := map[string]model.PriceInfo{
		"addr-001": {Price: decimal.RequireFromString("2.5")},
	}

	records := Merge(meta, prices)
	require.Len(t, records, len(meta), "one record per metadata entry")

	for _, rec := range records {
		if rec.TokenAddress == "addr-001" {
			assert.True(t, rec.Price.Equal(decimal.RequireFromString("2.5")))
		} else {
			assert.True(t, rec.Price.IsZero(), "unmatched entries default to 0")
			assert.Nil(t, rec.PriceChange24H)
			assert.Nil(t, rec.Volume24H)
			assert.Nil(t, rec.MarketCap)
		}
	}
}

func TestMerge_NativeFlag(t *testing.T) {
	meta := []model.TokenMetadata{
		{TokenContractAddress: model.NativeSOL, TokenSymbol: "SOL"},
		{TokenContractAddress: "other", TokenSymbol: "X"},
	}

	records := Merge(meta, nil)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsNative)
	assert.False(t, records[1].IsNative)
}

// ─── Build: primary path ─────────────────────────────────────────────────────

func TestBuild_PrimarySource(t *testing.T) {
	api := &stubTokenAPI{meta: metaN(3)}
	gecko := &stubMarketAPI{}
	b := NewBuilder(zap.NewNop(), api, gecko, "solana-ecosystem")

	records, source, err := b.Build(context.Background(), "501")
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, source)
	assert.Len(t, records, 3)
	assert.Equal(t, 0, gecko.calls, "fallback must not be queried when primary succeeds")
}

func TestBuild_MetadataFailurePropagates(t *testing.T) {
	api := &stubTokenAPI{metaErr: okx.ErrEmptyCatalog}
	b := NewBuilder(zap.NewNop(), api, &stubMarketAPI{}, "solana-ecosystem")

	_, _, err := b.Build(context.Background(), "501")
	assert.ErrorIs(t, err, okx.ErrEmptyCatalog)
}

// ─── Build: fallback path ────────────────────────────────────────────────────

func TestBuild_FallbackQueriedExactlyOnce(t *testing.T) {
	change := -3.2
	api := &stubTokenAPI{
		meta: []model.TokenMetadata{
			{TokenContractAddress: "addr-a", TokenSymbol: "ABC"},
			{TokenContractAddress: "addr-b", TokenSymbol: "XYZ"},
		},
		priceErr: errors.New("primary outage"),
	}
	gecko := &stubMarketAPI{markets: []coingecko.Market{
		{Symbol: "abc", CurrentPrice: 10.5, PriceChangePercentage24H: &change},
	}}
	b := NewBuilder(zap.NewNop(), api, gecko, "solana-ecosystem")

	records, source, err := b.Build(context.Background(), "501")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, 1, gecko.calls, "secondary provider queried exactly once")
	require.Len(t, records, 2)

	// Case-insensitive symbol match.
	assert.True(t, records[0].Price.Equal(decimal.NewFromFloat(10.5)))
	require.NotNil(t, records[0].PriceChange24H)
	assert.True(t, records[0].PriceChange24H.Equal(decimal.NewFromFloat(-3.2)))

	// Symbol absent from the secondary result: documented defaults.
	assert.True(t, records[1].Price.IsZero())
	assert.Nil(t, records[1].PriceChange24H)
}

func TestBuild_FallbackFailureStillReturnsCatalog(t *testing.T) {
	api := &stubTokenAPI{
		meta:     metaN(4),
		priceErr: errors.New("primary outage"),
	}
	gecko := &stubMarketAPI{err: errors.New("secondary outage")}
	b := NewBuilder(zap.NewNop(), api, gecko, "solana-ecosystem")

	records, source, err := b.Build(context.Background(), "501")
	require.NoError(t, err, "secondary failure must not abort the catalog build")
	assert.Equal(t, SourceNone, source, "no provider answered, so neither label applies")
	require.Len(t, records, 4)
	for _, rec := range records {
		assert.True(t, rec.Price.IsZero())
		assert.Nil(t, rec.PriceChange24H)
	}
}
