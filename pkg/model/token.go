package model

import "github.com/shopspring/decimal"

// Well-known Solana asset addresses.
const (
	NativeSOL  = "11111111111111111111111111111111"
	WrappedSOL = "So11111111111111111111111111111111111111112"
	USDCSol    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// SolanaChainID is the aggregator's chain index for Solana mainnet.
const SolanaChainID = "501"

// TokenMetadata is the listing-level description of a token as returned by
// the aggregator's all-tokens endpoint.
type TokenMetadata struct {
	TokenContractAddress string `json:"tokenContractAddress"`
	TokenSymbol          string `json:"tokenSymbol"`
	TokenName            string `json:"tokenName"`
	TokenLogoUrl         string `json:"tokenLogoUrl"`
	Decimals             string `json:"decimals"`
}

// PriceInfo carries market data for one token, keyed by contract address.
// The nullable fields stay nil when the price source had no match.
type PriceInfo struct {
	Price          decimal.Decimal
	PriceChange24H *decimal.Decimal
	Volume24H      *decimal.Decimal
	MarketCap      *decimal.Decimal
}

// TokenRecord is the unified catalog entry served to listing screens:
// metadata joined with price info. Every metadata entry yields exactly one
// record; price fields default to zero/nil when no price source matched.
type TokenRecord struct {
	Ticker         string           `json:"ticker"`
	Name           string           `json:"name"`
	Price          decimal.Decimal  `json:"price"`
	IsNative       bool             `json:"isNative"`
	TokenAddress   string           `json:"tokenAddress"`
	TokenLogoUrl   string           `json:"tokenLogoUrl"`
	PriceChange24H *decimal.Decimal `json:"priceChange24H"`
	Volume24H      *decimal.Decimal `json:"volume24H"`
	MarketCap      *decimal.Decimal `json:"marketCap"`
}
