package okx

import "github.com/basketfy/dex-adapter/pkg/model"

// Token describes one side of a route as reported by the aggregator.
type Token struct {
	Decimal              string `json:"decimal"`
	IsHoneyPot           bool   `json:"isHoneyPot"`
	TaxRate              string `json:"taxRate"`
	TokenContractAddress string `json:"tokenContractAddress"`
	TokenSymbol          string `json:"tokenSymbol"`
	TokenUnitPrice       string `json:"tokenUnitPrice"`
}

// DexProtocol is one venue participating in a sub-route.
type DexProtocol struct {
	DexName string `json:"dexName"`
	Percent string `json:"percent"`
}

// SubRouterList is a leg of a split route.
type SubRouterList struct {
	DexProtocol []DexProtocol `json:"dexProtocol"`
	FromToken   Token         `json:"fromToken"`
	ToToken     Token         `json:"toToken"`
}

// DexRouterList is one router split with its share of the order.
type DexRouterList struct {
	Router        string          `json:"router"`
	RouterPercent string          `json:"routerPercent"`
	SubRouterList []SubRouterList `json:"subRouterList"`
}

// QuoteCompareList is an alternative single-venue fill used for comparison.
type QuoteCompareList struct {
	AmountOut string `json:"amountOut"`
	DexLogo   string `json:"dexLogo"`
	DexName   string `json:"dexName"`
	TradeFee  string `json:"tradeFee"`
}

// QuoteData is one quote entry. Immutable once returned; consumed once to
// build a transaction.
type QuoteData struct {
	ChainID               string             `json:"chainId"`
	ChainIndex            string             `json:"chainIndex"`
	DexRouterList         []DexRouterList    `json:"dexRouterList"`
	EstimateGasFee        string             `json:"estimateGasFee"`
	FromToken             Token              `json:"fromToken"`
	FromTokenAmount       string             `json:"fromTokenAmount"`
	PriceImpactPercentage string             `json:"priceImpactPercentage"`
	QuoteCompareList      []QuoteCompareList `json:"quoteCompareList"`
	ToToken               Token              `json:"toToken"`
	ToTokenAmount         string             `json:"toTokenAmount"`
	TradeFee              string             `json:"tradeFee"`
}

// Tx is the provider-built transaction envelope. Data is the base-58 encoded
// transaction body; the adapter never interprets program-specific layouts.
type Tx struct {
	Data                 string   `json:"data"`
	From                 string   `json:"from"`
	Gas                  string   `json:"gas"`
	GasPrice             string   `json:"gasPrice"`
	MaxPriorityFeePerGas string   `json:"maxPriorityFeePerGas"`
	MinReceiveAmount     string   `json:"minReceiveAmount"`
	SignatureData        []string `json:"signatureData"`
	To                   string   `json:"to"`
	Value                string   `json:"value"`
}

// SwapData pairs the routed quote with the ready-to-sign transaction.
type SwapData struct {
	RouterResult QuoteData `json:"routerResult"`
	Tx           *Tx       `json:"tx"`
	// Some cross-chain endpoints flatten the payload to a top-level data field.
	Data string `json:"data,omitempty"`
}

// QuoteResponse is the envelope for /aggregator/quote.
type QuoteResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []QuoteData `json:"data"`
}

// SwapResponse is the envelope for /aggregator/swap and /cross-chain/build-tx.
type SwapResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data []SwapData `json:"data"`
}

// LiquiditySource is one venue the aggregator can route through.
type LiquiditySource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// LiquidityResponse is the envelope for /aggregator/get-liquidity.
type LiquidityResponse struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Data []LiquiditySource `json:"data"`
}

// TokenListResponse is the envelope for /aggregator/all-tokens.
type TokenListResponse struct {
	Code string                `json:"code"`
	Msg  string                `json:"msg"`
	Data []model.TokenMetadata `json:"data"`
}

// TokenPrice is one market-data entry from /market/price-info.
type TokenPrice struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
	Price                string `json:"price"`
	PriceChange24H       string `json:"priceChange24H"`
	Volume24H            string `json:"volume24H"`
	MarketCap            string `json:"marketCap"`
}

// PriceResponse is the envelope for /market/price-info.
type PriceResponse struct {
	Code string       `json:"code"`
	Msg  string       `json:"msg"`
	Data []TokenPrice `json:"data"`
}

// priceInfoRequest is one entry of the bulk price POST body.
type priceInfoRequest struct {
	ChainIndex           string `json:"chainIndex"`
	TokenContractAddress string `json:"tokenContractAddress"`
}

// QuoteParams are the caller-supplied inputs for a same-chain quote.
type QuoteParams struct {
	Amount           string
	FromTokenAddress string
	ToTokenAddress   string
	Slippage         string
	ChainID          string
}

// SwapParams are the inputs for a same-chain build-and-swap request.
type SwapParams struct {
	Amount            string
	FromTokenAddress  string
	ToTokenAddress    string
	Slippage          string
	UserWalletAddress string
	ChainID           string
}

// CrossChainParams are the inputs for cross-chain quote and build-tx requests.
type CrossChainParams struct {
	FromChainID                     string
	ToChainID                       string
	FromTokenAddress                string
	ToTokenAddress                  string
	Amount                          string
	Slippage                        string
	UserWalletAddress               string
	ReceiveAddress                  string
	PriceImpactProtectionPercentage string
	Sort                            string
}
