package api

// SwapRequest is the body of POST /api/v1/swap.
type SwapRequest struct {
	Amount            string `json:"amount"`
	FromTokenAddress  string `json:"fromTokenAddress"`
	ToTokenAddress    string `json:"toTokenAddress"`
	Slippage          string `json:"slippage,omitempty"`
	UserWalletAddress string `json:"userWalletAddress"`
	ChainID           string `json:"chainId,omitempty"`
}

// CrossChainSwapRequest is the body of POST /api/v1/swap/cross-chain.
type CrossChainSwapRequest struct {
	FromChainID       string `json:"fromChainId"`
	ToChainID         string `json:"toChainId"`
	FromTokenAddress  string `json:"fromTokenAddress"`
	ToTokenAddress    string `json:"toTokenAddress"`
	Amount            string `json:"amount"`
	Slippage          string `json:"slippage,omitempty"`
	UserWalletAddress string `json:"userWalletAddress"`
	ReceiveAddress    string `json:"receiveAddress,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
