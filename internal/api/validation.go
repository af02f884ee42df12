package api

import "fmt"

// Validate checks that SwapRequest has all required fields.
func (r *SwapRequest) Validate() error {
	if r.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if r.FromTokenAddress == "" {
		return fmt.Errorf("fromTokenAddress is required")
	}
	if r.ToTokenAddress == "" {
		return fmt.Errorf("toTokenAddress is required")
	}
	if r.UserWalletAddress == "" {
		return fmt.Errorf("userWalletAddress is required")
	}
	return nil
}

// Validate checks that CrossChainSwapRequest has all required fields.
func (r *CrossChainSwapRequest) Validate() error {
	if r.FromChainID == "" {
		return fmt.Errorf("fromChainId is required")
	}
	if r.ToChainID == "" {
		return fmt.Errorf("toChainId is required")
	}
	if r.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if r.FromTokenAddress == "" {
		return fmt.Errorf("fromTokenAddress is required")
	}
	if r.ToTokenAddress == "" {
		return fmt.Errorf("toTokenAddress is required")
	}
	if r.UserWalletAddress == "" {
		return fmt.Errorf("userWalletAddress is required")
	}
	return nil
}
