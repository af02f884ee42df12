package model

import "time"

// Swap modes.
const (
	SwapModeSingleChain = "single_chain"
	SwapModeCrossChain  = "cross_chain"
)

// Swap statuses. StatusUnknown marks an exhausted retry budget where the
// transaction may still have landed on-chain.
const (
	SwapStatusConfirmed = "confirmed"
	SwapStatusUnknown   = "unknown"
)

// SwapRecord is one execution history entry.
type SwapRecord struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	FromToken     string    `json:"from_token"`
	ToToken       string    `json:"to_token"`
	Amount        string    `json:"amount"`
	Mode          string    `json:"mode"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ExplorerURL   string    `json:"explorer_url,omitempty"`
	ErrorDetail   string    `json:"error_detail,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
