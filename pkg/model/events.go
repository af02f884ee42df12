package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event wrapper published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// SwapExecutedEvent is emitted after a swap confirms on-chain.
type SwapExecutedEvent struct {
	SwapID        string    `json:"swap_id"`
	WalletAddress string    `json:"wallet_address"`
	FromToken     string    `json:"from_token"`
	ToToken       string    `json:"to_token"`
	Amount        string    `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	ExplorerURL   string    `json:"explorer_url"`
	Timestamp     time.Time `json:"timestamp"`
}

// SwapFailedEvent is emitted when a swap exhausts its retry budget.
// Status is always "unknown" — the submission may still have landed on-chain,
// so consumers must check the explorer before retrying.
type SwapFailedEvent struct {
	SwapID        string    `json:"swap_id"`
	WalletAddress string    `json:"wallet_address"`
	FromToken     string    `json:"from_token"`
	ToToken       string    `json:"to_token"`
	Amount        string    `json:"amount"`
	Error         string    `json:"error"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// CatalogRefreshedEvent is emitted after each token catalog rebuild.
type CatalogRefreshedEvent struct {
	ChainID    string    `json:"chain_id"`
	TokenCount int       `json:"token_count"`
	Source     string    `json:"source"` // "primary" or "fallback"
	Timestamp  time.Time `json:"timestamp"`
}
