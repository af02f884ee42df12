package engine

import (
	"context"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/chain"
	"github.com/basketfy/dex-adapter/internal/metrics"
)

// MaxAttempts bounds the outer retry loop: three full attempts total, then
// the last error is re-raised unchanged.
const MaxAttempts = 3

// ExplorerBaseURL prefixes transaction signatures in results.
const ExplorerBaseURL = "https://solscan.io/tx/"

// Backoff returns the delay before attempt k+1: 2s, then 4s.
func Backoff(k int) time.Duration {
	return time.Duration(k) * 2 * time.Second
}

// ChainClient is the slice of the RPC layer the engine drives.
type ChainClient interface {
	LatestBlockContext(ctx context.Context) (chain.BlockContext, error)
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	AwaitConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (chain.Confirmation, error)
}

// ExecutionResult reports a confirmed transaction.
type ExecutionResult struct {
	Success       bool               `json:"success"`
	TransactionID string             `json:"transactionId"`
	ExplorerURL   string             `json:"explorerUrl"`
	Confirmation  chain.Confirmation `json:"confirmation"`
}

// Engine runs provider-built transaction payloads to on-chain confirmation.
// A failed or timed-out attempt does not prove the transaction was excluded,
// so a final failure means "unknown, possibly included".
type Engine struct {
	logger *zap.Logger
	chain  ChainClient
	signer solana.PrivateKey
	sleep  func(ctx context.Context, d time.Duration) error
}

// New builds an engine signing with the given fee payer key.
func New(logger *zap.Logger, chainClient ChainClient, signer solana.PrivateKey) *Engine {
	return &Engine{
		logger: logger,
		chain:  chainClient,
		signer: signer,
		sleep:  sleepCtx,
	}
}

// Execute decodes, signs, submits and confirms payload, retrying the whole
// pipeline on failure. Each attempt is bound to a fresh block context; an
// undecodable payload fails immediately without touching the network.
func (e *Engine) Execute(ctx context.Context, payload string) (*ExecutionResult, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}
	if _, err := chain.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := e.sleep(ctx, Backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		result, err := e.runAttempt(ctx, payload)
		if err == nil {
			metrics.IncSwapAttempt("success")
			metrics.IncSwapExecution("confirmed")
			e.logger.Info("engine.confirmed",
				zap.String("transaction_id", result.TransactionID),
				zap.Int("attempt", attempt))
			return result, nil
		}

		lastErr = err
		metrics.IncSwapAttempt("failure")
		e.logger.Warn("engine.attempt_failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", MaxAttempts),
			zap.Error(err))
	}

	metrics.IncSwapExecution("failed")
	return nil, lastErr
}

func (e *Engine) runAttempt(ctx context.Context, payload string) (*ExecutionResult, error) {
	blockCtx, err := e.chain.LatestBlockContext(ctx)
	if err != nil {
		return nil, err
	}

	decoded, err := chain.Decode(payload)
	if err != nil {
		return nil, err
	}
	if err := decoded.AttachComputeBudget(chain.ComputeUnitLimit); err != nil {
		return nil, err
	}
	decoded.SetBlockhash(blockCtx.Blockhash)
	if err := decoded.Sign(e.signer); err != nil {
		return nil, err
	}

	sig, err := e.chain.Submit(ctx, decoded.Tx)
	if err != nil {
		return nil, err
	}

	conf, err := e.chain.AwaitConfirmation(ctx, sig, blockCtx.LastValidBlockHeight)
	if err != nil {
		return nil, err
	}

	return &ExecutionResult{
		Success:       true,
		TransactionID: sig.String(),
		ExplorerURL:   ExplorerBaseURL + sig.String(),
		Confirmation:  conf,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
