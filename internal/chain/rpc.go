package chain

import (
	"context"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// SubmitMaxRetries is the node-side resubmission allowance. It covers
// propagation hiccups only; full-attempt retries live in the engine.
const SubmitMaxRetries uint = 5

const confirmPollInterval = 500 * time.Millisecond

// BlockContext is the block reference an execution attempt is bound to.
type BlockContext struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Confirmation describes where and how a transaction landed.
type Confirmation struct {
	Slot   uint64
	Status string
}

// Client wraps the Solana JSON-RPC client with the three operations the
// execution engine needs.
type Client struct {
	logger *zap.Logger
	rpc    *rpc.Client
}

// NewClient connects to the given RPC endpoint.
func NewClient(logger *zap.Logger, rpcURL string) *Client {
	return &Client{
		logger: logger,
		rpc:    rpc.New(rpcURL),
	}
}

// LatestBlockContext fetches a fresh blockhash and its validity horizon.
func (c *Client) LatestBlockContext(ctx context.Context) (BlockContext, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return BlockContext{}, fmt.Errorf("fetch latest blockhash: %w", err)
	}
	return BlockContext{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

// Submit sends a signed transaction with pre-flight simulation enabled.
func (c *Client) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	maxRetries := SubmitMaxRetries
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		MaxRetries:          &maxRetries,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("submit transaction: %w", err)
	}
	c.logger.Debug("chain.submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// AwaitConfirmation polls signature status until the transaction reaches the
// confirmed commitment level, the block-validity height passes, or ctx ends.
// An on-chain execution failure surfaces as *OnChainExecutionError.
func (c *Client) AwaitConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) (Confirmation, error) {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		statuses, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			c.logger.Warn("chain.status_poll_failed", zap.Error(err), zap.String("signature", sig.String()))
		} else if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return Confirmation{}, &OnChainExecutionError{
					Signature: sig.String(),
					Detail:    fmt.Sprintf("%v", st.Err),
				}
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return Confirmation{
					Slot:   st.Slot,
					Status: string(st.ConfirmationStatus),
				}, nil
			}
		}

		height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
		if err == nil && height > lastValidBlockHeight {
			return Confirmation{}, ErrBlockhashExpired
		}

		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
