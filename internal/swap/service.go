package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/engine"
	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/pkg/model"
)

// AggregatorAPI is the slice of the provider client the orchestrator drives.
type AggregatorAPI interface {
	Swap(ctx context.Context, params okx.SwapParams) (*okx.SwapResponse, error)
	BuildCrossChainTx(ctx context.Context, params okx.CrossChainParams) ([]okx.SwapData, error)
}

// Executor runs a provider-built transaction payload to confirmation.
type Executor interface {
	Execute(ctx context.Context, payload string) (*engine.ExecutionResult, error)
}

// EventPublisher emits swap lifecycle events.
type EventPublisher interface {
	PublishSwapExecuted(ctx context.Context, evt model.SwapExecutedEvent) error
	PublishSwapFailed(ctx context.Context, evt model.SwapFailedEvent) error
}

// HistoryStore persists execution history.
type HistoryStore interface {
	SaveSwap(ctx context.Context, rec model.SwapRecord) error
}

// Result pairs the provider's routed quote with the on-chain outcome.
type Result struct {
	SwapID       string                  `json:"swapId"`
	RouterResult okx.QuoteData           `json:"routerResult"`
	Execution    *engine.ExecutionResult `json:"execution"`
}

// Service orchestrates quote-to-confirmation swap flows: it asks the
// aggregator for a routed transaction, validates the quoted output, hands the
// payload to the execution engine, and records the outcome.
type Service struct {
	logger *zap.Logger
	agg    AggregatorAPI
	engine Executor
	pub    EventPublisher
	store  HistoryStore
}

// New wires the orchestrator. pub and store may be nil in degraded setups;
// events and history are then skipped.
func New(logger *zap.Logger, agg AggregatorAPI, exec Executor, pub EventPublisher, store HistoryStore) *Service {
	return &Service{
		logger: logger,
		agg:    agg,
		engine: exec,
		pub:    pub,
		store:  store,
	}
}

// ExecuteSwap runs a same-chain swap end to end. The provider response must
// carry a zero status code and a non-empty quoted output amount before any
// transaction is executed.
func (s *Service) ExecuteSwap(ctx context.Context, params okx.SwapParams) (*Result, error) {
	resp, err := s.agg.Swap(ctx, params)
	if err != nil {
		return nil, err
	}
	if resp.Code != "0" || len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: provider code %s: %s", okx.ErrInvalidOutput, resp.Code, resp.Msg)
	}
	data := resp.Data[0]
	if data.RouterResult.ToTokenAmount == "" {
		return nil, fmt.Errorf("%w: quoted output amount missing", okx.ErrInvalidOutput)
	}

	payload := txPayload(data)
	if payload == "" {
		return nil, fmt.Errorf("%w: transaction payload missing", engine.ErrInvalidPayload)
	}

	rec := model.SwapRecord{
		ID:            uuid.NewString(),
		WalletAddress: params.UserWalletAddress,
		FromToken:     params.FromTokenAddress,
		ToToken:       params.ToTokenAddress,
		Amount:        params.Amount,
		Mode:          model.SwapModeSingleChain,
	}
	return s.run(ctx, rec, data.RouterResult, payload)
}

// ExecuteCrossChainSwap builds and executes a cross-chain swap. Only the
// first provider payload is executed; bridge legs beyond it are sequenced by
// the provider, not here.
func (s *Service) ExecuteCrossChainSwap(ctx context.Context, params okx.CrossChainParams) (*Result, error) {
	data, err := s.agg.BuildCrossChainTx(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty build-tx response", okx.ErrMalformedResponse)
	}

	payload := txPayload(data[0])
	if payload == "" {
		return nil, fmt.Errorf("%w: transaction payload missing", engine.ErrInvalidPayload)
	}

	rec := model.SwapRecord{
		ID:            uuid.NewString(),
		WalletAddress: params.UserWalletAddress,
		FromToken:     params.FromTokenAddress,
		ToToken:       params.ToTokenAddress,
		Amount:        params.Amount,
		Mode:          model.SwapModeCrossChain,
	}
	return s.run(ctx, rec, data[0].RouterResult, payload)
}

func (s *Service) run(ctx context.Context, rec model.SwapRecord, quote okx.QuoteData, payload string) (*Result, error) {
	result, err := s.engine.Execute(ctx, payload)
	if err != nil {
		s.recordFailure(ctx, rec, err)
		return nil, err
	}

	s.recordSuccess(ctx, rec, result)
	return &Result{
		SwapID:       rec.ID,
		RouterResult: quote,
		Execution:    result,
	}, nil
}

func (s *Service) recordSuccess(ctx context.Context, rec model.SwapRecord, result *engine.ExecutionResult) {
	now := time.Now().UTC()
	rec.Status = model.SwapStatusConfirmed
	rec.TransactionID = result.TransactionID
	rec.ExplorerURL = result.ExplorerURL
	rec.CreatedAt = now

	if s.store != nil {
		if err := s.store.SaveSwap(ctx, rec); err != nil {
			s.logger.Error("swap.history_save_failed", zap.Error(err), zap.String("swap_id", rec.ID))
		}
	}
	if s.pub != nil {
		evt := model.SwapExecutedEvent{
			SwapID:        rec.ID,
			WalletAddress: rec.WalletAddress,
			FromToken:     rec.FromToken,
			ToToken:       rec.ToToken,
			Amount:        rec.Amount,
			TransactionID: rec.TransactionID,
			ExplorerURL:   rec.ExplorerURL,
			Timestamp:     now,
		}
		if err := s.pub.PublishSwapExecuted(ctx, evt); err != nil {
			s.logger.Error("swap.event_publish_failed", zap.Error(err), zap.String("swap_id", rec.ID))
		}
	}
}

// recordFailure marks the swap "unknown" rather than "failed": an exhausted
// retry budget does not prove the transaction was excluded from the chain.
func (s *Service) recordFailure(ctx context.Context, rec model.SwapRecord, execErr error) {
	now := time.Now().UTC()
	rec.Status = model.SwapStatusUnknown
	rec.ErrorDetail = execErr.Error()
	rec.CreatedAt = now

	if s.store != nil {
		if err := s.store.SaveSwap(ctx, rec); err != nil {
			s.logger.Error("swap.history_save_failed", zap.Error(err), zap.String("swap_id", rec.ID))
		}
	}
	if s.pub != nil {
		evt := model.SwapFailedEvent{
			SwapID:        rec.ID,
			WalletAddress: rec.WalletAddress,
			FromToken:     rec.FromToken,
			ToToken:       rec.ToToken,
			Amount:        rec.Amount,
			Error:         execErr.Error(),
			Status:        model.SwapStatusUnknown,
			Timestamp:     now,
		}
		if err := s.pub.PublishSwapFailed(ctx, evt); err != nil {
			s.logger.Error("swap.event_publish_failed", zap.Error(err), zap.String("swap_id", rec.ID))
		}
	}
}

// txPayload extracts the base-58 transaction body. Cross-chain endpoints
// sometimes flatten it to a top-level data field.
func txPayload(data okx.SwapData) string {
	if data.Tx != nil && data.Tx.Data != "" {
		return data.Tx.Data
	}
	return data.Data
}
