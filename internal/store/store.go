package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/pkg/model"
)

// Store defines the contract for caching and persisting swap executions.
type Store interface {
	SaveSwap(ctx context.Context, rec model.SwapRecord) error
	ListSwaps(ctx context.Context, walletAddress string, limit int) ([]model.SwapRecord, error)
	GetSwap(ctx context.Context, id string) (*model.SwapRecord, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Redis() *redis.Client
	HealthCheck(ctx context.Context) error
	Close() error
}

// HybridStore is Redis-first for hot reads with Postgres as the system of
// record for execution history.
type HybridStore struct {
	redis  *redis.Client
	PG     *pgxpool.Pool
	logger *zap.Logger
}

type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewHybrid creates a Redis-first, Postgres-backed store. An empty pgURL
// disables persistence; swaps are then only cached.
func NewHybrid(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &HybridStore{redis: rdb, PG: pgPool, logger: logger}, nil
}

// SaveSwap records an execution in Postgres and caches the wallet's latest
// swap in Redis.
func (s *HybridStore) SaveSwap(ctx context.Context, rec model.SwapRecord) error {
	if key := latestSwapKey(rec.WalletAddress); key != "" {
		if err := s.SetJSON(ctx, key, rec, 24*time.Hour); err != nil {
			s.logger.Warn("store.redis.cache_swap_failed", zap.Error(err))
		}
	}

	if s.PG == nil {
		return nil
	}
	_, err := s.PG.Exec(ctx, `
		INSERT INTO swap_history (
			id, wallet_address, from_token, to_token,
			amount, mode, status, transaction_id, explorer_url, error_detail, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, rec.ID, rec.WalletAddress, rec.FromToken, rec.ToToken,
		rec.Amount, rec.Mode, rec.Status, rec.TransactionID, rec.ExplorerURL, rec.ErrorDetail)
	if err != nil {
		s.logger.Error("store.pg.insert_swap_failed", zap.Error(err))
	}
	return err
}

// ListSwaps returns execution history, newest first. An empty walletAddress
// lists across all wallets.
func (s *HybridStore) ListSwaps(ctx context.Context, walletAddress string, limit int) ([]model.SwapRecord, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.PG.Query(ctx, `
		SELECT id, wallet_address, from_token, to_token,
		       amount, mode, status, transaction_id, explorer_url, error_detail, created_at
		FROM swap_history
		WHERE ($1 = '' OR wallet_address = $1)
		ORDER BY created_at DESC
		LIMIT $2;
	`, walletAddress, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SwapRecord
	for rows.Next() {
		var rec model.SwapRecord
		if err := rows.Scan(&rec.ID, &rec.WalletAddress, &rec.FromToken, &rec.ToToken,
			&rec.Amount, &rec.Mode, &rec.Status, &rec.TransactionID,
			&rec.ExplorerURL, &rec.ErrorDetail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, nil
}

// GetSwap fetches one execution by ID.
func (s *HybridStore) GetSwap(ctx context.Context, id string) (*model.SwapRecord, error) {
	if s.PG == nil {
		return nil, fmt.Errorf("postgres unavailable")
	}
	row := s.PG.QueryRow(ctx, `
		SELECT id, wallet_address, from_token, to_token,
		       amount, mode, status, transaction_id, explorer_url, error_detail, created_at
		FROM swap_history
		WHERE id = $1
		LIMIT 1;
	`, id)

	var rec model.SwapRecord
	if err := row.Scan(&rec.ID, &rec.WalletAddress, &rec.FromToken, &rec.ToToken,
		&rec.Amount, &rec.Mode, &rec.Status, &rec.TransactionID,
		&rec.ExplorerURL, &rec.ErrorDetail, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("GetSwap no rows for id [%s]: %w", id, err)
		}
		return nil, fmt.Errorf("GetSwap scan failed: %w", err)
	}
	return &rec, nil
}

func (s *HybridStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

func (s *HybridStore) GetJSON(ctx context.Context, key string, dest any) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Redis exposes the underlying client for components that manage their own
// keyspace, like the catalog cache.
func (s *HybridStore) Redis() *redis.Client {
	return s.redis
}

func (s *HybridStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

func (s *HybridStore) Close() error {
	if s.PG != nil {
		s.PG.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

func latestSwapKey(walletAddress string) string {
	if walletAddress == "" {
		return ""
	}
	return "swap:latest:" + walletAddress
}
