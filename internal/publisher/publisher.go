package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/metrics"
	"github.com/basketfy/dex-adapter/pkg/model"
)

// Canonical event subjects.
const (
	SubjectSwapExecuted     = "evt.swap.executed.v1"
	SubjectSwapFailed       = "evt.swap.failed.v1"
	SubjectCatalogRefreshed = "evt.catalog.refreshed.v1"
)

// jetStream is the slice of the JetStream context the publisher uses.
type jetStream interface {
	PublishMsg(msg *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher wraps a NATS connection and publishes canonical swap and catalog
// events.
type Publisher struct {
	logger  *zap.Logger
	nc      *nats.Conn
	js      jetStream
	service string
}

// New creates a Publisher with JetStream enabled.
func New(logger *zap.Logger, nc *nats.Conn, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	return &Publisher{
		logger:  logger,
		nc:      nc,
		js:      js,
		service: service,
	}, nil
}

// PublishEnvelope serializes and publishes a canonical event envelope.
func (p *Publisher) PublishEnvelope(_ context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		p.logger.Error("publisher.marshal_failed",
			zap.String("subject", subject),
			zap.String("event_type", env.EventType),
			zap.Error(err))
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		p.logger.Error("publisher.publish_failed",
			zap.String("subject", subject),
			zap.String("event_type", env.EventType),
			zap.Error(err))
		metrics.IncNATSPublishError(subject)
		return err
	}

	p.logger.Debug("publisher.publish_success",
		zap.String("subject", subject),
		zap.String("event_type", env.EventType))
	return nil
}

// PublishSwapExecuted emits a swap.executed event after on-chain confirmation.
func (p *Publisher) PublishSwapExecuted(ctx context.Context, evt model.SwapExecutedEvent) error {
	return p.publishEvent(ctx, SubjectSwapExecuted, "swap.executed", evt)
}

// PublishSwapFailed emits a swap.failed event once the retry budget is spent.
func (p *Publisher) PublishSwapFailed(ctx context.Context, evt model.SwapFailedEvent) error {
	return p.publishEvent(ctx, SubjectSwapFailed, "swap.failed", evt)
}

// PublishCatalogRefreshed emits a catalog.refreshed event after each rebuild.
func (p *Publisher) PublishCatalogRefreshed(ctx context.Context, evt model.CatalogRefreshedEvent) error {
	return p.publishEvent(ctx, SubjectCatalogRefreshed, "catalog.refreshed", evt)
}

func (p *Publisher) publishEvent(ctx context.Context, subject, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: uuid.New(),
		Topic:         subject,
		EventType:     eventType,
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
		Payload:       data,
	}
	return p.PublishEnvelope(ctx, subject, env)
}

// Close drains the underlying NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
