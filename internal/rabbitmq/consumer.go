package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/internal/okx"
	"github.com/basketfy/dex-adapter/internal/swap"
)

// ExecuteSwapCommand is an inbound same-chain swap request.
type ExecuteSwapCommand struct {
	Amount            string `json:"amount"`
	FromTokenAddress  string `json:"fromTokenAddress"`
	ToTokenAddress    string `json:"toTokenAddress"`
	Slippage          string `json:"slippage,omitempty"`
	UserWalletAddress string `json:"userWalletAddress"`
	ChainID           string `json:"chainId,omitempty"`
}

// ExecuteCrossChainSwapCommand is an inbound cross-chain swap request.
type ExecuteCrossChainSwapCommand struct {
	FromChainID       string `json:"fromChainId"`
	ToChainID         string `json:"toChainId"`
	FromTokenAddress  string `json:"fromTokenAddress"`
	ToTokenAddress    string `json:"toTokenAddress"`
	Amount            string `json:"amount"`
	Slippage          string `json:"slippage,omitempty"`
	UserWalletAddress string `json:"userWalletAddress"`
	ReceiveAddress    string `json:"receiveAddress,omitempty"`
}

// SwapService executes swap commands end to end.
type SwapService interface {
	ExecuteSwap(ctx context.Context, params okx.SwapParams) (*swap.Result, error)
	ExecuteCrossChainSwap(ctx context.Context, params okx.CrossChainParams) (*swap.Result, error)
}

// Consumer consumes swap commands from RabbitMQ.
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	swapService SwapService
	provider    string
	logger      *zap.Logger
	done        chan struct{}
}

// NewConsumer connects to RabbitMQ and opens a channel.
func NewConsumer(url, provider string, swapService SwapService, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &Consumer{
		conn:        conn,
		channel:     channel,
		swapService: swapService,
		provider:    provider,
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

// Start declares the durable command queues and begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	swapQueue := fmt.Sprintf("outbound.swaps.execute.%s", c.provider)
	crossQueue := fmt.Sprintf("outbound.swaps.cross_chain.%s", c.provider)

	if _, err := c.channel.QueueDeclare(swapQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", swapQueue, err)
	}
	if _, err := c.channel.QueueDeclare(crossQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", crossQueue, err)
	}

	swapMsgs, err := c.channel.Consume(swapQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", swapQueue, err)
	}
	crossMsgs, err := c.channel.Consume(crossQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", crossQueue, err)
	}

	c.logger.Info("Started consuming from RabbitMQ",
		zap.String("swapQueue", swapQueue),
		zap.String("crossChainQueue", crossQueue),
	)

	go c.consumeSwaps(ctx, swapMsgs)
	go c.consumeCrossChainSwaps(ctx, crossMsgs)

	return nil
}

func (c *Consumer) consumeSwaps(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Swap command channel closed")
				return
			}
			c.handleSwap(ctx, msg)
		}
	}
}

func (c *Consumer) consumeCrossChainSwaps(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("Cross-chain swap command channel closed")
				return
			}
			c.handleCrossChainSwap(ctx, msg)
		}
	}
}

func (c *Consumer) handleSwap(ctx context.Context, msg amqp.Delivery) {
	c.logger.Debug("Received swap command", zap.String("body", string(msg.Body)))

	var cmd ExecuteSwapCommand
	if err := json.Unmarshal(msg.Body, &cmd); err != nil {
		c.logger.Error("Failed to unmarshal ExecuteSwapCommand", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	_, err := c.swapService.ExecuteSwap(ctx, okx.SwapParams{
		Amount:            cmd.Amount,
		FromTokenAddress:  cmd.FromTokenAddress,
		ToTokenAddress:    cmd.ToTokenAddress,
		Slippage:          cmd.Slippage,
		UserWalletAddress: cmd.UserWalletAddress,
		ChainID:           cmd.ChainID,
	})
	if err != nil {
		// A failed swap may still have landed on-chain, so the command is
		// never requeued. The failure event carries the detail.
		c.logger.Error("Failed to execute swap command", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
}

func (c *Consumer) handleCrossChainSwap(ctx context.Context, msg amqp.Delivery) {
	c.logger.Debug("Received cross-chain swap command", zap.String("body", string(msg.Body)))

	var cmd ExecuteCrossChainSwapCommand
	if err := json.Unmarshal(msg.Body, &cmd); err != nil {
		c.logger.Error("Failed to unmarshal ExecuteCrossChainSwapCommand", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	_, err := c.swapService.ExecuteCrossChainSwap(ctx, okx.CrossChainParams{
		FromChainID:       cmd.FromChainID,
		ToChainID:         cmd.ToChainID,
		FromTokenAddress:  cmd.FromTokenAddress,
		ToTokenAddress:    cmd.ToTokenAddress,
		Amount:            cmd.Amount,
		Slippage:          cmd.Slippage,
		UserWalletAddress: cmd.UserWalletAddress,
		ReceiveAddress:    cmd.ReceiveAddress,
	})
	if err != nil {
		c.logger.Error("Failed to execute cross-chain swap command", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	msg.Ack(false)
}

// Close stops the consumer goroutines and closes the connection.
func (c *Consumer) Close() error {
	close(c.done)

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
