package consumer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"production-manager/internal/config"
	"production-manager/internal/domain"
	"production-manager/internal/dto"
)

// Message is one received queue message. ReceiptHandle is the token needed
// to delete (acknowledge) it.
type Message struct {
	ID            string
	ReceiptHandle string
	Body          string
}

// Transport is the queue the consumer reads from. Delivery is at least
// once: a received message reappears after its visibility timeout unless
// deleted. Implementations must be safe for concurrent use.
type Transport interface {
	ReceiveMessages(ctx context.Context, maxMessages, waitTimeSeconds, visibilityTimeout int32) ([]Message, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
}

// OrderReceiver ingests the mapped order. It must be idempotent per
// externalOrderId and safe for concurrent use.
type OrderReceiver interface {
	ReceiveOrder(ctx context.Context, req *dto.CreateProductionOrderRequest) (*domain.ProductionOrder, error)
}

// Consumer runs one long-lived poll loop against the queue. Each received
// batch fans out into per-message goroutines which are joined before the
// next receive call. A message is deleted only after ingestion succeeded;
// every failure path leaves it for queue redelivery.
type Consumer struct {
	transport Transport
	orders    OrderReceiver
	cfg       config.SQSConfig
	logger    *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
	started  bool
	inFlight sync.WaitGroup
	active   atomic.Int64
}

func New(transport Transport, orders OrderReceiver, cfg config.SQSConfig, logger *zap.Logger) *Consumer {
	return &Consumer{
		transport: transport,
		orders:    orders,
		cfg:       cfg,
		logger:    logger,
		stop:      make(chan struct{}),
	}
}

// Start launches the poll loop goroutine. Without a configured transport it
// is a no-op: the queue intake channel is optional and its absence must not
// fail startup.
func (c *Consumer) Start() {
	if c.transport == nil {
		c.logger.Warn("SQS transport not configured, consumer will not start")
		return
	}

	c.started = true
	go c.pollLoop()
}

func (c *Consumer) pollLoop() {
	ctx := context.Background()

	for !c.stopping() {
		messages, err := c.transport.ReceiveMessages(ctx,
			c.cfg.MaxMessages, c.cfg.WaitTimeSeconds, c.cfg.VisibilityTimeout)
		if err != nil {
			if c.stopping() {
				return
			}
			c.logger.Error("receiving messages from queue", zap.Error(err))
			// Avoid a tight loop against a degraded transport, but let a
			// shutdown request cut the pause short.
			select {
			case <-c.stop:
			case <-time.After(c.cfg.ReceiveBackoff):
			}
			continue
		}

		if len(messages) == 0 {
			continue
		}

		var batch sync.WaitGroup
		for _, msg := range messages {
			batch.Add(1)
			c.inFlight.Add(1)
			c.active.Add(1)
			go func(msg Message) {
				defer batch.Done()
				defer c.inFlight.Done()
				defer c.active.Add(-1)
				c.handleMessage(ctx, msg)
			}(msg)
		}
		batch.Wait()
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg Message) {
	logger := c.logger.With(zap.String("messageId", msg.ID))

	req, err := MapToRequest(msg.Body)
	if err != nil {
		// Not acknowledged; the queue redelivers until its dead-letter
		// policy kicks in.
		logger.Error("failed to map message body", zap.Error(err))
		return
	}

	if _, err := c.orders.ReceiveOrder(ctx, req); err != nil {
		logger.Error("failed to process message", zap.Error(err))
		return
	}

	if err := c.transport.DeleteMessage(ctx, msg.ReceiptHandle); err != nil {
		logger.Error("failed to delete message", zap.Error(err))
		return
	}

	logger.Info("message processed",
		zap.String("externalOrderId", req.ExternalOrderID))
}

func (c *Consumer) stopping() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}

// Shutdown stops the poll loop and waits for in-flight messages up to the
// drain budget (drain interval times max attempts). It never fails: on
// timeout the remaining work is abandoned to queue redelivery and the count
// logged.
func (c *Consumer) Shutdown() {
	c.stopOnce.Do(func() { close(c.stop) })

	if !c.started {
		return
	}

	done := make(chan struct{})
	go func() {
		c.inFlight.Wait()
		close(done)
	}()

	budget := time.Duration(c.cfg.DrainMaxAttempts) * c.cfg.DrainInterval
	select {
	case <-done:
		c.logger.Info("all active messages processed, shutdown complete")
	case <-time.After(budget):
		c.logger.Warn("forced shutdown with active messages still processing",
			zap.Int64("activeMessages", c.active.Load()))
	}
}
