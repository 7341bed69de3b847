package natsstan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	stan "github.com/nats-io/stan.go"
	"go.uber.org/zap"

	"github.com/example/courses-service/internal/domain"
)

// Consumer owns one NATS Streaming connection and a durable queue
// subscription on it. Deliveries are handled one at a time and always
// acknowledged, even when the handler fails: processing is at-most-once.
type Consumer struct {
	ClusterID      string
	ClientID       string
	URL            string
	Subject        string
	QueueGroup     string
	Durable        string
	AckWait        time.Duration
	HandlerTimeout time.Duration
	Log            *zap.Logger

	mu   sync.Mutex
	conn stan.Conn
	sub  stan.Subscription
}

// Connect opens the streaming connection.
func (c *Consumer) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	clientID := c.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("courses-svc-%d", time.Now().UnixNano())
	}
	conn, err := stan.Connect(c.ClusterID, clientID,
		stan.NatsURL(c.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, err error) {
			c.Log.Error("stan connection lost", zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("stan connect: %w", err)
	}
	c.conn = conn
	c.Log.Info("stan connected", zap.String("url", c.URL), zap.String("client_id", clientID))
	return nil
}

// Consume subscribes handler to the queue. MaxInflight(1) keeps deliveries
// serialized for this consumer.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("stan: consumer not connected")
	}
	timeout := c.HandlerTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ackWait := c.AckWait
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}
	sub, err := c.conn.QueueSubscribe(c.Subject, c.QueueGroup, func(m *stan.Msg) {
		hCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		deliver(hCtx, c.Log, m.Data, handler, m.Ack)
	},
		stan.DurableName(c.Durable),
		stan.SetManualAckMode(),
		stan.AckWait(ackWait),
		stan.MaxInflight(1),
		stan.DeliverAllAvailable(),
	)
	if err != nil {
		return fmt.Errorf("stan subscribe %s: %w", c.Subject, err)
	}
	c.sub = sub
	c.Log.Info("consuming", zap.String("subject", c.Subject), zap.String("queue", c.QueueGroup))
	return nil
}

// Close drops the subscription (keeping the durable position) and the connection.
func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	if c.sub != nil {
		errs = append(errs, c.sub.Close())
		c.sub = nil
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	return errors.Join(errs...)
}

// deliver runs handler and acknowledges the message whatever the outcome,
// including a panic in the handler.
func deliver(ctx context.Context, log *zap.Logger, data []byte, handler func(ctx context.Context, raw []byte) error, ack func() error) {
	log.Info("message received", zap.ByteString("body", data))
	defer func() {
		if err := ack(); err != nil {
			log.Warn("ack failed", zap.Error(err))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", zap.Any("panic", r))
		}
	}()
	if err := handler(ctx, data); err != nil {
		log.Error("handler error", zap.Error(err))
	}
}

var _ domain.MessageConsumer = (*Consumer)(nil)
