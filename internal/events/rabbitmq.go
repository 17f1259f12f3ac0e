package events

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

const maxDialDelay = 30 * time.Second

// Envelope is the message handed to the push-notification collaborator: the
// event plus the device tokens of its recipients.
type Envelope struct {
	Event      Event    `json:"event"`
	PushTokens []string `json:"push_tokens"`
}

// Publisher forwards envelopes to an external broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

type rabbitPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *zap.Logger
}

// NewRabbitPublisher dials the broker and declares a durable topic exchange.
// It returns a nil Publisher when no broker URL is configured.
func NewRabbitPublisher(ctx context.Context, cfg config.BrokerConfig, logger *zap.Logger) (Publisher, error) {
	if cfg.URL == "" {
		logger.Warn("RABBITMQ_URL not provided; notifications stay in-process")
		return nil, nil
	}

	conn, err := dialWithRetry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("connected to rabbitmq", zap.String("exchange", cfg.Exchange))
	return &rabbitPublisher{conn: conn, exchange: cfg.Exchange, logger: logger}, nil
}

// Publish sends the envelope as a persistent JSON message routed by the event
// type and waits for the broker to confirm it.
func (p *rabbitPublisher) Publish(ctx context.Context, env Envelope) error {
	event := env.Event
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.Confirm(false); err != nil {
		return err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msgID := event.ID
	if msgID == "" {
		msgID = uuid.NewString()
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, string(event.Type), false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msgID,
			Timestamp:    event.Timestamp,
			Body:         body,
		})
	if err != nil {
		return err
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return errors.New("broker nacked event " + msgID)
	}
	p.logger.Debug("event published", zap.String("type", string(event.Type)), zap.String("id", msgID))
	return nil
}

func (p *rabbitPublisher) Close() error {
	return p.conn.Close()
}

func dialWithRetry(ctx context.Context, cfg config.BrokerConfig, logger *zap.Logger) (*amqp.Connection, error) {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			if i > 1 {
				logger.Info("rabbitmq connected", zap.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		sleep := cfg.RetryDelay() * time.Duration(math.Pow(2, float64(i-1)))
		if sleep > maxDialDelay {
			sleep = maxDialDelay
		}
		logger.Warn("rabbitmq dial failed", zap.Int("attempt", i), zap.Duration("sleep", sleep), zap.Error(err))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
