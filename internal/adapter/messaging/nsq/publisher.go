package nsq

import (
	"context"
	"encoding/json"
	"fmt"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports"

	gonsq "github.com/nsqio/go-nsq"
	"github.com/rs/zerolog"
)

// producer is the part of *gonsq.Producer the publisher needs.
type producer interface {
	Publish(topic string, body []byte) error
	Ping() error
	Stop()
}

// Publisher implements ports.EventPublisher and ports.HealthChecker on
// top of an nsqd producer.
type Publisher struct {
	producer producer
	topic    string
	log      zerolog.Logger
}

// NewPublisher connects to nsqd and verifies it is reachable.
func NewPublisher(cfg config.NSQConfig, log zerolog.Logger) (*Publisher, error) {
	p, err := gonsq.NewProducer(cfg.Address, gonsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("creating nsq producer: %w", err)
	}
	p.SetLogger(nsqLogger{log: log}, gonsq.LogLevelWarning)

	if err := p.Ping(); err != nil {
		p.Stop()
		return nil, fmt.Errorf("pinging nsqd: %w", err)
	}

	log.Info().
		Str("addr", cfg.Address).
		Str("topic", cfg.Topic).
		Msg("NSQ producer connected")

	return newPublisher(p, cfg.Topic, log), nil
}

func newPublisher(p producer, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{producer: p, topic: topic, log: log}
}

// PublishTransaction sends the event as JSON. go-nsq publishes
// synchronously and has no context support, so ctx is only checked up front.
func (p *Publisher) PublishTransaction(ctx context.Context, event ports.TransactionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}
	if err := p.producer.Publish(p.topic, body); err != nil {
		return fmt.Errorf("publish ledger event: %w", err)
	}
	p.log.Debug().Str("topic", p.topic).Str("txn_ref", event.TxnRef).Msg("ledger event published")
	return nil
}

// Ping checks nsqd connectivity.
func (p *Publisher) Ping(_ context.Context) error {
	return p.producer.Ping()
}

// Name returns the dependency name.
func (p *Publisher) Name() string {
	return "nsq"
}

// Stop flushes and closes the producer connection.
func (p *Publisher) Stop() {
	p.producer.Stop()
}

// nsqLogger routes go-nsq's internal log lines into zerolog.
type nsqLogger struct {
	log zerolog.Logger
}

func (l nsqLogger) Output(_ int, s string) error {
	l.log.Warn().Str("component", "nsq").Msg(s)
	return nil
}
