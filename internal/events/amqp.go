package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// DefaultExchange is the topic exchange order events go to.
const DefaultExchange = "orders_topic"

// AMQPConfig locates the broker.
type AMQPConfig struct {
	URL      string
	Exchange string
	// Timeout bounds a single publish including the broker confirm.
	Timeout time.Duration
}

// confirmChannel is the part of *amqp.Channel the publisher drives.
type confirmChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	GetNextPublishSeqNo() uint64
	Close() error
}

type channelOpener func() (confirmChannel, <-chan amqp.Confirmation, error)

// AMQPPublisher publishes events to a RabbitMQ topic exchange and waits for
// the publisher confirm carrying each message's delivery tag. A channel that
// times out waiting is closed and replaced on the next publish.
type AMQPPublisher struct {
	conn     *amqp.Connection
	open     channelOpener
	mu       sync.Mutex
	ch       confirmChannel
	acks     <-chan amqp.Confirmation
	exchange string
	timeout  time.Duration
}

// DialAMQP connects, declares the exchange and enables confirms.
func DialAMQP(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	setup, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = setup.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	_ = setup.Close()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	p := &AMQPPublisher{
		conn:     conn,
		open:     confirmingChannel(conn),
		exchange: cfg.Exchange,
		timeout:  cfg.Timeout,
	}
	if err := p.reopen(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.WithField("exchange", cfg.Exchange).Info("RabbitMQ publisher ready")
	return p, nil
}

func confirmingChannel(conn *amqp.Connection) channelOpener {
	return func() (confirmChannel, <-chan amqp.Confirmation, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open channel: %w", err)
		}
		if err := ch.Confirm(false); err != nil {
			_ = ch.Close()
			return nil, nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
		}
		return ch, ch.NotifyPublish(make(chan amqp.Confirmation, 16)), nil
	}
}

// reopen replaces the current channel. Callers hold mu.
func (p *AMQPPublisher) reopen() error {
	p.discard()
	ch, acks, err := p.open()
	if err != nil {
		return err
	}
	p.ch, p.acks = ch, acks
	return nil
}

// discard closes the current channel so confirms still owed on it can never
// be read as answers to later publishes. Callers hold mu.
func (p *AMQPPublisher) discard() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	p.ch, p.acks = nil, nil
}

// Publish sends e and waits for the broker to ack it.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.reopen(); err != nil {
			return fmt.Errorf("publish %s: %w", e.Type, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tag := p.ch.GetNextPublishSeqNo()
	err = p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         e.Type,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.discard()
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				p.discard()
				return errors.New("rabbitmq channel closed before confirm")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if conf.DeliveryTag > tag {
				p.discard()
				return fmt.Errorf("publish %s: confirm for tag %d skipped past %d", e.Type, conf.DeliveryTag, tag)
			}
			if !conf.Ack {
				return fmt.Errorf("publish %s: nack from broker", e.Type)
			}
			return nil
		case <-ctx.Done():
			p.discard()
			log.WithFields(log.Fields{
				"event_type":   e.Type,
				"delivery_tag": tag,
			}).Warn("No publisher confirm in time, reopening channel")
			return fmt.Errorf("publish %s: waiting for confirm: %w", e.Type, ctx.Err())
		}
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	p.discard()
	p.mu.Unlock()
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
