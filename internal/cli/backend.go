package cli

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Shubz284/biryani-house/internal/config"
	"github.com/Shubz284/biryani-house/internal/events"
	"github.com/Shubz284/biryani-house/internal/store"
)

// openStore connects the configured driver and wraps it in the resilience
// policy.
func openStore(ctx context.Context, cfg config.StoreConfig) (*store.Resilient, error) {
	var inner store.Store
	switch cfg.Driver {
	case config.DriverMongo:
		m, err := store.OpenMongo(ctx, store.MongoConfig{
			URI:            cfg.URI,
			Database:       cfg.Database,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		inner = m
	case config.DriverMemory:
		log.Warn("Using the in-memory store; data is lost on exit")
		inner = store.NewMemory()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	policy := store.DefaultPolicy()
	policy.Timeout = cfg.OpTimeout
	policy.Attempts = cfg.Attempts
	policy.Backoff = cfg.Backoff
	policy.MaxBackoff = cfg.MaxBackoff
	policy.MaxConcurrent = cfg.MaxConcurrent
	return store.NewResilient(inner, policy), nil
}

// openPublisher dials the broker, or returns a no-op publisher when events
// are not configured.
func openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		log.Info("Order events disabled")
		return events.Noop{}, nil
	}
	return events.DialAMQP(events.AMQPConfig{
		URL:      cfg.AMQPURL,
		Exchange: cfg.Exchange,
		Timeout:  cfg.PublishTimeout,
	})
}
