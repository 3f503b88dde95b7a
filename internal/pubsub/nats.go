package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// DEFAULT_NATS_PREFIX prefixes every NATS subject
const DEFAULT_NATS_PREFIX = "storefront."

// NATSConfig holds the configuration for the NATS connection
type NATSConfig struct {
	URL            string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

// ConnectNATS opens a NATS connection that logs its lifecycle
func ConnectNATS(cfg NATSConfig, connector adapter.NatsConnector) (adapter.NatsConn, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := connector.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

type natsBroker struct {
	nc     adapter.NatsConn
	json   adapter.JSON
	prefix string
}

// NewNATS creates a broker over core NATS subjects
func NewNATS(nc adapter.NatsConn, jsonAdapter adapter.JSON, prefix string) Broker {
	if prefix == "" {
		prefix = DEFAULT_NATS_PREFIX
	}
	return &natsBroker{
		nc:     nc,
		json:   jsonAdapter,
		prefix: prefix,
	}
}

type natsSubscription struct {
	*stream
	sub adapter.NatsSubscription
}

// Subscribe implements Subscriber
func (b *natsBroker) Subscribe(_ context.Context, topic string) (Subscription, error) {
	s := newStream(topic)
	subject := b.prefix + topic

	sub, err := b.nc.Subscribe(subject, func(subject string, data []byte) {
		var bid domain.Bid
		if err := b.json.Unmarshal(data, &bid); err != nil {
			logger.Warn("Discarded malformed bid event",
				zap.String("subject", subject),
				zap.Error(err))
			return
		}
		s.deliver(bid)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	logger.Debug("Subscribed to NATS subject", zap.String("subject", subject))
	return &natsSubscription{stream: s, sub: sub}, nil
}

func (s *natsSubscription) Unsubscribe() error {
	if !s.close() {
		return nil
	}
	return s.sub.Unsubscribe()
}

// Publish implements Publisher
func (b *natsBroker) Publish(_ context.Context, topic string, bid domain.Bid) error {
	logger.Debug("Publishing bid event", zap.String("topic", topic), zap.String("bidID", bid.ID))

	data, err := b.json.Marshal(bid)
	if err != nil {
		return fmt.Errorf("failed to marshal bid: %w", err)
	}
	if err := b.nc.Publish(b.prefix+topic, data); err != nil {
		return fmt.Errorf("failed to publish bid: %w", err)
	}
	return nil
}
