package pubsub

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// DEFAULT_REDIS_PREFIX prefixes every redis channel name
const DEFAULT_REDIS_PREFIX = "storefront:"

type redisBroker struct {
	client adapter.RedisClient
	json   adapter.JSON
	prefix string
}

// NewRedis creates a broker over redis pub/sub
func NewRedis(client adapter.RedisClient, jsonAdapter adapter.JSON, prefix string) Broker {
	if prefix == "" {
		prefix = DEFAULT_REDIS_PREFIX
	}
	return &redisBroker{
		client: client,
		json:   jsonAdapter,
		prefix: prefix,
	}
}

type redisSubscription struct {
	*stream
	ps   adapter.RedisPubSub
	done chan struct{}
	once sync.Once
}

// Subscribe implements Subscriber
func (b *redisBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	channel := b.prefix + topic
	ps := b.client.Subscribe(ctx, channel)
	if ps == nil {
		return nil, fmt.Errorf("failed to subscribe to redis channel %s", channel)
	}

	sub := &redisSubscription{
		stream: newStream(topic),
		ps:     ps,
		done:   make(chan struct{}),
	}
	go sub.pump(b.json)

	logger.Debug("Subscribed to redis channel", zap.String("channel", channel))
	return sub, nil
}

func (s *redisSubscription) pump(j adapter.JSON) {
	defer s.close()

	messages := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var bid domain.Bid
			if err := j.Unmarshal([]byte(msg.Payload), &bid); err != nil {
				logger.Warn("Discarded malformed bid event",
					zap.String("channel", msg.Channel),
					zap.Error(err))
				continue
			}
			s.deliver(bid)
		}
	}
}

func (s *redisSubscription) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
		s.close()
	})
	return err
}

// Publish implements Publisher
func (b *redisBroker) Publish(ctx context.Context, topic string, bid domain.Bid) error {
	data, err := b.json.Marshal(bid)
	if err != nil {
		return fmt.Errorf("failed to marshal bid: %w", err)
	}
	if err := b.client.Publish(ctx, b.prefix+topic, data); err != nil {
		return fmt.Errorf("failed to publish bid: %w", err)
	}
	return nil
}
