package pubsub

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

const (
	// DEFAULT_BUFFER is the number of undelivered events a subscription holds
	// before new events are dropped
	DEFAULT_BUFFER = 64
)

// ErrClosed is returned when using a closed broker
var ErrClosed = errors.New("pubsub closed")

// Subscription is a live stream of bid insert events for one topic.
// It must be released with Unsubscribe; the server never times it out.
//
//go:generate mockgen -source=pubsub.go -destination=../mocks/pubsub.go -package=mocks -mock_names=Subscription=MockSubscription,Subscriber=MockSubscriber,Publisher=MockPublisher
type Subscription interface {
	// Events is closed after Unsubscribe
	Events() <-chan domain.Bid
	Unsubscribe() error
}

// Subscriber opens subscriptions
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Publisher emits bid insert events
type Publisher interface {
	Publish(ctx context.Context, topic string, bid domain.Bid) error
}

// Broker is a transport that can both publish and subscribe
type Broker interface {
	Subscriber
	Publisher
}

// AuctionTopic returns the topic carrying the bid inserts of one auction
func AuctionTopic(auctionID string) string {
	return "bids-for-" + auctionID
}

// stream is the delivery end shared by every transport
type stream struct {
	topic string

	mu     sync.Mutex
	events chan domain.Bid
	closed bool
}

func newStream(topic string) *stream {
	return &stream{
		topic:  topic,
		events: make(chan domain.Bid, DEFAULT_BUFFER),
	}
}

func (s *stream) Events() <-chan domain.Bid {
	return s.events
}

// deliver never blocks the transport; a full buffer drops the event
func (s *stream) deliver(bid domain.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.events <- bid:
	default:
		logger.Warn("Dropped bid event, subscriber is behind",
			zap.String("topic", s.topic),
			zap.String("bidID", bid.ID))
	}
}

// close reports false when the stream was already closed
func (s *stream) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	close(s.events)
	return true
}
