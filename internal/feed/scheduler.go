package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/aggregator"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

var (
	// ErrUnknownClass is returned when subscribing with a class that has no interval
	ErrUnknownClass = errors.New("unknown feed class")

	// ErrTooManyFeeds is returned when the active feed limit is reached
	ErrTooManyFeeds = errors.New("too many active feeds")

	// ErrFeedNotFound is returned when a feed id is unknown
	ErrFeedNotFound = errors.New("feed not found")
)

// Config holds scheduler settings
type Config struct {
	// Intervals is the refresh period of each feed class
	Intervals        map[Class]time.Duration
	LimitPerCategory int
	// MaxFeeds caps concurrently active feeds; zero means unlimited
	MaxFeeds int
}

// Scheduler owns the active feeds
//
//go:generate mockgen -source=scheduler.go -destination=../mocks/feed_scheduler.go -package=mocks -mock_names=Scheduler=MockFeedScheduler
type Scheduler interface {
	// Subscribe creates and starts a feed
	Subscribe(class Class, categories []domain.Category) (*Feed, error)
	// Get returns an active feed
	Get(id string) (*Feed, error)
	// Unsubscribe closes and forgets a feed
	Unsubscribe(id string) error
	// Close closes every feed
	Close()
}

type scheduler struct {
	cfg   Config
	agg   aggregator.Aggregator
	clock adapter.Clock

	mu     sync.RWMutex
	feeds  map[string]*Feed
	closed bool
}

// NewScheduler creates a feed scheduler
func NewScheduler(cfg Config, agg aggregator.Aggregator, clock adapter.Clock) Scheduler {
	return &scheduler{
		cfg:   cfg,
		agg:   agg,
		clock: clock,
		feeds: make(map[string]*Feed),
	}
}

// Subscribe implements Scheduler
func (s *scheduler) Subscribe(class Class, categories []domain.Category) (*Feed, error) {
	interval, ok := s.cfg.Intervals[class]
	if !ok || interval <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrFeedClosed
	}
	if s.cfg.MaxFeeds > 0 && len(s.feeds) >= s.cfg.MaxFeeds {
		return nil, ErrTooManyFeeds
	}

	id := ulid.Make().String()
	f := newFeed(id, class, interval, s.cfg.LimitPerCategory, categories, s.agg, s.clock)
	s.feeds[id] = f
	f.start()

	logger.Info("Feed subscribed",
		zap.String("feedID", id),
		zap.String("class", string(class)),
		zap.Duration("interval", interval),
		zap.Int("active", len(s.feeds)))

	return f, nil
}

// Get implements Scheduler
func (s *scheduler) Get(id string) (*Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.feeds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, id)
	}
	return f, nil
}

// Unsubscribe implements Scheduler
func (s *scheduler) Unsubscribe(id string) error {
	s.mu.Lock()
	f, ok := s.feeds[id]
	delete(s.feeds, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrFeedNotFound, id)
	}

	f.Close()
	logger.Info("Feed unsubscribed", zap.String("feedID", id))
	return nil
}

// Close implements Scheduler
func (s *scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	feeds := s.feeds
	s.feeds = make(map[string]*Feed)
	s.mu.Unlock()

	for _, f := range feeds {
		f.Close()
	}
}

// ETag returns a strong entity tag of a snapshot, computed over its canonical JSON
func ETag(j adapter.JSON, s Snapshot) (string, error) {
	canonical, err := j.MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize snapshot: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}
