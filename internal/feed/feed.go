package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/aggregator"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// ErrFeedClosed is returned when operating on a closed feed
var ErrFeedClosed = errors.New("feed closed")

// Class is the refresh class of a feed; each class has its own interval
type Class string

const (
	ClassWallet  Class = "wallet"
	ClassLive    Class = "live"
	ClassSidebar Class = "sidebar"
)

// Snapshot is the state a feed exposes to its subscriber
type Snapshot struct {
	ID              string            `json:"id"`
	Class           Class             `json:"class"`
	Categories      []domain.Category `json:"categories"`
	Status          domain.FeedStatus `json:"status"`
	Assets          []domain.Asset    `json:"assets"`
	LastRefreshedAt *time.Time        `json:"lastRefreshedAt"`
	// Stale is set when the last refresh failed and Assets are from an earlier one
	Stale   bool   `json:"stale"`
	Error   string `json:"error,omitempty"`
	Version uint64 `json:"version"`
}

// Feed is one subscriber's periodically refreshed, filtered view of the catalog.
//
// At most one aggregation is in flight at any time. A tick that fires while one
// is outstanding is dropped. Every filter change bumps the generation; an
// aggregation started under an older generation is discarded when it completes
// and a fresh one is started with the current filter.
type Feed struct {
	id       string
	class    Class
	interval time.Duration
	limit    int
	agg      aggregator.Aggregator
	clock    adapter.Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu              sync.Mutex
	filter          []domain.Category
	generation      uint64
	inFlight        bool
	cancelInFlight  context.CancelFunc
	status          domain.FeedStatus
	assets          []domain.Asset
	lastRefreshedAt *time.Time
	stale           bool
	errMsg          string
	version         uint64
	closed          bool

	listeners    map[uint64]chan Snapshot
	nextListener uint64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newFeed(id string, class Class, interval time.Duration, limit int, categories []domain.Category, agg aggregator.Aggregator, clock adapter.Clock) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		id:       id,
		class:    class,
		interval: interval,
		limit:    limit,
		agg:      agg,
		clock:    clock,
		ctx:       ctx,
		cancel:    cancel,
		filter:    domain.ExpandCategories(categories),
		status:    domain.FeedStatusIdle,
		assets:    []domain.Asset{},
		listeners: make(map[uint64]chan Snapshot),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// ID returns the feed id
func (f *Feed) ID() string {
	return f.id
}

// start refreshes once and then on every tick until the feed is closed
func (f *Feed) start() {
	ticker := f.clock.NewTicker(f.interval)
	go f.run(ticker)
}

func (f *Feed) run(ticker adapter.Ticker) {
	defer close(f.done)
	defer ticker.Stop()

	f.Refresh()

	tick := ticker.C()
	for {
		select {
		case <-f.stop:
			return
		case <-tick:
			if !f.Refresh() {
				logger.Debug("Dropped feed tick, refresh in flight", zap.String("feedID", f.id))
			}
		}
	}
}

// Refresh starts an aggregation unless one is already in flight.
// It reports whether a new aggregation was started.
func (f *Feed) Refresh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.inFlight {
		return false
	}
	f.startLocked()
	return true
}

// SetFilter replaces the category filter and refreshes right away.
// An aggregation in flight under the old filter is cancelled and its result discarded.
func (f *Feed) SetFilter(categories []domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFeedClosed
	}

	f.filter = domain.ExpandCategories(categories)
	f.generation++

	if f.inFlight {
		// complete() sees the generation change and restarts with the new filter
		f.cancelInFlight()
		f.setStatusLocked(domain.FeedStatusLoading)
		return nil
	}
	f.startLocked()
	return nil
}

func (f *Feed) startLocked() {
	f.inFlight = true
	generation := f.generation
	filter := append([]domain.Category(nil), f.filter...)

	ctx, cancel := context.WithCancel(f.ctx)
	f.cancelInFlight = cancel
	f.setStatusLocked(domain.FeedStatusLoading)

	go func() {
		assets, err := f.agg.Aggregate(ctx, filter, f.limit)
		f.complete(generation, assets, err)
	}()
}

func (f *Feed) complete(generation uint64, assets []domain.Asset, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight = false
	if f.cancelInFlight != nil {
		f.cancelInFlight()
		f.cancelInFlight = nil
	}

	if f.closed {
		return
	}

	if generation != f.generation {
		logger.Debug("Discarded stale feed result",
			zap.String("feedID", f.id),
			zap.Uint64("generation", generation),
			zap.Uint64("current", f.generation))
		f.startLocked()
		return
	}

	if err != nil {
		logger.Error(err, zap.String("feedID", f.id), zap.String("class", string(f.class)))
		f.errMsg = err.Error()
		f.stale = f.lastRefreshedAt != nil
		f.setStatusLocked(domain.FeedStatusError)
		return
	}

	now := f.clock.Now()
	f.assets = assets
	f.lastRefreshedAt = &now
	f.stale = false
	f.errMsg = ""
	f.setStatusLocked(domain.FeedStatusReady)
}

func (f *Feed) setStatusLocked(status domain.FeedStatus) {
	f.status = status
	f.version++
	f.publishLocked(f.snapshotLocked())
}

// publishLocked hands s to every listener, replacing any snapshot it has not read yet
func (f *Feed) publishLocked(s Snapshot) {
	for _, ch := range f.listeners {
		offerLatest(ch, s)
	}
}

func offerLatest(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Snapshot returns the current feed state
func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Feed) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:         f.id,
		Class:      f.class,
		Categories: append([]domain.Category(nil), f.filter...),
		Status:     f.status,
		Assets:     f.assets,
		Stale:      f.stale,
		Error:      f.errMsg,
		Version:    f.version,
	}
	if f.lastRefreshedAt != nil {
		t := *f.lastRefreshedAt
		s.LastRefreshedAt = &t
	}
	return s
}

// Watch registers a listener. Its channel starts with the current snapshot and
// then receives the latest one after every state change; intermediate snapshots
// are dropped when the listener falls behind. Every listener gets every change
// independently of the others.
// The channel is closed by stop or when the feed is closed.
func (f *Feed) Watch() (<-chan Snapshot, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextListener
	f.nextListener++
	f.listeners[id] = ch
	ch <- f.snapshotLocked()

	stop := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if l, ok := f.listeners[id]; ok {
			delete(f.listeners, id)
			close(l)
		}
	}
	return ch, stop
}

// Listeners returns the number of registered listeners
func (f *Feed) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Close cancels the timer and any aggregation in flight. Its result is discarded.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		if f.cancelInFlight != nil {
			f.cancelInFlight()
		}
		for id, ch := range f.listeners {
			delete(f.listeners, id)
			close(ch)
		}
		f.mu.Unlock()

		f.cancel()
		close(f.stop)
		<-f.done
	})
}
