package auction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/pubsub"
)

const (
	// DEFAULT_TICK is the countdown refresh period
	DEFAULT_TICK = time.Second
)

// ErrEngineClosed is returned by PlaceBid after Close
var ErrEngineClosed = errors.New("auction engine closed")

// Bids is the authoritative bid book the engine reads its history from
// and forwards accepted client bids to
//
//go:generate mockgen -source=engine.go -destination=../mocks/auction.go -package=mocks -mock_names=Bids=MockBids
type Bids interface {
	// History returns the recorded bids of an auction, oldest first
	History(ctx context.Context, auctionID string) ([]domain.Bid, error)
	// Submit records a bid; the insert event is delivered through the push channel
	Submit(ctx context.Context, auctionID string, amount decimal.Decimal, bidderRef string) (*domain.Bid, error)
}

// Config identifies the auction an engine follows
type Config struct {
	AuctionID string
	Deadline  time.Time
	// Tick is the countdown period, DEFAULT_TICK when zero
	Tick time.Duration
}

// View is the state exposed to the presentation layer
type View struct {
	domain.AuctionState
	Countdown string `json:"countdown"`
}

// Engine follows one auction. Bid events from the push channel and countdown
// ticks are applied by a single goroutine; readers only see copies.
type Engine struct {
	cfg   Config
	bids  Bids
	sub   pubsub.Subscription
	clock adapter.Clock

	mu     sync.RWMutex
	ledger *Ledger
	closed bool

	updates   chan View
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New subscribes to the auction's bid events, seeds the state from the recorded
// history and starts the countdown. The caller must Close the engine.
func New(ctx context.Context, cfg Config, subscriber pubsub.Subscriber, bids Bids, clock adapter.Clock) (*Engine, error) {
	if cfg.AuctionID == "" {
		return nil, errors.New("auction id is required")
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DEFAULT_TICK
	}

	// Subscribe before reading the history so no insert falls in between;
	// bids seen twice are deduplicated by id
	sub, err := subscriber.Subscribe(ctx, pubsub.AuctionTopic(cfg.AuctionID))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to bids: %w", err)
	}

	history, err := bids.History(ctx, cfg.AuctionID)
	if err != nil {
		if uerr := sub.Unsubscribe(); uerr != nil {
			logger.WarnCtx(ctx, "Failed to release bid subscription", zap.Error(uerr))
		}
		return nil, fmt.Errorf("failed to load bid history: %w", err)
	}

	ledger := NewLedger(cfg.AuctionID, cfg.Deadline)
	for _, bid := range history {
		ledger.Apply(bid)
	}
	ledger.Tick(clock.Now())

	e := &Engine{
		cfg:     cfg,
		bids:    bids,
		sub:     sub,
		clock:   clock,
		ledger:  ledger,
		updates: make(chan View, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	e.publish(e.view())

	var ticker adapter.Ticker
	if !ledger.Ended() {
		ticker = clock.NewTicker(cfg.Tick)
	}
	go e.run(ticker)

	logger.DebugCtx(ctx, "Auction engine started",
		zap.String("auctionID", cfg.AuctionID),
		zap.Int("history", len(history)),
		zap.Bool("ended", ledger.Ended()))

	return e, nil
}

func (e *Engine) run(ticker adapter.Ticker) {
	defer close(e.done)

	var tick <-chan time.Time
	if ticker != nil {
		tick = ticker.C()
	}
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer stopTicker()

	events := e.sub.Events()
	for {
		select {
		case <-e.stop:
			return

		case bid, ok := <-events:
			if !ok {
				logger.Warn("Bid stream closed", zap.String("auctionID", e.cfg.AuctionID))
				events = nil
				continue
			}
			e.mu.Lock()
			promoted := e.ledger.Apply(bid)
			e.mu.Unlock()
			if promoted {
				e.publish(e.view())
			}

		case now := <-tick:
			e.mu.Lock()
			ended := e.ledger.Tick(now)
			e.mu.Unlock()
			if ended {
				stopTicker()
				logger.Info("Auction ended", zap.String("auctionID", e.cfg.AuctionID))
			}
			e.publish(e.view())
		}
	}
}

func (e *Engine) view() View {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := e.ledger.State()
	return View{AuctionState: state, Countdown: Countdown(state.Remaining)}
}

// publish keeps only the latest view in the updates channel
func (e *Engine) publish(v View) {
	select {
	case e.updates <- v:
		return
	default:
	}
	select {
	case <-e.updates:
	default:
	}
	select {
	case e.updates <- v:
	default:
	}
}

// View returns the current auction view
func (e *Engine) View() View {
	return e.view()
}

// History returns every bid the engine has seen
func (e *Engine) History() []domain.Bid {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.History()
}

// Updates delivers the latest view after each leader change and each tick.
// It is closed by Close.
func (e *Engine) Updates() <-chan View {
	return e.updates
}

// PlaceBid validates a client bid and forwards it to the bid book.
// Acceptance does not change the local state: the new leader arrives back
// through the push channel like any other bid.
func (e *Engine) PlaceBid(ctx context.Context, amount decimal.Decimal, bidderRef string) (*domain.Bid, error) {
	e.mu.RLock()
	closed := e.closed
	err := e.ledger.Check(amount, bidderRef)
	e.mu.RUnlock()

	if closed {
		return nil, ErrEngineClosed
	}
	if err != nil {
		logger.DebugCtx(ctx, "Bid rejected locally",
			zap.String("auctionID", e.cfg.AuctionID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	return e.bids.Submit(ctx, e.cfg.AuctionID, amount, bidderRef)
}

// Close releases the bid subscription and stops the countdown
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()

		close(e.stop)
		<-e.done

		if err := e.sub.Unsubscribe(); err != nil {
			logger.Warn("Failed to release bid subscription",
				zap.String("auctionID", e.cfg.AuctionID),
				zap.Error(err))
		}
		close(e.updates)
	})
}
