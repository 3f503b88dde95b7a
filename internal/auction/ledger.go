package auction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-storefront/internal/domain"
)

// Ledger folds bid events and clock ticks into the state of one auction.
// It is not safe for concurrent use; the engine owns it.
//
// Every distinct bid is kept in the history. Only bids received while the
// auction is open can become the leader, so a late, lower or out-of-order
// bid is recorded without changing the display state.
type Ledger struct {
	auctionID string
	deadline  time.Time
	leader    *domain.Bid
	history   []domain.Bid
	seen      map[string]struct{}
	remaining time.Duration
	ended     bool
}

// NewLedger creates an open ledger
func NewLedger(auctionID string, deadline time.Time) *Ledger {
	return &Ledger{
		auctionID: auctionID,
		deadline:  deadline,
		seen:      make(map[string]struct{}),
	}
}

// Apply records a bid and reports whether it became the leader.
// Bids for other auctions and redeliveries of a known bid id are ignored.
func (l *Ledger) Apply(bid domain.Bid) bool {
	if bid.AuctionID != "" && bid.AuctionID != l.auctionID {
		return false
	}
	if bid.ID != "" {
		if _, dup := l.seen[bid.ID]; dup {
			return false
		}
		l.seen[bid.ID] = struct{}{}
	}

	l.history = append(l.history, bid)

	if l.ended || !bid.Amount.IsPositive() {
		return false
	}
	if !bid.Timestamp.IsZero() && !bid.Timestamp.Before(l.deadline) {
		return false
	}
	if !bid.Outbids(l.leader) {
		return false
	}

	leader := bid
	l.leader = &leader
	return true
}

// Tick recomputes the remaining time and reports whether the auction has just ended
func (l *Ledger) Tick(now time.Time) bool {
	if l.ended {
		return false
	}

	l.remaining = l.deadline.Sub(now)
	if l.remaining > 0 {
		return false
	}

	l.remaining = 0
	l.ended = true
	return true
}

// Ended reports whether the auction is over
func (l *Ledger) Ended() bool {
	return l.ended
}

// Leader returns the current highest bid, or nil
func (l *Ledger) Leader() *domain.Bid {
	if l.leader == nil {
		return nil
	}
	leader := *l.leader
	return &leader
}

// History returns every recorded bid in arrival order
func (l *Ledger) History() []domain.Bid {
	return append([]domain.Bid(nil), l.history...)
}

// State returns the display state
func (l *Ledger) State() domain.AuctionState {
	state := domain.AuctionState{
		AuctionID: l.auctionID,
		Deadline:  l.deadline,
		Remaining: l.remaining,
		Status:    domain.AuctionStatusOpen,
	}
	if l.ended {
		state.Status = domain.AuctionStatusEnded
	}
	if l.leader != nil {
		amount := l.leader.Amount
		state.CurrentBid = &amount
		state.HighestBidderRef = l.leader.BidderRef
	}
	return state
}

// Check validates a client bid against the current state.
// It returns a domain.BidRejection describing the first rule violated.
func (l *Ledger) Check(amount decimal.Decimal, bidderRef string) error {
	switch {
	case bidderRef == "":
		return domain.RejectBid(domain.BidRejectUnauthenticated, "no authenticated bidder")
	case !amount.IsPositive():
		return domain.RejectBid(domain.BidRejectInvalidAmount, fmt.Sprintf("amount %s must be positive", amount))
	case l.ended:
		return domain.RejectBid(domain.BidRejectAuctionEnded, "")
	case l.leader != nil && amount.LessThanOrEqual(l.leader.Amount):
		return domain.RejectBid(domain.BidRejectTooLow, fmt.Sprintf("amount %s must exceed current bid %s", amount, l.leader.Amount))
	}
	return nil
}

// Countdown formats the remaining time for display
func Countdown(remaining time.Duration) string {
	if remaining <= 0 {
		return "Auction Ended"
	}

	total := int64(remaining / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
