package auction_test

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-storefront/internal/auction"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	start    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deadline = start.Add(time.Hour)
)

func bidAt(id string, amount int64, offset time.Duration) domain.Bid {
	return domain.Bid{
		ID:        id,
		AuctionID: "auction-1",
		Amount:    decimal.NewFromInt(amount),
		BidderRef: "bidder-" + id,
		Timestamp: start.Add(offset),
	}
}

func TestLedger_LeaderIsMonotonic(t *testing.T) {
	l := auction.NewLedger("auction-1", deadline)

	amounts := []int64{3, 7, 5, 10, 8}
	previous := decimal.Zero
	for i, amount := range amounts {
		l.Apply(bidAt(string(rune('a'+i)), amount, time.Duration(i)*time.Second))

		state := l.State()
		require.NotNil(t, state.CurrentBid)
		assert.True(t, state.CurrentBid.GreaterThanOrEqual(previous), "current bid decreased at event %d", i)
		previous = *state.CurrentBid
	}

	state := l.State()
	assert.True(t, decimal.NewFromInt(10).Equal(*state.CurrentBid))
	assert.Equal(t, "bidder-d", state.HighestBidderRef)
	assert.Len(t, l.History(), len(amounts))
}

func TestLedger_Apply(t *testing.T) {
	tests := []struct {
		name       string
		bids       []domain.Bid
		wantAmount int64
		wantBidder string
		wantLen    int
	}{
		{
			name:       "equal amount keeps the earlier bid",
			bids:       []domain.Bid{bidAt("a", 5, 2*time.Second), bidAt("b", 5, time.Second)},
			wantAmount: 5,
			wantBidder: "bidder-b",
			wantLen:    2,
		},
		{
			name:       "equal amount arriving later does not take over",
			bids:       []domain.Bid{bidAt("a", 5, time.Second), bidAt("b", 5, 2*time.Second)},
			wantAmount: 5,
			wantBidder: "bidder-a",
			wantLen:    2,
		},
		{
			name:       "redelivered bid is recorded once",
			bids:       []domain.Bid{bidAt("a", 5, 0), bidAt("a", 5, 0)},
			wantAmount: 5,
			wantBidder: "bidder-a",
			wantLen:    1,
		},
		{
			name: "bid for another auction is ignored",
			bids: []domain.Bid{
				bidAt("a", 5, 0),
				{ID: "x", AuctionID: "auction-2", Amount: decimal.NewFromInt(50), BidderRef: "x", Timestamp: start},
			},
			wantAmount: 5,
			wantBidder: "bidder-a",
			wantLen:    1,
		},
		{
			name:       "bid placed at the deadline is recorded but never leads",
			bids:       []domain.Bid{bidAt("a", 5, 0), bidAt("b", 50, time.Hour)},
			wantAmount: 5,
			wantBidder: "bidder-a",
			wantLen:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := auction.NewLedger("auction-1", deadline)
			for _, bid := range tt.bids {
				l.Apply(bid)
			}

			state := l.State()
			require.NotNil(t, state.CurrentBid)
			assert.True(t, decimal.NewFromInt(tt.wantAmount).Equal(*state.CurrentBid))
			assert.Equal(t, tt.wantBidder, state.HighestBidderRef)
			assert.Len(t, l.History(), tt.wantLen)
		})
	}
}

func TestLedger_EndedFreezesLeader(t *testing.T) {
	l := auction.NewLedger("auction-1", deadline)
	l.Apply(bidAt("a", 5, 0))

	assert.False(t, l.Tick(start))
	assert.Equal(t, time.Hour, l.State().Remaining)
	assert.Equal(t, domain.AuctionStatusOpen, l.State().Status)

	assert.True(t, l.Tick(deadline.Add(time.Second)))
	assert.False(t, l.Tick(deadline.Add(2*time.Second)))

	// Still recorded, never promoted
	assert.False(t, l.Apply(bidAt("b", 500, time.Minute)))

	state := l.State()
	assert.Equal(t, domain.AuctionStatusEnded, state.Status)
	assert.Equal(t, time.Duration(0), state.Remaining)
	assert.True(t, decimal.NewFromInt(5).Equal(*state.CurrentBid))
	assert.Equal(t, "bidder-a", state.HighestBidderRef)
	assert.Len(t, l.History(), 2)
}

func TestLedger_Check(t *testing.T) {
	open := auction.NewLedger("auction-1", deadline)
	open.Apply(bidAt("a", 5, 0))

	empty := auction.NewLedger("auction-1", deadline)

	ended := auction.NewLedger("auction-1", deadline)
	ended.Apply(bidAt("a", 5, 0))
	ended.Tick(deadline)

	tests := []struct {
		name   string
		ledger *auction.Ledger
		amount decimal.Decimal
		bidder string
		reason domain.BidRejectReason
	}{
		{"equal to current", open, decimal.NewFromInt(5), "alice", domain.BidRejectTooLow},
		{"below current", open, decimal.NewFromInt(4), "alice", domain.BidRejectTooLow},
		{"above current", open, decimal.RequireFromString("5.01"), "alice", ""},
		{"no bidder", open, decimal.NewFromInt(6), "", domain.BidRejectUnauthenticated},
		{"zero amount", empty, decimal.Zero, "alice", domain.BidRejectInvalidAmount},
		{"negative amount", empty, decimal.NewFromInt(-1), "alice", domain.BidRejectInvalidAmount},
		{"first bid", empty, decimal.NewFromInt(1), "alice", ""},
		{"above current after end", ended, decimal.NewFromInt(6), "alice", domain.BidRejectAuctionEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ledger.Check(tt.amount, tt.bidder)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrBidRejected)
			reason, ok := domain.RejectReason(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      string
	}{
		{0, "Auction Ended"},
		{-time.Second, "Auction Ended"},
		{500 * time.Millisecond, "0d 0h 0m 0s"},
		{59 * time.Second, "0d 0h 0m 59s"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "1d 2h 3m 4s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, auction.Countdown(tt.remaining), tt.remaining.String())
	}
}
