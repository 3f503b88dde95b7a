package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func buildTestAuction(category domain.Category, tokenID string, deadline time.Time) *schema.Auction {
	return &schema.Auction{
		ID:              uuid.NewString(),
		Chain:           "eth",
		ContractAddress: "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d",
		TokenID:         tokenID,
		Title:           "Ape #" + tokenID,
		ImageURI:        "ipfs://QmHash" + tokenID,
		Category:        string(category),
		CreatorName:     "yuga",
		SellerRef:       "0xseller",
		ReservePrice:    decimal.RequireFromString("0.5"),
		Currency:        domain.DEFAULT_CURRENCY,
		Deadline:        deadline,
		Raw:             datatypes.JSON(`{"source":"test"}`),
	}
}

func buildTestBid(auctionID, amount, bidder string, at time.Time) *schema.Bid {
	return &schema.Bid{
		AuctionID: auctionID,
		Amount:    decimal.RequireFromString(amount),
		BidderRef: bidder,
		CreatedAt: at,
	}
}

// =============================================================================
// Tests
// =============================================================================

func testCreateAndGetAuction(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("round trips an auction", func(t *testing.T) {
		auction := buildTestAuction(domain.CategoryArt, "1", baseTime.Add(time.Hour))
		require.NoError(t, store.CreateAuction(ctx, auction))

		got, err := store.GetAuction(ctx, auction.ID)
		require.NoError(t, err)
		assert.Equal(t, auction.Title, got.Title)
		assert.Equal(t, "art", got.Category)
		assert.True(t, decimal.RequireFromString("0.5").Equal(got.ReservePrice))
		assert.True(t, auction.Deadline.Equal(got.Deadline))
		assert.JSONEq(t, `{"source":"test"}`, string(got.Raw))
	})

	t.Run("assigns an id when missing", func(t *testing.T) {
		auction := buildTestAuction(domain.CategoryComics, "2", baseTime.Add(time.Hour))
		auction.ID = ""
		require.NoError(t, store.CreateAuction(ctx, auction))
		assert.NotEmpty(t, auction.ID)
	})

	t.Run("missing auction", func(t *testing.T) {
		_, err := store.GetAuction(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, domain.ErrAuctionNotFound))
	})

	t.Run("duplicate token is rejected", func(t *testing.T) {
		first := buildTestAuction(domain.CategoryPoems, "3", baseTime.Add(time.Hour))
		require.NoError(t, store.CreateAuction(ctx, first))

		dup := buildTestAuction(domain.CategoryPoems, "3", baseTime.Add(2*time.Hour))
		assert.Error(t, store.CreateAuction(ctx, dup))
	})
}

func testGetAuctionByToken(t *testing.T, store Store) {
	ctx := context.Background()

	auction := buildTestAuction(domain.CategoryStories, "10", baseTime.Add(time.Hour))
	require.NoError(t, store.CreateAuction(ctx, auction))
	require.NoError(t, store.InsertBid(ctx, buildTestBid(auction.ID, "1", "alice", baseTime)))
	require.NoError(t, store.InsertBid(ctx, buildTestBid(auction.ID, "2", "bob", baseTime.Add(time.Second))))

	got, err := store.GetAuctionByToken(ctx, "eth", auction.ContractAddress, "10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, auction.ID, got.Auction.ID)
	require.True(t, got.HighestBid.Valid)
	assert.True(t, decimal.NewFromInt(2).Equal(got.HighestBid.Decimal))
	assert.Equal(t, int64(2), got.BidCount)

	missing, err := store.GetAuctionByToken(ctx, "eth", auction.ContractAddress, "11")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testListOpenAuctions(t *testing.T, store Store) {
	ctx := context.Background()

	late := buildTestAuction(domain.CategoryArt, "20", baseTime.Add(2*time.Hour))
	soon := buildTestAuction(domain.CategoryArt, "21", baseTime.Add(time.Hour))
	ended := buildTestAuction(domain.CategoryArt, "22", baseTime.Add(-time.Minute))
	comics := buildTestAuction(domain.CategoryComics, "23", baseTime.Add(time.Hour))
	for _, a := range []*schema.Auction{late, soon, ended, comics} {
		require.NoError(t, store.CreateAuction(ctx, a))
	}
	require.NoError(t, store.InsertBid(ctx, buildTestBid(soon.ID, "3", "alice", baseTime.Add(-time.Hour))))

	t.Run("filters by category and deadline, soonest first", func(t *testing.T) {
		got, err := store.ListOpenAuctions(ctx, OpenAuctionsFilter{
			Category: "art",
			Now:      baseTime,
			Limit:    10,
		})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, soon.ID, got[0].Auction.ID)
		assert.Equal(t, late.ID, got[1].Auction.ID)

		require.True(t, got[0].HighestBid.Valid)
		assert.True(t, decimal.NewFromInt(3).Equal(got[0].HighestBid.Decimal))
		assert.Equal(t, int64(1), got[0].BidCount)
		assert.False(t, got[1].HighestBid.Valid)
		assert.Equal(t, int64(0), got[1].BidCount)
	})

	t.Run("empty category lists every open auction", func(t *testing.T) {
		got, err := store.ListOpenAuctions(ctx, OpenAuctionsFilter{Now: baseTime})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("limit", func(t *testing.T) {
		got, err := store.ListOpenAuctions(ctx, OpenAuctionsFilter{Now: baseTime, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("no results", func(t *testing.T) {
		got, err := store.ListOpenAuctions(ctx, OpenAuctionsFilter{Category: "poems", Now: baseTime})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func testInsertBid(t *testing.T, store Store) {
	ctx := context.Background()

	auction := buildTestAuction(domain.CategoryArt, "30", baseTime.Add(time.Hour))
	require.NoError(t, store.CreateAuction(ctx, auction))

	tests := []struct {
		name   string
		bid    *schema.Bid
		reason domain.BidRejectReason
	}{
		{
			name: "first bid is accepted",
			bid:  buildTestBid(auction.ID, "1", "alice", baseTime),
		},
		{
			name: "higher bid is accepted",
			bid:  buildTestBid(auction.ID, "2.5", "bob", baseTime.Add(time.Second)),
		},
		{
			name:   "equal bid is rejected",
			bid:    buildTestBid(auction.ID, "2.5", "carol", baseTime.Add(2*time.Second)),
			reason: domain.BidRejectTooLow,
		},
		{
			name:   "lower bid is rejected",
			bid:    buildTestBid(auction.ID, "2", "carol", baseTime.Add(3*time.Second)),
			reason: domain.BidRejectTooLow,
		},
		{
			name:   "bid at the deadline is rejected",
			bid:    buildTestBid(auction.ID, "100", "dave", auction.Deadline),
			reason: domain.BidRejectAuctionEnded,
		},
		{
			name:   "zero amount is rejected",
			bid:    buildTestBid(auction.ID, "0", "dave", baseTime),
			reason: domain.BidRejectInvalidAmount,
		},
		{
			name:   "anonymous bid is rejected",
			bid:    buildTestBid(auction.ID, "10", "", baseTime),
			reason: domain.BidRejectUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InsertBid(ctx, tt.bid)
			if tt.reason == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, tt.bid.ID)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrBidRejected))
			reason, ok := domain.RejectReason(err)
			require.True(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	t.Run("unknown auction", func(t *testing.T) {
		err := store.InsertBid(ctx, buildTestBid("missing", "1", "alice", baseTime))
		assert.True(t, errors.Is(err, domain.ErrAuctionNotFound))
	})

	bids, err := store.ListBids(ctx, auction.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "alice", bids[0].BidderRef)
	assert.Equal(t, "bob", bids[1].BidderRef)

	page, err := store.ListBids(ctx, auction.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].BidderRef)

	past, err := store.ListBids(ctx, auction.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func testGetHighestBid(t *testing.T, store Store) {
	ctx := context.Background()

	auction := buildTestAuction(domain.CategoryArt, "40", baseTime.Add(time.Hour))
	require.NoError(t, store.CreateAuction(ctx, auction))

	none, err := store.GetHighestBid(ctx, auction.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	for i, amount := range []string{"3", "7", "10"} {
		bidder := []string{"a", "b", "c"}[i]
		require.NoError(t, store.InsertBid(ctx, buildTestBid(auction.ID, amount, bidder, baseTime.Add(time.Duration(i)*time.Second))))
	}

	leader, err := store.GetHighestBid(ctx, auction.ID)
	require.NoError(t, err)
	require.NotNil(t, leader)
	assert.Equal(t, "c", leader.BidderRef)
	assert.True(t, decimal.NewFromInt(10).Equal(leader.Amount))
}

// RunStoreTests runs all store tests against the given store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"CreateAndGetAuction", testCreateAndGetAuction},
		{"GetAuctionByToken", testGetAuctionByToken},
		{"ListOpenAuctions", testListOpenAuctions},
		{"InsertBid", testInsertBid},
		{"GetHighestBid", testGetHighestBid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
