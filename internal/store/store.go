package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-storefront/internal/store/schema"
)

// AuctionWithBids is an auction row joined with its bid summary
type AuctionWithBids struct {
	Auction    schema.Auction
	HighestBid decimal.NullDecimal
	BidCount   int64
}

// OpenAuctionsFilter selects open auctions
type OpenAuctionsFilter struct {
	// Category restricts the result to one catalog category; empty means any
	Category string
	// Now is the reference time; auctions with a deadline after it are open
	Now   time.Time
	Limit int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateAuction inserts a new auction
	CreateAuction(ctx context.Context, auction *schema.Auction) error
	// GetAuction retrieves an auction by ID, returning domain.ErrAuctionNotFound when missing
	GetAuction(ctx context.Context, id string) (*schema.Auction, error)
	// GetAuctionByToken retrieves the auction of a token, returning nil when there is none
	GetAuctionByToken(ctx context.Context, chain, contractAddress, tokenID string) (*AuctionWithBids, error)
	// ListOpenAuctions lists auctions whose deadline has not passed, soonest deadline first
	ListOpenAuctions(ctx context.Context, filter OpenAuctionsFilter) ([]AuctionWithBids, error)

	// InsertBid appends a bid after checking it against the auction deadline and the current highest bid.
	// Violations are returned as *domain.BidRejection.
	InsertBid(ctx context.Context, bid *schema.Bid) error
	// ListBids lists a page of the bids of an auction in arrival order
	ListBids(ctx context.Context, auctionID string, limit int, offset uint64) ([]schema.Bid, error)
	// GetHighestBid retrieves the leading bid of an auction, returning nil when there are no bids
	GetHighestBid(ctx context.Context, auctionID string) (*schema.Bid, error)
}
