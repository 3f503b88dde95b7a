package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/store/schema"
)

const (
	// DEFAULT_LIST_LIMIT caps list queries called without a limit
	DEFAULT_LIST_LIMIT = 100
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DEFAULT_LIST_LIMIT {
		return DEFAULT_LIST_LIMIT
	}
	return limit
}

// CreateAuction inserts a new auction
func (s *pgStore) CreateAuction(ctx context.Context, auction *schema.Auction) error {
	if auction.ID == "" {
		auction.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Omit("Bids").Create(auction).Error; err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetAuction retrieves an auction by ID
func (s *pgStore) GetAuction(ctx context.Context, id string) (*schema.Auction, error) {
	var auction schema.Auction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return &auction, nil
}

// GetAuctionByToken retrieves the auction of a token together with its bid summary
func (s *pgStore) GetAuctionByToken(ctx context.Context, chain, contractAddress, tokenID string) (*AuctionWithBids, error) {
	var auction schema.Auction
	err := s.db.WithContext(ctx).
		Where("chain = ? AND contract_address = ? AND token_id = ?", chain, contractAddress, tokenID).
		First(&auction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get auction by token: %w", err)
	}

	results, err := s.attachBidSummaries(ctx, []schema.Auction{auction})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// ListOpenAuctions lists auctions whose deadline is after filter.Now
func (s *pgStore) ListOpenAuctions(ctx context.Context, filter OpenAuctionsFilter) ([]AuctionWithBids, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	query := s.db.WithContext(ctx).Where("deadline > ?", now)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var auctions []schema.Auction
	err := query.
		Order("deadline ASC, id ASC").
		Limit(normalizeLimit(filter.Limit)).
		Find(&auctions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open auctions: %w", err)
	}

	return s.attachBidSummaries(ctx, auctions)
}

// attachBidSummaries loads the highest bid and bid count for each auction in one query
func (s *pgStore) attachBidSummaries(ctx context.Context, auctions []schema.Auction) ([]AuctionWithBids, error) {
	results := make([]AuctionWithBids, len(auctions))
	if len(auctions) == 0 {
		return results, nil
	}

	ids := make([]string, len(auctions))
	for i, a := range auctions {
		ids[i] = a.ID
		results[i] = AuctionWithBids{Auction: a}
	}

	var summaries []struct {
		AuctionID  string
		HighestBid decimal.NullDecimal
		BidCount   int64
	}
	err := s.db.WithContext(ctx).
		Model(&schema.Bid{}).
		Select("auction_id, MAX(amount) AS highest_bid, COUNT(*) AS bid_count").
		Where("auction_id IN ?", ids).
		Group("auction_id").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize bids: %w", err)
	}

	byID := make(map[string]int, len(results))
	for i := range results {
		byID[results[i].Auction.ID] = i
	}
	for _, sum := range summaries {
		if i, ok := byID[sum.AuctionID]; ok {
			results[i].HighestBid = sum.HighestBid
			results[i].BidCount = sum.BidCount
		}
	}

	return results, nil
}

// InsertBid appends a bid in a transaction that locks the auction row,
// so concurrent bids on the same auction are checked one at a time.
func (s *pgStore) InsertBid(ctx context.Context, bid *schema.Bid) error {
	if !bid.Amount.IsPositive() {
		return domain.RejectBid(domain.BidRejectInvalidAmount, bid.Amount.String())
	}
	if bid.BidderRef == "" {
		return domain.RejectBid(domain.BidRejectUnauthenticated, "")
	}
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction schema.Auction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bid.AuctionID).
			First(&auction).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrAuctionNotFound, bid.AuctionID)
			}
			return fmt.Errorf("failed to lock auction: %w", err)
		}

		if !bid.CreatedAt.Before(auction.Deadline) {
			return domain.RejectBid(domain.BidRejectAuctionEnded, auction.Deadline.UTC().Format(time.RFC3339))
		}

		var leaders []schema.Bid
		err = tx.Where("auction_id = ?", bid.AuctionID).
			Order("amount DESC, created_at ASC").
			Limit(1).
			Find(&leaders).Error
		if err != nil {
			return fmt.Errorf("failed to get highest bid: %w", err)
		}
		if len(leaders) > 0 && bid.Amount.LessThanOrEqual(leaders[0].Amount) {
			return domain.RejectBid(domain.BidRejectTooLow, fmt.Sprintf("current bid is %s", leaders[0].Amount.String()))
		}

		if err := tx.Create(bid).Error; err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		logger.DebugCtx(ctx, "Inserted bid",
			zap.String("auctionID", bid.AuctionID),
			zap.String("amount", bid.Amount.String()),
			zap.String("bidder", bid.BidderRef))

		return nil
	})
}

// ListBids lists a page of the bids of an auction in arrival order
func (s *pgStore) ListBids(ctx context.Context, auctionID string, limit int, offset uint64) ([]schema.Bid, error) {
	var bids []schema.Bid
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("created_at ASC, id ASC").
		Limit(normalizeLimit(limit)).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

// GetHighestBid retrieves the leading bid: highest amount, earliest on ties
func (s *pgStore) GetHighestBid(ctx context.Context, auctionID string) (*schema.Bid, error) {
	var bid schema.Bid
	err := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order("amount DESC, created_at ASC").
		First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return &bid, nil
}
