package bidding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/pubsub"
	"github.com/feral-file/ff-storefront/internal/store"
	"github.com/feral-file/ff-storefront/internal/store/schema"
)

// Service records bids in the store and publishes an insert event for each
// accepted one. The store is the authority on acceptance.
type Service struct {
	store     store.Store
	publisher pubsub.Publisher
	clock     adapter.Clock
}

// New creates a bidding service
func New(st store.Store, publisher pubsub.Publisher, clock adapter.Clock) *Service {
	return &Service{
		store:     st,
		publisher: publisher,
		clock:     clock,
	}
}

// History returns every bid of an auction in arrival order, paging through the store
func (s *Service) History(ctx context.Context, auctionID string) ([]domain.Bid, error) {
	var bids []domain.Bid
	var offset uint64
	for {
		rows, err := s.store.ListBids(ctx, auctionID, store.DEFAULT_LIST_LIMIT, offset)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			bids = append(bids, ToDomain(row))
		}
		if len(rows) < store.DEFAULT_LIST_LIMIT {
			break
		}
		offset += uint64(len(rows))
	}

	if bids == nil {
		bids = []domain.Bid{}
	}
	return bids, nil
}

// Submit records a bid and publishes it on the auction topic.
// Business rule violations come back as *domain.BidRejection.
func (s *Service) Submit(ctx context.Context, auctionID string, amount decimal.Decimal, bidderRef string) (*domain.Bid, error) {
	row := &schema.Bid{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		Amount:    amount,
		BidderRef: bidderRef,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.store.InsertBid(ctx, row); err != nil {
		if reason, ok := domain.RejectReason(err); ok {
			logger.InfoCtx(ctx, "Bid rejected",
				zap.String("auctionID", auctionID),
				zap.String("amount", amount.String()),
				zap.String("reason", string(reason)))
			return nil, err
		}
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	bid := ToDomain(*row)
	if err := s.publisher.Publish(ctx, pubsub.AuctionTopic(auctionID), bid); err != nil {
		// The bid stands; viewers pick it up from the history when they reconnect
		logger.ErrorCtx(ctx, fmt.Errorf("failed to publish bid: %w", err),
			zap.String("auctionID", auctionID),
			zap.String("bidID", bid.ID))
	}

	logger.InfoCtx(ctx, "Bid accepted",
		zap.String("auctionID", auctionID),
		zap.String("bidID", bid.ID),
		zap.String("amount", amount.String()))

	return &bid, nil
}

// ToDomain converts a bid row to its event form
func ToDomain(row schema.Bid) domain.Bid {
	return domain.Bid{
		ID:        row.ID,
		AuctionID: row.AuctionID,
		Amount:    row.Amount,
		BidderRef: row.BidderRef,
		Timestamp: row.CreatedAt,
	}
}
