package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bid represents the bids table - the append-only bid history of every auction
type Bid struct {
	// ID is a random UUID assigned at submission
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// AuctionID references the auction the bid was placed on
	AuctionID string `gorm:"column:auction_id;not null;type:text;index:idx_bids_auction_id_created_at,priority:1"`
	// Amount is the bid amount in the auction currency
	Amount decimal.Decimal `gorm:"column:amount;not null;type:numeric(78,18)"`
	// BidderRef is the authenticated bidder identity
	BidderRef string `gorm:"column:bidder_ref;not null;type:text"`
	// CreatedAt is the server receive time, used for tie-breaking equal amounts
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index:idx_bids_auction_id_created_at,priority:2"`
}

// TableName specifies the table name for the Bid model
func (Bid) TableName() string {
	return "bids"
}
