package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Auction represents the auctions table - on-chain auction records listed in the storefront
type Auction struct {
	// ID is the auction identifier used as the push channel topic
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Chain is the indexer chain name (e.g., "eth", "polygon")
	Chain string `gorm:"column:chain;not null;type:text;uniqueIndex:idx_auctions_chain_contract_token,priority:1"`
	// ContractAddress is the lower-cased contract address of the auctioned token
	ContractAddress string `gorm:"column:contract_address;not null;type:text;uniqueIndex:idx_auctions_chain_contract_token,priority:2"`
	// TokenID is the token number within the contract (string to support very large numbers)
	TokenID string `gorm:"column:token_id;not null;type:text;uniqueIndex:idx_auctions_chain_contract_token,priority:3"`

	Title       string `gorm:"column:title;not null;type:text;default:''"`
	Description string `gorm:"column:description;not null;type:text;default:''"`
	ImageURI    string `gorm:"column:image_uri;not null;type:text;default:''"`

	// Category is one of the catalog categories
	Category string `gorm:"column:category;not null;type:text;index:idx_auctions_category_deadline,priority:1"`

	CreatorName      string `gorm:"column:creator_name;not null;type:text;default:''"`
	CreatorAvatarURI string `gorm:"column:creator_avatar_uri;not null;type:text;default:''"`
	CreatorVerified  bool   `gorm:"column:creator_verified;not null;default:false"`

	// SellerRef is the owner putting the token up for auction
	SellerRef       string `gorm:"column:seller_ref;not null;type:text;default:''"`
	SellerAvatarURI string `gorm:"column:seller_avatar_uri;not null;type:text;default:''"`

	// ReservePrice is the opening price shown until a first bid arrives
	ReservePrice decimal.Decimal `gorm:"column:reserve_price;not null;type:numeric(78,18);default:0"`
	Currency     string          `gorm:"column:currency;not null;type:text;default:'ETH'"`
	// Deadline is the absolute time after which no bid may be promoted
	Deadline time.Time `gorm:"column:deadline;not null;index:idx_auctions_category_deadline,priority:2"`
	// Raw keeps the original listing payload for audit
	Raw       datatypes.JSON `gorm:"column:raw;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;default:now()"`

	// Associations
	Bids []Bid `gorm:"foreignKey:AuctionID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Auction model
func (Auction) TableName() string {
	return "auctions"
}
