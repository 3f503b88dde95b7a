package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents one of the fixed catalog categories
type Category string

const (
	CategoryArt           Category = "art"
	CategoryComics        Category = "comics"
	CategoryPoems         Category = "poems"
	CategoryStories       Category = "stories"
	CategoryUncategorized Category = "uncategorized"

	// CategoryAll is the sentinel that expands to every category
	CategoryAll Category = "all"
)

// Categories is the fixed category enumeration.
// Aggregated output is always ordered by position in this slice.
var Categories = []Category{
	CategoryArt,
	CategoryComics,
	CategoryPoems,
	CategoryStories,
	CategoryUncategorized,
}

// Valid reports whether the category is part of the enumeration
func (c Category) Valid() bool {
	return c.index() >= 0
}

func (c Category) index() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// ParseCategory parses a user supplied category name (case-insensitive).
// "all" is accepted and returned as CategoryAll.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == CategoryAll || c.Valid() {
		return c, true
	}
	return "", false
}

// ExpandCategories resolves a requested category set into the concrete
// categories to fetch, deduplicated and in enumeration order.
// An empty request or one containing CategoryAll expands to every category.
// Unknown values are dropped.
func ExpandCategories(requested []Category) []Category {
	if len(requested) == 0 {
		return append([]Category(nil), Categories...)
	}

	wanted := make(map[Category]bool, len(requested))
	for _, c := range requested {
		if c == CategoryAll {
			return append([]Category(nil), Categories...)
		}
		if c.Valid() {
			wanted[c] = true
		}
	}

	expanded := make([]Category, 0, len(wanted))
	for _, c := range Categories {
		if wanted[c] {
			expanded = append(expanded, c)
		}
	}
	return expanded
}

// Creator is the creator profile attached to an asset
type Creator struct {
	Name              string `json:"name"`
	AvatarURI         string `json:"avatarUri"`
	ResolvedAvatarURL string `json:"resolvedAvatarUrl"`
	Verified          bool   `json:"verified"`
}

// Owner is the owner profile attached to an asset
type Owner struct {
	Name              string `json:"name"`
	AvatarURI         string `json:"avatarUri"`
	ResolvedAvatarURL string `json:"resolvedAvatarUrl"`
}

// Asset is the canonical, provider-agnostic collectible record.
// Assets are built fresh on every aggregation cycle and never mutated
// after they leave the aggregator.
type Asset struct {
	ID               string          `json:"id"`
	Source           string          `json:"source"`
	Chain            string          `json:"chain,omitempty"`
	ContractAddress  string          `json:"contractAddress,omitempty"`
	TokenID          string          `json:"tokenId,omitempty"`
	Title            string          `json:"title"`
	ImageURI         string          `json:"imageUri"`
	ResolvedImageURL string          `json:"resolvedImageUrl"`
	PriceAmount      decimal.Decimal `json:"priceAmount"`
	PriceCurrency    string          `json:"priceCurrency"`
	IsListed         bool            `json:"isListed"`
	Category         Category        `json:"category"`
	Creator          Creator         `json:"creator"`
	Owner            Owner           `json:"owner"`
	LikeCount        int64           `json:"likeCount"`
	ViewCount        int64           `json:"viewCount"`
	Description      string          `json:"description"`
	AuctionDeadline  *time.Time      `json:"auctionDeadline,omitempty"`
}

// WithDefaults returns a copy of the asset with every missing field
// replaced by its safe default. Applying it twice is harmless.
func (a Asset) WithDefaults() Asset {
	if a.PriceCurrency == "" {
		a.PriceCurrency = DEFAULT_CURRENCY
	}
	if !a.Category.Valid() {
		a.Category = CategoryUncategorized
	}
	if !a.IsListed || a.PriceAmount.IsNegative() {
		a.PriceAmount = decimal.Zero
	}
	if a.LikeCount < 0 {
		a.LikeCount = 0
	}
	if a.ViewCount < 0 {
		a.ViewCount = 0
	}
	return a
}

// Bid is a single append-only bid on an auction
type Bid struct {
	ID        string          `json:"id"`
	AuctionID string          `json:"auctionId"`
	Amount    decimal.Decimal `json:"amount"`
	BidderRef string          `json:"bidderRef"`
	Timestamp time.Time       `json:"timestamp"`
}

// Outbids reports whether b should replace leader as the highest bid:
// strictly greater amount, or equal amount placed earlier.
func (b Bid) Outbids(leader *Bid) bool {
	if leader == nil {
		return true
	}
	if cmp := b.Amount.Cmp(leader.Amount); cmp != 0 {
		return cmp > 0
	}
	return b.Timestamp.Before(leader.Timestamp)
}

// AuctionStatus represents the lifecycle status of an auction
type AuctionStatus string

const (
	AuctionStatusOpen  AuctionStatus = "open"
	AuctionStatusEnded AuctionStatus = "ended"
)

// AuctionState is the live view of one auction
type AuctionState struct {
	AuctionID        string           `json:"auctionId"`
	CurrentBid       *decimal.Decimal `json:"currentBid"`
	HighestBidderRef string           `json:"highestBidderRef"`
	Deadline         time.Time        `json:"deadline"`
	Remaining        time.Duration    `json:"remaining"`
	Status           AuctionStatus    `json:"status"`
}

// FeedStatus represents the refresh status of a feed
type FeedStatus string

const (
	FeedStatusIdle    FeedStatus = "idle"
	FeedStatusLoading FeedStatus = "loading"
	FeedStatusReady   FeedStatus = "ready"
	FeedStatusError   FeedStatus = "error"
)
