package rest

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-storefront/internal/domain"
)

const (
	MAX_PAGE_SIZE = 100

	DEFAULT_SEARCH_LIMIT = 20
	DEFAULT_BIDS_LIMIT   = 50
)

// SearchQueryParams holds query parameters for GET /search
type SearchQueryParams struct {
	Query string `form:"q"`
	Limit int    `form:"limit,default=20"`
}

// ParseSearchQuery parses query parameters for GET /search
func ParseSearchQuery(c *gin.Context) (*SearchQueryParams, error) {
	var params SearchQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, fmt.Errorf("q is required")
	}

	if params.Limit <= 0 {
		params.Limit = DEFAULT_SEARCH_LIMIT
	}
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// GetAuctionQueryParams holds query parameters for GET /auctions/:id
type GetAuctionQueryParams struct {
	BidsLimit int `form:"bids.limit,default=50"`
}

// ParseGetAuctionQuery parses query parameters for GET /auctions/:id
func ParseGetAuctionQuery(c *gin.Context) (*GetAuctionQueryParams, error) {
	var params GetAuctionQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.BidsLimit <= 0 {
		params.BidsLimit = DEFAULT_BIDS_LIMIT
	}
	if params.BidsLimit > MAX_PAGE_SIZE {
		params.BidsLimit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// CreateFeedRequest is the body of POST /feeds
type CreateFeedRequest struct {
	Class      string   `json:"class" binding:"required"`
	Categories []string `json:"categories"`
}

// UpdateFilterRequest is the body of PUT /feeds/:id/filter
type UpdateFilterRequest struct {
	Categories []string `json:"categories"`
}

// CreateAuctionRequest is the body of POST /auctions
type CreateAuctionRequest struct {
	Chain            string          `json:"chain"`
	ContractAddress  string          `json:"contractAddress"`
	TokenID          string          `json:"tokenId"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	ImageURI         string          `json:"imageUri"`
	Category         string          `json:"category"`
	CreatorName      string          `json:"creatorName"`
	CreatorAvatarURI string          `json:"creatorAvatarUri"`
	CreatorVerified  bool            `json:"creatorVerified"`
	SellerRef        string          `json:"sellerRef"`
	SellerAvatarURI  string          `json:"sellerAvatarUri"`
	ReservePrice     decimal.Decimal `json:"reservePrice"`
	Currency         string          `json:"currency"`
	Deadline         time.Time       `json:"deadline"`
}

// PlaceBidRequest is the body of POST /auctions/:id/bids
type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ParseCategories converts user supplied names into categories.
// An empty list selects every category.
func ParseCategories(values []string) ([]domain.Category, error) {
	categories := make([]domain.Category, 0, len(values))
	for _, value := range values {
		category, ok := domain.ParseCategory(value)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", value)
		}
		categories = append(categories, category)
	}
	return categories, nil
}
