package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/store/schema"
)

// AuctionResponse is an auction with its bid summary
type AuctionResponse struct {
	ID              string               `json:"id"`
	Chain           string               `json:"chain"`
	ContractAddress string               `json:"contractAddress"`
	TokenID         string               `json:"tokenId"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	ImageURI        string               `json:"imageUri"`
	Category        domain.Category      `json:"category"`
	Creator         domain.Creator       `json:"creator"`
	SellerRef       string               `json:"sellerRef"`
	ReservePrice    decimal.Decimal      `json:"reservePrice"`
	Currency        string               `json:"currency"`
	Deadline        time.Time            `json:"deadline"`
	Status          domain.AuctionStatus `json:"status"`
	HighestBid      *domain.Bid          `json:"highestBid"`
	Bids            []domain.Bid         `json:"bids,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

// NewAuctionResponse maps an auction row; now decides the status
func NewAuctionResponse(a *schema.Auction, highest *domain.Bid, bids []domain.Bid, now time.Time) AuctionResponse {
	status := domain.AuctionStatusOpen
	if !now.Before(a.Deadline) {
		status = domain.AuctionStatusEnded
	}

	return AuctionResponse{
		ID:              a.ID,
		Chain:           a.Chain,
		ContractAddress: a.ContractAddress,
		TokenID:         a.TokenID,
		Title:           a.Title,
		Description:     a.Description,
		ImageURI:        a.ImageURI,
		Category:        domain.Category(a.Category),
		Creator: domain.Creator{
			Name:      a.CreatorName,
			AvatarURI: a.CreatorAvatarURI,
			Verified:  a.CreatorVerified,
		},
		SellerRef:    a.SellerRef,
		ReservePrice: a.ReservePrice,
		Currency:     a.Currency,
		Deadline:     a.Deadline,
		Status:       status,
		HighestBid:   highest,
		Bids:         bids,
		CreatedAt:    a.CreatedAt,
	}
}

// FeedResponse is a feed snapshot
type FeedResponse struct {
	ID              string            `json:"id"`
	Class           string            `json:"class"`
	Categories      []domain.Category `json:"categories"`
	Status          domain.FeedStatus `json:"status"`
	Assets          []domain.Asset    `json:"assets"`
	LastRefreshedAt *time.Time        `json:"lastRefreshedAt"`
	Stale           bool              `json:"stale"`
	Error           string            `json:"error,omitempty"`
	Version         uint64            `json:"version"`
}

// AssetsResponse wraps a list of assets
type AssetsResponse struct {
	Assets []domain.Asset `json:"assets"`
}

// ImageResponse is the outcome of resolving one image uri
type ImageResponse struct {
	URL       string `json:"url"`
	Attempts  int    `json:"attempts"`
	Exhausted bool   `json:"exhausted"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
