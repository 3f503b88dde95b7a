package auctions

import (
	"context"
	"fmt"
	"strings"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/sources"
	"github.com/feral-file/ff-storefront/internal/store"
	"github.com/feral-file/ff-storefront/internal/types"
)

const (
	SOURCE_NAME = "auctions"

	// PROVIDER_NAME is the name used when logging store failures
	PROVIDER_NAME = "auction-store"
)

// Adapter exposes open on-chain auction records as catalog assets.
// The asset id is the auction id, which is also the bid channel topic.
type Adapter struct {
	store store.Store
	clock adapter.Clock
}

// New creates an auctions adapter
func New(st store.Store, clock adapter.Clock) *Adapter {
	return &Adapter{store: st, clock: clock}
}

// Name returns the source name
func (a *Adapter) Name() string {
	return SOURCE_NAME
}

// FetchByCategory lists open auctions of the category, soonest deadline first
func (a *Adapter) FetchByCategory(ctx context.Context, category domain.Category, limit int) []domain.Asset {
	return sources.Collect(ctx, PROVIDER_NAME, category, func() ([]domain.Asset, error) {
		rows, err := a.store.ListOpenAuctions(ctx, store.OpenAuctionsFilter{
			Category: string(category),
			Now:      a.clock.Now(),
			Limit:    limit,
		})
		if err != nil {
			return nil, err
		}

		assets := make([]domain.Asset, 0, len(rows))
		for _, row := range rows {
			assets = append(assets, mapAuction(row))
		}
		return assets, nil
	})
}

// FetchByID returns the auction of a token, open or ended
func (a *Adapter) FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, bool) {
	return sources.CollectOne(ctx, PROVIDER_NAME, func() (*domain.Asset, error) {
		indexerChain, ok := types.IndexerChain(chain)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported chain %q", domain.ErrAssetNotFound, chain)
		}

		row, err := a.store.GetAuctionByToken(ctx, indexerChain, strings.ToLower(contractAddress), tokenID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrAssetNotFound
		}

		asset := mapAuction(*row)
		return &asset, nil
	})
}

// mapAuction shows the highest bid as the price, or the reserve price before a first bid
func mapAuction(row store.AuctionWithBids) domain.Asset {
	a := row.Auction

	price := a.ReservePrice
	if row.HighestBid.Valid {
		price = row.HighestBid.Decimal
	}
	deadline := a.Deadline

	asset := domain.Asset{
		ID:              a.ID,
		Source:          SOURCE_NAME,
		Chain:           a.Chain,
		ContractAddress: a.ContractAddress,
		TokenID:         a.TokenID,
		Title:           a.Title,
		Description:     a.Description,
		ImageURI:        a.ImageURI,
		PriceAmount:     price,
		PriceCurrency:   a.Currency,
		IsListed:        true,
		Category:        domain.Category(a.Category),
		Creator: domain.Creator{
			Name:      a.CreatorName,
			AvatarURI: a.CreatorAvatarURI,
			Verified:  a.CreatorVerified,
		},
		Owner: domain.Owner{
			Name:      a.SellerRef,
			AvatarURI: a.SellerAvatarURI,
		},
		AuctionDeadline: &deadline,
	}

	return asset.WithDefaults()
}
