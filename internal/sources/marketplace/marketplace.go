package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/opensea"
	"github.com/feral-file/ff-storefront/internal/sources"
	"github.com/feral-file/ff-storefront/internal/types"
)

const (
	SOURCE_NAME = "marketplace"

	// DEFAULT_PAYMENT_DECIMALS applies when a sale omits its payment token decimals
	DEFAULT_PAYMENT_DECIMALS int32 = 18
)

// Adapter maps marketplace NFTs into catalog assets
type Adapter struct {
	client      opensea.Client
	collections map[domain.Category]string
	categories  map[string]domain.Category
}

// New creates a marketplace adapter. collections maps a category to its
// collection slug; categories without an entry use their own name.
func New(client opensea.Client, collections map[string]string) *Adapter {
	a := &Adapter{
		client:      client,
		collections: make(map[domain.Category]string, len(domain.Categories)),
		categories:  make(map[string]domain.Category, len(domain.Categories)),
	}

	for _, c := range domain.Categories {
		slug := string(c)
		if s, ok := collections[string(c)]; ok && s != "" {
			slug = s
		}
		a.collections[c] = slug
		a.categories[strings.ToLower(slug)] = c
	}

	return a
}

// Name returns the source name
func (a *Adapter) Name() string {
	return SOURCE_NAME
}

// FetchByCategory lists the collection mapped to the category
func (a *Adapter) FetchByCategory(ctx context.Context, category domain.Category, limit int) []domain.Asset {
	return sources.Collect(ctx, opensea.PROVIDER_NAME, category, func() ([]domain.Asset, error) {
		slug, ok := a.collections[category]
		if !ok {
			return nil, fmt.Errorf("no collection for category %q", category)
		}

		nfts, err := a.client.ListCollectionNFTs(ctx, slug, limit)
		if err != nil {
			return nil, err
		}

		assets := make([]domain.Asset, 0, len(nfts))
		for _, nft := range nfts {
			assets = append(assets, a.mapNFT(nft, category))
		}
		return assets, nil
	})
}

// Search runs a free-text search; each result is categorized by its collection
func (a *Adapter) Search(ctx context.Context, query string, limit int) []domain.Asset {
	return sources.Collect(ctx, opensea.PROVIDER_NAME, "", func() ([]domain.Asset, error) {
		nfts, err := a.client.SearchAssets(ctx, query, limit)
		if err != nil {
			return nil, err
		}

		assets := make([]domain.Asset, 0, len(nfts))
		for _, nft := range nfts {
			assets = append(assets, a.mapNFT(nft, a.categoryOf(nft.Collection)))
		}
		return assets, nil
	})
}

// FetchByID fetches one NFT by chain, contract and token id
func (a *Adapter) FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, bool) {
	return sources.CollectOne(ctx, opensea.PROVIDER_NAME, func() (*domain.Asset, error) {
		slug, ok := types.MarketplaceChain(chain)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported chain %q", domain.ErrAssetNotFound, chain)
		}

		nft, err := a.client.GetNFT(ctx, slug, contractAddress, tokenID)
		if err != nil {
			return nil, err
		}
		if nft.Contract == "" {
			nft.Contract = contractAddress
		}
		if nft.Identifier == "" {
			nft.Identifier = tokenID
		}
		if nft.Chain == "" {
			nft.Chain = slug
		}

		asset := a.mapNFT(*nft, a.categoryOf(nft.Collection))
		return &asset, nil
	})
}

func (a *Adapter) categoryOf(collection string) domain.Category {
	if c, ok := a.categories[strings.ToLower(collection)]; ok {
		return c
	}
	return domain.CategoryUncategorized
}

// mapNFT converts a marketplace NFT. The last sale is the listing signal:
// without one the asset is unlisted and carries no price.
func (a *Adapter) mapNFT(nft opensea.NFT, category domain.Category) domain.Asset {
	asset := domain.Asset{
		ID:              sources.AssetID(nft.Contract, nft.Identifier),
		Source:          SOURCE_NAME,
		Chain:           nft.Chain,
		ContractAddress: strings.ToLower(nft.Contract),
		TokenID:         nft.Identifier,
		Title:           types.SafeString(nft.Name),
		Description:     types.SafeString(nft.Description),
		ImageURI:        types.SafeString(nft.ImageURL),
		Category:        category,
	}

	if nft.Creator != nil {
		asset.Creator = domain.Creator{
			Name:      types.FirstNonEmpty(nft.Creator.Username(), nft.Creator.Address),
			AvatarURI: nft.Creator.ProfileImgURL,
			Verified:  nft.Creator.Verified(),
		}
	}

	if len(nft.Owners) > 0 {
		owner := nft.Owners[0]
		asset.Owner = domain.Owner{
			Name:      types.FirstNonEmpty(owner.Username(), owner.Address),
			AvatarURI: owner.ProfileImgURL,
		}
	}

	if nft.LastSale != nil {
		decimals := DEFAULT_PAYMENT_DECIMALS
		currency := domain.DEFAULT_CURRENCY
		if pt := nft.LastSale.PaymentToken; pt != nil {
			if pt.Decimals != nil {
				decimals = *pt.Decimals
			}
			if pt.Symbol != "" {
				currency = strings.ToUpper(pt.Symbol)
			}
		}
		asset.IsListed = true
		asset.PriceAmount = sources.FromSmallestUnit(nft.LastSale.TotalPrice, decimals)
		asset.PriceCurrency = currency
	}

	return asset.WithDefaults()
}
