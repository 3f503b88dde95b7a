package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/providers/vendors/moralis"
	"github.com/feral-file/ff-storefront/internal/sources"
	"github.com/feral-file/ff-storefront/internal/types"
)

const (
	SOURCE_NAME = "indexer"

	// DEFAULT_LIMIT applies when a caller passes a non-positive limit
	DEFAULT_LIMIT = 20
)

// Adapter maps indexing API tokens of well-known contracts into catalog assets.
// Indexed tokens are never listed, so they carry no price.
type Adapter struct {
	client   moralis.Client
	chain    string
	registry Registry
}

// New creates an indexer adapter browsing the registry on chain.
// A nil registry falls back to DefaultRegistry.
func New(client moralis.Client, chain string, registry Registry) *Adapter {
	if len(registry) == 0 {
		registry = DefaultRegistry
	}
	if c, ok := types.IndexerChain(chain); ok {
		chain = c
	}
	return &Adapter{
		client:   client,
		chain:    chain,
		registry: registry,
	}
}

// RegistryFromConfig converts a category name keyed map into a Registry, dropping unknown categories
func RegistryFromConfig(contracts map[string][]string) Registry {
	if len(contracts) == 0 {
		return nil
	}
	r := make(Registry, len(contracts))
	for name, addrs := range contracts {
		c, ok := domain.ParseCategory(name)
		if !ok || c == domain.CategoryAll {
			logger.Warn("Ignoring indexer contracts for unknown category", zap.String("category", name))
			continue
		}
		r[c] = append(r[c], addrs...)
	}
	return r
}

// Name returns the source name
func (a *Adapter) Name() string {
	return SOURCE_NAME
}

// FetchByCategory walks the category's contracts in order until limit assets are collected.
// A failing contract is skipped; the category is unavailable only when every contract failed.
func (a *Adapter) FetchByCategory(ctx context.Context, category domain.Category, limit int) []domain.Asset {
	return sources.Collect(ctx, moralis.PROVIDER_NAME, category, func() ([]domain.Asset, error) {
		addresses := a.registry[category]
		if len(addresses) == 0 {
			return []domain.Asset{}, nil
		}
		if limit <= 0 {
			limit = DEFAULT_LIMIT
		}

		assets := make([]domain.Asset, 0, limit)
		var errs []error
		for _, addr := range addresses {
			remaining := limit - len(assets)
			if remaining <= 0 {
				break
			}

			nfts, err := a.client.GetContractNFTs(ctx, a.chain, addr, remaining)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logger.WarnCtx(ctx, "Skipping contract",
					zap.String("provider", moralis.PROVIDER_NAME),
					zap.String("category", string(category)),
					zap.String("contract", addr),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", addr, err))
				continue
			}

			for _, nft := range nfts {
				if len(assets) >= limit {
					break
				}
				assets = append(assets, a.mapNFT(nft, category))
			}
		}

		if len(errs) == len(addresses) {
			return nil, errors.Join(errs...)
		}
		return assets, nil
	})
}

// FetchByID looks up one token by locator
func (a *Adapter) FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, bool) {
	return sources.CollectOne(ctx, moralis.PROVIDER_NAME, func() (*domain.Asset, error) {
		indexerChain, ok := types.IndexerChain(chain)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported chain %q", domain.ErrAssetNotFound, chain)
		}
		addr, ok := types.NormalizeEthereumAddress(contractAddress)
		if !ok {
			return nil, fmt.Errorf("%w: invalid contract address %q", domain.ErrAssetNotFound, contractAddress)
		}
		if !types.IsTokenID(tokenID) {
			return nil, fmt.Errorf("%w: invalid token id %q", domain.ErrAssetNotFound, tokenID)
		}

		nft, err := a.client.GetNFT(ctx, indexerChain, addr, tokenID)
		if err != nil {
			return nil, err
		}
		if nft.TokenAddress == "" {
			nft.TokenAddress = addr
		}
		if nft.TokenID == "" {
			nft.TokenID = tokenID
		}

		asset := a.mapNFT(*nft, a.registry.CategoryOf(nft.TokenAddress))
		asset.Chain = indexerChain
		return &asset, nil
	})
}

func (a *Adapter) mapNFT(nft moralis.NFT, category domain.Category) domain.Asset {
	asset := domain.Asset{
		ID:              sources.AssetID(nft.TokenAddress, nft.TokenID),
		Source:          SOURCE_NAME,
		Chain:           a.chain,
		ContractAddress: strings.ToLower(nft.TokenAddress),
		TokenID:         nft.TokenID,
		Title:           types.FirstNonEmpty(nft.Metadata.Name, nft.Name),
		Description:     nft.Metadata.Description,
		ImageURI:        nft.Metadata.ImageURI(),
		Category:        category,
		Creator: domain.Creator{
			Name:     types.FirstNonEmpty(nft.Metadata.CreatedBy, nft.MinterAddress),
			Verified: !nft.PossibleSpam,
		},
		Owner: domain.Owner{
			Name: nft.OwnerOf,
		},
	}

	return asset.WithDefaults()
}
