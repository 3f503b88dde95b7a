package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
)

// Source fetches catalog assets of one category from one provider.
// Implementations never return an error: a failing provider yields an
// empty slice and the failure is logged.
//
//go:generate mockgen -source=sources.go -destination=../mocks/sources.go -package=mocks -mock_names=Source=MockSource,Lookup=MockLookup,Searcher=MockSearcher
type Source interface {
	// Name returns the provider name recorded on every asset
	Name() string
	// FetchByCategory returns up to limit assets of the category
	FetchByCategory(ctx context.Context, category domain.Category, limit int) []domain.Asset
}

// Lookup resolves a single asset by locator
type Lookup interface {
	Name() string
	// FetchByID returns the asset, or false when it is unknown or the provider failed
	FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, bool)
}

// Searcher runs free-text searches
type Searcher interface {
	Name() string
	// Search returns up to limit assets matching the query
	Search(ctx context.Context, query string, limit int) []domain.Asset
}

// AssetID builds the provider scoped asset id from a contract and token id
func AssetID(contractAddress, tokenID string) string {
	if contractAddress == "" {
		return tokenID
	}
	return fmt.Sprintf("%s-%s", strings.ToLower(contractAddress), tokenID)
}

// FromSmallestUnit converts an integer amount in the smallest currency unit
// (e.g. wei) into the canonical decimal amount
func FromSmallestUnit(amount decimal.Decimal, decimals int32) decimal.Decimal {
	if decimals <= 0 {
		return amount
	}
	return amount.Shift(-decimals)
}

// Unavailable wraps err as domain.ErrSourceUnavailable and logs it at warn level
func Unavailable(ctx context.Context, provider string, category domain.Category, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, provider, err)
	fields := []zap.Field{
		zap.String("provider", provider),
		zap.Error(wrapped),
	}
	if category != "" {
		fields = append(fields, zap.String("category", string(category)))
	}
	logger.WarnCtx(ctx, "Source unavailable", fields...)
	return wrapped
}

// Collect runs fetch and contains its failure: an error or a panic is
// logged as unavailable and turned into an empty result
func Collect(ctx context.Context, provider string, category domain.Category, fetch func() ([]domain.Asset, error)) (assets []domain.Asset) {
	defer func() {
		if r := recover(); r != nil {
			_ = Unavailable(ctx, provider, category, fmt.Errorf("panic: %v", r))
			assets = []domain.Asset{}
		}
	}()

	result, err := fetch()
	if err != nil {
		_ = Unavailable(ctx, provider, category, err)
		return []domain.Asset{}
	}
	if result == nil {
		return []domain.Asset{}
	}
	return result
}

// CollectOne is Collect for single asset lookups
func CollectOne(ctx context.Context, provider string, fetch func() (*domain.Asset, error)) (asset *domain.Asset, found bool) {
	defer func() {
		if r := recover(); r != nil {
			_ = Unavailable(ctx, provider, "", fmt.Errorf("panic: %v", r))
			asset, found = nil, false
		}
	}()

	result, err := fetch()
	if err != nil {
		if !errors.Is(err, domain.ErrAssetNotFound) {
			_ = Unavailable(ctx, provider, "", err)
		}
		return nil, false
	}
	if result == nil {
		return nil, false
	}
	return result, true
}
