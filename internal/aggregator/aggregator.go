package aggregator

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/sources"
	"github.com/feral-file/ff-storefront/internal/uri"
)

const (
	// DEFAULT_CONCURRENCY bounds provider calls in flight when none is configured
	DEFAULT_CONCURRENCY = 16
)

// Aggregator merges the catalog sources into one canonical asset list
//
//go:generate mockgen -source=aggregator.go -destination=../mocks/aggregator.go -package=mocks -mock_names=Aggregator=MockAggregator
type Aggregator interface {
	// Aggregate fetches every (category, source) pair concurrently and returns
	// the merged assets in category enumeration order, then source order.
	// Failing sources contribute nothing; only a failure of the fan-out itself
	// is returned, wrapped as domain.ErrAggregationFailure.
	Aggregate(ctx context.Context, categories []domain.Category, limitPerCategory int) ([]domain.Asset, error)

	// Search runs a free-text search on every searcher concurrently
	Search(ctx context.Context, query string, limit int) ([]domain.Asset, error)

	// FetchByID asks every lookup concurrently and returns the first hit in lookup order,
	// or domain.ErrAssetNotFound
	FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, error)

	// Close stops the worker pools
	Close()
}

// Config holds aggregator settings
type Config struct {
	// Concurrency bounds provider calls in flight across all aggregations
	Concurrency int
}

// Sources groups the adapters by capability. Order matters: it is the merge
// order within a category and the priority order of lookups.
type Sources struct {
	Catalog   []sources.Source
	Lookups   []sources.Lookup
	Searchers []sources.Searcher
}

type aggregator struct {
	srcs       Sources
	resolver   *uri.Resolver
	listPool   pond.ResultPool[[]domain.Asset]
	lookupPool pond.ResultPool[*domain.Asset]
}

// New creates an aggregator over the given sources
func New(cfg Config, srcs Sources, resolver *uri.Resolver) Aggregator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DEFAULT_CONCURRENCY
	}

	return &aggregator{
		srcs:       srcs,
		resolver:   resolver,
		listPool:   pond.NewResultPool[[]domain.Asset](concurrency),
		lookupPool: pond.NewResultPool[*domain.Asset](concurrency),
	}
}

// Aggregate implements Aggregator
func (a *aggregator) Aggregate(ctx context.Context, categories []domain.Category, limitPerCategory int) ([]domain.Asset, error) {
	expanded := domain.ExpandCategories(categories)
	if len(expanded) == 0 || len(a.srcs.Catalog) == 0 {
		return []domain.Asset{}, nil
	}

	group := a.listPool.NewGroupContext(ctx)
	for _, category := range expanded {
		for _, src := range a.srcs.Catalog {
			group.SubmitErr(func() ([]domain.Asset, error) {
				assets := src.FetchByCategory(ctx, category, limitPerCategory)
				out := make([]domain.Asset, 0, len(assets))
				for _, asset := range assets {
					asset.Category = category
					out = append(out, Normalize(asset, a.resolver))
				}
				return out, nil
			})
		}
	}

	// Results come back in submission order regardless of completion order
	batches, err := group.Wait()
	if err != nil {
		return nil, failure(ctx, "aggregation", err,
			zap.Int("categories", len(expanded)),
			zap.Int("sources", len(a.srcs.Catalog)))
	}
	// Sources swallow their own cancellation errors, so a cancelled run can
	// still finish without error, carrying empty batches
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Dedupe(batches), nil
}

// Search implements Aggregator
func (a *aggregator) Search(ctx context.Context, query string, limit int) ([]domain.Asset, error) {
	if query == "" || len(a.srcs.Searchers) == 0 {
		return []domain.Asset{}, nil
	}

	group := a.listPool.NewGroupContext(ctx)
	for _, searcher := range a.srcs.Searchers {
		group.SubmitErr(func() ([]domain.Asset, error) {
			assets := searcher.Search(ctx, query, limit)
			out := make([]domain.Asset, 0, len(assets))
			for _, asset := range assets {
				out = append(out, Normalize(asset, a.resolver))
			}
			return out, nil
		})
	}

	batches, err := group.Wait()
	if err != nil {
		return nil, failure(ctx, "search", err, zap.String("query", query))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Dedupe(batches), nil
}

// FetchByID implements Aggregator
func (a *aggregator) FetchByID(ctx context.Context, chain, contractAddress, tokenID string) (*domain.Asset, error) {
	if len(a.srcs.Lookups) == 0 {
		return nil, domain.ErrAssetNotFound
	}

	group := a.lookupPool.NewGroupContext(ctx)
	for _, lookup := range a.srcs.Lookups {
		group.SubmitErr(func() (*domain.Asset, error) {
			asset, ok := lookup.FetchByID(ctx, chain, contractAddress, tokenID)
			if !ok || asset == nil {
				return nil, nil
			}
			normalized := Normalize(*asset, a.resolver)
			return &normalized, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, failure(ctx, "lookup", err,
			zap.String("chain", chain),
			zap.String("contract", contractAddress),
			zap.String("tokenID", tokenID))
	}

	for _, asset := range results {
		if asset != nil {
			return asset, nil
		}
	}
	return nil, domain.ErrAssetNotFound
}

// failure maps a fan-out error. A cancelled or expired caller context is
// returned as is; anything else is an orchestration failure.
func failure(ctx context.Context, op string, err error, fields ...zap.Field) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.DebugCtx(ctx, op+" cancelled", append(fields, zap.Error(ctxErr))...)
		return ctxErr
	}

	logger.ErrorCtx(ctx, fmt.Errorf("%s failed: %w", op, err), fields...)
	return fmt.Errorf("%w: %w", domain.ErrAggregationFailure, err)
}

// Close implements Aggregator
func (a *aggregator) Close() {
	a.listPool.StopAndWait()
	a.lookupPool.StopAndWait()
}

// Normalize backfills missing fields and derives the resolved image and avatar URLs (attempt 0)
func Normalize(asset domain.Asset, resolver *uri.Resolver) domain.Asset {
	asset = asset.WithDefaults()

	if asset.Creator.AvatarURI == "" {
		asset.Creator.AvatarURI = domain.DEFAULT_AVATAR_URL
	}
	if asset.Owner.AvatarURI == "" {
		asset.Owner.AvatarURI = domain.DEFAULT_AVATAR_URL
	}

	asset.ResolvedImageURL = resolveFirst(resolver, asset.ImageURI, domain.PLACEHOLDER_IMAGE)
	asset.Creator.ResolvedAvatarURL = resolveFirst(resolver, asset.Creator.AvatarURI, domain.DEFAULT_AVATAR_URL)
	asset.Owner.ResolvedAvatarURL = resolveFirst(resolver, asset.Owner.AvatarURI, domain.DEFAULT_AVATAR_URL)

	return asset
}

func resolveFirst(resolver *uri.Resolver, u, fallback string) string {
	if resolver == nil || u == "" {
		return fallback
	}
	resolved, err := resolver.Resolve(u, 0)
	if err != nil {
		return fallback
	}
	return resolved
}

// Dedupe flattens batches keeping the first record of every (category, id) pair
func Dedupe(batches [][]domain.Asset) []domain.Asset {
	type key struct {
		category domain.Category
		id       string
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}

	seen := make(map[key]struct{}, total)
	merged := make([]domain.Asset, 0, total)
	for _, batch := range batches {
		for _, asset := range batch {
			k := key{category: asset.Category, id: asset.ID}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, asset)
		}
	}
	return merged
}
