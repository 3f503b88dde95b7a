package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/aggregator"
	"github.com/feral-file/ff-storefront/internal/api/middleware"
	"github.com/feral-file/ff-storefront/internal/api/rest/dto"
	"github.com/feral-file/ff-storefront/internal/auction"
	"github.com/feral-file/ff-storefront/internal/bidding"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/feed"
	"github.com/feral-file/ff-storefront/internal/store"
	"github.com/feral-file/ff-storefront/internal/store/schema"
	"github.com/feral-file/ff-storefront/internal/types"
	"github.com/feral-file/ff-storefront/internal/uri"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// CreateFeed subscribes a new feed and starts refreshing it
	// POST /api/v1/feeds
	CreateFeed(c *gin.Context)

	// GetFeed returns the latest snapshot of a feed, honouring If-None-Match
	// GET /api/v1/feeds/:id
	GetFeed(c *gin.Context)

	// UpdateFeedFilter replaces the category filter of a feed
	// PUT /api/v1/feeds/:id/filter
	UpdateFeedFilter(c *gin.Context)

	// RefreshFeed starts an out of schedule refresh unless one is in flight
	// POST /api/v1/feeds/:id/refresh
	RefreshFeed(c *gin.Context)

	// DeleteFeed unsubscribes a feed
	// DELETE /api/v1/feeds/:id
	DeleteFeed(c *gin.Context)

	// GetAsset looks a single asset up across the sources
	// GET /api/v1/assets/:chain/:contract/:token
	GetAsset(c *gin.Context)

	// Search runs a free-text search
	// GET /api/v1/search?q=<query>&limit=<limit>
	Search(c *gin.Context)

	// ResolveImage returns the first reachable gateway URL of an image uri
	// GET /api/v1/images/resolve?uri=<uri>
	ResolveImage(c *gin.Context)

	// CreateAuction lists a token for auction (requires API key)
	// POST /api/v1/auctions
	CreateAuction(c *gin.Context)

	// GetAuction returns an auction with its latest bids
	// GET /api/v1/auctions/:id?bids.limit=<limit>
	GetAuction(c *gin.Context)

	// PlaceBid submits a bid as the authenticated bidder
	// POST /api/v1/auctions/:id/bids
	PlaceBid(c *gin.Context)
}

// Deps are the collaborators of the REST handlers
type Deps struct {
	Feeds      feed.Scheduler
	Aggregator aggregator.Aggregator
	Prober     uri.Prober
	Store      store.Store
	Bids       auction.Bids
	JSON       adapter.JSON
	Clock      adapter.Clock
}

// handler implements the Handler interface
type handler struct {
	debug bool
	deps  Deps
}

// NewHandler creates a new REST API handler
func NewHandler(debug bool, deps Deps) Handler {
	return &handler{
		debug: debug,
		deps:  deps,
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: h.deps.Clock.Now().UTC(),
	})
}

// CreateFeed subscribes a new feed
func (h *handler) CreateFeed(c *gin.Context) {
	var req CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	categories, err := ParseCategories(req.Categories)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	f, err := h.deps.Feeds.Subscribe(feed.Class(strings.ToLower(req.Class)), categories)
	if err != nil {
		switch {
		case errors.Is(err, feed.ErrUnknownClass):
			respondValidationError(c, err.Error())
		case errors.Is(err, feed.ErrTooManyFeeds):
			respondTooManyRequests(c, "Too many active feeds")
		default:
			respondInternalError(c, err, "Failed to create feed")
		}
		return
	}

	c.JSON(http.StatusCreated, toFeedResponse(f.Snapshot()))
}

// GetFeed returns the latest snapshot of a feed
func (h *handler) GetFeed(c *gin.Context) {
	f, ok := h.lookupFeed(c)
	if !ok {
		return
	}

	snap := f.Snapshot()
	etag, err := feed.ETag(h.deps.JSON, snap)
	if err != nil {
		respondInternalError(c, err, "Failed to compute feed entity tag", zap.String("feedID", snap.ID))
		return
	}

	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if ifNoneMatch(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, toFeedResponse(snap))
}

// UpdateFeedFilter replaces the category filter of a feed
func (h *handler) UpdateFeedFilter(c *gin.Context) {
	var req UpdateFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	categories, err := ParseCategories(req.Categories)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	f, ok := h.lookupFeed(c)
	if !ok {
		return
	}

	if err := f.SetFilter(categories); err != nil {
		if errors.Is(err, feed.ErrFeedClosed) {
			respondNotFound(c, "Feed not found")
			return
		}
		respondInternalError(c, err, "Failed to update feed filter")
		return
	}

	c.JSON(http.StatusOK, toFeedResponse(f.Snapshot()))
}

// RefreshFeed starts a refresh unless one is in flight
func (h *handler) RefreshFeed(c *gin.Context) {
	f, ok := h.lookupFeed(c)
	if !ok {
		return
	}

	started := f.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"started": started})
}

// DeleteFeed unsubscribes a feed
func (h *handler) DeleteFeed(c *gin.Context) {
	if err := h.deps.Feeds.Unsubscribe(c.Param("id")); err != nil {
		if errors.Is(err, feed.ErrFeedNotFound) {
			respondNotFound(c, "Feed not found")
			return
		}
		respondInternalError(c, err, "Failed to delete feed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) lookupFeed(c *gin.Context) (*feed.Feed, bool) {
	f, err := h.deps.Feeds.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, feed.ErrFeedNotFound) {
			respondNotFound(c, "Feed not found")
			return nil, false
		}
		respondInternalError(c, err, "Failed to get feed")
		return nil, false
	}
	return f, true
}

// GetAsset looks a single asset up across the sources
func (h *handler) GetAsset(c *gin.Context) {
	chain := c.Param("chain")
	contract := c.Param("contract")
	tokenID := c.Param("token")

	if _, ok := types.IndexerChain(chain); !ok {
		respondBadRequest(c, "Unsupported chain", chain)
		return
	}

	asset, err := h.deps.Aggregator.FetchByID(c.Request.Context(), chain, contract, tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			respondNotFound(c, "Asset not found")
			return
		}
		respondInternalError(c, err, "Failed to get asset",
			zap.String("chain", chain),
			zap.String("contract", contract),
			zap.String("tokenID", tokenID))
		return
	}

	c.JSON(http.StatusOK, asset)
}

// Search runs a free-text search
func (h *handler) Search(c *gin.Context) {
	params, err := ParseSearchQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	assets, err := h.deps.Aggregator.Search(c.Request.Context(), params.Query, params.Limit)
	if err != nil {
		respondInternalError(c, err, "Failed to search", zap.String("query", params.Query))
		return
	}

	c.JSON(http.StatusOK, dto.AssetsResponse{Assets: assets})
}

// ResolveImage returns the first reachable gateway URL of an image uri.
// An exhausted uri is not an error: the placeholder is returned instead.
func (h *handler) ResolveImage(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("uri"))
	if raw == "" {
		respondValidationError(c, "uri is required")
		return
	}

	result, err := h.deps.Prober.Probe(c.Request.Context(), raw)
	if err != nil && !errors.Is(err, domain.ErrResolutionExhausted) {
		respondInternalError(c, err, "Failed to resolve image", zap.String("uri", raw))
		return
	}

	c.JSON(http.StatusOK, dto.ImageResponse{
		URL:       result.URL,
		Attempts:  result.Attempts,
		Exhausted: result.Exhausted,
	})
}

// CreateAuction lists a token for auction
func (h *handler) CreateAuction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "Failed to read request body")
		return
	}

	var req CreateAuctionRequest
	if err := h.deps.JSON.Unmarshal(body, &req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	auctionRow, err := h.newAuction(req)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	auctionRow.Raw = datatypes.JSON(body)

	if err := h.deps.Store.CreateAuction(c.Request.Context(), auctionRow); err != nil {
		respondInternalError(c, err, "Failed to create auction",
			zap.String("contract", auctionRow.ContractAddress),
			zap.String("tokenID", auctionRow.TokenID))
		return
	}

	c.JSON(http.StatusCreated, dto.NewAuctionResponse(auctionRow, nil, nil, h.deps.Clock.Now()))
}

func (h *handler) newAuction(req CreateAuctionRequest) (*schema.Auction, error) {
	chain, ok := types.IndexerChain(req.Chain)
	if !ok {
		return nil, fmt.Errorf("unsupported chain %q", req.Chain)
	}
	contract, ok := types.NormalizeEthereumAddress(req.ContractAddress)
	if !ok {
		return nil, fmt.Errorf("invalid contract address %q", req.ContractAddress)
	}
	if strings.TrimSpace(req.TokenID) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("tokenId and title are required")
	}
	if !req.Deadline.After(h.deps.Clock.Now()) {
		return nil, errors.New("deadline must be in the future")
	}
	if req.ReservePrice.IsNegative() {
		return nil, errors.New("reservePrice must not be negative")
	}

	category := domain.CategoryUncategorized
	if req.Category != "" {
		parsed, ok := domain.ParseCategory(req.Category)
		if !ok || parsed == domain.CategoryAll {
			return nil, fmt.Errorf("unknown category %q", req.Category)
		}
		category = parsed
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = domain.DEFAULT_CURRENCY
	}

	return &schema.Auction{
		Chain:            chain,
		ContractAddress:  strings.ToLower(contract),
		TokenID:          req.TokenID,
		Title:            req.Title,
		Description:      req.Description,
		ImageURI:         req.ImageURI,
		Category:         string(category),
		CreatorName:      req.CreatorName,
		CreatorAvatarURI: req.CreatorAvatarURI,
		CreatorVerified:  req.CreatorVerified,
		SellerRef:        req.SellerRef,
		SellerAvatarURI:  req.SellerAvatarURI,
		ReservePrice:     req.ReservePrice,
		Currency:         currency,
		Deadline:         req.Deadline.UTC(),
	}, nil
}

// GetAuction returns an auction with its latest bids
func (h *handler) GetAuction(c *gin.Context) {
	params, err := ParseGetAuctionQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	auctionRow, err := h.deps.Store.GetAuction(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondNotFound(c, "Auction not found")
			return
		}
		respondInternalError(c, err, "Failed to get auction", zap.String("auctionID", id))
		return
	}

	highestRow, err := h.deps.Store.GetHighestBid(ctx, id)
	if err != nil {
		respondInternalError(c, err, "Failed to get highest bid", zap.String("auctionID", id))
		return
	}
	var highest *domain.Bid
	if highestRow != nil {
		bid := bidding.ToDomain(*highestRow)
		highest = &bid
	}

	rows, err := h.deps.Store.ListBids(ctx, id, params.BidsLimit, 0)
	if err != nil {
		respondInternalError(c, err, "Failed to list bids", zap.String("auctionID", id))
		return
	}
	bids := make([]domain.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, bidding.ToDomain(row))
	}

	c.JSON(http.StatusOK, dto.NewAuctionResponse(auctionRow, highest, bids, h.deps.Clock.Now()))
}

// PlaceBid submits a bid as the authenticated bidder
func (h *handler) PlaceBid(c *gin.Context) {
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	bid, err := h.deps.Bids.Submit(c.Request.Context(), c.Param("id"), req.Amount, middleware.BidderRef(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBidRejected):
			respondBidRejected(c, err)
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondNotFound(c, "Auction not found")
		default:
			respondInternalError(c, err, "Failed to place bid", zap.String("auctionID", c.Param("id")))
		}
		return
	}

	c.JSON(http.StatusCreated, bid)
}

func toFeedResponse(s feed.Snapshot) dto.FeedResponse {
	return dto.FeedResponse{
		ID:              s.ID,
		Class:           string(s.Class),
		Categories:      s.Categories,
		Status:          s.Status,
		Assets:          s.Assets,
		LastRefreshedAt: s.LastRefreshedAt,
		Stale:           s.Stale,
		Error:           s.Error,
		Version:         s.Version,
	}
}

// ifNoneMatch reports whether the If-None-Match header matches etag
func ifNoneMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
