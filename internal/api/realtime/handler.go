package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/feral-file/ff-storefront/internal/adapter"
	"github.com/feral-file/ff-storefront/internal/api/middleware"
	apierrors "github.com/feral-file/ff-storefront/internal/api/shared/errors"
	"github.com/feral-file/ff-storefront/internal/auction"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/feed"
	"github.com/feral-file/ff-storefront/internal/logger"
	"github.com/feral-file/ff-storefront/internal/pubsub"
	"github.com/feral-file/ff-storefront/internal/store"
)

// Config holds websocket settings
type Config struct {
	// Tick is the auction countdown period
	Tick time.Duration
	// AllowedOrigins restricts the Origin of upgrade requests; empty allows all
	AllowedOrigins []string
}

// Deps are the collaborators of the websocket handlers
type Deps struct {
	Store      store.Store
	Subscriber pubsub.Subscriber
	Bids       auction.Bids
	Feeds      feed.Scheduler
	Clock      adapter.Clock
	JSON       adapter.JSON
}

// Handler serves the live auction and feed streams
type Handler struct {
	cfg      Config
	deps     Deps
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler
func NewHandler(cfg Config, deps Deps) *Handler {
	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}

	return &Handler{
		cfg:  cfg,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				return origins[r.Header.Get("Origin")]
			},
		},
	}
}

// SetupRoutes configures the websocket routes
func SetupRoutes(router *gin.Engine, h *Handler, authCfg middleware.AuthConfig) {
	v1 := router.Group("/api/v1")
	{
		// Viewing is public; placing bids needs a bidder token
		v1.GET("/auctions/:id/ws", middleware.OptionalBidder(authCfg), h.AuctionStream)
		v1.GET("/feeds/:id/ws", h.FeedStream)
	}
}

// AuctionStream streams the live view of one auction and accepts place_bid frames.
// Each connection runs its own engine, closed when the connection ends.
func (h *Handler) AuctionStream(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	row, err := h.deps.Store.GetAuction(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			c.JSON(http.StatusNotFound, apierrors.Wrap(apierrors.NewNotFoundError("Auction not found")))
			return
		}
		logger.ErrorCtx(ctx, err, zap.String("auctionID", id))
		c.JSON(http.StatusInternalServerError, apierrors.Wrap(apierrors.NewInternalError("Failed to get auction")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already replied
		logger.WarnCtx(ctx, "Websocket upgrade failed", zap.String("auctionID", id), zap.Error(err))
		return
	}

	s := newSession(conn, h.deps.JSON, "auction:"+id)
	go s.writePump()
	defer s.close()

	engine, err := auction.New(ctx, auction.Config{
		AuctionID: row.ID,
		Deadline:  row.Deadline,
		Tick:      h.cfg.Tick,
	}, h.deps.Subscriber, h.deps.Bids, h.deps.Clock)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to start auction engine: %w", err), zap.String("auctionID", id))
		s.send(errorMessage("", apierrors.NewServiceError("Auction stream unavailable")))
		return
	}
	defer engine.Close()

	go func() {
		for view := range engine.Updates() {
			if !s.send(viewMessage(view)) {
				return
			}
		}
	}()

	bidderRef := middleware.BidderRef(c)
	s.readPump(func(msg ClientMessage) {
		switch msg.Type {
		case TypePlaceBid:
			s.send(h.placeBid(ctx, engine, msg, bidderRef))
		default:
			s.send(errorMessage(msg.RequestID, apierrors.NewBadRequestError("Unsupported frame type", msg.Type)))
		}
	})
}

func (h *Handler) placeBid(ctx context.Context, engine *auction.Engine, msg ClientMessage, bidderRef string) ServerMessage {
	bid, err := engine.PlaceBid(ctx, msg.Amount, bidderRef)
	if err == nil {
		return bidAccepted(msg.RequestID, bid)
	}

	if reason, ok := domain.RejectReason(err); ok {
		return bidRejected(msg.RequestID, reason, err)
	}
	if errors.Is(err, domain.ErrAuctionNotFound) {
		return errorMessage(msg.RequestID, apierrors.NewNotFoundError("Auction not found"))
	}

	logger.ErrorCtx(ctx, fmt.Errorf("failed to place bid: %w", err), zap.String("auctionID", engine.View().AuctionID))
	return errorMessage(msg.RequestID, apierrors.NewInternalError("Failed to place bid"))
}

// FeedStream pushes every new snapshot of a feed and accepts set_filter and refresh frames.
// Closing the stream leaves the feed subscribed.
func (h *Handler) FeedStream(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	f, err := h.deps.Feeds.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierrors.Wrap(apierrors.NewNotFoundError("Feed not found")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WarnCtx(ctx, "Websocket upgrade failed", zap.String("feedID", id), zap.Error(err))
		return
	}

	s := newSession(conn, h.deps.JSON, "feed:"+id)
	go s.writePump()
	defer s.close()

	// The first snapshot on the channel is the current state
	updates, stopWatching := f.Watch()
	defer stopWatching()

	go func() {
		for {
			select {
			case <-s.Done():
				return
			case snap, ok := <-updates:
				if !ok {
					// Feed unsubscribed elsewhere
					s.close()
					return
				}
				if !s.send(snapshotMessage(snap)) {
					return
				}
			}
		}
	}()

	s.readPump(func(msg ClientMessage) {
		switch msg.Type {
		case TypeSetFilter:
			categories := make([]domain.Category, 0, len(msg.Categories))
			for _, name := range msg.Categories {
				category, ok := domain.ParseCategory(name)
				if !ok {
					s.send(errorMessage(msg.RequestID, apierrors.NewValidationError(fmt.Sprintf("unknown category %q", name))))
					return
				}
				categories = append(categories, category)
			}
			if err := f.SetFilter(categories); err != nil {
				s.send(errorMessage(msg.RequestID, apierrors.NewNotFoundError("Feed not found")))
			}
		case TypeRefresh:
			f.Refresh()
		default:
			s.send(errorMessage(msg.RequestID, apierrors.NewBadRequestError("Unsupported frame type", msg.Type)))
		}
	})
}
