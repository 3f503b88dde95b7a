package realtime

import (
	"github.com/shopspring/decimal"

	apierrors "github.com/feral-file/ff-storefront/internal/api/shared/errors"
	"github.com/feral-file/ff-storefront/internal/auction"
	"github.com/feral-file/ff-storefront/internal/domain"
	"github.com/feral-file/ff-storefront/internal/feed"
)

// Client frame types
const (
	TypePlaceBid  = "place_bid"
	TypeSetFilter = "set_filter"
	TypeRefresh   = "refresh"
)

// Server frame types
const (
	TypeAuctionView  = "auction_view"
	TypeBidResult    = "bid_result"
	TypeFeedSnapshot = "feed_snapshot"
	TypeError        = "error"
)

// ClientMessage is a frame sent by the client
type ClientMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	// Categories is the new filter of a set_filter frame
	Categories []string `json:"categories,omitempty"`
}

// ServerMessage is a frame sent to the client
type ServerMessage struct {
	Type      string              `json:"type"`
	RequestID string              `json:"requestId,omitempty"`
	View      *auction.View       `json:"view,omitempty"`
	Snapshot  *feed.Snapshot      `json:"snapshot,omitempty"`
	Accepted  *bool               `json:"accepted,omitempty"`
	Reason    string              `json:"reason,omitempty"`
	Bid       *domain.Bid         `json:"bid,omitempty"`
	Error     *apierrors.APIError `json:"error,omitempty"`
}

func viewMessage(v auction.View) ServerMessage {
	return ServerMessage{Type: TypeAuctionView, View: &v}
}

func snapshotMessage(s feed.Snapshot) ServerMessage {
	return ServerMessage{Type: TypeFeedSnapshot, Snapshot: &s}
}

func bidAccepted(requestID string, bid *domain.Bid) ServerMessage {
	accepted := true
	return ServerMessage{Type: TypeBidResult, RequestID: requestID, Accepted: &accepted, Bid: bid}
}

func bidRejected(requestID string, reason domain.BidRejectReason, err error) ServerMessage {
	accepted := false
	return ServerMessage{
		Type:      TypeBidResult,
		RequestID: requestID,
		Accepted:  &accepted,
		Reason:    string(reason),
		Error:     apierrors.NewBidRejectedError(string(reason), err.Error()),
	}
}

func errorMessage(requestID string, apiErr *apierrors.APIError) ServerMessage {
	return ServerMessage{Type: TypeError, RequestID: requestID, Error: apiErr}
}

func badFrame(err error) *apierrors.APIError {
	return apierrors.NewBadRequestError("Malformed frame", err.Error())
}
