package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when a provider call fails (network, HTTP status or payload)
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrAggregationFailure is returned when the fan-out/fan-in itself fails
	ErrAggregationFailure = errors.New("aggregation failure")

	// ErrResolutionExhausted is returned when every gateway attempt for an image failed
	ErrResolutionExhausted = errors.New("resolution exhausted")

	// ErrBidRejected is returned when a bid violates a business rule
	ErrBidRejected = errors.New("bid rejected")

	// ErrAssetNotFound is returned when an asset lookup has no result
	ErrAssetNotFound = errors.New("asset not found")

	// ErrAuctionNotFound is returned when an auction is not known to the store
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrNoAPIKey is returned by vendor clients configured without credentials
	ErrNoAPIKey = errors.New("no API key provided")
)

// BidRejectReason is the machine readable reason for a rejected bid
type BidRejectReason string

const (
	BidRejectTooLow          BidRejectReason = "bid_too_low"
	BidRejectUnauthenticated BidRejectReason = "unauthenticated"
	BidRejectAuctionEnded    BidRejectReason = "auction_ended"
	BidRejectInvalidAmount   BidRejectReason = "invalid_amount"
)

// BidRejection describes why a bid was rejected
type BidRejection struct {
	Reason BidRejectReason
	Detail string
}

func (e *BidRejection) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bid rejected: %s", e.Reason)
	}
	return fmt.Sprintf("bid rejected: %s: %s", e.Reason, e.Detail)
}

// Unwrap lets errors.Is(err, ErrBidRejected) match
func (e *BidRejection) Unwrap() error {
	return ErrBidRejected
}

// RejectBid builds a BidRejection error
func RejectBid(reason BidRejectReason, detail string) error {
	return &BidRejection{Reason: reason, Detail: detail}
}

// RejectReason extracts the reject reason from err, if any
func RejectReason(err error) (BidRejectReason, bool) {
	var rejection *BidRejection
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}
