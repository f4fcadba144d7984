package models

import "time"

// Event types
const (
	EventTypeOfferCreated    = "OFFER_CREATED"
	EventTypeOfferAccepted   = "OFFER_ACCEPTED"
	EventTypeOfferRejected   = "OFFER_REJECTED"
	EventTypeOfferCountered  = "OFFER_COUNTERED"
	EventTypeCounterAccepted = "COUNTER_ACCEPTED"
	EventTypeCounterDeclined = "COUNTER_DECLINED"
	EventTypeBidPlaced       = "BID_PLACED"
	EventTypeAuctionStarted  = "AUCTION_STARTED"
	EventTypeAuctionEnded    = "AUCTION_ENDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OfferEvent is published on every offer state-machine transition.
// The two accepting transitions carry the transaction-creation signal;
// the transaction subsystem consumes it, this service never acts on it.
type OfferEvent struct {
	BaseEvent
	OfferID                 string      `json:"offer_id"`
	ListingID               string      `json:"listing_id"`
	BuyerID                 string      `json:"buyer_id"`
	SellerID                string      `json:"seller_id"`
	Status                  OfferStatus `json:"status"`
	ShouldCreateTransaction bool        `json:"should_create_transaction,omitempty"`
	TransactionPrice        int64       `json:"transaction_price,omitempty"`
}

// BidPlacedEvent is published after a bid lands in the ledger.
type BidPlacedEvent struct {
	BaseEvent
	AuctionID string    `json:"auction_id"`
	ListingID string    `json:"listing_id"`
	Amount    int64     `json:"amount"`
	BidsCount int       `json:"bids_count"`
	EndTime   time.Time `json:"end_time"` // possibly extended
}

// AuctionStartedEvent is published when an auction slot is installed.
type AuctionStartedEvent struct {
	BaseEvent
	AuctionID string    `json:"auction_id"`
	ListingID string    `json:"listing_id"`
	SellerID  string    `json:"seller_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// AuctionEndedEvent is published when the slot is cleared.
type AuctionEndedEvent struct {
	BaseEvent
	AuctionID string `json:"auction_id"`
	ListingID string `json:"listing_id"`
	Winner    *Bid   `json:"winner"` // nil when the auction drew no bids
}
