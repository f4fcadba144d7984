package models

import "time"

// OfferStatus is the state of a listing's offer negotiation.
type OfferStatus string

const (
	OfferStatusPending         OfferStatus = "pending"
	OfferStatusAccepted        OfferStatus = "accepted"
	OfferStatusRejected        OfferStatus = "rejected"
	OfferStatusCountered       OfferStatus = "countered"
	OfferStatusCounterAccepted OfferStatus = "counter_accepted"
	OfferStatusCounterDeclined OfferStatus = "counter_declined"
)

// Terminal reports whether no further transition can leave the status.
func (s OfferStatus) Terminal() bool {
	switch s {
	case OfferStatusAccepted, OfferStatusRejected, OfferStatusCounterAccepted, OfferStatusCounterDeclined:
		return true
	}
	return false
}

// Offer is the single negotiation record a listing can carry.
// JSON field names follow the marketplace frontend contract.
type Offer struct {
	OfferID       string      `json:"offerId"`
	ListingID     string      `json:"listingId"`
	BuyerID       string      `json:"buyerId"`
	SellerID      string      `json:"sellerId"`
	OriginalPrice int64       `json:"originalPrice"`
	OfferPrice    int64       `json:"offerPrice"`
	CounterPrice  *int64      `json:"counterPrice"`
	Status        OfferStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// UserOffer is an offer annotated with the requesting user's side of it.
type UserOffer struct {
	Offer
	UserRole string `json:"userRole"` // "buyer" or "seller"
}

// OfferStatusView is the reduced per-listing projection shown on listing
// cards. It never exposes prices to non-participants.
type OfferStatusView struct {
	HasOffer     bool         `json:"hasOffer"`
	Status       *OfferStatus `json:"status"`
	IsUserBuyer  bool         `json:"isUserBuyer"`
	IsUserSeller bool         `json:"isUserSeller"`
}

// Auction is the single process-wide auction slot.
type Auction struct {
	AuctionID    string    `json:"auctionId"`
	ListingID    string    `json:"listingId"`
	Title        string    `json:"title"`
	SellerID     string    `json:"sellerId"`
	StartTime    time.Time `json:"startTimeISO"`
	EndTime      time.Time `json:"endTimeISO"`
	StartingBid  int64     `json:"startingBid"`
	MinIncrement int64     `json:"minIncrement"`
	ReservePrice *int64    `json:"reservePrice"`
}

// Bid is one entry in an auction's append-only ledger.
type Bid struct {
	UserID    string    `json:"userId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAtISO"`
}

// PublicBid is a ledger entry with the bidder anonymized for external
// consumption.
type PublicBid struct {
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAtISO"`
}

// LikeStatus is the per-listing like projection for the current user.
type LikeStatus struct {
	IsLiked   bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}
