// Package store owns the process-lifetime state of the negotiation
// features: the per-listing offer records, the single auction slot with
// its bid ledger, and the like sets. All state is volatile by design --
// it lives and dies with the process, mirroring what the marketplace
// frontend was built against. Every invariant check runs inside the
// owning store's lock, in the same critical section as the write.
package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOfferNotFound is returned when a listing carries no offer record.
	ErrOfferNotFound = errors.New("no offer found for this listing")

	// ErrOfferPending is returned when a new offer would displace one
	// that is still being contested.
	ErrOfferPending = errors.New("an offer is already pending for this listing")

	// ErrWrongStatus is returned when a transition is attempted from a
	// status other than the one it requires.
	ErrWrongStatus = errors.New("offer is not in the required state")

	// ErrAuctionActive is returned when a start would violate the
	// single-slot invariant.
	ErrAuctionActive = errors.New("another auction is already active")

	// ErrNoAuction is returned when an operation needs an active auction.
	ErrNoAuction = errors.New("no active auction")

	ErrAuctionNotStarted = errors.New("auction not started")
	ErrAuctionEnded      = errors.New("auction ended")
)

// BidTooLowError reports the lowest amount the ledger would have
// accepted at the time of the attempt.
type BidTooLowError struct {
	MinNext int64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %d", e.MinNext)
}

// Stores bundles the three feature stores for injection.
type Stores struct {
	Offers  *OfferStore
	Auction *AuctionStore
	Likes   *LikeStore
}

// NewStores creates empty stores. The snipe parameters tune the
// auction's anti-sniping extension.
func NewStores(snipeWindow, snipeExtension time.Duration) *Stores {
	return &Stores{
		Offers:  NewOfferStore(),
		Auction: NewAuctionStore(snipeWindow, snipeExtension),
		Likes:   NewLikeStore(),
	}
}
