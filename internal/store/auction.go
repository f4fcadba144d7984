package store

import (
	"sync"
	"time"

	"negotiation-service/internal/models"
)

// AuctionStore holds the single active auction and its append-only bid
// ledger. The bid floor, the time window and the anti-sniping extension
// are all evaluated under the store lock so the strictly-increasing
// ledger invariant holds even under concurrent bids.
type AuctionStore struct {
	mu             sync.RWMutex
	current        *models.Auction
	bids           []models.Bid
	snipeWindow    time.Duration
	snipeExtension time.Duration
}

// NewAuctionStore creates an empty auction store
func NewAuctionStore(snipeWindow, snipeExtension time.Duration) *AuctionStore {
	return &AuctionStore{
		snipeWindow:    snipeWindow,
		snipeExtension: snipeExtension,
	}
}

// BidResult is the ledger's view of an accepted bid.
type BidResult struct {
	Auction   models.Auction // end time reflects any extension
	Bid       models.Bid
	MinNext   int64 // floor for the next bid
	BidsCount int
	Extended  bool
}

// Start installs the auction and resets the ledger. Fails with
// ErrAuctionActive while a slot is occupied.
func (s *AuctionStore) Start(a models.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return ErrAuctionActive
	}
	s.current = &a
	s.bids = []models.Bid{}
	return nil
}

// End clears the slot and the ledger, returning the ended auction and
// the winning bid. Both are nil when no auction was active; the winner
// alone is nil when the auction drew no bids.
func (s *AuctionStore) End() (*models.Auction, *models.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil
	}

	ended := *s.current
	var winner *models.Bid
	if n := len(s.bids); n > 0 {
		// Last bid is highest by the strict-increase invariant.
		w := s.bids[n-1]
		winner = &w
	}

	s.current = nil
	s.bids = nil
	return &ended, winner
}

// PlaceBid validates amount against the current floor and the time
// window, appends to the ledger and applies the anti-sniping extension.
// A bid landing within snipeWindow of the current (possibly already
// extended) deadline pushes the deadline out by snipeExtension; the
// ratchet can repeat on every late bid.
func (s *AuctionStore) PlaceBid(userID string, amount int64, now time.Time) (*BidResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoAuction
	}
	if now.Before(s.current.StartTime) {
		return nil, ErrAuctionNotStarted
	}
	if now.After(s.current.EndTime) {
		return nil, ErrAuctionEnded
	}

	currentHigh := s.currentHighLocked()
	minNext := currentHigh + s.current.MinIncrement
	if amount < minNext {
		return nil, &BidTooLowError{MinNext: minNext}
	}

	bid := models.Bid{UserID: userID, Amount: amount, CreatedAt: now}
	s.bids = append(s.bids, bid)

	extended := false
	if s.current.EndTime.Sub(now) <= s.snipeWindow {
		s.current.EndTime = s.current.EndTime.Add(s.snipeExtension)
		extended = true
	}

	return &BidResult{
		Auction:   *s.current,
		Bid:       bid,
		MinNext:   amount + s.current.MinIncrement,
		BidsCount: len(s.bids),
		Extended:  extended,
	}, nil
}

// Current returns copies of the active auction and its ledger; the
// auction is nil when the slot is empty.
func (s *AuctionStore) Current() (*models.Auction, []models.Bid) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, nil
	}
	cp := *s.current
	bids := make([]models.Bid, len(s.bids))
	copy(bids, s.bids)
	return &cp, bids
}

// currentHighLocked seeds the floor with the starting bid (never below
// 1) until the first bid lands.
func (s *AuctionStore) currentHighLocked() int64 {
	if n := len(s.bids); n > 0 {
		return s.bids[n-1].Amount
	}
	if s.current.StartingBid > 1 {
		return s.current.StartingBid
	}
	return 1
}
