package store

import (
	"sort"
	"sync"
	"time"

	"negotiation-service/internal/models"
)

// OfferStore maps listing ids to at most one offer record each. The
// record is overwritten in place by transitions, never appended, and it
// outlives terminal states so status queries keep working.
type OfferStore struct {
	mu        sync.RWMutex
	byListing map[string]*models.Offer
}

// NewOfferStore creates an empty offer store
func NewOfferStore() *OfferStore {
	return &OfferStore{byListing: make(map[string]*models.Offer)}
}

// Get returns a copy of the listing's offer record, if any.
func (s *OfferStore) Get(listingID string) (*models.Offer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offer, ok := s.byListing[listingID]
	if !ok {
		return nil, false
	}
	cp := *offer
	return &cp, true
}

// Create installs a new offer record for the listing. It fails with
// ErrOfferPending while the existing record is still pending; any other
// status (terminal, or countered and abandoned) is overwritten.
func (s *OfferStore) Create(offer models.Offer) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byListing[offer.ListingID]; ok && existing.Status == models.OfferStatusPending {
		return nil, ErrOfferPending
	}

	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now
	s.byListing[offer.ListingID] = &offer

	cp := offer
	return &cp, nil
}

// Transition moves the listing's offer from one status to another,
// applying mutate to the record before the status flips. The from-check
// and the write happen under one lock, so a transition observed by a
// caller can never be undone by a concurrent one. Terminal states have
// no valid from-transition and are therefore closed for good.
func (s *OfferStore) Transition(listingID string, from, to models.OfferStatus, mutate func(*models.Offer)) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.byListing[listingID]
	if !ok {
		return nil, ErrOfferNotFound
	}
	if offer.Status != from {
		return nil, ErrWrongStatus
	}

	if mutate != nil {
		mutate(offer)
	}
	offer.Status = to
	offer.UpdatedAt = time.Now()

	cp := *offer
	return &cp, nil
}

// ForUser scans all offer records and returns the ones the user is a
// party to, most recently updated first.
func (s *OfferStore) ForUser(userID string) []models.UserOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := []models.UserOffer{}
	for _, offer := range s.byListing {
		switch userID {
		case offer.BuyerID:
			offers = append(offers, models.UserOffer{Offer: *offer, UserRole: "buyer"})
		case offer.SellerID:
			offers = append(offers, models.UserOffer{Offer: *offer, UserRole: "seller"})
		}
	}

	sort.Slice(offers, func(i, j int) bool {
		return offers[i].UpdatedAt.After(offers[j].UpdatedAt)
	})
	return offers
}

// Delete removes the listing's offer record. Nothing in the request
// flow calls this yet; it exists for a listing-deletion cascade.
func (s *OfferStore) Delete(listingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byListing, listingID)
}
