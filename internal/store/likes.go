package store

import "sync"

// LikeStore maps listing ids to the set of users who liked them. The
// set is the authoritative source for like counts; the per-user list on
// marketplace profiles is a duplicate read model reconciled elsewhere.
type LikeStore struct {
	mu        sync.RWMutex
	byListing map[string]map[string]struct{}
}

// NewLikeStore creates an empty like store
func NewLikeStore() *LikeStore {
	return &LikeStore{byListing: make(map[string]map[string]struct{})}
}

// Add records a like and returns the new count. added is false when the
// user had already liked the listing.
func (s *LikeStore) Add(listingID, userID string) (count int, added bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.byListing[listingID]
	if !ok {
		set = make(map[string]struct{})
		s.byListing[listingID] = set
	}
	if _, exists := set[userID]; exists {
		return len(set), false
	}
	set[userID] = struct{}{}
	return len(set), true
}

// Remove drops a like and returns the new count. removed is false when
// no like was recorded for the user.
func (s *LikeStore) Remove(listingID, userID string) (count int, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.byListing[listingID]
	if !ok {
		return 0, false
	}
	if _, exists := set[userID]; !exists {
		return len(set), false
	}
	delete(set, userID)
	return len(set), true
}

// Has reports whether the user liked the listing.
func (s *LikeStore) Has(listingID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byListing[listingID][userID]
	return ok
}

// Count returns the authoritative like count for one listing.
func (s *LikeStore) Count(listingID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byListing[listingID])
}

// Counts returns the authoritative like counts for a batch of listings.
func (s *LikeStore) Counts(listingIDs []string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(listingIDs))
	for _, id := range listingIDs {
		counts[id] = len(s.byListing[id])
	}
	return counts
}
