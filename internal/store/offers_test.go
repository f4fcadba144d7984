package store

import (
	"testing"
	"time"

	"negotiation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOffer(listingID, buyerID, sellerID string, price int64) models.Offer {
	return models.Offer{
		OfferID:       "offer_" + listingID,
		ListingID:     listingID,
		BuyerID:       buyerID,
		SellerID:      sellerID,
		OriginalPrice: price * 2,
		OfferPrice:    price,
		Status:        models.OfferStatusPending,
	}
}

func TestOfferCreateAndGet(t *testing.T) {
	s := NewOfferStore()

	created, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	got, ok := s.Get("listing-1")
	require.True(t, ok)
	assert.Equal(t, created.OfferID, got.OfferID)

	_, ok = s.Get("listing-2")
	assert.False(t, ok)
}

func TestOfferCreateRejectedWhilePending(t *testing.T) {
	s := NewOfferStore()

	first, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)

	_, err = s.Create(newOffer("listing-1", "buyer-2", "seller-1", 200))
	assert.ErrorIs(t, err, ErrOfferPending)

	// The losing create must not disturb the stored record.
	got, ok := s.Get("listing-1")
	require.True(t, ok)
	assert.Equal(t, first.BuyerID, got.BuyerID)
	assert.Equal(t, first.OfferPrice, got.OfferPrice)
}

func TestOfferCreateOverwritesResolved(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)
	_, err = s.Transition("listing-1", models.OfferStatusPending, models.OfferStatusRejected, nil)
	require.NoError(t, err)

	second, err := s.Create(newOffer("listing-1", "buyer-2", "seller-1", 150))
	require.NoError(t, err)
	assert.Equal(t, "buyer-2", second.BuyerID)
	assert.Equal(t, models.OfferStatusPending, second.Status)
}

func TestOfferTransitionCounterFlow(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)

	counterPrice := int64(150)
	countered, err := s.Transition("listing-1", models.OfferStatusPending, models.OfferStatusCountered, func(o *models.Offer) {
		o.CounterPrice = &counterPrice
	})
	require.NoError(t, err)
	require.NotNil(t, countered.CounterPrice)
	assert.Equal(t, counterPrice, *countered.CounterPrice)

	accepted, err := s.Transition("listing-1", models.OfferStatusCountered, models.OfferStatusCounterAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCounterAccepted, accepted.Status)
	assert.True(t, accepted.Status.Terminal())
}

func TestOfferTransitionWrongStatus(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)
	_, err = s.Transition("listing-1", models.OfferStatusPending, models.OfferStatusAccepted, nil)
	require.NoError(t, err)

	// Terminal record: no further transition can match its status.
	_, err = s.Transition("listing-1", models.OfferStatusPending, models.OfferStatusRejected, nil)
	assert.ErrorIs(t, err, ErrWrongStatus)
	_, err = s.Transition("listing-1", models.OfferStatusCountered, models.OfferStatusCounterAccepted, nil)
	assert.ErrorIs(t, err, ErrWrongStatus)

	got, ok := s.Get("listing-1")
	require.True(t, ok)
	assert.Equal(t, models.OfferStatusAccepted, got.Status)
}

func TestOfferTransitionNotFound(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Transition("listing-1", models.OfferStatusPending, models.OfferStatusAccepted, nil)
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestOffersForUser(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Create(newOffer("listing-1", "user-a", "seller-1", 100))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.Create(newOffer("listing-2", "buyer-2", "user-a", 200))
	require.NoError(t, err)
	_, err = s.Create(newOffer("listing-3", "buyer-3", "seller-3", 300))
	require.NoError(t, err)

	offers := s.ForUser("user-a")
	require.Len(t, offers, 2)
	assert.Equal(t, "listing-2", offers[0].ListingID)
	assert.Equal(t, "seller", offers[0].UserRole)
	assert.Equal(t, "listing-1", offers[1].ListingID)
	assert.Equal(t, "buyer", offers[1].UserRole)

	assert.Empty(t, s.ForUser("user-unknown"))
}

func TestOfferGetReturnsCopy(t *testing.T) {
	s := NewOfferStore()

	_, err := s.Create(newOffer("listing-1", "buyer-1", "seller-1", 100))
	require.NoError(t, err)

	got, ok := s.Get("listing-1")
	require.True(t, ok)
	got.Status = models.OfferStatusAccepted

	again, ok := s.Get("listing-1")
	require.True(t, ok)
	assert.Equal(t, models.OfferStatusPending, again.Status)
}
