package service

import (
	"context"
	"testing"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/models"
	"negotiation-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfferFixture() (*OfferService, *fakeGateway, *recordingPublisher) {
	gw := newFakeGateway()
	gw.listings["listing-1"] = &gateway.Listing{
		ID:       "listing-1",
		Title:    "Vintage lamp",
		SellerID: "seller-1",
		Price:    200,
	}
	publisher := &recordingPublisher{}
	svc := NewOfferService(store.NewOfferStore(), gw, publisher)
	return svc, gw, publisher
}

func asBuyer(gw *fakeGateway) {
	gw.actor = &gateway.Actor{ID: "buyer-1", EmailVerified: true}
}

func asSeller(gw *fakeGateway) {
	gw.actor = &gateway.Actor{ID: "seller-1", EmailVerified: true}
}

func TestMakeOffer(t *testing.T) {
	svc, gw, publisher := newOfferFixture()
	asBuyer(gw)

	resp, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "make_offer", resp.Action)
	assert.Equal(t, models.OfferStatusPending, resp.Offer.Status)
	assert.Equal(t, "buyer-1", resp.Offer.BuyerID)
	assert.Equal(t, "seller-1", resp.Offer.SellerID)
	assert.Equal(t, int64(200), resp.Offer.OriginalPrice)
	assert.False(t, resp.ShouldCreateTransaction)
	assert.Equal(t, []string{models.EventTypeOfferCreated}, publisher.offerEventTypes())
}

func TestMakeOfferValidation(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)

	_, err := svc.MakeOffer(context.Background(), "listing-1", 0)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidInput, svcErr.Reason)

	_, err = svc.MakeOffer(context.Background(), "listing-missing", 100)
	svcErr, ok = AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotFound, svcErr.Reason)
}

func TestMakeOfferOnOwnListingForbidden(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asSeller(gw)

	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonForbidden, svcErr.Reason)
}

func TestMakeOfferConflictWhilePending(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)

	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	gw.actor = &gateway.Actor{ID: "buyer-2", EmailVerified: true}
	_, err = svc.MakeOffer(context.Background(), "listing-1", 150)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonConflict, svcErr.Reason)
}

func TestMakeOfferUnauthenticated(t *testing.T) {
	svc, _, _ := newOfferFixture()

	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnauthenticated, svcErr.Reason)
}

func TestAcceptOffer(t *testing.T) {
	svc, gw, publisher := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	asSeller(gw)
	resp, err := svc.AcceptOffer(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, resp.Offer.Status)
	assert.True(t, resp.ShouldCreateTransaction)
	assert.Equal(t, int64(100), resp.TransactionPrice)

	events := publisher.offerEventTypes()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeOfferAccepted, events[1])
	assert.True(t, publisher.offerEvents[1].ShouldCreateTransaction)
	assert.Equal(t, int64(100), publisher.offerEvents[1].TransactionPrice)
}

func TestAcceptOfferOnlyForSeller(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	resp, err := svc.AcceptOffer(context.Background(), "listing-1")
	assert.Nil(t, resp)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonForbidden, svcErr.Reason)
}

func TestAcceptOfferWithoutOffer(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asSeller(gw)

	_, err := svc.AcceptOffer(context.Background(), "listing-1")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotFound, svcErr.Reason)
	assert.Equal(t, "No offer found for this listing", svcErr.Message)
}

func TestRejectOfferClosesStateMachine(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	asSeller(gw)
	resp, err := svc.RejectOffer(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusRejected, resp.Offer.Status)
	assert.False(t, resp.ShouldCreateTransaction)

	// Terminal records admit no further transitions.
	_, err = svc.AcceptOffer(context.Background(), "listing-1")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidState, svcErr.Reason)
	assert.Equal(t, "Offer is not in pending state", svcErr.Message)
}

func TestCounterFlowAccepted(t *testing.T) {
	svc, gw, publisher := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	asSeller(gw)
	countered, err := svc.CounterOffer(context.Background(), "listing-1", 80)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCountered, countered.Offer.Status)
	require.NotNil(t, countered.Offer.CounterPrice)
	assert.Equal(t, int64(80), *countered.Offer.CounterPrice)

	asBuyer(gw)
	accepted, err := svc.AcceptCounter(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCounterAccepted, accepted.Offer.Status)
	assert.True(t, accepted.ShouldCreateTransaction)
	assert.Equal(t, int64(80), accepted.TransactionPrice)

	assert.Equal(t, []string{
		models.EventTypeOfferCreated,
		models.EventTypeOfferCountered,
		models.EventTypeCounterAccepted,
	}, publisher.offerEventTypes())
}

func TestCounterFlowDeclined(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	asSeller(gw)
	_, err = svc.CounterOffer(context.Background(), "listing-1", 80)
	require.NoError(t, err)

	asBuyer(gw)
	resp, err := svc.DeclineCounter(context.Background(), "listing-1")
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusCounterDeclined, resp.Offer.Status)
	assert.False(t, resp.ShouldCreateTransaction)
}

func TestCounterActionsOnlyForBuyer(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	asSeller(gw)
	_, err = svc.CounterOffer(context.Background(), "listing-1", 80)
	require.NoError(t, err)

	_, err = svc.AcceptCounter(context.Background(), "listing-1")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonForbidden, svcErr.Reason)
}

func TestAcceptCounterWithoutCounter(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	_, err = svc.AcceptCounter(context.Background(), "listing-1")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidState, svcErr.Reason)
	assert.Equal(t, "No counter offer to accept", svcErr.Message)
}

func TestStatusForListings(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	statuses, err := svc.StatusForListings(context.Background(), []string{"listing-1", "listing-2"})
	require.NoError(t, err)

	withOffer := statuses["listing-1"]
	assert.True(t, withOffer.HasOffer)
	require.NotNil(t, withOffer.Status)
	assert.Equal(t, models.OfferStatusPending, *withOffer.Status)
	assert.True(t, withOffer.IsUserBuyer)
	assert.False(t, withOffer.IsUserSeller)

	empty := statuses["listing-2"]
	assert.False(t, empty.HasOffer)
	assert.Nil(t, empty.Status)
}

func TestOffersForUser(t *testing.T) {
	svc, gw, _ := newOfferFixture()
	asBuyer(gw)
	_, err := svc.MakeOffer(context.Background(), "listing-1", 100)
	require.NoError(t, err)

	offers, err := svc.OffersForUser(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "buyer", offers[0].UserRole)

	asSeller(gw)
	offers, err = svc.OffersForUser(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "seller", offers[0].UserRole)
}
