package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/models"
	"negotiation-service/internal/store"
	"negotiation-service/internal/util"
)

// OfferService owns the offer state machine:
//
//	pending   -> accepted | rejected | countered
//	countered -> counter_accepted | counter_declined
//
// The four right-hand states are terminal. The accepting transitions
// signal that a transaction should now be created; acting on the signal
// belongs to the transaction subsystem, never to this service.
type OfferService struct {
	offers *store.OfferStore
	gw     gateway.Gateway
	events EventPublisher
	logger *zap.Logger
}

// NewOfferService creates a new offer service
func NewOfferService(offers *store.OfferStore, gw gateway.Gateway, events EventPublisher) *OfferService {
	return &OfferService{
		offers: offers,
		gw:     gw,
		events: events,
		logger: util.GetLogger(),
	}
}

// OfferActionResponse is the payload every offer action returns.
type OfferActionResponse struct {
	Success                 bool          `json:"success"`
	Action                  string        `json:"action"`
	Offer                   *models.Offer `json:"offer"`
	Message                 string        `json:"message"`
	ShouldCreateTransaction bool          `json:"shouldCreateTransaction,omitempty"`
	TransactionPrice        int64         `json:"transactionPrice,omitempty"`
}

// MakeOffer creates the listing's offer record in pending state.
func (s *OfferService) MakeOffer(ctx context.Context, listingID string, offerPrice int64) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.MakeOffer")
	defer span.End()

	actor, listing, err := s.resolveActorAndListing(ctx, listingID)
	if err != nil {
		return nil, s.rejected("make_offer", err)
	}

	if offerPrice <= 0 {
		return nil, s.rejected("make_offer", invalidInput("Valid offer price required"))
	}
	if actor.ID == listing.SellerID {
		return nil, s.rejected("make_offer", forbidden("Cannot make offer on your own listing"))
	}

	offer, err := s.offers.Create(models.Offer{
		OfferID:       "offer_" + uuid.New().String(),
		ListingID:     listingID,
		BuyerID:       actor.ID,
		SellerID:      listing.SellerID,
		OriginalPrice: listing.Price,
		OfferPrice:    offerPrice,
		Status:        models.OfferStatusPending,
	})
	if err != nil {
		if errors.Is(err, store.ErrOfferPending) {
			return nil, s.rejected("make_offer", conflict("An offer is already pending for this listing"))
		}
		return nil, err
	}

	util.OffersCreatedTotal.Inc()
	s.logger.Info("Offer created",
		zap.String("offer_id", offer.OfferID),
		zap.String("listing_id", listingID),
		zap.Int64("offer_price", offerPrice))
	s.publishOfferEvent(ctx, models.EventTypeOfferCreated, offer, 0)

	return &OfferActionResponse{
		Success: true,
		Action:  "make_offer",
		Offer:   offer,
		Message: "Offer submitted successfully",
	}, nil
}

// AcceptOffer moves a pending offer to accepted and signals a
// transaction at the offer price.
func (s *OfferService) AcceptOffer(ctx context.Context, listingID string) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.AcceptOffer")
	defer span.End()

	offer, err := s.sellerTransition(ctx, "accept_offer", listingID, models.OfferStatusAccepted, nil,
		"Offer is not in pending state")
	if err != nil {
		return nil, err
	}

	util.OfferActionsTotal.WithLabelValues("accept_offer").Inc()
	util.TransactionSignalsTotal.Inc()
	s.publishOfferEvent(ctx, models.EventTypeOfferAccepted, offer, offer.OfferPrice)

	return &OfferActionResponse{
		Success:                 true,
		Action:                  "accept_offer",
		Offer:                   offer,
		Message:                 "Offer accepted",
		ShouldCreateTransaction: true,
		TransactionPrice:        offer.OfferPrice,
	}, nil
}

// RejectOffer moves a pending offer to rejected.
func (s *OfferService) RejectOffer(ctx context.Context, listingID string) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.RejectOffer")
	defer span.End()

	offer, err := s.sellerTransition(ctx, "reject_offer", listingID, models.OfferStatusRejected, nil,
		"Offer is not in pending state")
	if err != nil {
		return nil, err
	}

	util.OfferActionsTotal.WithLabelValues("reject_offer").Inc()
	s.publishOfferEvent(ctx, models.EventTypeOfferRejected, offer, 0)

	return &OfferActionResponse{
		Success: true,
		Action:  "reject_offer",
		Offer:   offer,
		Message: "Offer rejected",
	}, nil
}

// CounterOffer moves a pending offer to countered with the seller's
// alternative price.
func (s *OfferService) CounterOffer(ctx context.Context, listingID string, counterPrice int64) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.CounterOffer")
	defer span.End()

	if counterPrice <= 0 {
		return nil, s.rejected("counter_offer", invalidInput("Valid counter price required"))
	}

	offer, err := s.sellerTransition(ctx, "counter_offer", listingID, models.OfferStatusCountered,
		func(o *models.Offer) {
			price := counterPrice
			o.CounterPrice = &price
		},
		"Offer is not in pending state")
	if err != nil {
		return nil, err
	}

	util.OfferActionsTotal.WithLabelValues("counter_offer").Inc()
	s.publishOfferEvent(ctx, models.EventTypeOfferCountered, offer, 0)

	return &OfferActionResponse{
		Success: true,
		Action:  "counter_offer",
		Offer:   offer,
		Message: "Counter offer sent",
	}, nil
}

// AcceptCounter moves a countered offer to counter_accepted and signals
// a transaction at the counter price, not the original offer price.
func (s *OfferService) AcceptCounter(ctx context.Context, listingID string) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.AcceptCounter")
	defer span.End()

	offer, err := s.buyerTransition(ctx, "accept_counter", listingID, models.OfferStatusCounterAccepted,
		"Only the original buyer can accept counter offers", "No counter offer to accept")
	if err != nil {
		return nil, err
	}

	util.OfferActionsTotal.WithLabelValues("accept_counter").Inc()
	util.TransactionSignalsTotal.Inc()
	s.publishOfferEvent(ctx, models.EventTypeCounterAccepted, offer, *offer.CounterPrice)

	return &OfferActionResponse{
		Success:                 true,
		Action:                  "accept_counter",
		Offer:                   offer,
		Message:                 "Counter offer accepted",
		ShouldCreateTransaction: true,
		TransactionPrice:        *offer.CounterPrice,
	}, nil
}

// DeclineCounter moves a countered offer to counter_declined.
func (s *OfferService) DeclineCounter(ctx context.Context, listingID string) (*OfferActionResponse, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.DeclineCounter")
	defer span.End()

	offer, err := s.buyerTransition(ctx, "decline_counter", listingID, models.OfferStatusCounterDeclined,
		"Only the original buyer can decline counter offers", "No counter offer to decline")
	if err != nil {
		return nil, err
	}

	util.OfferActionsTotal.WithLabelValues("decline_counter").Inc()
	s.publishOfferEvent(ctx, models.EventTypeCounterDeclined, offer, 0)

	return &OfferActionResponse{
		Success: true,
		Action:  "decline_counter",
		Offer:   offer,
		Message: "Counter offer declined",
	}, nil
}

// StatusForListings returns the reduced offer view for listing cards.
// Prices stay hidden; only participation flags and the status leak out.
func (s *OfferService) StatusForListings(ctx context.Context, listingIDs []string) (map[string]models.OfferStatusView, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.StatusForListings")
	defer span.End()

	actor, err := s.resolveActor(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]models.OfferStatusView, len(listingIDs))
	for _, listingID := range listingIDs {
		offer, ok := s.offers.Get(listingID)
		if !ok {
			statuses[listingID] = models.OfferStatusView{}
			continue
		}
		status := offer.Status
		statuses[listingID] = models.OfferStatusView{
			HasOffer:     true,
			Status:       &status,
			IsUserBuyer:  offer.BuyerID == actor.ID,
			IsUserSeller: offer.SellerID == actor.ID,
		}
	}
	return statuses, nil
}

// OffersForUser returns every offer the current user is a party to,
// most recently updated first.
func (s *OfferService) OffersForUser(ctx context.Context) ([]models.UserOffer, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.OffersForUser")
	defer span.End()

	actor, err := s.resolveActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.offers.ForUser(actor.ID), nil
}

// sellerTransition runs the listing-owner-gated half of the state
// machine: any transition out of pending.
func (s *OfferService) sellerTransition(ctx context.Context, action, listingID string, to models.OfferStatus, mutate func(*models.Offer), stateMsg string) (*models.Offer, error) {
	actor, listing, err := s.resolveActorAndListing(ctx, listingID)
	if err != nil {
		return nil, s.rejected(action, err)
	}

	if _, ok := s.offers.Get(listingID); !ok {
		return nil, s.rejected(action, notFound("No offer found for this listing"))
	}
	if actor.ID != listing.SellerID {
		return nil, s.rejected(action, forbidden(fmt.Sprintf("Only the listing owner can %s", sellerVerb(to))))
	}

	offer, err := s.offers.Transition(listingID, models.OfferStatusPending, to, mutate)
	if err != nil {
		return nil, s.rejected(action, mapTransitionErr(err, stateMsg))
	}
	return offer, nil
}

// buyerTransition runs the buyer-gated half: any transition out of
// countered.
func (s *OfferService) buyerTransition(ctx context.Context, action, listingID string, to models.OfferStatus, forbiddenMsg, stateMsg string) (*models.Offer, error) {
	actor, _, err := s.resolveActorAndListing(ctx, listingID)
	if err != nil {
		return nil, s.rejected(action, err)
	}

	offer, ok := s.offers.Get(listingID)
	if !ok {
		return nil, s.rejected(action, notFound("No offer found for this listing"))
	}
	if actor.ID != offer.BuyerID {
		return nil, s.rejected(action, forbidden(forbiddenMsg))
	}

	updated, err := s.offers.Transition(listingID, models.OfferStatusCountered, to, nil)
	if err != nil {
		return nil, s.rejected(action, mapTransitionErr(err, stateMsg))
	}
	return updated, nil
}

func (s *OfferService) resolveActor(ctx context.Context) (*gateway.Actor, error) {
	actor, err := s.gw.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			return nil, unauthenticated("Authentication required")
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	return actor, nil
}

func (s *OfferService) resolveActorAndListing(ctx context.Context, listingID string) (*gateway.Actor, *gateway.Listing, error) {
	actor, err := s.resolveActor(ctx)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	listing, err := s.gw.Listing(ctx, listingID)
	util.GatewayCallLatency.WithLabelValues("listing").Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrListingNotFound):
			return nil, nil, notFound("Listing not found")
		case errors.Is(err, gateway.ErrOwnerNotFound):
			return nil, nil, notFound("Listing owner not found")
		}
		return nil, nil, fmt.Errorf("failed to resolve listing: %w", err)
	}
	return actor, listing, nil
}

// rejected counts the failure when it belongs to the taxonomy and hands
// the error back unchanged.
func (s *OfferService) rejected(action string, err error) error {
	if svcErr, ok := AsServiceError(err); ok {
		util.OffersRejectedTotal.WithLabelValues(string(svcErr.Reason)).Inc()
		s.logger.Info("Offer action rejected",
			zap.String("action", action),
			zap.String("reason", string(svcErr.Reason)))
	}
	return err
}

func (s *OfferService) publishOfferEvent(ctx context.Context, eventType string, offer *models.Offer, transactionPrice int64) {
	event := &models.OfferEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		OfferID:                 offer.OfferID,
		ListingID:               offer.ListingID,
		BuyerID:                 offer.BuyerID,
		SellerID:                offer.SellerID,
		Status:                  offer.Status,
		ShouldCreateTransaction: transactionPrice > 0,
		TransactionPrice:        transactionPrice,
	}
	if err := s.events.PublishOfferEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish offer event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func mapTransitionErr(err error, stateMsg string) error {
	switch {
	case errors.Is(err, store.ErrOfferNotFound):
		return notFound("No offer found for this listing")
	case errors.Is(err, store.ErrWrongStatus):
		return invalidState(stateMsg)
	}
	return err
}

func sellerVerb(to models.OfferStatus) string {
	switch to {
	case models.OfferStatusAccepted:
		return "accept offers"
	case models.OfferStatusRejected:
		return "reject offers"
	case models.OfferStatusCountered:
		return "make counter offers"
	}
	return "manage offers"
}
