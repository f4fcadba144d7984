package service

import (
	"context"
	"sync"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/models"
)

// fakeGateway serves canned actors and listings without HTTP.
type fakeGateway struct {
	actor    *gateway.Actor
	actorErr error
	listings map[string]*gateway.Listing
	liked    map[string][]string
	likedErr error
	saveErr  error
	saved    map[string][]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		listings: make(map[string]*gateway.Listing),
		liked:    make(map[string][]string),
		saved:    make(map[string][]string),
	}
}

func (g *fakeGateway) CurrentActor(ctx context.Context) (*gateway.Actor, error) {
	if g.actorErr != nil {
		return nil, g.actorErr
	}
	if g.actor == nil {
		return nil, gateway.ErrUnauthenticated
	}
	return g.actor, nil
}

func (g *fakeGateway) Listing(ctx context.Context, listingID string) (*gateway.Listing, error) {
	listing, ok := g.listings[listingID]
	if !ok {
		return nil, gateway.ErrListingNotFound
	}
	return listing, nil
}

func (g *fakeGateway) LikedListings(ctx context.Context, userID string) ([]string, error) {
	if g.likedErr != nil {
		return nil, g.likedErr
	}
	return g.liked[userID], nil
}

func (g *fakeGateway) SaveLikedListings(ctx context.Context, userID string, listingIDs []string) error {
	if g.saveErr != nil {
		return g.saveErr
	}
	g.liked[userID] = listingIDs
	g.saved[userID] = listingIDs
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu            sync.Mutex
	offerEvents   []*models.OfferEvent
	bidEvents     []*models.BidPlacedEvent
	startedEvents []*models.AuctionStartedEvent
	endedEvents   []*models.AuctionEndedEvent
}

func (p *recordingPublisher) PublishOfferEvent(ctx context.Context, event *models.OfferEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offerEvents = append(p.offerEvents, event)
	return nil
}

func (p *recordingPublisher) PublishBidPlaced(ctx context.Context, event *models.BidPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bidEvents = append(p.bidEvents, event)
	return nil
}

func (p *recordingPublisher) PublishAuctionStarted(ctx context.Context, event *models.AuctionStartedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedEvents = append(p.startedEvents, event)
	return nil
}

func (p *recordingPublisher) PublishAuctionEnded(ctx context.Context, event *models.AuctionEndedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endedEvents = append(p.endedEvents, event)
	return nil
}

func (p *recordingPublisher) offerEventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.offerEvents))
	for i, e := range p.offerEvents {
		types[i] = e.EventType
	}
	return types
}
