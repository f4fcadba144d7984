package service

import (
	"context"

	"negotiation-service/internal/models"
)

// EventPublisher publishes domain events for downstream consumers (the
// transaction subsystem, the audit worker). Publishing is best-effort:
// services log failures and keep going.
type EventPublisher interface {
	PublishOfferEvent(ctx context.Context, event *models.OfferEvent) error
	PublishBidPlaced(ctx context.Context, event *models.BidPlacedEvent) error
	PublishAuctionStarted(ctx context.Context, event *models.AuctionStartedEvent) error
	PublishAuctionEnded(ctx context.Context, event *models.AuctionEndedEvent) error
}
