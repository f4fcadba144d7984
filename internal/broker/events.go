package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"negotiation-service/internal/models"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOfferEvent publishes an offer state-machine transition.
// Messages for one listing share a key so consumers see transitions in
// order.
func (ep *EventPublisher) PublishOfferEvent(ctx context.Context, event *models.OfferEvent) error {
	key := fmt.Sprintf("offer-%s", event.ListingID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBidPlaced publishes a BidPlaced event
func (ep *EventPublisher) PublishBidPlaced(ctx context.Context, event *models.BidPlacedEvent) error {
	key := fmt.Sprintf("auction-%s", event.AuctionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAuctionStarted publishes an AuctionStarted event
func (ep *EventPublisher) PublishAuctionStarted(ctx context.Context, event *models.AuctionStartedEvent) error {
	key := fmt.Sprintf("auction-%s", event.AuctionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAuctionEnded publishes an AuctionEnded event
func (ep *EventPublisher) PublishAuctionEnded(ctx context.Context, event *models.AuctionEndedEvent) error {
	key := fmt.Sprintf("auction-%s", event.AuctionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed events to registered callbacks.
type EventHandler struct {
	onOffer          func(context.Context, *models.OfferEvent) error
	onBidPlaced      func(context.Context, *models.BidPlacedEvent) error
	onAuctionStarted func(context.Context, *models.AuctionStartedEvent) error
	onAuctionEnded   func(context.Context, *models.AuctionEndedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOffer registers a handler for every offer transition event.
func (eh *EventHandler) OnOffer(handler func(context.Context, *models.OfferEvent) error) {
	eh.onOffer = handler
}

// OnBidPlaced registers a handler for BidPlaced events
func (eh *EventHandler) OnBidPlaced(handler func(context.Context, *models.BidPlacedEvent) error) {
	eh.onBidPlaced = handler
}

// OnAuctionStarted registers a handler for AuctionStarted events
func (eh *EventHandler) OnAuctionStarted(handler func(context.Context, *models.AuctionStartedEvent) error) {
	eh.onAuctionStarted = handler
}

// OnAuctionEnded registers a handler for AuctionEnded events
func (eh *EventHandler) OnAuctionEnded(handler func(context.Context, *models.AuctionEndedEvent) error) {
	eh.onAuctionEnded = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOfferCreated, models.EventTypeOfferAccepted, models.EventTypeOfferRejected,
		models.EventTypeOfferCountered, models.EventTypeCounterAccepted, models.EventTypeCounterDeclined:
		if eh.onOffer != nil {
			var event models.OfferEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal offer event: %w", err)
			}
			return eh.onOffer(ctx, &event)
		}

	case models.EventTypeBidPlaced:
		if eh.onBidPlaced != nil {
			var event models.BidPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal BidPlaced event: %w", err)
			}
			return eh.onBidPlaced(ctx, &event)
		}

	case models.EventTypeAuctionStarted:
		if eh.onAuctionStarted != nil {
			var event models.AuctionStartedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AuctionStarted event: %w", err)
			}
			return eh.onAuctionStarted(ctx, &event)
		}

	case models.EventTypeAuctionEnded:
		if eh.onAuctionEnded != nil {
			var event models.AuctionEndedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal AuctionEnded event: %w", err)
			}
			return eh.onAuctionEnded(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
