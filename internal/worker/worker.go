package worker

import (
	"context"
	"log"

	"go.uber.org/zap"

	"negotiation-service/internal/broker"
	"negotiation-service/internal/models"
	"negotiation-service/internal/util"
)

// AuditWorker tails the negotiation-events topic and writes a
// structured audit trail of offer outcomes, bids and auction lifecycle
// changes. The transaction subsystem consumes the same topic; this
// worker only observes.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer) *AuditWorker {
	logger := util.GetLogger()
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOffer(func(ctx context.Context, event *models.OfferEvent) error {
		fields := []zap.Field{
			zap.String("event_id", event.EventID),
			zap.String("offer_id", event.OfferID),
			zap.String("listing_id", event.ListingID),
			zap.String("status", string(event.Status)),
		}
		if event.ShouldCreateTransaction {
			fields = append(fields, zap.Int64("transaction_price", event.TransactionPrice))
		}
		logger.Info("audit: offer "+event.EventType, fields...)
		return nil
	})

	eventHandler.OnBidPlaced(func(ctx context.Context, event *models.BidPlacedEvent) error {
		logger.Info("audit: bid placed",
			zap.String("event_id", event.EventID),
			zap.String("auction_id", event.AuctionID),
			zap.Int64("amount", event.Amount),
			zap.Int("bids_count", event.BidsCount),
			zap.Time("end_time", event.EndTime))
		return nil
	})

	eventHandler.OnAuctionStarted(func(ctx context.Context, event *models.AuctionStartedEvent) error {
		logger.Info("audit: auction started",
			zap.String("event_id", event.EventID),
			zap.String("auction_id", event.AuctionID),
			zap.String("listing_id", event.ListingID),
			zap.Time("start_time", event.StartTime),
			zap.Time("end_time", event.EndTime))
		return nil
	})

	eventHandler.OnAuctionEnded(func(ctx context.Context, event *models.AuctionEndedEvent) error {
		fields := []zap.Field{
			zap.String("event_id", event.EventID),
			zap.String("auction_id", event.AuctionID),
		}
		if event.Winner != nil {
			fields = append(fields, zap.Int64("winning_amount", event.Winner.Amount))
		}
		logger.Info("audit: auction ended", fields...)
		return nil
	})

	return &AuditWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}
