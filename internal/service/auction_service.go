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
	"negotiation-service/internal/redisclient"
	"negotiation-service/internal/store"
	"negotiation-service/internal/util"
)

// AuctionService runs the single-slot auction: operator-gated
// lifecycle, verified-bidder bidding with a strictly increasing floor,
// and anonymized read projections for polling clients.
type AuctionService struct {
	auctions      *store.AuctionStore
	gw            gateway.Gateway
	events        EventPublisher
	redis         *redisclient.Client
	logger        *zap.Logger
	combinedLimit int
	historyLimit  int
}

// NewAuctionService creates a new auction service. redis may be nil; the
// bid-feed mirror is then skipped.
func NewAuctionService(auctions *store.AuctionStore, gw gateway.Gateway, events EventPublisher, redis *redisclient.Client, combinedLimit, historyLimit int) *AuctionService {
	return &AuctionService{
		auctions:      auctions,
		gw:            gw,
		events:        events,
		redis:         redis,
		logger:        util.GetLogger(),
		combinedLimit: combinedLimit,
		historyLimit:  historyLimit,
	}
}

// StartAuctionRequest carries the operator's auction parameters.
type StartAuctionRequest struct {
	ListingID    string `json:"listingId"`
	AuctionID    string `json:"auctionId"`
	StartTimeISO string `json:"startTimeISO"`
	EndTimeISO   string `json:"endTimeISO"`
	StartingBid  int64  `json:"startingBid"`
	MinIncrement int64  `json:"minIncrement"`
	ReservePrice *int64 `json:"reservePrice"`
}

// StartAuctionResponse returns the installed auction.
type StartAuctionResponse struct {
	Success bool            `json:"success"`
	Auction *models.Auction `json:"auction"`
}

// EndAuctionResponse reports the ended auction and its winner. Auction
// is null when no auction was active (a no-op success).
type EndAuctionResponse struct {
	Success      bool            `json:"success"`
	Auction      *models.Auction `json:"auction"`
	AuctionEnded bool            `json:"auctionEnded,omitempty"`
	Winner       *models.Bid     `json:"winner,omitempty"`
}

// PlaceBidResponse reports the accepted bid against the (possibly
// extended) auction.
type PlaceBidResponse struct {
	Success    bool            `json:"success"`
	Auction    *models.Auction `json:"auction"`
	HighBid    int64           `json:"highBid"`
	HighBidder string          `json:"highBidder"`
	MinNextBid int64           `json:"minNextBid"`
	ReserveMet bool            `json:"reserveMet"`
	BidsCount  int             `json:"bidsCount"`
}

// CurrentAuctionResponse is the combined polling view.
type CurrentAuctionResponse struct {
	Success bool               `json:"success"`
	Auction *models.Auction    `json:"auction"`
	Bids    []models.PublicBid `json:"bids"`
}

// BidHistoryResponse is the dedicated bid-history view.
type BidHistoryResponse struct {
	Success bool               `json:"success"`
	Bids    []models.PublicBid `json:"bids"`
}

// Start installs a new auction. Requires the admin or operator scope;
// fails with a conflict while a slot is active.
func (s *AuctionService) Start(ctx context.Context, req *StartAuctionRequest) (*StartAuctionResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuctionService.Start")
	defer span.End()

	actor, err := s.resolveOperator(ctx)
	if err != nil {
		return nil, err
	}

	if req.ListingID == "" || req.AuctionID == "" || req.StartTimeISO == "" || req.EndTimeISO == "" {
		return nil, invalidInput("Missing required fields")
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTimeISO)
	if err != nil {
		return nil, invalidInput("Invalid startTimeISO")
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTimeISO)
	if err != nil {
		return nil, invalidInput("Invalid endTimeISO")
	}

	listing, err := s.gw.Listing(ctx, req.ListingID)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrListingNotFound):
			return nil, notFound("Listing not found")
		case errors.Is(err, gateway.ErrOwnerNotFound):
			return nil, notFound("Listing owner not found")
		}
		return nil, fmt.Errorf("failed to resolve listing: %w", err)
	}

	auction := models.Auction{
		AuctionID:    req.AuctionID,
		ListingID:    req.ListingID,
		Title:        listing.Title,
		SellerID:     listing.SellerID,
		StartTime:    startTime,
		EndTime:      endTime,
		StartingBid:  defaultPositive(req.StartingBid),
		MinIncrement: defaultPositive(req.MinIncrement),
		ReservePrice: req.ReservePrice,
	}

	if err := s.auctions.Start(auction); err != nil {
		if errors.Is(err, store.ErrAuctionActive) {
			return nil, conflict("Another auction is already active")
		}
		return nil, err
	}

	util.AuctionsStartedTotal.Inc()
	s.logger.Info("Auction started",
		zap.String("auction_id", auction.AuctionID),
		zap.String("listing_id", auction.ListingID),
		zap.String("operator", actor.ID),
		zap.Time("end_time", auction.EndTime))

	event := &models.AuctionStartedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAuctionStarted,
			Timestamp: time.Now(),
		},
		AuctionID: auction.AuctionID,
		ListingID: auction.ListingID,
		SellerID:  auction.SellerID,
		StartTime: auction.StartTime,
		EndTime:   auction.EndTime,
	}
	if err := s.events.PublishAuctionStarted(ctx, event); err != nil {
		s.logger.Error("Failed to publish AuctionStarted event", zap.Error(err))
	}

	return &StartAuctionResponse{Success: true, Auction: &auction}, nil
}

// End clears the slot. With no active auction it is a no-op success.
// The winner is the last ledger entry, highest by the strict-increase
// invariant.
func (s *AuctionService) End(ctx context.Context) (*EndAuctionResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuctionService.End")
	defer span.End()

	if _, err := s.resolveOperator(ctx); err != nil {
		return nil, err
	}

	auction, winner := s.auctions.End()
	if auction == nil {
		return &EndAuctionResponse{Success: true}, nil
	}

	util.AuctionsEndedTotal.Inc()
	s.logger.Info("Auction ended",
		zap.String("auction_id", auction.AuctionID),
		zap.Bool("has_winner", winner != nil))

	event := &models.AuctionEndedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAuctionEnded,
			Timestamp: time.Now(),
		},
		AuctionID: auction.AuctionID,
		ListingID: auction.ListingID,
		Winner:    winner,
	}
	if err := s.events.PublishAuctionEnded(ctx, event); err != nil {
		s.logger.Error("Failed to publish AuctionEnded event", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.ClearBidFeed(ctx); err != nil {
			s.logger.Warn("Failed to clear mirrored bid feed", zap.Error(err))
		}
	}

	return &EndAuctionResponse{
		Success:      true,
		Auction:      auction,
		AuctionEnded: true,
		Winner:       winner,
	}, nil
}

// PlaceBid appends to the ledger. Bidding needs a verified-email
// session, not elevated scope.
func (s *AuctionService) PlaceBid(ctx context.Context, amount int64) (*PlaceBidResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuctionService.PlaceBid")
	defer span.End()

	if amount <= 0 {
		util.BidsRejectedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, invalidInput("Invalid amount")
	}

	actor, err := s.gw.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			return nil, unauthenticated("Authentication required")
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if !actor.EmailVerified {
		util.BidsRejectedTotal.WithLabelValues("email_not_verified").Inc()
		return nil, forbidden("Email not verified")
	}

	result, err := s.auctions.PlaceBid(actor.ID, amount, time.Now())
	if err != nil {
		var tooLow *store.BidTooLowError
		switch {
		case errors.Is(err, store.ErrNoAuction):
			util.BidsRejectedTotal.WithLabelValues("no_auction").Inc()
			return nil, notFound("No active auction")
		case errors.Is(err, store.ErrAuctionNotStarted):
			util.BidsRejectedTotal.WithLabelValues("not_started").Inc()
			return nil, invalidState("Auction not started")
		case errors.Is(err, store.ErrAuctionEnded):
			util.BidsRejectedTotal.WithLabelValues("ended").Inc()
			return nil, invalidState("Auction ended")
		case errors.As(err, &tooLow):
			util.BidsRejectedTotal.WithLabelValues("below_floor").Inc()
			return nil, invalidInput(fmt.Sprintf("Bid must be at least %d", tooLow.MinNext))
		}
		return nil, err
	}

	util.BidsPlacedTotal.Inc()
	if result.Extended {
		util.AuctionExtensionsTotal.Inc()
		s.logger.Info("Anti-sniping extension applied",
			zap.String("auction_id", result.Auction.AuctionID),
			zap.Time("new_end_time", result.Auction.EndTime))
	}
	s.logger.Info("Bid placed",
		zap.String("auction_id", result.Auction.AuctionID),
		zap.Int64("amount", amount),
		zap.Int("bids_count", result.BidsCount))

	event := &models.BidPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBidPlaced,
			Timestamp: time.Now(),
		},
		AuctionID: result.Auction.AuctionID,
		ListingID: result.Auction.ListingID,
		Amount:    amount,
		BidsCount: result.BidsCount,
		EndTime:   result.Auction.EndTime,
	}
	if err := s.events.PublishBidPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish BidPlaced event", zap.Error(err))
	}

	s.mirrorBidFeed()

	reserveMet := true
	if result.Auction.ReservePrice != nil {
		reserveMet = amount >= *result.Auction.ReservePrice
	}

	auction := result.Auction
	return &PlaceBidResponse{
		Success:    true,
		Auction:    &auction,
		HighBid:    amount,
		HighBidder: anonymizeBidder(actor.ID),
		MinNextBid: result.MinNext,
		ReserveMet: reserveMet,
		BidsCount:  result.BidsCount,
	}, nil
}

// Current returns the combined auction+bids polling view.
func (s *AuctionService) Current(ctx context.Context) (*CurrentAuctionResponse, error) {
	_, span := util.StartSpan(ctx, "AuctionService.Current")
	defer span.End()

	auction, bids := s.auctions.Current()
	if auction == nil {
		return &CurrentAuctionResponse{Success: true, Bids: []models.PublicBid{}}, nil
	}
	return &CurrentAuctionResponse{
		Success: true,
		Auction: auction,
		Bids:    anonymizeBids(tail(bids, s.combinedLimit)),
	}, nil
}

// Bids returns the dedicated bid-history view.
func (s *AuctionService) Bids(ctx context.Context) (*BidHistoryResponse, error) {
	_, span := util.StartSpan(ctx, "AuctionService.Bids")
	defer span.End()

	auction, bids := s.auctions.Current()
	if auction == nil {
		return &BidHistoryResponse{Success: true, Bids: []models.PublicBid{}}, nil
	}
	return &BidHistoryResponse{
		Success: true,
		Bids:    anonymizeBids(tail(bids, s.historyLimit)),
	}, nil
}

// resolveOperator gates the auction lifecycle on the admin or operator
// scope. Exact, case-sensitive match.
func (s *AuctionService) resolveOperator(ctx context.Context) (*gateway.Actor, error) {
	actor, err := s.gw.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			return nil, unauthenticated("Authentication required")
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if !actor.HasScope("admin") && !actor.HasScope("operator") {
		return nil, forbidden("Forbidden")
	}
	return actor, nil
}

// mirrorBidFeed pushes the anonymized history snapshot to redis off the
// request path for the sibling web processes that poll it.
func (s *AuctionService) mirrorBidFeed() {
	if s.redis == nil {
		return
	}
	auction, bids := s.auctions.Current()
	if auction == nil {
		return
	}
	feed := BidHistoryResponse{Success: true, Bids: anonymizeBids(tail(bids, s.historyLimit))}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.redis.SetBidFeed(ctx, feed); err != nil {
			s.logger.Warn("Failed to mirror bid feed", zap.Error(err))
		}
	}()
}

// anonymizeBidder reduces a user id to a stable public label.
func anonymizeBidder(userID string) string {
	if userID == "" {
		return "User***"
	}
	suffix := userID
	if len(userID) > 2 {
		suffix = userID[len(userID)-2:]
	}
	return "User***" + suffix
}

func anonymizeBids(bids []models.Bid) []models.PublicBid {
	public := make([]models.PublicBid, len(bids))
	for i, b := range bids {
		public[i] = models.PublicBid{
			Bidder:    anonymizeBidder(b.UserID),
			Amount:    b.Amount,
			CreatedAt: b.CreatedAt,
		}
	}
	return public
}

func tail(bids []models.Bid, limit int) []models.Bid {
	if limit <= 0 || len(bids) <= limit {
		return bids
	}
	return bids[len(bids)-limit:]
}

func defaultPositive(v int64) int64 {
	if v <= 0 {
		return 1
	}
	return v
}
