package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/service"
	"negotiation-service/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	offerService   *service.OfferService
	auctionService *service.AuctionService
	likeService    *service.LikeService
}

// NewHandler creates a new HTTP handler
func NewHandler(offerService *service.OfferService, auctionService *service.AuctionService, likeService *service.LikeService) *Handler {
	return &Handler{
		offerService:   offerService,
		auctionService: auctionService,
		likeService:    likeService,
	}
}

// SetupRoutes sets up HTTP routes. Paths match the marketplace
// frontend's API client.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(sessionTokenMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/make-offer", h.makeOffer)
		api.GET("/get-offers", h.getOffers)

		api.GET("/get-current-auction", h.getCurrentAuction)
		api.GET("/get-bids", h.getBids)
		api.POST("/place-bid", h.placeBid)
		api.POST("/start-auction", h.startAuction)
		api.POST("/end-auction", h.endAuction)

		api.POST("/like-listing", h.likeListing)
		api.GET("/get-liked-listings", h.getLikedListings)
		api.POST("/check-liked-listings", h.checkLikedListings)
		api.POST("/get-listing-likes", h.getListingLikes)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type makeOfferRequest struct {
	ListingID    string `json:"listingId"`
	Action       string `json:"action"`
	OfferPrice   int64  `json:"offerPrice"`
	CounterPrice int64  `json:"counterPrice"`
}

// makeOffer dispatches all six offer actions from one endpoint, the
// shape the marketplace frontend expects.
func (h *Handler) makeOffer(c *gin.Context) {
	var req makeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.ListingID == "" || req.Action == "" {
		respondBadRequest(c, "Missing required parameters: listingId and action")
		return
	}

	ctx := c.Request.Context()
	var (
		resp *service.OfferActionResponse
		err  error
	)
	switch req.Action {
	case "make_offer":
		resp, err = h.offerService.MakeOffer(ctx, req.ListingID, req.OfferPrice)
	case "accept_offer":
		resp, err = h.offerService.AcceptOffer(ctx, req.ListingID)
	case "reject_offer":
		resp, err = h.offerService.RejectOffer(ctx, req.ListingID)
	case "counter_offer":
		resp, err = h.offerService.CounterOffer(ctx, req.ListingID, req.CounterPrice)
	case "accept_counter":
		resp, err = h.offerService.AcceptCounter(ctx, req.ListingID)
	case "decline_counter":
		resp, err = h.offerService.DeclineCounter(ctx, req.ListingID)
	default:
		respondBadRequest(c, "Invalid action")
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getOffers serves the two offer query shapes: per-listing status cards
// and the current user's inbox.
func (h *Handler) getOffers(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("type") {
	case "listing":
		listingIDs := queryList(c, "listingIds")
		if len(listingIDs) == 0 {
			respondBadRequest(c, "listingIds parameter required for listing type")
			return
		}
		statuses, err := h.offerService.StatusForListings(ctx, listingIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"type":          "listing",
			"offerStatuses": statuses,
		})

	case "user":
		offers, err := h.offerService.OffersForUser(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"type":    "user",
			"offers":  offers,
		})

	default:
		respondBadRequest(c, `Invalid type parameter. Must be "listing" or "user"`)
	}
}

// getCurrentAuction serves the combined auction+bids polling view.
func (h *Handler) getCurrentAuction(c *gin.Context) {
	resp, err := h.auctionService.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getBids serves the anonymized bid history.
func (h *Handler) getBids(c *gin.Context) {
	resp, err := h.auctionService.Bids(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type placeBidRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) placeBid(c *gin.Context) {
	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.auctionService.PlaceBid(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) startAuction(c *gin.Context) {
	var req service.StartAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.auctionService.Start(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) endAuction(c *gin.Context) {
	resp, err := h.auctionService.End(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type likeListingRequest struct {
	ListingID string `json:"listingId"`
	Action    string `json:"action"`
}

func (h *Handler) likeListing(c *gin.Context) {
	var req likeListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.ListingID == "" || req.Action == "" {
		respondBadRequest(c, "Missing required parameters: listingId and action")
		return
	}

	resp, err := h.likeService.Like(c.Request.Context(), req.ListingID, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getLikedListings(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondBadRequest(c, "Missing required parameter: userId")
		return
	}

	resp, err := h.likeService.LikedListingsFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type listingIDsRequest struct {
	ListingIDs []string `json:"listingIds"`
}

func (h *Handler) checkLikedListings(c *gin.Context) {
	var req listingIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ListingIDs == nil {
		respondBadRequest(c, "Missing or invalid parameter: listingIds (should be an array)")
		return
	}

	statuses, err := h.likeService.CheckLiked(c.Request.Context(), req.ListingIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"likeStatusMap": statuses,
	})
}

func (h *Handler) getListingLikes(c *gin.Context) {
	var req listingIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ListingIDs == nil {
		respondBadRequest(c, "Missing or invalid parameter: listingIds (should be an array)")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"likeCounts": h.likeService.Counts(c.Request.Context(), req.ListingIDs),
	})
}

// respondError maps the service taxonomy onto one uniform status-code
// policy; anything outside the taxonomy is a 500.
func respondError(c *gin.Context, err error) {
	if svcErr, ok := service.AsServiceError(err); ok {
		c.JSON(svcErr.Reason.HTTPStatus(), gin.H{
			"success": false,
			"error":   svcErr.Message,
			"reason":  svcErr.Reason,
		})
		return
	}
	util.GetLogger().Error("Unhandled service error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "An error occurred",
	})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
		"reason":  service.ReasonInvalidInput,
	})
}

// queryList accepts both repeated query params and comma-separated
// values, the two styles the frontend sends.
func queryList(c *gin.Context, key string) []string {
	values := c.QueryArray(key)
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// sessionTokenMiddleware lifts the marketplace session token off the
// request so gateway calls can forward it.
func sessionTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		} else if cookie, err := c.Cookie("st"); err == nil {
			token = cookie
		}
		if token != "" {
			c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
