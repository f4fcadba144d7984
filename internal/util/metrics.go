package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offers_created_total",
		Help: "Total number of offers created",
	})

	OfferActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_actions_total",
		Help: "Total number of accepted offer state transitions",
	}, []string{"action"})

	OffersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_requests_failed_total",
		Help: "Total number of rejected offer actions",
	}, []string{"reason"})

	TransactionSignalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transaction_signals_total",
		Help: "Total number of transaction-creation signals emitted",
	})

	AuctionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_started_total",
		Help: "Total number of auctions started",
	})

	AuctionsEndedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_ended_total",
		Help: "Total number of auctions ended",
	})

	BidsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_placed_total",
		Help: "Total number of accepted bids",
	})

	BidsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_rejected_total",
		Help: "Total number of rejected bids",
	}, []string{"reason"})

	AuctionExtensionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_extensions_total",
		Help: "Total number of anti-sniping end-time extensions",
	})

	LikeActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "like_actions_total",
		Help: "Total number of like/unlike actions",
	}, []string{"action"})

	GatewayCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_call_latency_seconds",
		Help:    "Latency of marketplace gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
