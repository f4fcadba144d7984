package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/models"
	"negotiation-service/internal/store"
	"negotiation-service/internal/util"
)

// LikeService keeps two read models in sync on purpose: the central
// like set (authoritative for counts) and the liked-listings list on
// each user's marketplace profile. Checks OR-combine the two; counts
// always come from the set.
type LikeService struct {
	likes  *store.LikeStore
	gw     gateway.Gateway
	mirror CountMirror
	logger *zap.Logger
}

// CountMirror receives best-effort like-count updates for external
// readers. May be nil.
type CountMirror interface {
	SetLikeCount(ctx context.Context, listingID string, count int) error
}

// NewLikeService creates a new like service
func NewLikeService(likes *store.LikeStore, gw gateway.Gateway, mirror CountMirror) *LikeService {
	return &LikeService{
		likes:  likes,
		gw:     gw,
		mirror: mirror,
		logger: util.GetLogger(),
	}
}

// LikeResponse reports the action outcome with the authoritative count.
type LikeResponse struct {
	Success         bool   `json:"success"`
	Action          string `json:"action"`
	ListingID       string `json:"listingId"`
	LikeCount       int    `json:"likeCount"`
	IsLiked         bool   `json:"isLiked"`
	WasAlreadyLiked bool   `json:"wasAlreadyLiked"`
	WasNotLiked     bool   `json:"wasNotLiked"`
}

// LikedListing is the listing detail row in the liked-listings view.
type LikedListing struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int64  `json:"price"`
}

// LikedListingsResponse lists a user's liked listings with details.
type LikedListingsResponse struct {
	Success       bool           `json:"success"`
	UserID        string         `json:"userId"`
	LikedListings []LikedListing `json:"likedListings"`
	TotalCount    int            `json:"totalCount"`
}

// Like applies a like or unlike for the current user. Both directions
// are idempotent: a repeat is a no-op success with the corresponding
// flag set, and the profile is not rewritten.
func (s *LikeService) Like(ctx context.Context, listingID, action string) (*LikeResponse, error) {
	ctx, span := util.StartSpan(ctx, "LikeService.Like")
	defer span.End()

	actor, err := s.gw.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			return nil, unauthenticated("Authentication required")
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}

	profileList, err := s.gw.LikedListings(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read liked listings: %w", err)
	}

	resp := &LikeResponse{Success: true, Action: action, ListingID: listingID}
	alreadyLiked := contains(profileList, listingID) || s.likes.Has(listingID, actor.ID)

	switch action {
	case "like":
		if alreadyLiked {
			resp.WasAlreadyLiked = true
			resp.IsLiked = true
		} else {
			s.likes.Add(listingID, actor.ID)
			if err := s.gw.SaveLikedListings(ctx, actor.ID, append(profileList, listingID)); err != nil {
				return nil, fmt.Errorf("failed to update liked listings: %w", err)
			}
			resp.IsLiked = true
			util.LikeActionsTotal.WithLabelValues("like").Inc()
		}
	case "unlike":
		if !alreadyLiked {
			resp.WasNotLiked = true
		} else {
			s.likes.Remove(listingID, actor.ID)
			if err := s.gw.SaveLikedListings(ctx, actor.ID, without(profileList, listingID)); err != nil {
				return nil, fmt.Errorf("failed to update liked listings: %w", err)
			}
			util.LikeActionsTotal.WithLabelValues("unlike").Inc()
		}
	default:
		return nil, invalidInput(`Invalid action. Must be "like" or "unlike"`)
	}

	resp.LikeCount = s.likes.Count(listingID)
	s.mirrorCount(listingID, resp.LikeCount)
	return resp, nil
}

// CheckLiked returns the per-listing like status map for the current
// user, OR-combining the profile list with the central set.
func (s *LikeService) CheckLiked(ctx context.Context, listingIDs []string) (map[string]models.LikeStatus, error) {
	ctx, span := util.StartSpan(ctx, "LikeService.CheckLiked")
	defer span.End()

	actor, err := s.gw.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			return nil, unauthenticated("Authentication required")
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}

	profileList, err := s.gw.LikedListings(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read liked listings: %w", err)
	}

	statuses := make(map[string]models.LikeStatus, len(listingIDs))
	for _, listingID := range listingIDs {
		statuses[listingID] = models.LikeStatus{
			IsLiked:   contains(profileList, listingID) || s.likes.Has(listingID, actor.ID),
			LikeCount: s.likes.Count(listingID),
		}
	}
	return statuses, nil
}

// Counts returns authoritative like counts for a batch of listings.
func (s *LikeService) Counts(ctx context.Context, listingIDs []string) map[string]int {
	_, span := util.StartSpan(ctx, "LikeService.Counts")
	defer span.End()

	return s.likes.Counts(listingIDs)
}

// LikedListingsFor resolves the listing details behind a user's
// profile-liked ids. Ids the marketplace can no longer resolve are
// skipped, not errors; totalCount counts resolved listings only.
func (s *LikeService) LikedListingsFor(ctx context.Context, userID string) (*LikedListingsResponse, error) {
	ctx, span := util.StartSpan(ctx, "LikeService.LikedListingsFor")
	defer span.End()

	likedIDs, err := s.gw.LikedListings(ctx, userID)
	if err != nil {
		if errors.Is(err, gateway.ErrUserNotFound) {
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("failed to read liked listings: %w", err)
	}

	listings := []LikedListing{}
	for _, listingID := range likedIDs {
		listing, err := s.gw.Listing(ctx, listingID)
		if err != nil {
			s.logger.Debug("Skipping unresolvable liked listing",
				zap.String("listing_id", listingID),
				zap.Error(err))
			continue
		}
		listings = append(listings, LikedListing{
			ID:    listing.ID,
			Title: listing.Title,
			Price: listing.Price,
		})
	}

	return &LikedListingsResponse{
		Success:       true,
		UserID:        userID,
		LikedListings: listings,
		TotalCount:    len(listings),
	}, nil
}

func (s *LikeService) mirrorCount(listingID string, count int) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mirror.SetLikeCount(ctx, listingID, count); err != nil {
			s.logger.Warn("Failed to mirror like count",
				zap.String("listing_id", listingID),
				zap.Error(err))
		}
	}()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
