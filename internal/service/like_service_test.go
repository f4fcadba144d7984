package service

import (
	"context"
	"testing"

	"negotiation-service/internal/gateway"
	"negotiation-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLikeFixture() (*LikeService, *fakeGateway) {
	gw := newFakeGateway()
	gw.actor = &gateway.Actor{ID: "user-1", EmailVerified: true}
	gw.listings["listing-1"] = &gateway.Listing{ID: "listing-1", Title: "Vintage lamp", SellerID: "seller-1", Price: 200}
	gw.listings["listing-2"] = &gateway.Listing{ID: "listing-2", Title: "Oak table", SellerID: "seller-2", Price: 500}
	svc := NewLikeService(store.NewLikeStore(), gw, nil)
	return svc, gw
}

func TestLike(t *testing.T) {
	svc, gw := newLikeFixture()

	resp, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.IsLiked)
	assert.False(t, resp.WasAlreadyLiked)
	assert.Equal(t, 1, resp.LikeCount)
	assert.Equal(t, []string{"listing-1"}, gw.saved["user-1"])
}

func TestLikeIdempotent(t *testing.T) {
	svc, gw := newLikeFixture()

	_, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)
	gw.saved = map[string][]string{}

	resp, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)
	assert.True(t, resp.WasAlreadyLiked)
	assert.True(t, resp.IsLiked)
	assert.Equal(t, 1, resp.LikeCount)
	// Profile write skipped on the no-op.
	assert.Empty(t, gw.saved)
}

func TestUnlike(t *testing.T) {
	svc, gw := newLikeFixture()

	_, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)

	resp, err := svc.Like(context.Background(), "listing-1", "unlike")
	require.NoError(t, err)
	assert.False(t, resp.IsLiked)
	assert.False(t, resp.WasNotLiked)
	assert.Equal(t, 0, resp.LikeCount)
	assert.Empty(t, gw.liked["user-1"])
}

func TestUnlikeWithoutLike(t *testing.T) {
	svc, _ := newLikeFixture()

	resp, err := svc.Like(context.Background(), "listing-1", "unlike")
	require.NoError(t, err)
	assert.True(t, resp.WasNotLiked)
	assert.Equal(t, 0, resp.LikeCount)
}

func TestLikeInvalidAction(t *testing.T) {
	svc, _ := newLikeFixture()

	_, err := svc.Like(context.Background(), "listing-1", "star")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInvalidInput, svcErr.Reason)
}

func TestLikeUnauthenticated(t *testing.T) {
	svc, gw := newLikeFixture()
	gw.actor = nil

	_, err := svc.Like(context.Background(), "listing-1", "like")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnauthenticated, svcErr.Reason)
}

func TestCheckLikedCombinesReadModels(t *testing.T) {
	svc, gw := newLikeFixture()

	// A like recorded only on the marketplace profile still reads as
	// liked, with the set-backed count unaffected.
	gw.liked["user-1"] = []string{"listing-2"}
	_, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)

	statuses, err := svc.CheckLiked(context.Background(), []string{"listing-1", "listing-2", "listing-9"})
	require.NoError(t, err)
	assert.True(t, statuses["listing-1"].IsLiked)
	assert.Equal(t, 1, statuses["listing-1"].LikeCount)
	assert.True(t, statuses["listing-2"].IsLiked)
	assert.Equal(t, 0, statuses["listing-2"].LikeCount)
	assert.False(t, statuses["listing-9"].IsLiked)
}

func TestCounts(t *testing.T) {
	svc, _ := newLikeFixture()

	_, err := svc.Like(context.Background(), "listing-1", "like")
	require.NoError(t, err)

	counts := svc.Counts(context.Background(), []string{"listing-1", "listing-9"})
	assert.Equal(t, map[string]int{"listing-1": 1, "listing-9": 0}, counts)
}

func TestLikedListingsForSkipsUnresolvable(t *testing.T) {
	svc, gw := newLikeFixture()
	gw.liked["user-1"] = []string{"listing-1", "listing-gone", "listing-2"}

	resp, err := svc.LikedListingsFor(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.UserID)
	require.Len(t, resp.LikedListings, 2)
	assert.Equal(t, "Vintage lamp", resp.LikedListings[0].Title)
	assert.Equal(t, "Oak table", resp.LikedListings[1].Title)
	assert.Equal(t, 2, resp.TotalCount)
}

func TestLikedListingsForUnknownUser(t *testing.T) {
	svc, gw := newLikeFixture()
	gw.likedErr = gateway.ErrUserNotFound

	_, err := svc.LikedListingsFor(context.Background(), "user-missing")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotFound, svcErr.Reason)
}
