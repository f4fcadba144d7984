// Package gateway is the boundary to the marketplace proper: session
// identity, listing data and the profile-attached liked-listings field
// all live on the other side of it. The negotiation core only ever
// talks to the Gateway interface; the HTTP client in this package is
// the production implementation.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated means the request carried no resolvable session.
	ErrUnauthenticated = errors.New("no authenticated session")

	// ErrListingNotFound means the marketplace knows no such listing.
	ErrListingNotFound = errors.New("listing not found")

	// ErrOwnerNotFound means the listing resolved but no author id could
	// be normalized out of it.
	ErrOwnerNotFound = errors.New("listing owner not found")

	// ErrUserNotFound means the marketplace knows no such user.
	ErrUserNotFound = errors.New("user not found")
)

// Actor is the resolved identity behind a request.
type Actor struct {
	ID            string
	EmailVerified bool
	Scopes        []string
}

// HasScope does a case-sensitive exact match against the actor's scope
// set.
func (a *Actor) HasScope(scope string) bool {
	for _, s := range a.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Listing is the normalized listing view the core needs: one seller id,
// one price. The marketplace's several author representations are
// collapsed here, not in business logic.
type Listing struct {
	ID       string
	Title    string
	SellerID string
	Price    int64 // minor currency units
}

// Gateway resolves identity and listing data from the marketplace.
type Gateway interface {
	// CurrentActor resolves the session attached to ctx (see WithToken).
	CurrentActor(ctx context.Context) (*Actor, error)

	// Listing fetches a listing with its seller id normalized. Returns
	// ErrOwnerNotFound when no author relationship yields an id.
	Listing(ctx context.Context, listingID string) (*Listing, error)

	// LikedListings reads the user's profile-attached liked-listing ids.
	LikedListings(ctx context.Context, userID string) ([]string, error)

	// SaveLikedListings overwrites the user's profile-attached
	// liked-listing ids.
	SaveLikedListings(ctx context.Context, userID string, listingIDs []string) error
}

type tokenKey struct{}

// WithToken attaches the marketplace session token to the context. The
// HTTP layer calls this once per request; gateway calls pick it up.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the session token attached by WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}
