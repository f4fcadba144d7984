package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"negotiation-service/internal/util"
)

// Client talks to the marketplace API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a marketplace API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

type currentUserPayload struct {
	ID            string   `json:"id"`
	EmailVerified bool     `json:"emailVerified"`
	Scopes        []string `json:"scopes"`
}

type listingPayload struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	AuthorID string `json:"authorId"`
	Price    struct {
		Amount int64 `json:"amount"`
	} `json:"price"`
}

type privateFieldPayload struct {
	Value []string `json:"value"`
}

// CurrentActor resolves the session token attached to ctx.
func (c *Client) CurrentActor(ctx context.Context) (*Actor, error) {
	var payload currentUserPayload
	if err := c.do(ctx, http.MethodGet, "/current_user", nil, &payload); err != nil {
		return nil, err
	}
	return &Actor{
		ID:            payload.ID,
		EmailVerified: payload.EmailVerified,
		Scopes:        payload.Scopes,
	}, nil
}

// Listing fetches and normalizes a listing.
func (c *Client) Listing(ctx context.Context, listingID string) (*Listing, error) {
	var payload listingPayload
	path := "/listings/" + url.PathEscape(listingID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	if payload.AuthorID == "" {
		c.logger.Error("Listing resolved without an author id", zap.String("listing_id", listingID))
		return nil, ErrOwnerNotFound
	}
	return &Listing{
		ID:       payload.ID,
		Title:    payload.Title,
		SellerID: payload.AuthorID,
		Price:    payload.Price.Amount,
	}, nil
}

// LikedListings reads the likedListings private field off a profile.
func (c *Client) LikedListings(ctx context.Context, userID string) ([]string, error) {
	var payload privateFieldPayload
	path := "/users/" + url.PathEscape(userID) + "/private/likedListings"
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Value, nil
}

// SaveLikedListings overwrites the likedListings private field.
func (c *Client) SaveLikedListings(ctx context.Context, userID string, listingIDs []string) error {
	path := "/users/" + url.PathEscape(userID) + "/private/likedListings"
	return c.do(ctx, http.MethodPut, path, privateFieldPayload{Value: listingIDs}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal gateway request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		if method == http.MethodGet && path == "/current_user" {
			return ErrUnauthenticated
		}
		if len(path) > len("/users/") && path[:len("/users/")] == "/users/" {
			return ErrUserNotFound
		}
		return ErrListingNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("gateway returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
