// Package redisclient mirrors read-model projections into Redis for the
// sibling web processes that render listing cards and the auction page.
// The mirrors are best-effort: the in-process stores stay authoritative
// and nothing in this service reads the mirrors back on a decision path.
package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const bidFeedTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetLikeCount mirrors a listing's authoritative like count.
func (c *Client) SetLikeCount(ctx context.Context, listingID string, count int) error {
	return c.rdb.Set(ctx, fmt.Sprintf("likes:%s", listingID), count, 0).Err()
}

// GetLikeCount reads a mirrored like count. Missing keys read as zero.
func (c *Client) GetLikeCount(ctx context.Context, listingID string) (int, error) {
	count, err := c.rdb.Get(ctx, fmt.Sprintf("likes:%s", listingID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// SetBidFeed mirrors the anonymized public bid feed for the active
// auction. Short TTL keeps a stale feed from outliving the slot.
func (c *Client) SetBidFeed(ctx context.Context, feed interface{}) error {
	raw, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("failed to marshal bid feed: %w", err)
	}
	return c.rdb.Set(ctx, "auction:bid-feed", raw, bidFeedTTL).Err()
}

// ClearBidFeed drops the mirrored feed when the auction ends.
func (c *Client) ClearBidFeed(ctx context.Context) error {
	return c.rdb.Del(ctx, "auction:bid-feed").Err()
}
