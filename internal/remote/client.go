// Package remote stores players and sessions as JSON documents in Redis.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

const defaultKeyPrefix = "meeple"

// Config holds remote store configuration.
type Config struct {
	URL       string
	KeyPrefix string
	Timeout   time.Duration
}

// Client wraps the Redis client with document helpers.
type Client struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
	logger  *log.Logger
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("redis url is empty")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	c := New(rdb, cfg.KeyPrefix, logger)
	c.timeout = cfg.Timeout
	if err := c.Ping(ctx); err != nil {
		if cerr := rdb.Close(); cerr != nil {
			// Best-effort close on failed connect.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.logger.Printf("connected to %s (db %d)", opts.Addr, opts.DB)
	return c, nil
}

// New wraps an existing Redis client.
func New(rdb *redis.Client, keyPrefix string, logger *log.Logger) *Client {
	if keyPrefix = strings.TrimSpace(keyPrefix); keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{rdb: rdb, prefix: keyPrefix, logger: logger}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(collection string) string {
	return fmt.Sprintf("%s:%s", c.prefix, collection)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
