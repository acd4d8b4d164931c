// Package redis invalidates an edge cache storing responses in redis, keyed by path.
package redis

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/musecrm/museflow/pkg/cdn"
	xe "github.com/musecrm/museflow/pkg/errors"
)

// Client is a subset of redis commands.
//
// *redis.Client and *redis.ClusterClient implement this.
type Client interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Invalidator deletes cached keys matching path patterns.
type Invalidator struct {
	client Client

	// prefix of keys of cached responses. Patterns are appended to this.
	prefix string

	// hint of keys per SCAN.
	batch int64
}

var _ cdn.Invalidator = &Invalidator{}

func New(client Client, prefix string) *Invalidator {
	return &Invalidator{client: client, prefix: prefix, batch: 100}
}

// NewClient connects to redis.
func NewClient(address string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: address, Password: password, DB: db})
}

func (i *Invalidator) Invalidate(ctx context.Context, _ string, patterns []string) error {
	for _, pattern := range patterns {
		if err := i.purge(ctx, i.prefix+pattern); err != nil {
			return err
		}
	}
	return nil
}

func (i *Invalidator) purge(ctx context.Context, match string) error {
	var cursor uint64
	for {
		keys, next, err := i.client.Scan(ctx, cursor, match, i.batch).Result()
		if err != nil {
			return xe.Wrap(err)
		}
		if len(keys) != 0 {
			if err := i.client.Del(ctx, keys...).Err(); err != nil {
				return xe.Wrap(err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
