package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisIndex stores one set per term plus one set per document listing its
// terms, so updates can remove stale postings.
type RedisIndex struct {
	client *redis.Client
	prefix string
}

// NewRedisIndex wires an index on top of an existing client.
func NewRedisIndex(client *redis.Client, prefix string) *RedisIndex {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "docchooser"
	}
	return &RedisIndex{client: client, prefix: prefix}
}

func (r *RedisIndex) termKey(term string) string {
	return r.prefix + ":search:term:" + term
}

func (r *RedisIndex) docKey(id string) string {
	return r.prefix + ":search:doc:" + id
}

// InsertOrUpdate replaces the postings for rec.ID in a single MULTI/EXEC.
func (r *RedisIndex) InsertOrUpdate(ctx context.Context, rec Record) error {
	docKey := r.docKey(rec.ID)
	previous, err := r.client.SMembers(ctx, docKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers %s: %w", docKey, err)
	}
	terms := Terms(rec)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, term := range previous {
			pipe.SRem(ctx, r.termKey(term), rec.ID)
		}
		pipe.Del(ctx, docKey)
		if len(terms) == 0 {
			return nil
		}
		members := make([]interface{}, 0, len(terms))
		for _, term := range terms {
			pipe.SAdd(ctx, r.termKey(term), rec.ID)
			members = append(members, term)
		}
		pipe.SAdd(ctx, docKey, members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis index id=%s: %w", rec.ID, err)
	}
	return nil
}

// Search intersects the term sets of query.
func (r *RedisIndex) Search(ctx context.Context, query string) ([]string, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}
	keys := make([]string, 0, len(terms))
	for _, term := range terms {
		keys = append(keys, r.termKey(term))
	}
	ids, err := r.client.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis sinter: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Ping reports whether the backing Redis is reachable.
func (r *RedisIndex) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ Indexer = (*RedisIndex)(nil)
