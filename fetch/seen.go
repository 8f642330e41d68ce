package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"paperbot/types"
)

// SeenStore is an optional Redis-backed record of links already delivered by
// earlier runs. It only trims the batch across runs; in-batch deduplication
// never depends on it. Checking and marking are separate operations so links
// are only recorded once their articles were durably persisted: a run that
// fails before writing its artifact never suppresses records on the next
// one.
type SeenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeenStore connects to Redis and verifies connectivity.
func NewSeenStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SeenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &SeenStore{client: client, ttl: ttl}, nil
}

// Unseen returns only the articles whose links no earlier run delivered.
// The store is not modified. A Redis failure degrades to keeping the
// article: losing cross-run dedup is better than losing records.
func (s *SeenStore) Unseen(ctx context.Context, articles []*types.Article) []*types.Article {
	kept := make([]*types.Article, 0, len(articles))
	for _, article := range articles {
		n, err := s.client.Exists(ctx, seenKey(article.Link)).Result()
		if err != nil {
			slog.Warn("seen-store check failed", "link", article.Link, "error", err)
			kept = append(kept, article)
			continue
		}
		if n == 0 {
			kept = append(kept, article)
		}
	}
	return kept
}

// MarkSeen records the articles' links with the configured TTL. Callers
// invoke it after the batch was persisted. Failures are logged; the worst
// outcome is a repeat delivery on a later run.
func (s *SeenStore) MarkSeen(ctx context.Context, articles []*types.Article) {
	for _, article := range articles {
		if err := s.client.Set(ctx, seenKey(article.Link), 1, s.ttl).Err(); err != nil {
			slog.Warn("seen-store mark failed", "link", article.Link, "error", err)
		}
	}
}

// Close releases the Redis connection.
func (s *SeenStore) Close() error {
	return s.client.Close()
}

func seenKey(link string) string {
	sum := sha256.Sum256([]byte(link))
	return "paperbot:seen:" + hex.EncodeToString(sum[:])[:16]
}
