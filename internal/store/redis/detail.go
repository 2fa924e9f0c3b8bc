package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shelfd/shelf/internal/domain"
)

// SaveDetail stores a fully-loaded bookmark in Redis
func (s *Store) SaveDetail(ctx context.Context, b domain.Bookmark) error {
	if domain.IsProvisionalID(b.ID) {
		return fmt.Errorf("refusing to persist provisional bookmark %s", b.ID)
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	key := DetailKey(b.ID)

	if err := s.client.Set(ctx, key, data, DefaultDetailTTL).Err(); err != nil {
		return fmt.Errorf("failed to save detail: %w", err)
	}

	if err := s.client.SAdd(ctx, AllDetailsKey(), b.ID).Err(); err != nil {
		return fmt.Errorf("failed to add detail to set: %w", err)
	}

	return nil
}

// GetDetail retrieves a cached bookmark detail by ID. The second return
// is false when the detail is absent or expired.
func (s *Store) GetDetail(ctx context.Context, id string) (domain.Bookmark, bool, error) {
	data, err := s.client.Get(ctx, DetailKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, false, nil
		}
		return domain.Bookmark{}, false, fmt.Errorf("failed to get detail: %w", err)
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return domain.Bookmark{}, false, fmt.Errorf("failed to unmarshal detail: %w", err)
	}

	return b, true, nil
}

// HasDetail reports whether a detail is cached without fetching its body
func (s *Store) HasDetail(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, DetailKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check detail: %w", err)
	}
	return n > 0, nil
}

// DeleteDetail removes a cached detail
func (s *Store) DeleteDetail(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, DetailKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete detail: %w", err)
	}

	if err := s.client.SRem(ctx, AllDetailsKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove detail from set: %w", err)
	}

	return nil
}

// AllDetailIDs returns the IDs of every cached detail
func (s *Store) AllDetailIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, AllDetailsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get detail IDs: %w", err)
	}
	return ids, nil
}

// SaveDetailsMany stores multiple bookmark details (bulk operation)
func (s *Store) SaveDetailsMany(ctx context.Context, bookmarks []domain.Bookmark) error {
	pipe := s.client.Pipeline()

	for _, b := range bookmarks {
		if domain.IsProvisionalID(b.ID) {
			continue
		}

		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark %s: %w", b.ID, err)
		}

		pipe.Set(ctx, DetailKey(b.ID), data, DefaultDetailTTL)
		pipe.SAdd(ctx, AllDetailsKey(), b.ID)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save details: %w", err)
	}

	return nil
}
