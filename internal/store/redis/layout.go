package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shelfd/shelf/internal/prefs"
)

// SaveLayout persists the layout preference blob under its fixed key.
// No TTL: preferences live until overwritten.
func (s *Store) SaveLayout(ctx context.Context, l prefs.Layout) error {
	data, err := prefs.EncodeLayout(l)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := s.client.Set(ctx, KeyLayout, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save layout: %w", err)
	}
	return nil
}

// GetLayout retrieves the stored layout. A missing or unreadable blob
// resolves to the defaults; only a transport failure is an error.
func (s *Store) GetLayout(ctx context.Context) (prefs.Layout, error) {
	data, err := s.client.Get(ctx, KeyLayout).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return prefs.DefaultLayout(), nil
		}
		return prefs.DefaultLayout(), fmt.Errorf("failed to get layout: %w", err)
	}

	return prefs.DecodeLayout(data), nil
}
