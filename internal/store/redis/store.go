package redis

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultDetailTTL is the default TTL for cached bookmark details (24 hours)
const DefaultDetailTTL = 24 * time.Hour

// Store handles Redis persistence for layout preferences and prefetched
// bookmark details. It is the warm-start layer: what survives a daemon
// restart lives here.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
