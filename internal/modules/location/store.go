// README: Geocode cache backed by Redis.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"campd/internal/types"
)

const geocodeKeyPrefix = "geocode:"

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: redis, ttl: ttl}
}

// GetGeocode returns the cached point for a query and whether it was present.
func (s *Store) GetGeocode(ctx context.Context, query string) (types.Point, bool, error) {
	val, err := s.redis.Get(ctx, geocodeKey(query)).Result()
	if errors.Is(err, redis.Nil) {
		return types.Point{}, false, nil
	}
	if err != nil {
		return types.Point{}, false, err
	}
	var p types.Point
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return types.Point{}, false, err
	}
	return p, true, nil
}

func (s *Store) SetGeocode(ctx context.Context, query string, p types.Point) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, geocodeKey(query), b, s.ttl).Err()
}

func geocodeKey(query string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
