package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/addressbook/internal/domain"
	"github.com/utafrali/addressbook/pkg/database"
)

const (
	keyPrefix = "recent:"

	// maxUpdateAttempts bounds optimistic retries when another writer
	// changes the key between WATCH and EXEC.
	maxUpdateAttempts = 5
)

// ErrContention is returned when an update keeps losing the WATCH race.
var ErrContention = errors.New("recent searches: too much write contention")

// RecentSearchRepository implements repository.RecentSearchRepository using
// one JSON-encoded list per identity. Every write resets the key's TTL.
type RecentSearchRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecentSearchRepository creates a new Redis-backed recent-search store.
func NewRecentSearchRepository(client *redis.Client, ttl time.Duration) *RecentSearchRepository {
	return &RecentSearchRepository{
		client: client,
		ttl:    ttl,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Get retrieves the stored list. A missing key is an empty list.
func (r *RecentSearchRepository) Get(ctx context.Context, userID string) (list []domain.RecentSearchEntry, err error) {
	ctx, end := database.TraceRedis(ctx, "GetRecent", "GET")
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.RecentSearchEntry{}, nil
		}
		return nil, fmt.Errorf("redis get recent: %w", err)
	}

	return decode(data)
}

// Update applies fn under WATCH so concurrent updates for one user are
// applied one after another instead of overwriting each other.
func (r *RecentSearchRepository) Update(
	ctx context.Context,
	userID string,
	fn func([]domain.RecentSearchEntry) []domain.RecentSearchEntry,
) (result []domain.RecentSearchEntry, err error) {
	ctx, end := database.TraceRedis(ctx, "UpdateRecent", "WATCH GET MULTI SET EXEC")
	defer func() { end(err) }()

	k := key(userID)
	txf := func(tx *redis.Tx) error {
		current := []domain.RecentSearchEntry{}
		data, err := tx.Get(ctx, k).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get recent: %w", err)
		default:
			if current, err = decode(data); err != nil {
				return err
			}
		}

		next := fn(current)
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal recent: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, encoded, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err = r.client.Watch(ctx, txf, k)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("redis update recent: %w", err)
		}
	}

	return nil, ErrContention
}

// Delete removes the stored list.
func (r *RecentSearchRepository) Delete(ctx context.Context, userID string) (err error) {
	ctx, end := database.TraceRedis(ctx, "DeleteRecent", "DEL")
	defer func() { end(err) }()

	if err = r.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del recent: %w", err)
	}
	return nil
}

func decode(data []byte) ([]domain.RecentSearchEntry, error) {
	list := []domain.RecentSearchEntry{}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal recent: %w", err)
	}
	return list, nil
}
