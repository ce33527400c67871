package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

const redisIndexKey = "leads:index"

// The record write and the index append run as one script so a duplicate ID
// can never leave a dangling index entry.
var redisCreateScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 1 then
	redis.call('RPUSH', KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// RedisRepository stores each lead as a JSON value keyed by its ID, with a
// Redis list as the insertion-order index.
type RedisRepository struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisRepository builds a repo backed by the provided Redis client.
func NewRedisRepository(client *redis.Client, logger *logging.Logger) *RedisRepository {
	if client == nil {
		panic("leads: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisRepository{client: client, logger: logger}
}

func redisLeadKey(id string) string {
	return "lead:" + id
}

// Create stores the lead and atomically appends its ID to the index list.
func (r *RedisRepository) Create(ctx context.Context, lead *Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("leads: failed to marshal lead: %w", err)
	}

	created, err := redisCreateScript.Run(ctx, r.client,
		[]string{redisLeadKey(lead.ID), redisIndexKey},
		data, lead.ID,
	).Int()
	if err != nil {
		return fmt.Errorf("leads: failed to persist lead: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("leads: duplicate id %s", lead.ID)
	}
	return nil
}

// GetByID fetches a lead by ID.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	data, err := r.client.Get(ctx, redisLeadKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: failed to fetch lead: %w", err)
	}

	var lead Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return nil, fmt.Errorf("leads: failed to decode lead: %w", err)
	}
	return &lead, nil
}

// ListIDs returns the index list in insertion order.
func (r *RedisRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.LRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("leads: failed to fetch index: %w", err)
	}
	return ids, nil
}
