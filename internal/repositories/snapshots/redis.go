package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/skirmishlab/skirmish/internal/errors"
)

const (
	// Key patterns
	snapshotKeyPrefix     = "snapshot:"
	encounterSnapshotsKey = "encounter:%s:snapshots"

	// TTL for snapshots (7 days)
	snapshotTTL = 7 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client      redis.UniversalClient
	SnapshotTTL time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client      redis.UniversalClient
	snapshotTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed snapshot repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.SnapshotTTL
	if ttl == 0 {
		ttl = snapshotTTL
	}

	return &redisRepository{
		client:      cfg.Client,
		snapshotTTL: ttl,
	}
}

func (r *redisRepository) Save(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return errors.InvalidArgument("snapshot cannot be nil")
	}
	if snapshot.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, snapshotKeyPrefix+snapshot.ID, data, r.snapshotTTL)
	pipe.SAdd(ctx, fmt.Sprintf(encounterSnapshotsKey, snapshot.EncounterID), snapshot.ID)
	pipe.Expire(ctx, fmt.Sprintf(encounterSnapshotsKey, snapshot.EncounterID), r.snapshotTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to store snapshot")
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, id string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFoundf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get snapshot")
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize snapshot")
	}
	return &snapshot, nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	snapshot, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, snapshotKeyPrefix+id)
	pipe.SRem(ctx, fmt.Sprintf(encounterSnapshotsKey, snapshot.EncounterID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to delete snapshot")
	}
	return nil
}

func (r *redisRepository) ListByEncounter(ctx context.Context, encounterID string) ([]*Snapshot, error) {
	ids, err := r.client.SMembers(ctx, fmt.Sprintf(encounterSnapshotsKey, encounterID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list encounter snapshots")
	}

	snapshots := make([]*Snapshot, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			snapshot, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			snapshots[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
