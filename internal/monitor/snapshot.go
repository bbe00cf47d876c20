package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotKeyPrefix namespaces all snapshot keys in the shared store.
const snapshotKeyPrefix = "monitor:snapshot:"

// Snapshot is the last known option set of one watched property. Options
// only accumulate; the monitor records additions and never forgets an
// option it has seen.
type Snapshot struct {
	ObjectType string    `json:"objectType"`
	Property   string    `json:"property"`
	Options    []string  `json:"options"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SnapshotStore persists property-option snapshots in Redis.
type SnapshotStore struct {
	rdb redis.Cmdable
}

// NewSnapshotStore creates a snapshot store backed by the given Redis client.
func NewSnapshotStore(rdb redis.Cmdable) *SnapshotStore {
	return &SnapshotStore{rdb: rdb}
}

func snapshotKey(objectType, property string) string {
	return snapshotKeyPrefix + objectType + ":" + property
}

// Get returns the stored snapshot, or nil when the property has never been
// observed.
func (s *SnapshotStore) Get(ctx context.Context, objectType, property string) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, snapshotKey(objectType, property)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s/%s: %w", objectType, property, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s/%s: %w", objectType, property, err)
	}
	return &snap, nil
}

// Put stores a snapshot, overwriting any previous one. Keys have no TTL;
// a snapshot is only replaced by a newer observation.
func (s *SnapshotStore) Put(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s/%s: %w", snap.ObjectType, snap.Property, err)
	}
	if err := s.rdb.Set(ctx, snapshotKey(snap.ObjectType, snap.Property), raw, 0).Err(); err != nil {
		return fmt.Errorf("write snapshot %s/%s: %w", snap.ObjectType, snap.Property, err)
	}
	return nil
}

// All returns every stored snapshot keyed by "<objectType>:<property>".
func (s *SnapshotStore) All(ctx context.Context) (map[string]Snapshot, error) {
	out := make(map[string]Snapshot)

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, snapshotKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan snapshots: %w", err)
		}
		for _, key := range keys {
			raw, err := s.rdb.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read snapshot key %s: %w", key, err)
			}
			var snap Snapshot
			if err := json.Unmarshal([]byte(raw), &snap); err != nil {
				return nil, fmt.Errorf("decode snapshot key %s: %w", key, err)
			}
			out[snap.ObjectType+":"+snap.Property] = snap
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}
