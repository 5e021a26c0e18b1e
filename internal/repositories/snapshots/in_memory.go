package snapshots

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/skirmishlab/skirmish/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage. Entries
// are stored serialized so saved snapshots are isolated from later mutation
// of the live encounter.
type inMemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	byEnc     map[string][]string
}

// NewInMemoryRepository creates a new in-memory snapshot repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		snapshots: make(map[string][]byte),
		byEnc:     make(map[string][]string),
	}
}

func (r *inMemoryRepository) Save(_ context.Context, snapshot *Snapshot) error {
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

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[snapshot.ID]; !exists {
		r.byEnc[snapshot.EncounterID] = append(r.byEnc[snapshot.EncounterID], snapshot.ID)
	}
	r.snapshots[snapshot.ID] = data
	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, id string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.snapshots[id]
	if !exists {
		return nil, errors.NotFoundf("snapshot not found: %s", id)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to deserialize snapshot")
	}
	return &snapshot, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists := r.snapshots[id]
	if !exists {
		return errors.NotFoundf("snapshot not found: %s", id)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err == nil {
		ids := r.byEnc[snapshot.EncounterID]
		for i, sid := range ids {
			if sid == id {
				r.byEnc[snapshot.EncounterID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	delete(r.snapshots, id)
	return nil
}

func (r *inMemoryRepository) ListByEncounter(_ context.Context, encounterID string) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byEnc[encounterID]
	out := make([]*Snapshot, 0, len(ids))
	for _, id := range ids {
		var snapshot Snapshot
		if err := json.Unmarshal(r.snapshots[id], &snapshot); err != nil {
			return nil, errors.Wrap(err, "failed to deserialize snapshot")
		}
		out = append(out, &snapshot)
	}
	return out, nil
}
