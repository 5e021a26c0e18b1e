// Package mocksnapshots provides a scriptable Repository for tests
package mocksnapshots

import (
	"context"
	"sync"

	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/repositories/snapshots"
)

// MockRepository implements snapshots.Repository for testing. It records
// calls and can be primed to fail.
type MockRepository struct {
	mu        sync.Mutex
	snapshots map[string]*snapshots.Snapshot

	SaveCalls   int
	GetCalls    int
	DeleteCalls int
	ListCalls   int

	// FailNext makes the next operation return an internal error
	FailNext bool
}

// NewMockRepository creates a new mock snapshot repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		snapshots: make(map[string]*snapshots.Snapshot),
	}
}

func (m *MockRepository) failIfPrimed() error {
	if m.FailNext {
		m.FailNext = false
		return errors.Internal("primed failure")
	}
	return nil
}

// Save implements Repository.Save
func (m *MockRepository) Save(_ context.Context, snapshot *snapshots.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if err := m.failIfPrimed(); err != nil {
		return err
	}
	if snapshot == nil || snapshot.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}
	m.snapshots[snapshot.ID] = snapshot
	return nil
}

// Get implements Repository.Get
func (m *MockRepository) Get(_ context.Context, id string) (*snapshots.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if err := m.failIfPrimed(); err != nil {
		return nil, err
	}
	snapshot, exists := m.snapshots[id]
	if !exists {
		return nil, errors.NotFoundf("snapshot not found: %s", id)
	}
	return snapshot, nil
}

// Delete implements Repository.Delete
func (m *MockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if err := m.failIfPrimed(); err != nil {
		return err
	}
	if _, exists := m.snapshots[id]; !exists {
		return errors.NotFoundf("snapshot not found: %s", id)
	}
	delete(m.snapshots, id)
	return nil
}

// ListByEncounter implements Repository.ListByEncounter
func (m *MockRepository) ListByEncounter(_ context.Context, encounterID string) ([]*snapshots.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if err := m.failIfPrimed(); err != nil {
		return nil, err
	}
	var out []*snapshots.Snapshot
	for _, snapshot := range m.snapshots {
		if snapshot.EncounterID == encounterID {
			out = append(out, snapshot)
		}
	}
	return out, nil
}
