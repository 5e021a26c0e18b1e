// Package snapshots persists mid-combat engine state. A snapshot carries
// everything needed to resume an encounter exactly: the encounter, active
// status instances and contracts, the RNG cursor and the id sequence
// cursors. Resuming and continuing produces the same events a run that
// never paused would have produced.
package snapshots

import (
	"context"
)

// Repository defines the interface for snapshot storage
type Repository interface {
	// Save stores a snapshot, overwriting any previous one with the same ID
	Save(ctx context.Context, snapshot *Snapshot) error

	// Get retrieves a snapshot by ID
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Delete removes a snapshot
	Delete(ctx context.Context, id string) error

	// ListByEncounter retrieves all snapshots taken of one encounter
	ListByEncounter(ctx context.Context, encounterID string) ([]*Snapshot, error)
}
