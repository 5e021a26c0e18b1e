package snapshots

import (
	"github.com/skirmishlab/skirmish/internal/dice"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/statuses"
	"github.com/skirmishlab/skirmish/internal/uuid"
)

// Snapshot is a complete, serializable picture of a running encounter
type Snapshot struct {
	ID          string `json:"id"`
	EncounterID string `json:"encounter_id"`

	Encounter *combat.Encounter    `json:"encounter"`
	Instances []*statuses.Instance `json:"instances,omitempty"`
	Contracts []*statuses.Contract `json:"contracts,omitempty"`

	// RNGSeed and RNGDraws position the committed roll stream; a resumed
	// roller replays and discards exactly RNGDraws values
	RNGSeed  int64  `json:"rng_seed"`
	RNGDraws uint64 `json:"rng_draws"`

	// Sequences are the id generator cursors, keyed by prefix
	Sequences map[string]int `json:"sequences,omitempty"`

	// Log is the event history up to the capture point
	Log []combat.Event `json:"log,omitempty"`
}

// Capture assembles a snapshot from live engine state. The caller owns the
// sequence generators it registered with the status manager and pipeline.
func Capture(id string, encounter *combat.Encounter, manager *statuses.Manager, roller *dice.SeededRoller, log []combat.Event, sequences map[string]*uuid.SequenceGenerator) *Snapshot {
	snapshot := &Snapshot{
		ID:          id,
		EncounterID: encounter.ID,
		Encounter:   encounter,
		Instances:   manager.Instances(),
		Contracts:   manager.Contracts(),
		RNGSeed:     roller.Seed(),
		RNGDraws:    roller.Draws(),
		Log:         log,
	}
	if len(sequences) > 0 {
		snapshot.Sequences = make(map[string]int, len(sequences))
		for prefix, gen := range sequences {
			snapshot.Sequences[prefix] = gen.Cursor()
		}
	}
	return snapshot
}

// Restore reapplies a snapshot's state to the status manager and sequence
// generators, and returns a roller resumed at the saved cursor. The caller
// rebuilds the pipeline around the returned roller and the snapshot's
// encounter.
func (s *Snapshot) Restore(manager *statuses.Manager, sequences map[string]*uuid.SequenceGenerator) *dice.SeededRoller {
	manager.RestoreState(s.Instances, s.Contracts)
	for prefix, gen := range sequences {
		if cursor, ok := s.Sequences[prefix]; ok {
			gen.Restore(cursor)
		}
	}
	return dice.NewSeededRollerAt(s.RNGSeed, s.RNGDraws)
}
