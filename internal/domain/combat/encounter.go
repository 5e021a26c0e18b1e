package combat

import (
	"sort"

	"github.com/skirmishlab/skirmish/internal/domain/shared"
)

// EncounterStatus represents the current state of an encounter
type EncounterStatus string

const (
	EncounterStatusSetup     EncounterStatus = "setup"
	EncounterStatusActive    EncounterStatus = "active"
	EncounterStatusCompleted EncounterStatus = "completed"
)

// Encounter is one combat: the roster, the rolled turn order and the
// round/turn cursor. All mutation goes through the pipeline.
type Encounter struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Status     EncounterStatus       `json:"status"`
	Round      int                   `json:"round"`
	Turn       int                   `json:"turn"`
	Combatants map[string]*Combatant `json:"combatants"`
	TurnOrder  []string              `json:"turn_order"`
}

// NewEncounter creates an encounter in setup state
func NewEncounter(id, name string) *Encounter {
	return &Encounter{
		ID:         id,
		Name:       name,
		Status:     EncounterStatusSetup,
		Combatants: make(map[string]*Combatant),
	}
}

// AddCombatant adds a combatant to the roster
func (e *Encounter) AddCombatant(c *Combatant) {
	e.Combatants[c.ID] = c
}

// Combatant looks up a roster member by id
func (e *Encounter) Combatant(id string) (*Combatant, bool) {
	c, ok := e.Combatants[id]
	return c, ok
}

// SortTurnOrder orders the roster by initiative, highest first, breaking
// ties by tiebreak value then by id so the order never depends on map
// iteration.
func (e *Encounter) SortTurnOrder() {
	ids := make([]string, 0, len(e.Combatants))
	for id := range e.Combatants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := e.Combatants[ids[i]], e.Combatants[ids[j]]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		if a.InitiativeTiebreak != b.InitiativeTiebreak {
			return a.InitiativeTiebreak > b.InitiativeTiebreak
		}
		return a.ID < b.ID
	})
	e.TurnOrder = ids
}

// CurrentCombatant returns the combatant whose turn it is
func (e *Encounter) CurrentCombatant() *Combatant {
	if e.Turn >= 0 && e.Turn < len(e.TurnOrder) {
		return e.Combatants[e.TurnOrder[e.Turn]]
	}
	return nil
}

// CombatantsInOrder returns the roster in turn order. Combatants not yet in
// the turn order (mid-combat summons before re-sort) follow sorted by id.
func (e *Encounter) CombatantsInOrder() []*Combatant {
	seen := make(map[string]bool, len(e.TurnOrder))
	out := make([]*Combatant, 0, len(e.Combatants))
	for _, id := range e.TurnOrder {
		if c, ok := e.Combatants[id]; ok {
			out = append(out, c)
			seen[id] = true
		}
	}

	var rest []string
	for id := range e.Combatants {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, e.Combatants[id])
	}
	return out
}

// CheckCombatEnd reports whether at most one faction still has combatants
// able to fight, and which faction that is
func (e *Encounter) CheckCombatEnd() (bool, shared.Faction) {
	standing := make(map[shared.Faction]bool)
	for _, c := range e.Combatants {
		if c.LifeState != LifeDead {
			standing[c.Faction] = true
		}
	}

	hostileCount := 0
	var last shared.Faction
	for f := range standing {
		if f != shared.FactionNeutral {
			hostileCount++
			last = f
		}
	}
	if hostileCount <= 1 {
		return true, last
	}
	return false, ""
}
