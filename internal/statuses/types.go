// Package statuses tracks active timed effects and the concentration
// contract: one sustained effect per caster, broken by qualifying events,
// torn down atomically with everything it links.
package statuses

import (
	"github.com/skirmishlab/skirmish/internal/content"
)

// Instance is an active status on one combatant
type Instance struct {
	ID           string `json:"id"`
	DefinitionID string `json:"definition_id"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	// ContractID links the instance to a concentration contract, if any
	ContractID string `json:"contract_id,omitempty"`

	DurationKind content.DurationKind `json:"duration_kind"`
	Remaining    int                  `json:"remaining"`
	Stacks       int                  `json:"stacks"`
}

// Contract is a caster's single concentration lock: the sustained action
// and the full set of effect instances and summons it holds up, so breaking
// it unwinds exactly those and nothing else.
type Contract struct {
	ID       string `json:"id"`
	CasterID string `json:"caster_id"`
	ActionID string `json:"action_id"`

	LinkedInstances []string `json:"linked_instances,omitempty"`
	LinkedSummons   []string `json:"linked_summons,omitempty"`
}

// Tick is a pending turn-start effect from an active status. The manager
// reports ticks; the pipeline rolls and applies them so all dice stay in
// one stream.
type Tick struct {
	Instance *Instance
	Status   *content.StatusDefinition
}
