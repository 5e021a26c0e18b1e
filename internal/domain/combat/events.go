package combat

import (
	"github.com/skirmishlab/skirmish/internal/rules"
)

// EventType tags entries of the structured combat log
type EventType string

const (
	EventEncounterStarted EventType = "encounter_started"
	EventEncounterEnded   EventType = "encounter_ended"
	EventRoundStarted     EventType = "round_started"
	EventTurnStarted      EventType = "turn_started"
	EventTurnEnded        EventType = "turn_ended"
	EventInitiative       EventType = "initiative"

	EventActionStarted  EventType = "action_started"
	EventActionRejected EventType = "action_rejected"
	EventRoll           EventType = "roll"
	EventContest        EventType = "contest"
	EventDamage         EventType = "damage"
	EventHeal           EventType = "heal"
	EventTempHP         EventType = "temp_hp"
	EventForcedMove     EventType = "forced_move"
	EventMoved          EventType = "moved"
	EventResource       EventType = "resource"
	EventExtraAction    EventType = "extra_action"
	EventSummon         EventType = "summon"

	EventStatusApplied EventType = "status_applied"
	EventStatusRemoved EventType = "status_removed"
	EventStatusTick    EventType = "status_tick"

	EventConcentrationStarted EventType = "concentration_started"
	EventConcentrationCheck   EventType = "concentration_check"
	EventConcentrationBroken  EventType = "concentration_broken"

	EventReaction   EventType = "reaction"
	EventDowned     EventType = "downed"
	EventDied       EventType = "died"
	EventDeathSave  EventType = "death_save"
	EventStabilized EventType = "stabilized"
	EventRevived    EventType = "revived"
)

// Event is one entry of the ordered combat log. Everything a presentation
// layer needs is here; no random outcome ever has to be re-derived.
type Event struct {
	Type   EventType `json:"type"`
	Actor  string    `json:"actor,omitempty"`
	Target string    `json:"target,omitempty"`
	Action string    `json:"action,omitempty"`
	Status string    `json:"status,omitempty"`
	Amount int       `json:"amount,omitempty"`
	Round  int       `json:"round,omitempty"`

	Check   *rules.CheckResult   `json:"check,omitempty"`
	Contest *rules.ContestResult `json:"contest,omitempty"`
	Damage  *rules.DamagePacket  `json:"damage,omitempty"`

	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// TargetOutcome records the resolution check for one target of an action
type TargetOutcome struct {
	TargetID string               `json:"target_id"`
	Check    *rules.CheckResult   `json:"check,omitempty"`
	Contest  *rules.ContestResult `json:"contest,omitempty"`
	// Failed is the generic did-this-target-fail predicate: true when the
	// target lost the save, contest or attack defense
	Failed bool `json:"failed"`
}

// ExecutionResult is the ordered, auditable outcome of one action request
type ExecutionResult struct {
	Request      *ActionRequest  `json:"request"`
	Rejected     bool            `json:"rejected,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	Outcomes     []TargetOutcome `json:"outcomes,omitempty"`
	Events       []Event         `json:"events"`
}
