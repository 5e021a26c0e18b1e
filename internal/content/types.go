// Package content holds the typed, load-time-validated definitions the
// engine executes: actions, statuses and reactions. Definitions are plain
// data; behavior lives in the pipeline's effect handlers.
package content

import (
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/rules"
)

// CostType names the economy resource an action consumes
type CostType string

const (
	CostAction      CostType = "action"
	CostBonusAction CostType = "bonus_action"
	CostReaction    CostType = "reaction"
	CostFree        CostType = "free"
)

// TargetKind says whether an action targets entities or a point
type TargetKind string

const (
	TargetEntities TargetKind = "entities"
	TargetPoint    TargetKind = "point"
)

// Targeting describes how an action's target set resolves
type Targeting struct {
	Kind TargetKind `json:"kind"`
	// MaxTargets bounds an entity target set; 0 means exactly one
	MaxTargets int `json:"max_targets,omitempty"`
	// Radius resolves a point target into every combatant within range
	Radius int `json:"radius,omitempty"`
	// SelfOrigin marks point abilities centered on the caster; resolution
	// adds the caster, not whoever stands at the destination
	SelfOrigin bool `json:"self_origin,omitempty"`
}

// ResolutionKind says how success against each target is decided
type ResolutionKind string

const (
	// ResolutionNone applies effects unconditionally (heals, buffs)
	ResolutionNone ResolutionKind = "none"
	// ResolutionAttack is an attack roll against the target's AC
	ResolutionAttack ResolutionKind = "attack"
	// ResolutionSave is a saving throw by the target against a DC
	ResolutionSave ResolutionKind = "save"
	// ResolutionContest is an opposed skill check, both sides roll
	ResolutionContest ResolutionKind = "contest"
)

// DCSpec computes a save DC: a fixed value, or 8 + ability + proficiency
type DCSpec struct {
	Fixed   int              `json:"fixed,omitempty"`
	Ability shared.Attribute `json:"ability,omitempty"`
}

// Resolution declares an action's success check
type Resolution struct {
	Kind ResolutionKind `json:"kind"`

	// Attack resolution
	AttackAbility shared.Attribute `json:"attack_ability,omitempty"`

	// Save resolution
	SaveAbility shared.Attribute `json:"save_ability,omitempty"`
	DC          DCSpec           `json:"dc,omitempty"`

	// Contest resolution: the attacker rolls AttackerSkill, the defender
	// rolls the best of DefenderSkills (a shove can be resisted with
	// Athletics or Acrobatics)
	AttackerSkill  shared.Skill    `json:"attacker_skill,omitempty"`
	DefenderSkills []shared.Skill  `json:"defender_skills,omitempty"`
	TiePolicy      rules.TiePolicy `json:"tie_policy,omitempty"`
}

// EffectKind is the closed set of effect payloads
type EffectKind string

const (
	EffectDamage       EffectKind = "damage"
	EffectHeal         EffectKind = "heal"
	EffectApplyStatus  EffectKind = "apply_status"
	EffectRemoveStatus EffectKind = "remove_status"
	EffectTempHP       EffectKind = "temp_hp"
	EffectForceMove    EffectKind = "force_move"
	EffectResource     EffectKind = "resource"
	EffectGrantAction  EffectKind = "grant_action"
	EffectSummon       EffectKind = "summon"
)

// EffectCondition gates an effect on the per-target outcome
type EffectCondition string

const (
	ConditionAlways    EffectCondition = "always"
	ConditionOnSuccess EffectCondition = "on_success"
	ConditionOnFailure EffectCondition = "on_failure"
)

// DamageEffect rolls and applies damage
type DamageEffect struct {
	Formulas []rules.DamageFormula `json:"formulas"`
	// HalfOnSave applies half damage when the target saves instead of none
	HalfOnSave bool `json:"half_on_save,omitempty"`
}

// HealEffect restores hit points
type HealEffect struct {
	Formula rules.DamageFormula `json:"formula"`
}

// ApplyStatusEffect puts a status instance on the target
type ApplyStatusEffect struct {
	StatusID string `json:"status_id"`
}

// RemoveStatusEffect strips a status, across every target that received it
// from the same source and contract
type RemoveStatusEffect struct {
	StatusID string `json:"status_id"`
}

// TempHPEffect grants temporary hit points (absorption layer)
type TempHPEffect struct {
	Amount int `json:"amount"`
}

// ForceMoveEffect pushes the target away from the actor
type ForceMoveEffect struct {
	Distance int `json:"distance"`
}

// ResourceEffect adjusts a named pool on the target
type ResourceEffect struct {
	Pool  string `json:"pool"`
	Delta int    `json:"delta"`
}

// GrantActionEffect gives the target an extra action charge
type GrantActionEffect struct{}

// SummonEffect spawns a combatant linked to the caster's concentration
type SummonEffect struct {
	Name  string `json:"name"`
	MaxHP int    `json:"max_hp"`
	AC    int    `json:"ac"`
	Speed int    `json:"speed"`
}

// EffectSpec is one effect in an action's declaration-ordered effect list.
// Exactly the payload matching Kind is set; the registry validates this at
// load time so execution never meets an unhandled shape.
type EffectSpec struct {
	Kind      EffectKind      `json:"kind"`
	Condition EffectCondition `json:"condition,omitempty"`

	Damage       *DamageEffect       `json:"damage,omitempty"`
	Heal         *HealEffect         `json:"heal,omitempty"`
	Status       *ApplyStatusEffect  `json:"status,omitempty"`
	RemoveStatus *RemoveStatusEffect `json:"remove_status,omitempty"`
	TempHP       *TempHPEffect       `json:"temp_hp,omitempty"`
	ForceMove    *ForceMoveEffect    `json:"force_move,omitempty"`
	Resource     *ResourceEffect     `json:"resource,omitempty"`
	GrantAction  *GrantActionEffect  `json:"grant_action,omitempty"`
	Summon       *SummonEffect       `json:"summon,omitempty"`
}

// Variant is an alternate effect list for an action (e.g. versatile grip)
type Variant struct {
	ID      string       `json:"id"`
	Effects []EffectSpec `json:"effects"`
}

// ActionDefinition is a fully-materialized action. Extends references are
// flattened away during registry validation.
type ActionDefinition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Extends string `json:"extends,omitempty"`

	Cost          CostType `json:"cost"`
	IsWeapon      bool     `json:"is_weapon,omitempty"`
	Concentration bool     `json:"concentration,omitempty"`
	// ResourceCosts are named pool costs on top of the economy cost
	ResourceCosts map[string]int `json:"resource_costs,omitempty"`

	Targeting  Targeting  `json:"targeting"`
	Resolution Resolution `json:"resolution"`

	Effects  []EffectSpec `json:"effects"`
	Variants []Variant    `json:"variants,omitempty"`
}

// DurationKind scopes how a status counts down
type DurationKind string

const (
	// DurationRounds decrements at round end
	DurationRounds DurationKind = "rounds"
	// DurationTurns decrements at the end of the target's turn
	DurationTurns DurationKind = "turns"
	// DurationUntilBroken persists until removed or its contract breaks
	DurationUntilBroken DurationKind = "until_broken"
)

// StackingPolicy decides what a re-application of a status does
type StackingPolicy string

const (
	// StackingRefresh resets the duration of the existing instance
	StackingRefresh StackingPolicy = "refresh"
	// StackingStack adds a stack up to MaxStacks
	StackingStack StackingPolicy = "stack"
	// StackingReject leaves the existing instance untouched
	StackingReject StackingPolicy = "reject"
)

// StatusDefinition declares a timed effect
type StatusDefinition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Extends string `json:"extends,omitempty"`

	DurationKind   DurationKind   `json:"duration_kind"`
	DurationAmount int            `json:"duration_amount,omitempty"`
	Stacking       StackingPolicy `json:"stacking"`
	MaxStacks      int            `json:"max_stacks,omitempty"`

	// Modifiers contributed to the carrier's rolls while active, repeated
	// per stack
	Modifiers []modifiers.Modifier `json:"modifiers,omitempty"`

	// BreaksOnDamage removes the status when the carrier takes damage
	// (hard-control statuses)
	BreaksOnDamage bool `json:"breaks_on_damage,omitempty"`
	// Incapacitates blocks actions and breaks the carrier's concentration
	Incapacitates bool `json:"incapacitates,omitempty"`
	// Fragile transitions trigger a concentration check on application.
	// Prone is not fragile; it never checks concentration by itself.
	Fragile bool `json:"fragile,omitempty"`

	// TickDamage is rolled at the carrier's turn start while active
	TickDamage *rules.DamageFormula `json:"tick_damage,omitempty"`
}

// TriggerWindow is a declared interrupt point during action resolution
type TriggerWindow string

const (
	WindowCastStarted      TriggerWindow = "cast_started"
	WindowPreDamage        TriggerWindow = "pre_damage"
	WindowPostDamageTaken  TriggerWindow = "post_damage_taken"
	WindowEnemyLeavesReach TriggerWindow = "enemy_leaves_reach"
)

// ReactionConditionKind is the closed set of reaction predicates
type ReactionConditionKind string

const (
	// ReactWhenever fires at every matching window
	ReactWhenever ReactionConditionKind = "whenever"
	// ReactSelfTargeted fires only when the reactor is the target
	ReactSelfTargeted ReactionConditionKind = "self_targeted"
	// ReactAllyTargeted fires when a same-faction combatant is the target
	ReactAllyTargeted ReactionConditionKind = "ally_targeted"
	// ReactEnemyActor fires when the triggering actor is hostile
	ReactEnemyActor ReactionConditionKind = "enemy_actor"
)

// ReactionDefinition wires a trigger window to the action a reactor casts
type ReactionDefinition struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Window   TriggerWindow         `json:"window"`
	Priority int                   `json:"priority"`
	Condition ReactionConditionKind `json:"condition"`
	ActionID string                `json:"action_id"`
}
