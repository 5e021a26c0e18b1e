// Package scenario loads encounter setups: the roster, optional extra
// content definitions and a scripted sequence of requests. Scenarios are
// plain JSON so the same file replays identically under the same seed.
package scenario

import (
	"encoding/json"
	"os"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/economy"
	"github.com/skirmishlab/skirmish/internal/errors"
)

// CombatantSpec declares one roster entry
type CombatantSpec struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Faction shared.Faction `json:"faction"`

	Abilities          map[shared.Attribute]int `json:"abilities,omitempty"`
	SkillProficiencies []shared.Skill           `json:"skill_proficiencies,omitempty"`
	SaveProficiencies  []shared.Attribute       `json:"save_proficiencies,omitempty"`
	ProficiencyBonus   int                      `json:"proficiency_bonus"`

	MaxHP            int            `json:"max_hp"`
	AC               int            `json:"ac"`
	Speed            int            `json:"speed"`
	Reach            int            `json:"reach,omitempty"`
	AttacksPerAction int            `json:"attacks_per_action,omitempty"`
	Position         combat.Position `json:"position"`

	Resistances     []shared.DamageType `json:"resistances,omitempty"`
	Immunities      []shared.DamageType `json:"immunities,omitempty"`
	Vulnerabilities []shared.DamageType `json:"vulnerabilities,omitempty"`

	Pools     map[string]int `json:"pools,omitempty"`
	Reactions []string       `json:"reactions,omitempty"`
}

// StepKind names what one scripted step does
type StepKind string

const (
	StepAction  StepKind = "action"
	StepMove    StepKind = "move"
	StepEndTurn StepKind = "end_turn"
)

// Step is one scripted instruction
type Step struct {
	Kind    StepKind              `json:"kind"`
	Request *combat.ActionRequest `json:"request,omitempty"`
	ActorID string                `json:"actor_id,omitempty"`
	To      *combat.Position      `json:"to,omitempty"`
}

// Scenario is a loadable encounter setup plus an optional script
type Scenario struct {
	Name       string          `json:"name"`
	Combatants []CombatantSpec `json:"combatants"`

	// Extra content on top of the builtin set
	Actions   []*content.ActionDefinition   `json:"actions,omitempty"`
	Statuses  []*content.StatusDefinition   `json:"statuses,omitempty"`
	Reactions []*content.ReactionDefinition `json:"reactions,omitempty"`

	Script []Step `json:"script,omitempty"`
}

// Load reads a scenario from a JSON file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read scenario %s", path)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse scenario")
	}
	if len(s.Combatants) == 0 {
		return nil, errors.Validation("scenario has no combatants")
	}
	return &s, nil
}

// Registry builds the validated content registry for this scenario: the
// builtin set plus the scenario's own definitions
func (s *Scenario) Registry() (*content.Registry, error) {
	registry := content.NewRegistry()
	for _, def := range builtinStatuses() {
		if err := registry.AddStatus(def); err != nil {
			return nil, err
		}
	}
	for _, def := range builtinActions() {
		if err := registry.AddAction(def); err != nil {
			return nil, err
		}
	}
	for _, def := range builtinReactions() {
		if err := registry.AddReaction(def); err != nil {
			return nil, err
		}
	}
	for _, def := range s.Statuses {
		if err := registry.AddStatus(def); err != nil {
			return nil, err
		}
	}
	for _, def := range s.Actions {
		if err := registry.AddAction(def); err != nil {
			return nil, err
		}
	}
	for _, def := range s.Reactions {
		if err := registry.AddReaction(def); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

// Encounter materializes the roster into a fresh encounter
func (s *Scenario) Encounter(id string) *combat.Encounter {
	enc := combat.NewEncounter(id, s.Name)
	for _, spec := range s.Combatants {
		enc.AddCombatant(spec.build())
	}
	return enc
}

func (spec CombatantSpec) build() *combat.Combatant {
	abilities := make(map[shared.Attribute]int, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		abilities[attr] = 10
	}
	for attr, score := range spec.Abilities {
		abilities[attr] = score
	}

	reach := spec.Reach
	if reach == 0 {
		reach = 1
	}
	attacks := spec.AttacksPerAction
	if attacks == 0 {
		attacks = 1
	}

	budget := economy.NewBudget(spec.Speed, attacks)
	for name, max := range spec.Pools {
		budget.AddPool(name, max)
	}

	c := &combat.Combatant{
		ID:                 spec.ID,
		Name:               spec.Name,
		Faction:            spec.Faction,
		Abilities:          abilities,
		SkillProficiencies: spec.SkillProficiencies,
		SaveProficiencies:  spec.SaveProficiencies,
		ProficiencyBonus:   spec.ProficiencyBonus,
		HP:                 combat.HPResource{Current: spec.MaxHP, Max: spec.MaxHP},
		AC:                 spec.AC,
		Speed:              spec.Speed,
		Reach:              reach,
		Position:           spec.Position,
		LifeState:          combat.LifeAlive,
		Budget:             budget,
		AttacksPerAction:   attacks,
		Resistances:        spec.Resistances,
		Immunities:         spec.Immunities,
		Vulnerabilities:    spec.Vulnerabilities,
		Reactions:          spec.Reactions,
		ReactionMode:       combat.ReactionAlways,
	}
	c.InitiativeBonus = c.AbilityModifier(shared.AttributeDexterity)
	return c
}
