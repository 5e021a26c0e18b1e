// Package combat holds the core combat state: combatants, the encounter,
// action requests and the structured event log.
package combat

import (
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/economy"
)

// LifeState is a combatant's place in the alive/downed/dead machine.
// Only party-aligned combatants ever enter LifeDowned.
type LifeState string

const (
	LifeAlive  LifeState = "alive"
	LifeDowned LifeState = "downed"
	LifeDead   LifeState = "dead"
)

// Position is a grid coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo is grid (Chebyshev) distance, diagonal steps count as one
func (p Position) DistanceTo(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// HPResource tracks hit points and temporary HP
type HPResource struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Temporary int `json:"temporary"`
}

// Damage applies damage, temp HP absorbing first, current HP floored at zero
func (hp *HPResource) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}

	original := amount

	if hp.Temporary > 0 {
		if hp.Temporary >= amount {
			hp.Temporary -= amount
			return original
		}
		amount -= hp.Temporary
		hp.Temporary = 0
	}

	hp.Current -= amount
	if hp.Current < 0 {
		hp.Current = 0
	}

	return original
}

// Heal restores hit points up to max and returns the amount restored
func (hp *HPResource) Heal(amount int) int {
	if amount <= 0 || hp.Current >= hp.Max {
		return 0
	}

	old := hp.Current
	hp.Current += amount
	if hp.Current > hp.Max {
		hp.Current = hp.Max
	}
	return hp.Current - old
}

// AddTemporaryHP grants temp HP; grants don't stack, the higher wins
func (hp *HPResource) AddTemporaryHP(amount int) {
	if amount > hp.Temporary {
		hp.Temporary = amount
	}
}

// DeathSaves tracks the downed substate's recovery checks
type DeathSaves struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	Stable    bool `json:"stable"`
}

// ReactionMode is a combatant's standing reaction policy
type ReactionMode string

const (
	ReactionAlways ReactionMode = "always"
	ReactionNever  ReactionMode = "never"
)

// Combatant is a participant in combat
type Combatant struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Faction shared.Faction `json:"faction"`

	Abilities          map[shared.Attribute]int `json:"abilities"`
	SkillProficiencies []shared.Skill           `json:"skill_proficiencies,omitempty"`
	SaveProficiencies  []shared.Attribute       `json:"save_proficiencies,omitempty"`
	ProficiencyBonus   int                      `json:"proficiency_bonus"`

	HP    HPResource `json:"hp"`
	AC    int        `json:"ac"`
	Speed int        `json:"speed"`
	Reach int        `json:"reach"`

	Initiative         int `json:"initiative"`
	InitiativeBonus    int `json:"initiative_bonus"`
	InitiativeTiebreak int `json:"initiative_tiebreak"`

	Position  Position   `json:"position"`
	LifeState LifeState  `json:"life_state"`
	DeathSaves DeathSaves `json:"death_saves"`

	Budget           *economy.Budget `json:"budget"`
	AttacksPerAction int             `json:"attacks_per_action"`

	// Innate defensive traits; statuses contribute theirs separately
	Resistances     []shared.DamageType `json:"resistances,omitempty"`
	Immunities      []shared.DamageType `json:"immunities,omitempty"`
	Vulnerabilities []shared.DamageType `json:"vulnerabilities,omitempty"`

	// Reactions this combatant can take, by reaction definition id
	Reactions    []string     `json:"reactions,omitempty"`
	ReactionMode ReactionMode `json:"reaction_mode,omitempty"`

	// DefaultAttackActionID is the weapon action reactions fall back to
	DefaultAttackActionID string `json:"default_attack_action_id,omitempty"`

	// ConcentrationID references the active concentration contract, if any
	ConcentrationID string `json:"concentration_id,omitempty"`

	// SummonedBy links a summoned combatant to its caster
	SummonedBy string `json:"summoned_by,omitempty"`
}

// AbilityModifier returns the modifier for one of the six abilities
func (c *Combatant) AbilityModifier(attr shared.Attribute) int {
	return shared.ScoreModifier(c.Abilities[attr])
}

// SkillBonus is ability modifier plus proficiency when proficient
func (c *Combatant) SkillBonus(skill shared.Skill) int {
	bonus := c.AbilityModifier(shared.AbilityForSkill(skill))
	for _, s := range c.SkillProficiencies {
		if s == skill {
			bonus += c.ProficiencyBonus
			break
		}
	}
	return bonus
}

// BestSkillBonus picks the highest bonus among candidate skills. A contest
// defender resisting a shove uses the better of Athletics and Acrobatics.
// With no candidates defined the fallback policy is ability-modifier-only
// off the first skill's ability.
func (c *Combatant) BestSkillBonus(skills []shared.Skill) int {
	if len(skills) == 0 {
		return 0
	}
	best := c.SkillBonus(skills[0])
	for _, s := range skills[1:] {
		if b := c.SkillBonus(s); b > best {
			best = b
		}
	}
	return best
}

// SaveBonus is ability modifier plus proficiency when save-proficient
func (c *Combatant) SaveBonus(attr shared.Attribute) int {
	bonus := c.AbilityModifier(attr)
	for _, a := range c.SaveProficiencies {
		if a == attr {
			bonus += c.ProficiencyBonus
			break
		}
	}
	return bonus
}

// IsAlive reports whether the combatant is neither downed nor dead
func (c *Combatant) IsAlive() bool {
	return c.LifeState == LifeAlive
}

// IsConscious reports whether the combatant can take turns and reactions
func (c *Combatant) IsConscious() bool {
	return c.LifeState == LifeAlive
}

// InnateDefenses lists the combatant's baked-in damage flags
func (c *Combatant) InnateDefenses() ([]shared.DamageType, []shared.DamageType, []shared.DamageType) {
	return c.Resistances, c.Immunities, c.Vulnerabilities
}
