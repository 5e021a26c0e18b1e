// Package modifiers collects the modifiers that apply to a single roll or
// damage packet and resolves them into one net effect.
package modifiers

import (
	"fmt"

	"github.com/skirmishlab/skirmish/internal/domain/shared"
)

// Kind is the closed set of modifier behaviors
type Kind string

const (
	// KindAdvantage grants advantage on the roll
	KindAdvantage Kind = "advantage"
	// KindDisadvantage imposes disadvantage on the roll
	KindDisadvantage Kind = "disadvantage"
	// KindFlat adds a flat bonus or penalty
	KindFlat Kind = "flat"
	// KindDice adds bonus dice (e.g. Bless d4) rolled with the check
	KindDice Kind = "dice"
	// KindCritThreshold lowers the natural roll needed to crit
	KindCritThreshold Kind = "crit_threshold"
	// KindResistance halves incoming damage of DamageType
	KindResistance Kind = "resistance"
	// KindImmunity zeroes incoming damage of DamageType
	KindImmunity Kind = "immunity"
	// KindVulnerability doubles incoming damage of DamageType
	KindVulnerability Kind = "vulnerability"
	// KindResistAll halves all incoming damage, applied once per packet
	KindResistAll Kind = "resist_all"
	// KindOutgoingPercent scales outgoing damage by Value percent (e.g. 50 for +50%)
	KindOutgoingPercent Kind = "outgoing_percent"
	// KindIncomingFlat adds Value to incoming damage after percentages (e.g. -3)
	KindIncomingFlat Kind = "incoming_flat"
)

// Target names the roll or packet a modifier applies to
type Target string

const (
	TargetAttackRoll  Target = "attack_roll"
	TargetSavingThrow Target = "saving_throw"
	TargetSkillCheck  Target = "skill_check"
	TargetDamage      Target = "damage"
	// TargetDefense modifies attack rolls made against the carrier
	TargetDefense Target = "defense"
	TargetAC      Target = "ac"
)

// Modifier is a single contribution to a roll context
type Modifier struct {
	Kind       Kind
	Target     Target
	Source     string
	Value      int
	DiceCount  int
	DiceSides  int
	DamageType shared.DamageType
	// Ability restricts save/check modifiers to one ability, empty for all
	Ability shared.Attribute
}

func (m Modifier) describe() string {
	switch m.Kind {
	case KindAdvantage:
		return "advantage"
	case KindDisadvantage:
		return "disadvantage"
	case KindFlat, KindIncomingFlat:
		return fmt.Sprintf("%+d", m.Value)
	case KindDice:
		return fmt.Sprintf("+%dd%d", m.DiceCount, m.DiceSides)
	case KindCritThreshold:
		return fmt.Sprintf("crits on %d", m.Value)
	case KindOutgoingPercent:
		return fmt.Sprintf("%+d%%", m.Value)
	case KindResistance, KindImmunity, KindVulnerability:
		return fmt.Sprintf("%s: %s", m.Kind, m.DamageType)
	case KindResistAll:
		return "resistant to all damage"
	}
	return string(m.Kind)
}

// Entry is one line of a roll breakdown, kept for auditability
type Entry struct {
	Source string `json:"source"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

// AdvantageState is the net roll-twice state of a d20 roll
type AdvantageState int

const (
	Normal AdvantageState = iota
	Advantage
	Disadvantage
)

func (a AdvantageState) String() string {
	switch a {
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}
