package rules

import (
	"fmt"

	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/modifiers"
)

// DamageFormula is one dice expression of a damage roll, e.g. 2d6+3 slashing
type DamageFormula struct {
	DiceCount int               `json:"dice_count"`
	DiceSides int               `json:"dice_sides"`
	Bonus     int               `json:"bonus"`
	Type      shared.DamageType `json:"type"`
}

func (f DamageFormula) String() string {
	if f.Bonus != 0 {
		return fmt.Sprintf("%dd%d%+d %s", f.DiceCount, f.DiceSides, f.Bonus, f.Type)
	}
	return fmt.Sprintf("%dd%d %s", f.DiceCount, f.DiceSides, f.Type)
}

// Average returns the expected value of the formula, for previews
func (f DamageFormula) Average() float64 {
	return float64(f.DiceCount)*(float64(f.DiceSides)+1)/2 + float64(f.Bonus)
}

// Minimum and Maximum bound the formula, for previews
func (f DamageFormula) Minimum() int { return f.DiceCount + f.Bonus }
func (f DamageFormula) Maximum() int { return f.DiceCount*f.DiceSides + f.Bonus }

// DamageComponent is the rolled amount of one damage type. Components keep
// slice order so multi-type damage resolves deterministically.
type DamageComponent struct {
	Type   shared.DamageType `json:"type"`
	Amount int               `json:"amount"`
	Rolls  []int             `json:"rolls,omitempty"`
}

// DamageRoll is outgoing damage before the defender's mitigation
type DamageRoll struct {
	Components []DamageComponent `json:"components"`
	Total      int               `json:"total"`
}

// DamagePacket is the final mitigated damage about to hit a combatant
type DamagePacket struct {
	Components []DamageComponent `json:"components"`
	Total      int               `json:"total"`
}

// RollDamage resolves the outgoing half of the damage order: base dice
// (doubled dice on a crit), additive outgoing bonuses, then percentage
// outgoing scaling. Flat and dice bonuses land on the first formula's type.
func (e *Engine) RollDamage(formulas []DamageFormula, critical bool, stack *modifiers.Stack) (*DamageRoll, error) {
	if len(formulas) == 0 {
		return &DamageRoll{}, nil
	}
	if stack == nil {
		stack = modifiers.NewStack()
	}

	components := make([]DamageComponent, 0, len(formulas))
	for _, formula := range formulas {
		count := formula.DiceCount
		if critical {
			count *= 2
		}

		comp := DamageComponent{Type: formula.Type, Amount: formula.Bonus}
		if count > 0 {
			result, err := e.roller.Roll(count, formula.DiceSides, 0)
			if err != nil {
				return nil, err
			}
			comp.Amount += result.RawTotal
			comp.Rolls = result.Rolls
		}
		components = append(components, comp)
	}

	// Additive outgoing modifiers join the primary component.
	components[0].Amount += stack.FlatBonus()
	for _, m := range stack.DiceBonuses() {
		count := m.DiceCount
		if critical {
			count *= 2
		}
		result, err := e.roller.Roll(count, m.DiceSides, 0)
		if err != nil {
			return nil, err
		}
		components[0].Amount += result.RawTotal
		components[0].Rolls = append(components[0].Rolls, result.Rolls...)
	}

	if pct := stack.OutgoingPercent(); pct != 0 {
		for i := range components {
			components[i].Amount = components[i].Amount * (100 + pct) / 100
		}
	}

	total := 0
	for i := range components {
		if components[i].Amount < 0 {
			components[i].Amount = 0
		}
		total += components[i].Amount
	}

	return &DamageRoll{Components: components, Total: total}, nil
}

// MitigateDamage resolves the incoming half of the damage order: percentage
// incoming per type, flat incoming once per packet, floored at zero.
// Absorption layers (temporary HP) are applied afterward by the HP resource.
func MitigateDamage(roll *DamageRoll, profile *modifiers.DamageProfile, incomingFlat int) *DamagePacket {
	packet := &DamagePacket{Components: make([]DamageComponent, 0, len(roll.Components))}
	for _, comp := range roll.Components {
		mitigated := profile.Mitigate(comp.Type, comp.Amount)
		packet.Components = append(packet.Components, DamageComponent{
			Type:   comp.Type,
			Amount: mitigated,
			Rolls:  comp.Rolls,
		})
		packet.Total += mitigated
	}

	packet.Total += incomingFlat
	if packet.Total < 0 {
		packet.Total = 0
	}
	return packet
}
