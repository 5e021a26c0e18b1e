// Package rules is the stateless arithmetic core: attack rolls, saving
// throws, contested checks, damage rolls and DC computation. It consumes a
// modifier stack per call and draws exclusively from the injected roller.
package rules

import (
	"github.com/skirmishlab/skirmish/internal/dice"
	"github.com/skirmishlab/skirmish/internal/modifiers"
)

// Engine computes roll resolutions. It holds no combat state; everything it
// needs arrives in the call.
type Engine struct {
	roller dice.Roller
}

// EngineConfig holds configuration for the engine
type EngineConfig struct {
	Roller dice.Roller
}

// NewEngine creates a rules engine
func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil || cfg.Roller == nil {
		panic("roller is required")
	}
	return &Engine{roller: cfg.Roller}
}

// rollD20 rolls the d20 for a check honoring the stack's net advantage
// state. Advantage and disadvantage consume two draws from the same stream
// in the same order regardless of which modifier caused them.
func (e *Engine) rollD20(stack *modifiers.Stack) (*dice.RollResult, modifiers.AdvantageState, error) {
	state := stack.AdvantageState()

	var result *dice.RollResult
	var err error
	switch state {
	case modifiers.Advantage:
		result, err = e.roller.RollWithAdvantage(20, 0)
	case modifiers.Disadvantage:
		result, err = e.roller.RollWithDisadvantage(20, 0)
	default:
		result, err = e.roller.Roll(1, 20, 0)
	}
	if err != nil {
		return nil, state, err
	}
	return result, state, nil
}

// rollBonusDice rolls each dice-bonus modifier in stack order and returns
// the summed contribution
func (e *Engine) rollBonusDice(stack *modifiers.Stack) (int, error) {
	total := 0
	for _, m := range stack.DiceBonuses() {
		result, err := e.roller.Roll(m.DiceCount, m.DiceSides, 0)
		if err != nil {
			return 0, err
		}
		total += result.RawTotal
	}
	return total, nil
}

// RollAttack resolves an attack roll against a target's armor class. A
// natural roll at or above the stack's crit threshold hits critically; a
// natural 1 always misses.
func (e *Engine) RollAttack(attackBonus, targetAC int, stack *modifiers.Stack) (*CheckResult, error) {
	d20, state, err := e.rollD20(stack)
	if err != nil {
		return nil, err
	}

	bonusDice, err := e.rollBonusDice(stack)
	if err != nil {
		return nil, err
	}

	natural := d20.RawTotal
	bonus := attackBonus + stack.FlatBonus() + bonusDice
	total := natural + bonus

	critical := natural >= stack.CritThreshold()
	fumble := natural == 1

	return &CheckResult{
		Kind:      CheckAttack,
		Natural:   natural,
		Rolls:     d20.Rolls,
		Advantage: state.String(),
		Bonus:     bonus,
		Total:     total,
		DC:        targetAC,
		Success:   !fumble && (critical || total >= targetAC),
		Critical:  critical && !fumble,
		Fumble:    fumble,
		Breakdown: stack.Breakdown(),
	}, nil
}

// RollSave resolves a saving throw against a static DC
func (e *Engine) RollSave(saveBonus, dc int, stack *modifiers.Stack) (*CheckResult, error) {
	return e.rollAgainstDC(CheckSave, saveBonus, dc, stack)
}

// RollCheck resolves a skill or ability check against a static DC
func (e *Engine) RollCheck(bonus, dc int, stack *modifiers.Stack) (*CheckResult, error) {
	return e.rollAgainstDC(CheckSkill, bonus, dc, stack)
}

func (e *Engine) rollAgainstDC(kind CheckKind, bonus, dc int, stack *modifiers.Stack) (*CheckResult, error) {
	d20, state, err := e.rollD20(stack)
	if err != nil {
		return nil, err
	}

	bonusDice, err := e.rollBonusDice(stack)
	if err != nil {
		return nil, err
	}

	natural := d20.RawTotal
	totalBonus := bonus + stack.FlatBonus() + bonusDice
	total := natural + totalBonus

	return &CheckResult{
		Kind:      kind,
		Natural:   natural,
		Rolls:     d20.Rolls,
		Advantage: state.String(),
		Bonus:     totalBonus,
		Total:     total,
		DC:        dc,
		Success:   total >= dc,
		Breakdown: stack.Breakdown(),
	}, nil
}

// Contest resolves an opposed check. Both sides roll independently, the
// attacker first so the draw order is fixed, and ties fall to the policy.
func (e *Engine) Contest(attacker, defender ContestSide, tie TiePolicy) (*ContestResult, error) {
	if attacker.Stack == nil {
		attacker.Stack = modifiers.NewStack()
	}
	if defender.Stack == nil {
		defender.Stack = modifiers.NewStack()
	}

	attackerRoll, err := e.rollAgainstDC(CheckContest, attacker.Bonus, 0, attacker.Stack)
	if err != nil {
		return nil, err
	}
	defenderRoll, err := e.rollAgainstDC(CheckContest, defender.Bonus, 0, defender.Stack)
	if err != nil {
		return nil, err
	}

	attackerWins := attackerRoll.Total > defenderRoll.Total
	if attackerRoll.Total == defenderRoll.Total {
		attackerWins = tie == TieAttackerWins
	}

	// Synthesize success records so contests look like saves downstream.
	attackerRoll.Success = attackerWins
	defenderRoll.Success = !attackerWins

	return &ContestResult{
		Attacker:     attackerRoll,
		Defender:     defenderRoll,
		AttackerWins: attackerWins,
	}, nil
}

// ComputeDC resolves a difficulty class. A fixed value wins; otherwise the
// standard 8 + ability modifier + proficiency formula applies.
func ComputeDC(fixed, abilityMod, proficiency int) int {
	if fixed > 0 {
		return fixed
	}
	return 8 + abilityMod + proficiency
}

// ConcentrationDC is the save DC after taking damage: max(10, half the
// damage taken)
func ConcentrationDC(damage int) int {
	dc := damage / 2
	if dc < 10 {
		dc = 10
	}
	return dc
}
