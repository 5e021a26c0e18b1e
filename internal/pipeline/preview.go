package pipeline

import (
	"context"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/rules"
)

// Preview estimates an action's outcome against its first target without
// rolling on the committed RNG stream
type Preview struct {
	// HitChance is the probability the target fails the action's check
	HitChance float64 `json:"hit_chance"`

	ExpectedDamage float64 `json:"expected_damage"`
	MinDamage      int     `json:"min_damage"`
	MaxDamage      int     `json:"max_damage"`

	// SampleDamage is one concrete roll taken on a forked side stream; the
	// committed stream's cursor stays where it was
	SampleDamage int `json:"sample_damage"`
}

func (s *service) PreviewAction(_ context.Context, request *combat.ActionRequest) (*Preview, error) {
	if request == nil || request.ActorID == "" || request.ActionID == "" {
		return nil, errors.InvalidArgument("actor and action are required")
	}
	actor, ok := s.encounter.Combatant(request.ActorID)
	if !ok {
		return nil, errors.NotFoundf("combatant %q not found", request.ActorID)
	}
	def, err := s.registry.Action(request.ActionID)
	if err != nil {
		return nil, err
	}

	st := &execState{request: request, actor: actor, def: def}
	if err := s.selectEffects(st); err != nil {
		return nil, err
	}

	var target *combat.Combatant
	if len(request.TargetIDs) > 0 {
		if target, ok = s.encounter.Combatant(request.TargetIDs[0]); !ok {
			return nil, errors.NotFoundf("target %q not found", request.TargetIDs[0])
		}
	}

	preview := &Preview{HitChance: s.previewHitChance(actor, def, target)}

	var formulas []rules.DamageFormula
	for _, spec := range st.effects {
		if spec.Kind == content.EffectDamage {
			formulas = append(formulas, spec.Damage.Formulas...)
		}
	}
	for _, f := range formulas {
		preview.ExpectedDamage += f.Average()
		preview.MinDamage += f.Minimum()
		preview.MaxDamage += f.Maximum()
	}
	preview.ExpectedDamage *= preview.HitChance

	// One concrete sample on a forked stream. Forks derive from the
	// committed stream but never advance it.
	if len(formulas) > 0 {
		side := rules.NewEngine(&rules.EngineConfig{Roller: s.roller.Fork()})
		roll, err := side.RollDamage(formulas, false, nil)
		if err != nil {
			return nil, err
		}
		preview.SampleDamage = roll.Total
	}

	return preview, nil
}

// previewHitChance computes the exact probability the target fails the
// action's check, walking the twenty naturals
func (s *service) previewHitChance(actor *combat.Combatant, def *content.ActionDefinition, target *combat.Combatant) float64 {
	res := def.Resolution
	if res.Kind == content.ResolutionNone || target == nil {
		return 1
	}

	switch res.Kind {
	case content.ResolutionAttack:
		stack := modifiers.NewStack()
		stack.Add(s.statuses.ActiveModifiers(actor.ID, modifiers.TargetAttackRoll)...)
		stack.Add(s.statuses.ActiveModifiers(target.ID, modifiers.TargetDefense)...)

		bonus := actor.AbilityModifier(res.AttackAbility) + actor.ProficiencyBonus + stack.FlatBonus()
		ac := target.AC + modifiers.NewStack(s.statuses.ActiveModifiers(target.ID, modifiers.TargetAC)...).FlatBonus()
		threshold := stack.CritThreshold()

		hits := 0
		for natural := 2; natural <= 20; natural++ {
			if natural >= threshold || natural+bonus >= ac {
				hits++
			}
		}
		return withAdvantage(float64(hits)/20, stack.AdvantageState())

	case content.ResolutionSave:
		dc := rules.ComputeDC(res.DC.Fixed, actor.AbilityModifier(res.DC.Ability), actor.ProficiencyBonus)
		stack := modifiers.NewStack(s.saveModifiers(target.ID, res.SaveAbility)...)
		bonus := target.SaveBonus(res.SaveAbility) + stack.FlatBonus()

		saves := 0
		for natural := 1; natural <= 20; natural++ {
			if natural+bonus >= dc {
				saves++
			}
		}
		// The target's advantage helps them save, which lowers our chance.
		return 1 - withAdvantage(float64(saves)/20, stack.AdvantageState())

	default: // contest: both sides roll, approximate from the bonus gap
		attackerBonus := actor.SkillBonus(res.AttackerSkill)
		defenderBonus := target.BestSkillBonus(res.DefenderSkills)
		tie := res.TiePolicy
		if tie == "" {
			tie = rules.TieDefenderWins
		}
		wins := 0
		for a := 1; a <= 20; a++ {
			for d := 1; d <= 20; d++ {
				at, dt := a+attackerBonus, d+defenderBonus
				if at > dt || (at == dt && tie == rules.TieAttackerWins) {
					wins++
				}
			}
		}
		return float64(wins) / 400
	}
}

func withAdvantage(p float64, state modifiers.AdvantageState) float64 {
	switch state {
	case modifiers.Advantage:
		return 1 - (1-p)*(1-p)
	case modifiers.Disadvantage:
		return p * p
	default:
		return p
	}
}
