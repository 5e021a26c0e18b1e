package scenario

import (
	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/rules"
)

// BuiltinRegistry loads the stock action, status and reaction definitions
// and validates them. Scenario files can add to or replace this set.
func BuiltinRegistry() (*content.Registry, error) {
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

	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

func builtinStatuses() []*content.StatusDefinition {
	return []*content.StatusDefinition{
		{
			ID:           "prone",
			Name:         "Prone",
			DurationKind: content.DurationUntilBroken,
			Stacking:     content.StackingReject,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindDisadvantage, Target: modifiers.TargetAttackRoll},
				{Kind: modifiers.KindAdvantage, Target: modifiers.TargetDefense},
			},
		},
		{
			ID:             "paralyzed",
			Name:           "Paralyzed",
			DurationKind:   content.DurationRounds,
			DurationAmount: 10,
			Stacking:       content.StackingRefresh,
			Incapacitates:  true,
			BreaksOnDamage: true,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindAdvantage, Target: modifiers.TargetDefense},
			},
		},
		{
			ID:             "burning",
			Name:           "Burning",
			DurationKind:   content.DurationRounds,
			DurationAmount: 3,
			Stacking:       content.StackingStack,
			MaxStacks:      3,
			TickDamage:     &rules.DamageFormula{DiceCount: 1, DiceSides: 4, Type: shared.DamageTypeFire},
		},
		{
			ID:             "blessed",
			Name:           "Blessed",
			DurationKind:   content.DurationRounds,
			DurationAmount: 10,
			Stacking:       content.StackingRefresh,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindDice, Target: modifiers.TargetAttackRoll, DiceCount: 1, DiceSides: 4},
				{Kind: modifiers.KindDice, Target: modifiers.TargetSavingThrow, DiceCount: 1, DiceSides: 4},
			},
		},
		{
			ID:             "shielded",
			Name:           "Shielded",
			DurationKind:   content.DurationRounds,
			DurationAmount: 1,
			Stacking:       content.StackingRefresh,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindFlat, Target: modifiers.TargetAC, Value: 5},
			},
		},
		{
			ID:             "raging",
			Name:           "Raging",
			DurationKind:   content.DurationRounds,
			DurationAmount: 10,
			Stacking:       content.StackingReject,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindResistance, Target: modifiers.TargetDamage, DamageType: shared.DamageTypeSlashing},
				{Kind: modifiers.KindResistance, Target: modifiers.TargetDamage, DamageType: shared.DamageTypePiercing},
				{Kind: modifiers.KindResistance, Target: modifiers.TargetDamage, DamageType: shared.DamageTypeBludgeoning},
				{Kind: modifiers.KindFlat, Target: modifiers.TargetDamage, Value: 2},
			},
		},
		{
			// Entangled is a declared fragile transition: applying it to a
			// concentrating caster forces a concentration check even though
			// it deals no damage.
			ID:             "entangled",
			Name:           "Entangled",
			DurationKind:   content.DurationRounds,
			DurationAmount: 5,
			Stacking:       content.StackingReject,
			Fragile:        true,
			Modifiers: []modifiers.Modifier{
				{Kind: modifiers.KindDisadvantage, Target: modifiers.TargetAttackRoll},
			},
		},
	}
}

func builtinActions() []*content.ActionDefinition {
	return []*content.ActionDefinition{
		{
			ID:       "melee_attack",
			Name:     "Melee Attack",
			Cost:     content.CostAction,
			IsWeapon: true,
			Targeting: content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{
				Kind:          content.ResolutionAttack,
				AttackAbility: shared.AttributeStrength,
			},
			Effects: []content.EffectSpec{
				{
					Kind:      content.EffectDamage,
					Condition: content.ConditionOnSuccess,
					Damage: &content.DamageEffect{
						Formulas: []rules.DamageFormula{{DiceCount: 1, DiceSides: 8, Bonus: 3, Type: shared.DamageTypeSlashing}},
					},
				},
			},
		},
		{
			ID:        "firebolt",
			Name:      "Fire Bolt",
			Cost:      content.CostAction,
			Targeting: content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{
				Kind:          content.ResolutionAttack,
				AttackAbility: shared.AttributeIntelligence,
			},
			Effects: []content.EffectSpec{
				{
					Kind:      content.EffectDamage,
					Condition: content.ConditionOnSuccess,
					Damage: &content.DamageEffect{
						Formulas: []rules.DamageFormula{{DiceCount: 1, DiceSides: 10, Type: shared.DamageTypeFire}},
					},
				},
				{
					Kind:      content.EffectApplyStatus,
					Condition: content.ConditionOnSuccess,
					Status:    &content.ApplyStatusEffect{StatusID: "burning"},
				},
			},
		},
		{
			// Shove has no base effect list; an unspecified variant selects
			// the first one (push).
			ID:        "shove",
			Name:      "Shove",
			Cost:      content.CostBonusAction,
			Targeting: content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{
				Kind:           content.ResolutionContest,
				AttackerSkill:  shared.SkillAthletics,
				DefenderSkills: []shared.Skill{shared.SkillAthletics, shared.SkillAcrobatics},
			},
			Variants: []content.Variant{
				{
					ID: "push",
					Effects: []content.EffectSpec{
						{
							Kind:      content.EffectForceMove,
							Condition: content.ConditionOnSuccess,
							ForceMove: &content.ForceMoveEffect{Distance: 2},
						},
					},
				},
				{
					ID: "trip",
					Effects: []content.EffectSpec{
						{
							Kind:      content.EffectApplyStatus,
							Condition: content.ConditionOnSuccess,
							Status:    &content.ApplyStatusEffect{StatusID: "prone"},
						},
					},
				},
			},
		},
		{
			ID:            "hold_person",
			Name:          "Hold Person",
			Cost:          content.CostAction,
			Concentration: true,
			Targeting:     content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{
				Kind:        content.ResolutionSave,
				SaveAbility: shared.AttributeWisdom,
				DC:          content.DCSpec{Ability: shared.AttributeWisdom},
			},
			Effects: []content.EffectSpec{
				{
					Kind:      content.EffectApplyStatus,
					Condition: content.ConditionOnSuccess,
					Status:    &content.ApplyStatusEffect{StatusID: "paralyzed"},
				},
			},
		},
		{
			ID:        "magic_missile",
			Name:      "Magic Missile",
			Cost:      content.CostAction,
			Targeting: content.Targeting{Kind: content.TargetEntities, MaxTargets: 3},
			Resolution: content.Resolution{Kind: content.ResolutionNone},
			// Three darts, three damage effects; a concentrating target
			// still checks once against the aggregated total.
			Effects: []content.EffectSpec{
				missileDart(), missileDart(), missileDart(),
			},
		},
		{
			ID:        "fireball",
			Name:      "Fireball",
			Cost:      content.CostAction,
			Targeting: content.Targeting{Kind: content.TargetPoint, Radius: 4},
			Resolution: content.Resolution{
				Kind:        content.ResolutionSave,
				SaveAbility: shared.AttributeDexterity,
				DC:          content.DCSpec{Ability: shared.AttributeIntelligence},
			},
			Effects: []content.EffectSpec{
				{
					Kind: content.EffectDamage,
					Damage: &content.DamageEffect{
						Formulas:   []rules.DamageFormula{{DiceCount: 8, DiceSides: 6, Type: shared.DamageTypeFire}},
						HalfOnSave: true,
					},
				},
			},
		},
		{
			ID:            "second_wind",
			Name:          "Second Wind",
			Cost:          content.CostBonusAction,
			ResourceCosts: map[string]int{"second_wind": 1},
			Targeting:     content.Targeting{Kind: content.TargetEntities},
			Resolution:    content.Resolution{Kind: content.ResolutionNone},
			Effects: []content.EffectSpec{
				{
					Kind: content.EffectHeal,
					Heal: &content.HealEffect{Formula: rules.DamageFormula{DiceCount: 1, DiceSides: 10, Bonus: 3}},
				},
			},
		},
		{
			ID:        "shield_spell",
			Name:      "Shield",
			Cost:      content.CostReaction,
			Targeting: content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{Kind: content.ResolutionNone},
			Effects: []content.EffectSpec{
				{
					Kind:   content.EffectApplyStatus,
					Status: &content.ApplyStatusEffect{StatusID: "shielded"},
				},
			},
		},
		{
			ID:        "rage",
			Name:      "Rage",
			Cost:      content.CostBonusAction,
			Targeting: content.Targeting{Kind: content.TargetEntities},
			Resolution: content.Resolution{Kind: content.ResolutionNone},
			Effects: []content.EffectSpec{
				{
					Kind:   content.EffectApplyStatus,
					Status: &content.ApplyStatusEffect{StatusID: "raging"},
				},
			},
		},
		{
			ID:            "summon_wolf",
			Name:          "Summon Wolf",
			Cost:          content.CostAction,
			Concentration: true,
			Targeting:     content.Targeting{Kind: content.TargetPoint, SelfOrigin: true},
			Resolution:    content.Resolution{Kind: content.ResolutionNone},
			Effects: []content.EffectSpec{
				{
					Kind:   content.EffectSummon,
					Summon: &content.SummonEffect{Name: "Wolf", MaxHP: 11, AC: 13, Speed: 8},
				},
			},
		},
		{
			ID:            "bless",
			Name:          "Bless",
			Cost:          content.CostAction,
			Concentration: true,
			Targeting:     content.Targeting{Kind: content.TargetEntities, MaxTargets: 3},
			Resolution:    content.Resolution{Kind: content.ResolutionNone},
			Effects: []content.EffectSpec{
				{
					Kind:   content.EffectApplyStatus,
					Status: &content.ApplyStatusEffect{StatusID: "blessed"},
				},
			},
		},
	}
}

func missileDart() content.EffectSpec {
	return content.EffectSpec{
		Kind: content.EffectDamage,
		Damage: &content.DamageEffect{
			Formulas: []rules.DamageFormula{{DiceCount: 1, DiceSides: 4, Bonus: 1, Type: shared.DamageTypeForce}},
		},
	}
}

func builtinReactions() []*content.ReactionDefinition {
	return []*content.ReactionDefinition{
		{
			ID:        "opportunity_attack",
			Name:      "Opportunity Attack",
			Window:    content.WindowEnemyLeavesReach,
			Condition: content.ReactEnemyActor,
			ActionID:  "melee_attack",
		},
		{
			ID:        "shield_reaction",
			Name:      "Shield",
			Window:    content.WindowCastStarted,
			Priority:  -10,
			Condition: content.ReactSelfTargeted,
			ActionID:  "shield_spell",
		},
	}
}
