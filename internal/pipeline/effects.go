package pipeline

import (
	"context"
	"fmt"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/economy"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/reactions"
	"github.com/skirmishlab/skirmish/internal/rules"
	"github.com/skirmishlab/skirmish/internal/statuses"
)

// effectHandler applies one effect spec to one resolved target
type effectHandler func(st *execState, spec content.EffectSpec, target *combat.Combatant, outcome *combat.TargetOutcome) error

// buildHandlers registers one handler per effect kind. Coverage is checked
// against loaded content at construction, so execution never dispatches into
// a missing entry.
func (s *service) buildHandlers() map[content.EffectKind]effectHandler {
	return map[content.EffectKind]effectHandler{
		content.EffectDamage:       s.applyDamageEffect,
		content.EffectHeal:         s.applyHealEffect,
		content.EffectApplyStatus:  s.applyStatusEffect,
		content.EffectRemoveStatus: s.applyRemoveStatusEffect,
		content.EffectTempHP:       s.applyTempHPEffect,
		content.EffectForceMove:    s.applyForceMoveEffect,
		content.EffectResource:     s.applyResourceEffect,
		content.EffectGrantAction:  s.applyGrantActionEffect,
		content.EffectSummon:       s.applySummonEffect,
	}
}

func (s *service) applyDamageEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, outcome *combat.TargetOutcome) error {
	saved := st.def.Resolution.Kind == content.ResolutionSave && !outcome.Failed
	if saved && !spec.Damage.HalfOnSave {
		return nil
	}

	if err := s.openWindow(st.ctx, st.sink(), &reactions.TriggerEvent{
		Window:   content.WindowPreDamage,
		ActorID:  st.actor.ID,
		TargetID: target.ID,
		ActionID: st.def.ID,
	}); err != nil {
		return err
	}
	if target.LifeState == combat.LifeDead {
		return nil
	}

	stack := modifiers.NewStack(s.statuses.ActiveModifiers(st.actor.ID, modifiers.TargetDamage)...)
	roll, err := s.engine.RollDamage(spec.Damage.Formulas, st.critical[target.ID], stack)
	if err != nil {
		return err
	}

	// A successful save against a half-on-save effect halves each component
	// of the outgoing roll before mitigation.
	if saved {
		roll.Total = 0
		for i := range roll.Components {
			roll.Components[i].Amount /= 2
			roll.Total += roll.Components[i].Amount
		}
	}

	packet, err := s.applyDamage(st.ctx, st.sink(), st.actor.ID, target, roll, st.critical[target.ID])
	if err != nil {
		return err
	}

	if packet.Total > 0 && target.ConcentrationID != "" && target.IsConscious() {
		if _, seen := st.damageByTarget[target.ID]; !seen {
			st.damageOrder = append(st.damageOrder, target.ID)
		}
		st.damageByTarget[target.ID] += packet.Total
	}
	return nil
}

// applyDamage runs the incoming half of the damage order against one
// combatant: mitigation, HP and absorption, break-on-damage statuses, life
// state transitions and the post-damage interrupt window.
func (s *service) applyDamage(ctx context.Context, sink *[]combat.Event, attackerID string, target *combat.Combatant, roll *rules.DamageRoll, critical bool) (*rules.DamagePacket, error) {
	defensive := s.statuses.DefensiveModifiers(target.ID)
	profile := s.damageProfile(target, defensive)
	incomingFlat := modifiers.NewStack(defensive...).IncomingFlat()

	packet := rules.MitigateDamage(roll, profile, incomingFlat)

	available := target.HP.Current + target.HP.Temporary
	overflow := packet.Total - available

	target.HP.Damage(packet.Total)
	*sink = append(*sink, combat.Event{
		Type:   combat.EventDamage,
		Actor:  attackerID,
		Target: target.ID,
		Amount: packet.Total,
		Damage: packet,
	})

	if packet.Total > 0 {
		for _, inst := range s.statuses.OnDamageTaken(target.ID) {
			*sink = append(*sink, combat.Event{
				Type:   combat.EventStatusRemoved,
				Target: target.ID,
				Status: inst.DefinitionID,
				Reason: "broken by damage",
			})
		}
	}

	if packet.Total > 0 && target.HP.Current == 0 {
		s.resolveZeroHP(sink, target, overflow, critical)
	}

	if err := s.openWindow(ctx, sink, &reactions.TriggerEvent{
		Window:   content.WindowPostDamageTaken,
		ActorID:  attackerID,
		TargetID: target.ID,
		Damage:   packet.Total,
	}); err != nil {
		return packet, err
	}
	return packet, nil
}

// resolveZeroHP applies the life state transition for a combatant at zero
// hit points. Overflow at or past max HP is instant death; the boundary is
// inclusive. Only party members go down, everyone else dies outright.
func (s *service) resolveZeroHP(sink *[]combat.Event, target *combat.Combatant, overflow int, critical bool) {
	switch target.LifeState {
	case combat.LifeDead:
		return

	case combat.LifeDowned:
		// Damage while downed fails death saves, two on a crit.
		failures := 1
		if critical {
			failures = 2
		}
		target.DeathSaves.Failures += failures
		target.DeathSaves.Stable = false
		*sink = append(*sink, combat.Event{
			Type:   combat.EventDeathSave,
			Target: target.ID,
			Amount: failures,
			Reason: "damage while downed",
		})
		if overflow >= target.HP.Max || target.DeathSaves.Failures >= 3 {
			s.kill(sink, target, "death save failures")
		}

	default:
		if overflow >= target.HP.Max {
			s.kill(sink, target, "massive damage")
			return
		}
		if !target.Faction.IsParty() {
			s.kill(sink, target, "reduced to zero")
			return
		}
		target.LifeState = combat.LifeDowned
		target.DeathSaves = combat.DeathSaves{}
		*sink = append(*sink, combat.Event{Type: combat.EventDowned, Target: target.ID})
		if target.ConcentrationID != "" {
			s.breakConcentration(sink, target, "downed")
		}
	}
}

func (s *service) kill(sink *[]combat.Event, target *combat.Combatant, reason string) {
	target.LifeState = combat.LifeDead
	*sink = append(*sink, combat.Event{
		Type:   combat.EventDied,
		Target: target.ID,
		Reason: reason,
	})
	if target.ConcentrationID != "" {
		s.breakConcentration(sink, target, "died")
	}
}

// damageProfile merges a combatant's innate defenses with status-granted
// ones into one mitigation profile
func (s *service) damageProfile(target *combat.Combatant, defensive []modifiers.Modifier) *modifiers.DamageProfile {
	mods := make([]modifiers.Modifier, 0, len(defensive)+len(target.Resistances)+len(target.Immunities)+len(target.Vulnerabilities))
	for _, t := range target.Resistances {
		mods = append(mods, modifiers.Modifier{Kind: modifiers.KindResistance, DamageType: t})
	}
	for _, t := range target.Immunities {
		mods = append(mods, modifiers.Modifier{Kind: modifiers.KindImmunity, DamageType: t})
	}
	for _, t := range target.Vulnerabilities {
		mods = append(mods, modifiers.Modifier{Kind: modifiers.KindVulnerability, DamageType: t})
	}
	mods = append(mods, defensive...)
	return modifiers.NewDamageProfile(mods)
}

func (s *service) applyHealEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	roll, err := s.engine.RollDamage([]rules.DamageFormula{spec.Heal.Formula}, false, nil)
	if err != nil {
		return err
	}
	s.heal(st.sink(), st.actor.ID, target, roll.Total)
	return nil
}

// heal restores hit points and revives a downed target
func (s *service) heal(sink *[]combat.Event, actorID string, target *combat.Combatant, amount int) {
	if target.LifeState == combat.LifeDead {
		return
	}
	healed := target.HP.Heal(amount)
	*sink = append(*sink, combat.Event{
		Type:   combat.EventHeal,
		Actor:  actorID,
		Target: target.ID,
		Amount: healed,
	})
	if target.LifeState == combat.LifeDowned && target.HP.Current > 0 {
		target.LifeState = combat.LifeAlive
		target.DeathSaves = combat.DeathSaves{}
		*sink = append(*sink, combat.Event{Type: combat.EventRevived, Target: target.ID})
	}
}

func (s *service) applyStatusEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	contractID := ""
	if st.def.Concentration {
		contractID = st.actor.ConcentrationID
	}
	inst, _, err := s.statuses.Apply(spec.Status.StatusID, st.actor.ID, target.ID, contractID)
	if err != nil {
		return err
	}
	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventStatusApplied,
		Actor:  st.actor.ID,
		Target: target.ID,
		Status: inst.DefinitionID,
		Amount: inst.Stacks,
	})

	def, err := s.statuses.Definition(inst)
	if err != nil {
		return err
	}
	if target.ConcentrationID != "" {
		switch {
		case def.Incapacitates:
			// Incapacitation ends concentration outright, no check.
			s.breakConcentration(st.sink(), target, "incapacitated")
		case def.Fragile:
			// Declared fragile transitions check concentration even without
			// damage. Prone never reaches this path.
			if err := s.concentrationCheck(st.sink(), target, rules.ConcentrationDC(0)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) applyRemoveStatusEffect(st *execState, spec content.EffectSpec, _ *combat.Combatant, _ *combat.TargetOutcome) error {
	// Removal spans every carrier that got the status from this actor in
	// the same cast, not only the named target.
	contractID := ""
	if inst := firstInstanceOf(s, spec.RemoveStatus.StatusID, st.actor.ID); inst != nil {
		contractID = inst.ContractID
	}
	for _, inst := range s.statuses.RemoveByDefinition(spec.RemoveStatus.StatusID, st.actor.ID, contractID) {
		*st.sink() = append(*st.sink(), combat.Event{
			Type:   combat.EventStatusRemoved,
			Actor:  st.actor.ID,
			Target: inst.TargetID,
			Status: inst.DefinitionID,
			Reason: "removed",
		})
	}
	return nil
}

func firstInstanceOf(s *service, defID, sourceID string) *statuses.Instance {
	for _, inst := range s.statuses.Instances() {
		if inst.DefinitionID == defID && inst.SourceID == sourceID {
			return inst
		}
	}
	return nil
}

func (s *service) applyTempHPEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	target.HP.AddTemporaryHP(spec.TempHP.Amount)
	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventTempHP,
		Actor:  st.actor.ID,
		Target: target.ID,
		Amount: spec.TempHP.Amount,
	})
	return nil
}

// applyForceMoveEffect pushes the target directly away from the actor along
// the dominant axis. Forced movement never provokes reactions.
func (s *service) applyForceMoveEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	dx := target.Position.X - st.actor.Position.X
	dy := target.Position.Y - st.actor.Position.Y

	step := combat.Position{}
	switch {
	case abs(dx) >= abs(dy) && dx != 0:
		step.X = sign(dx)
	case dy != 0:
		step.Y = sign(dy)
	default:
		// Pushing from the same cell defaults to east.
		step.X = 1
	}

	target.Position.X += step.X * spec.ForceMove.Distance
	target.Position.Y += step.Y * spec.ForceMove.Distance
	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventForcedMove,
		Actor:  st.actor.ID,
		Target: target.ID,
		Amount: spec.ForceMove.Distance,
		Detail: fmt.Sprintf("to %d,%d", target.Position.X, target.Position.Y),
	})
	return nil
}

func (s *service) applyResourceEffect(st *execState, spec content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	var err error
	if spec.Resource.Delta >= 0 {
		err = target.Budget.RestorePool(spec.Resource.Pool, spec.Resource.Delta)
	} else {
		err = target.Budget.SpendPool(spec.Resource.Pool, -spec.Resource.Delta)
	}
	if err != nil {
		return err
	}
	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventResource,
		Target: target.ID,
		Amount: spec.Resource.Delta,
		Detail: spec.Resource.Pool,
	})
	return nil
}

func (s *service) applyGrantActionEffect(st *execState, _ content.EffectSpec, target *combat.Combatant, _ *combat.TargetOutcome) error {
	target.Budget.GrantExtraAction()
	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventExtraAction,
		Actor:  st.actor.ID,
		Target: target.ID,
	})
	return nil
}

// applySummonEffect spawns a combatant on the caster's side. Summons join
// the end of the turn order and are torn down with the contract that
// created them.
func (s *service) applySummonEffect(st *execState, spec content.EffectSpec, _ *combat.Combatant, _ *combat.TargetOutcome) error {
	abilities := make(map[shared.Attribute]int, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		abilities[attr] = 10
	}
	summon := &combat.Combatant{
		ID:               s.idGen.New(),
		Name:             spec.Summon.Name,
		Faction:          st.actor.Faction,
		Abilities:        abilities,
		HP:               combat.HPResource{Current: spec.Summon.MaxHP, Max: spec.Summon.MaxHP},
		AC:               spec.Summon.AC,
		Speed:            spec.Summon.Speed,
		Reach:            1,
		Position:         combat.Position{X: st.actor.Position.X + 1, Y: st.actor.Position.Y},
		LifeState:        combat.LifeAlive,
		Budget:           economy.NewBudget(spec.Summon.Speed, 1),
		AttacksPerAction: 1,
		SummonedBy:       st.actor.ID,
	}
	s.encounter.AddCombatant(summon)
	s.encounter.TurnOrder = append(s.encounter.TurnOrder, summon.ID)

	if st.def.Concentration && st.actor.ConcentrationID != "" {
		s.statuses.LinkSummon(st.actor.ConcentrationID, summon.ID)
	}

	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventSummon,
		Actor:  st.actor.ID,
		Target: summon.ID,
		Detail: summon.Name,
	})
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
