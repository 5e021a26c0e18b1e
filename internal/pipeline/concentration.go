package pipeline

import (
	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/rules"
)

// finishConcentrationChecks rolls one concentration check per concentrating
// target the action damaged, at a DC from the aggregated total. Magic
// missile's three darts are one check, not three.
func (s *service) finishConcentrationChecks(st *execState) error {
	for _, id := range st.damageOrder {
		target, ok := s.encounter.Combatant(id)
		if !ok || target.ConcentrationID == "" || !target.IsConscious() {
			continue
		}
		dc := rules.ConcentrationDC(st.damageByTarget[id])
		if err := s.concentrationCheck(st.sink(), target, dc); err != nil {
			return err
		}
	}
	return nil
}

// concentrationCheck rolls a Constitution save to hold concentration and
// breaks it on a failure
func (s *service) concentrationCheck(sink *[]combat.Event, target *combat.Combatant, dc int) error {
	stack := modifiers.NewStack(s.saveModifiers(target.ID, shared.AttributeConstitution)...)
	check, err := s.engine.RollSave(target.SaveBonus(shared.AttributeConstitution), dc, stack)
	if err != nil {
		return err
	}
	check.Kind = rules.CheckConcentrate

	*sink = append(*sink, combat.Event{
		Type:   combat.EventConcentrationCheck,
		Target: target.ID,
		Check:  check,
	})
	if !check.Success {
		s.breakConcentration(sink, target, "failed check")
	}
	return nil
}

// breakConcentration tears down a caster's contract atomically: every
// linked status instance is removed and every linked summon dies, in one
// step, before anything else resolves.
func (s *service) breakConcentration(sink *[]combat.Event, caster *combat.Combatant, reason string) {
	contract, torndown := s.statuses.BreakConcentration(caster.ID)
	caster.ConcentrationID = ""
	if contract == nil {
		return
	}

	*sink = append(*sink, combat.Event{
		Type:   combat.EventConcentrationBroken,
		Actor:  caster.ID,
		Action: contract.ActionID,
		Reason: reason,
	})
	for _, inst := range torndown {
		*sink = append(*sink, combat.Event{
			Type:   combat.EventStatusRemoved,
			Target: inst.TargetID,
			Status: inst.DefinitionID,
			Reason: "concentration ended",
		})
	}
	for _, summonID := range contract.LinkedSummons {
		summon, ok := s.encounter.Combatant(summonID)
		if !ok || summon.LifeState == combat.LifeDead {
			continue
		}
		summon.LifeState = combat.LifeDead
		*sink = append(*sink, combat.Event{
			Type:   combat.EventDied,
			Target: summonID,
			Reason: "unsummoned",
		})
	}

	s.logger.Debug("concentration broken",
		zap.String("caster", caster.ID),
		zap.String("action", contract.ActionID),
		zap.String("reason", reason))
}
