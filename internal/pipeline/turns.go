package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/reactions"
	"github.com/skirmishlab/skirmish/internal/rules"
)

func (s *service) StartEncounter(ctx context.Context) error {
	if s.encounter.Status != combat.EncounterStatusSetup {
		return errors.FailedPreconditionf("encounter %s already started", s.encounter.ID)
	}
	if len(s.encounter.Combatants) == 0 {
		return errors.FailedPrecondition("encounter has no combatants")
	}

	s.emit(combat.Event{Type: combat.EventEncounterStarted, Detail: s.encounter.Name})

	// Roster order is sorted by id here; the turn order is empty until
	// initiative lands, so enumeration is stable across runs.
	for _, c := range s.encounter.CombatantsInOrder() {
		result, err := s.roller.Roll(1, 20, c.InitiativeBonus)
		if err != nil {
			return err
		}
		c.Initiative = result.Total
		c.InitiativeTiebreak = c.InitiativeBonus
		s.emit(combat.Event{
			Type:   combat.EventInitiative,
			Actor:  c.ID,
			Amount: result.Total,
		})
	}

	s.encounter.SortTurnOrder()
	s.encounter.Status = combat.EncounterStatusActive
	s.encounter.Round = 1
	s.encounter.Turn = 0

	s.emit(combat.Event{Type: combat.EventRoundStarted, Round: 1})
	for _, c := range s.encounter.CombatantsInOrder() {
		c.Budget.StartRound()
	}

	s.logger.Info("encounter started",
		zap.String("encounter", s.encounter.ID),
		zap.Int("combatants", len(s.encounter.Combatants)))

	return s.startTurn(ctx, s.encounter.CurrentCombatant())
}

func (s *service) EndTurn(ctx context.Context) error {
	if s.encounter.Status != combat.EncounterStatusActive {
		return errors.FailedPrecondition("encounter is not active")
	}

	current := s.encounter.CurrentCombatant()
	if current != nil {
		s.emit(combat.Event{
			Type:  combat.EventTurnEnded,
			Actor: current.ID,
			Round: s.encounter.Round,
		})
		// Turn-end effects run first, then turn-scoped durations decrement.
		for _, inst := range s.statuses.TickTurnEnd(current.ID) {
			s.emit(combat.Event{
				Type:   combat.EventStatusRemoved,
				Target: inst.TargetID,
				Status: inst.DefinitionID,
				Reason: "expired",
			})
		}
	}

	s.checkEncounterEnd(&s.log)
	if s.encounter.Status != combat.EncounterStatusActive {
		return nil
	}

	for range s.encounter.TurnOrder {
		s.encounter.Turn++
		if s.encounter.Turn >= len(s.encounter.TurnOrder) {
			s.endRound()
		}
		next := s.encounter.CurrentCombatant()
		if next == nil || next.LifeState == combat.LifeDead {
			continue
		}
		return s.startTurn(ctx, next)
	}
	return errors.FailedPrecondition("no combatant can take a turn")
}

// endRound decrements round-scoped durations, advances the round counter
// and restores reactions. The round boundary is the only reaction reset.
func (s *service) endRound() {
	for _, inst := range s.statuses.RoundEnd() {
		s.emit(combat.Event{
			Type:   combat.EventStatusRemoved,
			Target: inst.TargetID,
			Status: inst.DefinitionID,
			Reason: "expired",
		})
	}

	s.encounter.Round++
	s.encounter.Turn = 0
	s.emit(combat.Event{Type: combat.EventRoundStarted, Round: s.encounter.Round})
	for _, c := range s.encounter.CombatantsInOrder() {
		c.Budget.StartRound()
	}
}

// startTurn runs the turn-start phase: budget reset, death saves for the
// downed, then damage-over-time ticks in application order
func (s *service) startTurn(ctx context.Context, c *combat.Combatant) error {
	if c == nil {
		return errors.Internal("turn started with no combatant")
	}

	c.Budget.StartTurn()
	s.emit(combat.Event{
		Type:  combat.EventTurnStarted,
		Actor: c.ID,
		Round: s.encounter.Round,
	})

	if c.LifeState == combat.LifeDowned {
		return s.rollDeathSave(c)
	}

	for _, tick := range s.statuses.TickTurnStart(c.ID) {
		formula := *tick.Status.TickDamage
		// Stacks scale the tick linearly.
		formula.DiceCount *= tick.Instance.Stacks
		formula.Bonus *= tick.Instance.Stacks

		roll, err := s.engine.RollDamage([]rules.DamageFormula{formula}, false, nil)
		if err != nil {
			return err
		}
		s.emit(combat.Event{
			Type:   combat.EventStatusTick,
			Target: c.ID,
			Status: tick.Instance.DefinitionID,
		})
		packet, err := s.applyDamage(ctx, &s.log, tick.Instance.SourceID, c, roll, false)
		if err != nil {
			return err
		}
		// Each tick is its own logical damage source, so each checks
		// concentration separately.
		if packet.Total > 0 && c.ConcentrationID != "" && c.IsConscious() {
			if err := s.concentrationCheck(&s.log, c, rules.ConcentrationDC(packet.Total)); err != nil {
				return err
			}
		}
		if !c.IsConscious() {
			break
		}
	}
	return nil
}

// rollDeathSave runs one death saving throw for a downed party member. A
// natural 20 revives at one hit point, a natural 1 counts as two failures,
// three successes stabilize, three failures kill.
func (s *service) rollDeathSave(c *combat.Combatant) error {
	if c.DeathSaves.Stable {
		return nil
	}

	result, err := s.roller.Roll(1, 20, 0)
	if err != nil {
		return err
	}
	natural := result.Total

	check := &rules.CheckResult{
		Kind:    rules.CheckDeathSave,
		Natural: natural,
		Rolls:   result.Rolls,
		Total:   natural,
		DC:      10,
		Success: natural >= 10,
	}
	s.emit(combat.Event{
		Type:   combat.EventDeathSave,
		Target: c.ID,
		Check:  check,
	})

	switch {
	case natural == 20:
		c.LifeState = combat.LifeAlive
		c.DeathSaves = combat.DeathSaves{}
		c.HP.Current = 1
		s.emit(combat.Event{Type: combat.EventRevived, Target: c.ID, Reason: "natural 20"})
	case natural == 1:
		c.DeathSaves.Failures += 2
	case natural >= 10:
		c.DeathSaves.Successes++
	default:
		c.DeathSaves.Failures++
	}

	if c.DeathSaves.Failures >= 3 {
		s.kill(&s.log, c, "death save failures")
		s.checkEncounterEnd(&s.log)
	} else if c.DeathSaves.Successes >= 3 {
		c.DeathSaves.Stable = true
		s.emit(combat.Event{Type: combat.EventStabilized, Target: c.ID})
	}
	return nil
}

// MoveCombatant spends movement and opens the leave-reach window before the
// position changes, so threatening enemies strike the mover where they
// stand.
func (s *service) MoveCombatant(ctx context.Context, actorID string, to combat.Position) (*combat.ExecutionResult, error) {
	result := &combat.ExecutionResult{}

	actor, ok := s.encounter.Combatant(actorID)
	if !ok {
		return s.rejectMove(result, actorID, errors.NotFoundf("combatant %q not found", actorID))
	}
	if !actor.IsConscious() {
		return s.rejectMove(result, actorID, errors.FailedPreconditionf("%s cannot move", actor.Name))
	}
	if s.statuses.IsIncapacitated(actor.ID) {
		return s.rejectMove(result, actorID, errors.FailedPreconditionf("%s is incapacitated", actor.Name))
	}

	distance := actor.Position.DistanceTo(to)
	if err := actor.Budget.UseMovement(distance); err != nil {
		return s.rejectMove(result, actorID, err)
	}

	leavesReach := false
	for _, enemy := range s.encounter.CombatantsInOrder() {
		if !enemy.Faction.HostileTo(actor.Faction) || !enemy.IsConscious() {
			continue
		}
		if actor.Position.DistanceTo(enemy.Position) <= enemy.Reach && to.DistanceTo(enemy.Position) > enemy.Reach {
			leavesReach = true
			break
		}
	}
	if leavesReach {
		if err := s.openWindow(ctx, &result.Events, &reactions.TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: actor.ID,
		}); err != nil {
			s.log = append(s.log, result.Events...)
			return result, err
		}
	}

	// An opportunity attack may have dropped the mover mid-step.
	if actor.IsConscious() {
		actor.Position = to
		result.Events = append(result.Events, combat.Event{
			Type:   combat.EventMoved,
			Actor:  actor.ID,
			Amount: distance,
		})
	}

	s.checkEncounterEnd(&result.Events)
	s.log = append(s.log, result.Events...)
	return result, nil
}

func (s *service) rejectMove(result *combat.ExecutionResult, actorID string, err error) (*combat.ExecutionResult, error) {
	result.Rejected = true
	result.RejectReason = err.Error()
	event := combat.Event{
		Type:   combat.EventActionRejected,
		Actor:  actorID,
		Reason: err.Error(),
	}
	result.Events = append(result.Events, event)
	s.log = append(s.log, event)
	return result, err
}
