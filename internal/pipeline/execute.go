package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/reactions"
	"github.com/skirmishlab/skirmish/internal/rules"
)

// execState carries one action request through target resolution, checks
// and effect application
type execState struct {
	ctx     context.Context
	request *combat.ActionRequest
	actor   *combat.Combatant
	def     *content.ActionDefinition
	targets []*combat.Combatant
	effects []content.EffectSpec
	result  *combat.ExecutionResult

	// critical flags per target, set by attack resolution
	critical map[string]bool

	// damageByTarget aggregates mitigated damage dealt to each
	// concentrating target; one concentration check per target per action
	// regardless of how many damage effects landed
	damageByTarget map[string]int
	damageOrder    []string

	isReaction bool
}

func (st *execState) sink() *[]combat.Event {
	return &st.result.Events
}

func (s *service) Execute(ctx context.Context, request *combat.ActionRequest) (*combat.ExecutionResult, error) {
	result, err := s.execute(ctx, request, false)
	if result != nil {
		s.log = append(s.log, result.Events...)
	}
	return result, err
}

// ExecuteReaction runs a reaction's action. The reaction charge was already
// spent by the resolver, so the economy debit is skipped; events stay on the
// returned result for the parent action to inline.
func (s *service) ExecuteReaction(ctx context.Context, request *combat.ActionRequest) (*combat.ExecutionResult, error) {
	return s.execute(ctx, request, true)
}

func (s *service) execute(ctx context.Context, request *combat.ActionRequest, isReaction bool) (*combat.ExecutionResult, error) {
	st := &execState{
		ctx:            ctx,
		request:        request,
		result:         &combat.ExecutionResult{Request: request},
		critical:       make(map[string]bool),
		damageByTarget: make(map[string]int),
		isReaction:     isReaction,
	}

	if request == nil || request.ActorID == "" || request.ActionID == "" {
		return s.reject(st, errors.InvalidArgument("actor and action are required"))
	}

	actor, ok := s.encounter.Combatant(request.ActorID)
	if !ok {
		return s.reject(st, errors.NotFoundf("combatant %q not found", request.ActorID))
	}
	st.actor = actor

	if !actor.IsConscious() {
		return s.reject(st, errors.FailedPreconditionf("%s cannot act", actor.Name))
	}
	// Reactions interrupt other turns; everything else waits for its own.
	if !isReaction && s.encounter.Status == combat.EncounterStatusActive {
		if current := s.encounter.CurrentCombatant(); current != nil && current.ID != actor.ID {
			return s.reject(st, errors.FailedPreconditionf("it is not %s's turn", actor.Name))
		}
	}
	if s.statuses.IsIncapacitated(actor.ID) {
		return s.reject(st, errors.FailedPreconditionf("%s is incapacitated", actor.Name))
	}

	def, err := s.registry.Action(request.ActionID)
	if err != nil {
		return s.reject(st, err)
	}
	st.def = def

	if err := s.resolveTargets(st); err != nil {
		return s.reject(st, err)
	}
	if err := s.selectEffects(st); err != nil {
		return s.reject(st, err)
	}

	// Every debit is validated before anything mutates; a rejected request
	// leaves combat state untouched.
	poolCosts := mergedPoolCosts(def, request)
	if !isReaction {
		if err := s.checkCosts(actor, def, poolCosts); err != nil {
			return s.reject(st, err)
		}
	}

	*st.sink() = append(*st.sink(), combat.Event{
		Type:   combat.EventActionStarted,
		Actor:  actor.ID,
		Action: def.ID,
		Round:  s.encounter.Round,
	})

	// A concentration action breaks the caster's previous concentration
	// before its own rolls happen.
	if def.Concentration {
		if actor.ConcentrationID != "" {
			s.breakConcentration(st.sink(), actor, "recast")
		}
		contract, _, _ := s.statuses.BeginConcentration(actor.ID, def.ID)
		actor.ConcentrationID = contract.ID
		*st.sink() = append(*st.sink(), combat.Event{
			Type:   combat.EventConcentrationStarted,
			Actor:  actor.ID,
			Action: def.ID,
		})
	}

	if !isReaction {
		if err := s.payCosts(actor, def, poolCosts); err != nil {
			// checkCosts passed, so this is a programming error
			return st.result, errors.Wrap(err, "cost debit failed after validation")
		}
	}

	primaryTarget := ""
	if len(st.targets) > 0 {
		primaryTarget = st.targets[0].ID
	}
	if err := s.openWindow(ctx, st.sink(), &reactions.TriggerEvent{
		Window:   content.WindowCastStarted,
		ActorID:  actor.ID,
		TargetID: primaryTarget,
		ActionID: def.ID,
	}); err != nil {
		return st.result, err
	}

	// A reaction may have downed the caster mid-cast; the action fizzles
	// with its costs spent.
	if !actor.IsConscious() {
		s.logger.Debug("action fizzled, caster downed during cast",
			zap.String("actor", actor.ID), zap.String("action", def.ID))
		return st.result, nil
	}

	for _, target := range st.targets {
		// Targets were alive at declaration time; one killed by an earlier
		// effect in this same action gets no roll against its corpse.
		if target.LifeState == combat.LifeDead {
			continue
		}
		outcome, err := s.resolveOutcome(st, target)
		if err != nil {
			return st.result, err
		}
		st.result.Outcomes = append(st.result.Outcomes, *outcome)

		for _, spec := range st.effects {
			if !effectApplies(spec.Condition, outcome) {
				continue
			}
			handler := s.handlers[spec.Kind]
			if err := handler(st, spec, target, outcome); err != nil {
				return st.result, err
			}
		}
	}

	if err := s.finishConcentrationChecks(st); err != nil {
		return st.result, err
	}

	s.checkEncounterEnd(st.sink())
	return st.result, nil
}

// reject records a request-class failure: a rejected result plus the typed
// error, with combat state unchanged
func (s *service) reject(st *execState, err error) (*combat.ExecutionResult, error) {
	st.result.Rejected = true
	st.result.RejectReason = err.Error()
	event := combat.Event{
		Type:   combat.EventActionRejected,
		Reason: err.Error(),
	}
	// A nil request is itself a rejectable input.
	if st.request != nil {
		event.Actor = st.request.ActorID
		event.Action = st.request.ActionID
	}
	st.result.Events = append(st.result.Events, event)
	return st.result, err
}

// resolveTargets expands the request's declared targets into an ordered
// combatant list
func (s *service) resolveTargets(st *execState) error {
	switch st.def.Targeting.Kind {
	case content.TargetPoint:
		if st.request.Point == nil {
			return errors.InvalidArgument("action requires a target point")
		}
		if st.def.Targeting.SelfOrigin {
			// Self-origin point abilities affect the caster, never whoever
			// stands at the destination.
			st.targets = []*combat.Combatant{st.actor}
			return nil
		}
		for _, c := range s.encounter.CombatantsInOrder() {
			if c.LifeState == combat.LifeDead {
				continue
			}
			if c.Position.DistanceTo(*st.request.Point) <= st.def.Targeting.Radius {
				st.targets = append(st.targets, c)
			}
		}
		return nil

	default: // TargetEntities
		if len(st.request.TargetIDs) == 0 {
			return errors.InvalidArgument("action requires at least one target")
		}
		max := st.def.Targeting.MaxTargets
		if max < 1 {
			max = 1
		}
		if len(st.request.TargetIDs) > max {
			return errors.InvalidArgumentf("action allows at most %d targets, got %d", max, len(st.request.TargetIDs))
		}
		for _, id := range st.request.TargetIDs {
			target, ok := s.encounter.Combatant(id)
			if !ok {
				return errors.NotFoundf("target %q not found", id)
			}
			if target.LifeState == combat.LifeDead {
				return errors.FailedPreconditionf("target %s is dead", target.Name)
			}
			st.targets = append(st.targets, target)
		}
		return nil
	}
}

// selectEffects picks exactly one effect list: the requested variant, the
// base list, or the first variant when the base list is empty
func (s *service) selectEffects(st *execState) error {
	if st.request.VariantID != "" {
		for _, v := range st.def.Variants {
			if v.ID == st.request.VariantID {
				st.effects = v.Effects
				return nil
			}
		}
		return errors.NotFoundf("action %q has no variant %q", st.def.ID, st.request.VariantID)
	}
	if len(st.def.Effects) > 0 {
		st.effects = st.def.Effects
		return nil
	}
	if len(st.def.Variants) > 0 {
		st.effects = st.def.Variants[0].Effects
		return nil
	}
	return nil
}

func mergedPoolCosts(def *content.ActionDefinition, request *combat.ActionRequest) map[string]int {
	if len(def.ResourceCosts) == 0 && len(request.ResourceOverrides) == 0 {
		return nil
	}
	costs := make(map[string]int, len(def.ResourceCosts))
	for name, amount := range def.ResourceCosts {
		costs[name] = amount
	}
	for name, amount := range request.ResourceOverrides {
		costs[name] = amount
	}
	return costs
}

func (s *service) checkCosts(actor *combat.Combatant, def *content.ActionDefinition, pools map[string]int) error {
	budget := actor.Budget
	switch def.Cost {
	case content.CostAction:
		if !budget.HasAction() {
			return errors.ResourceExhaustedf("%s has no action remaining", actor.Name)
		}
	case content.CostBonusAction:
		if budget.BonusRemaining < 1 {
			return errors.ResourceExhaustedf("%s has no bonus action remaining", actor.Name)
		}
	case content.CostReaction:
		if !budget.HasReaction() {
			return errors.ResourceExhaustedf("%s has no reaction remaining", actor.Name)
		}
	}
	for name, amount := range pools {
		pool, ok := budget.Pools[name]
		if !ok || pool.Remaining < amount {
			return errors.ResourceExhaustedf("%s lacks %d %s", actor.Name, amount, name)
		}
	}
	return nil
}

func (s *service) payCosts(actor *combat.Combatant, def *content.ActionDefinition, pools map[string]int) error {
	budget := actor.Budget
	var err error
	switch def.Cost {
	case content.CostAction:
		if def.IsWeapon {
			err = budget.UseWeaponAttack()
		} else {
			err = budget.UseAction()
		}
	case content.CostBonusAction:
		err = budget.UseBonusAction()
	case content.CostReaction:
		err = budget.UseReaction()
	}
	if err != nil {
		return err
	}
	// Deterministic debit order for multi-pool costs.
	for _, name := range sortedKeys(pools) {
		if err := budget.SpendPool(name, pools[name]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// effectApplies gates an effect on the per-target outcome. Failed means the
// target lost the check, i.e. the actor succeeded.
func effectApplies(cond content.EffectCondition, outcome *combat.TargetOutcome) bool {
	switch cond {
	case content.ConditionOnSuccess:
		return outcome.Failed
	case content.ConditionOnFailure:
		return !outcome.Failed
	default:
		return true
	}
}

// resolveOutcome runs the action's declared check against one target
func (s *service) resolveOutcome(st *execState, target *combat.Combatant) (*combat.TargetOutcome, error) {
	res := st.def.Resolution
	outcome := &combat.TargetOutcome{TargetID: target.ID}

	switch res.Kind {
	case content.ResolutionAttack:
		stack := modifiers.NewStack()
		stack.Add(s.statuses.ActiveModifiers(st.actor.ID, modifiers.TargetAttackRoll)...)
		// Defense modifiers on the target (prone, paralyzed) shape the
		// attacker's roll.
		stack.Add(s.statuses.ActiveModifiers(target.ID, modifiers.TargetDefense)...)

		attackBonus := st.actor.AbilityModifier(res.AttackAbility) + st.actor.ProficiencyBonus
		ac := target.AC + modifiers.NewStack(s.statuses.ActiveModifiers(target.ID, modifiers.TargetAC)...).FlatBonus()

		check, err := s.engine.RollAttack(attackBonus, ac, stack)
		if err != nil {
			return nil, err
		}
		outcome.Check = check
		outcome.Failed = check.Success
		st.critical[target.ID] = check.Critical

	case content.ResolutionSave:
		dc := rules.ComputeDC(res.DC.Fixed, st.actor.AbilityModifier(res.DC.Ability), st.actor.ProficiencyBonus)
		stack := modifiers.NewStack(s.saveModifiers(target.ID, res.SaveAbility)...)

		check, err := s.engine.RollSave(target.SaveBonus(res.SaveAbility), dc, stack)
		if err != nil {
			return nil, err
		}
		outcome.Check = check
		outcome.Failed = !check.Success

	case content.ResolutionContest:
		attacker := rules.ContestSide{
			Bonus: st.actor.SkillBonus(res.AttackerSkill),
			Stack: modifiers.NewStack(s.statuses.ActiveModifiers(st.actor.ID, modifiers.TargetSkillCheck)...),
		}
		defender := rules.ContestSide{
			Stack: modifiers.NewStack(s.statuses.ActiveModifiers(target.ID, modifiers.TargetSkillCheck)...),
		}
		if len(res.DefenderSkills) > 0 {
			defender.Bonus = target.BestSkillBonus(res.DefenderSkills)
		} else {
			// No defender skill declared: ability modifier only.
			defender.Bonus = target.AbilityModifier(shared.AbilityForSkill(res.AttackerSkill))
		}

		tie := res.TiePolicy
		if tie == "" {
			tie = rules.TieDefenderWins
		}
		contest, err := s.engine.Contest(attacker, defender, tie)
		if err != nil {
			return nil, err
		}
		outcome.Contest = contest
		outcome.Failed = contest.AttackerWins

	default: // ResolutionNone
		// No check: the action simply lands.
		outcome.Failed = true
	}

	event := combat.Event{
		Type:   combat.EventRoll,
		Actor:  st.actor.ID,
		Target: target.ID,
		Action: st.def.ID,
		Check:  outcome.Check,
	}
	if outcome.Contest != nil {
		event.Type = combat.EventContest
		event.Contest = outcome.Contest
	}
	if res.Kind != content.ResolutionNone {
		*st.sink() = append(*st.sink(), event)
	}

	return outcome, nil
}

// saveModifiers filters a target's saving-throw modifiers to one ability
func (s *service) saveModifiers(targetID string, ability shared.Attribute) []modifiers.Modifier {
	all := s.statuses.ActiveModifiers(targetID, modifiers.TargetSavingThrow)
	out := make([]modifiers.Modifier, 0, len(all))
	for _, m := range all {
		if m.Ability == "" || m.Ability == ability {
			out = append(out, m)
		}
	}
	return out
}

// openWindow opens an interrupt window and inlines every fired reaction's
// events into the sink
func (s *service) openWindow(ctx context.Context, sink *[]combat.Event, ev *reactions.TriggerEvent) error {
	fired, err := s.resolver.Resolve(ctx, s.encounter, ev, s)
	for _, f := range fired {
		*sink = append(*sink, combat.Event{
			Type:   combat.EventReaction,
			Actor:  f.ReactorID,
			Action: f.ReactionID,
			Detail: string(ev.Window),
		})
		if f.Result != nil {
			*sink = append(*sink, f.Result.Events...)
		}
	}
	return err
}

// checkEncounterEnd closes the encounter when at most one hostile side
// still stands
func (s *service) checkEncounterEnd(sink *[]combat.Event) {
	if s.encounter.Status != combat.EncounterStatusActive {
		return
	}
	over, winner := s.encounter.CheckCombatEnd()
	if !over {
		return
	}
	s.encounter.Status = combat.EncounterStatusCompleted
	*sink = append(*sink, combat.Event{
		Type:   combat.EventEncounterEnded,
		Round:  s.encounter.Round,
		Detail: fmt.Sprintf("winner: %s", winner),
	})
}
