package content

import (
	"github.com/skirmishlab/skirmish/internal/errors"
)

// Registry holds validated content definitions. Lookup is by id; iteration
// uses registration order so nothing downstream depends on map ordering.
type Registry struct {
	actions     map[string]*ActionDefinition
	statuses    map[string]*StatusDefinition
	reactions   map[string]*ReactionDefinition
	actionOrder []string
	reactionOrder []string
	validated   bool
}

// NewRegistry creates an empty content registry
func NewRegistry() *Registry {
	return &Registry{
		actions:   make(map[string]*ActionDefinition),
		statuses:  make(map[string]*StatusDefinition),
		reactions: make(map[string]*ReactionDefinition),
	}
}

// AddAction registers an action definition
func (r *Registry) AddAction(def *ActionDefinition) error {
	if def == nil || def.ID == "" {
		return errors.Validation("action definition requires an id")
	}
	if _, exists := r.actions[def.ID]; exists {
		return errors.Validationf("duplicate action id %q", def.ID)
	}
	r.actions[def.ID] = def
	r.actionOrder = append(r.actionOrder, def.ID)
	r.validated = false
	return nil
}

// AddStatus registers a status definition
func (r *Registry) AddStatus(def *StatusDefinition) error {
	if def == nil || def.ID == "" {
		return errors.Validation("status definition requires an id")
	}
	if _, exists := r.statuses[def.ID]; exists {
		return errors.Validationf("duplicate status id %q", def.ID)
	}
	r.statuses[def.ID] = def
	r.validated = false
	return nil
}

// AddReaction registers a reaction definition
func (r *Registry) AddReaction(def *ReactionDefinition) error {
	if def == nil || def.ID == "" {
		return errors.Validation("reaction definition requires an id")
	}
	if _, exists := r.reactions[def.ID]; exists {
		return errors.Validationf("duplicate reaction id %q", def.ID)
	}
	r.reactions[def.ID] = def
	r.reactionOrder = append(r.reactionOrder, def.ID)
	r.validated = false
	return nil
}

// Action returns an action definition by id
func (r *Registry) Action(id string) (*ActionDefinition, error) {
	def, ok := r.actions[id]
	if !ok {
		return nil, errors.NotFoundf("action %q not found", id)
	}
	return def, nil
}

// Status returns a status definition by id
func (r *Registry) Status(id string) (*StatusDefinition, error) {
	def, ok := r.statuses[id]
	if !ok {
		return nil, errors.NotFoundf("status %q not found", id)
	}
	return def, nil
}

// Reaction returns a reaction definition by id
func (r *Registry) Reaction(id string) (*ReactionDefinition, error) {
	def, ok := r.reactions[id]
	if !ok {
		return nil, errors.NotFoundf("reaction %q not found", id)
	}
	return def, nil
}

// Actions returns all action definitions in registration order
func (r *Registry) Actions() []*ActionDefinition {
	out := make([]*ActionDefinition, 0, len(r.actionOrder))
	for _, id := range r.actionOrder {
		out = append(out, r.actions[id])
	}
	return out
}

// Reactions returns all reaction definitions in registration order
func (r *Registry) Reactions() []*ReactionDefinition {
	out := make([]*ReactionDefinition, 0, len(r.reactionOrder))
	for _, id := range r.reactionOrder {
		out = append(out, r.reactions[id])
	}
	return out
}

// Validate flattens extends chains and rejects structurally broken content.
// It is fatal at load time: a registry that fails validation never reaches
// the pipeline.
func (r *Registry) Validate() error {
	if err := r.flattenActions(); err != nil {
		return err
	}
	if err := r.flattenStatuses(); err != nil {
		return err
	}

	for _, id := range r.actionOrder {
		if err := r.validateAction(r.actions[id]); err != nil {
			return err
		}
	}
	for _, id := range r.reactionOrder {
		def := r.reactions[id]
		if def.Window == "" {
			return errors.Validationf("reaction %q has no trigger window", id)
		}
		if _, ok := r.actions[def.ActionID]; !ok {
			return errors.Validationf("reaction %q references unknown action %q", id, def.ActionID)
		}
	}

	r.validated = true
	return nil
}

// Validated reports whether Validate has passed since the last mutation
func (r *Registry) Validated() bool {
	return r.validated
}

func (r *Registry) validateAction(def *ActionDefinition) error {
	if def.Cost == "" {
		return errors.Validationf("action %q has no cost type", def.ID)
	}

	switch def.Resolution.Kind {
	case ResolutionNone, ResolutionAttack:
	case ResolutionSave:
		if def.Resolution.SaveAbility == "" {
			return errors.Validationf("action %q declares a save without an ability", def.ID)
		}
	case ResolutionContest:
		if def.Resolution.AttackerSkill == "" {
			return errors.Validationf("action %q declares a contest without an attacker skill", def.ID)
		}
	default:
		return errors.Validationf("action %q has unknown resolution kind %q", def.ID, def.Resolution.Kind)
	}

	for _, effect := range def.Effects {
		if err := r.validateEffect(def.ID, effect); err != nil {
			return err
		}
	}
	for _, variant := range def.Variants {
		if variant.ID == "" {
			return errors.Validationf("action %q has a variant without an id", def.ID)
		}
		for _, effect := range variant.Effects {
			if err := r.validateEffect(def.ID, effect); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) validateEffect(actionID string, effect EffectSpec) error {
	payloadSet := 0
	if effect.Damage != nil {
		payloadSet++
	}
	if effect.Heal != nil {
		payloadSet++
	}
	if effect.Status != nil {
		payloadSet++
	}
	if effect.RemoveStatus != nil {
		payloadSet++
	}
	if effect.TempHP != nil {
		payloadSet++
	}
	if effect.ForceMove != nil {
		payloadSet++
	}
	if effect.Resource != nil {
		payloadSet++
	}
	if effect.GrantAction != nil {
		payloadSet++
	}
	if effect.Summon != nil {
		payloadSet++
	}
	if payloadSet != 1 {
		return errors.Validationf("action %q: effect %q must carry exactly one payload, has %d", actionID, effect.Kind, payloadSet)
	}

	ok := false
	switch effect.Kind {
	case EffectDamage:
		ok = effect.Damage != nil
	case EffectHeal:
		ok = effect.Heal != nil
	case EffectApplyStatus:
		ok = effect.Status != nil
		if ok {
			if _, exists := r.statuses[effect.Status.StatusID]; !exists {
				return errors.Validationf("action %q references unknown status %q", actionID, effect.Status.StatusID)
			}
		}
	case EffectRemoveStatus:
		ok = effect.RemoveStatus != nil
		if ok {
			if _, exists := r.statuses[effect.RemoveStatus.StatusID]; !exists {
				return errors.Validationf("action %q removes unknown status %q", actionID, effect.RemoveStatus.StatusID)
			}
		}
	case EffectTempHP:
		ok = effect.TempHP != nil
	case EffectForceMove:
		ok = effect.ForceMove != nil
	case EffectResource:
		ok = effect.Resource != nil
	case EffectGrantAction:
		ok = effect.GrantAction != nil
	case EffectSummon:
		ok = effect.Summon != nil
	default:
		return errors.Validationf("action %q has unknown effect kind %q", actionID, effect.Kind)
	}
	if !ok {
		return errors.Validationf("action %q: effect kind %q does not match its payload", actionID, effect.Kind)
	}
	return nil
}

// flattenActions materializes extends chains into complete records so
// execution never walks an inheritance chain
func (r *Registry) flattenActions() error {
	for _, id := range r.actionOrder {
		if _, err := r.flattenAction(id, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) flattenAction(id string, seen map[string]bool) (*ActionDefinition, error) {
	if seen[id] {
		return nil, errors.Validationf("action %q has a circular extends chain", id)
	}
	seen[id] = true

	def, ok := r.actions[id]
	if !ok {
		return nil, errors.Validationf("action %q extends unknown action", id)
	}
	if def.Extends == "" {
		return def, nil
	}

	parent, err := r.flattenAction(def.Extends, seen)
	if err != nil {
		return nil, err
	}

	if def.Cost == "" {
		def.Cost = parent.Cost
	}
	if !def.IsWeapon {
		def.IsWeapon = parent.IsWeapon
	}
	if !def.Concentration {
		def.Concentration = parent.Concentration
	}
	if def.Targeting == (Targeting{}) {
		def.Targeting = parent.Targeting
	}
	if def.Resolution.Kind == "" {
		def.Resolution = parent.Resolution
	}
	if len(def.Effects) == 0 {
		def.Effects = append([]EffectSpec(nil), parent.Effects...)
	}
	if len(def.Variants) == 0 {
		def.Variants = append([]Variant(nil), parent.Variants...)
	}
	def.Extends = ""
	return def, nil
}

func (r *Registry) flattenStatuses() error {
	for id := range r.statuses {
		if _, err := r.flattenStatus(id, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) flattenStatus(id string, seen map[string]bool) (*StatusDefinition, error) {
	if seen[id] {
		return nil, errors.Validationf("status %q has a circular extends chain", id)
	}
	seen[id] = true

	def, ok := r.statuses[id]
	if !ok {
		return nil, errors.Validationf("status %q extends unknown status", id)
	}
	if def.Extends == "" {
		return def, nil
	}

	parent, err := r.flattenStatus(def.Extends, seen)
	if err != nil {
		return nil, err
	}

	if def.DurationKind == "" {
		def.DurationKind = parent.DurationKind
		def.DurationAmount = parent.DurationAmount
	}
	if def.Stacking == "" {
		def.Stacking = parent.Stacking
		def.MaxStacks = parent.MaxStacks
	}
	if len(def.Modifiers) == 0 {
		def.Modifiers = append(def.Modifiers, parent.Modifiers...)
	}
	if !def.BreaksOnDamage {
		def.BreaksOnDamage = parent.BreaksOnDamage
	}
	if !def.Incapacitates {
		def.Incapacitates = parent.Incapacitates
	}
	if !def.Fragile {
		def.Fragile = parent.Fragile
	}
	if def.TickDamage == nil {
		def.TickDamage = parent.TickDamage
	}
	def.Extends = ""
	return def, nil
}
