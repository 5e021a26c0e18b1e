package statuses

import (
	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/modifiers"
	"github.com/skirmishlab/skirmish/internal/uuid"
)

// Manager owns every status instance and concentration contract in an
// encounter. Instances keep creation order so boundary processing never
// depends on map iteration.
type Manager struct {
	registry  *content.Registry
	idGen     uuid.Generator
	instances map[string]*Instance
	order     []string
	contracts map[string]*Contract // caster id -> contract
}

// ManagerConfig holds configuration for the manager
type ManagerConfig struct {
	Registry    *content.Registry
	IDGenerator uuid.Generator
}

// NewManager creates a status manager
func NewManager(cfg *ManagerConfig) *Manager {
	if cfg == nil || cfg.Registry == nil {
		panic("registry is required")
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewSequenceGenerator("status")
	}
	return &Manager{
		registry:  cfg.Registry,
		idGen:     idGen,
		instances: make(map[string]*Instance),
		contracts: make(map[string]*Contract),
	}
}

// Apply puts a status on a target, honoring the definition's stacking
// policy. The returned bool is true when a new instance was created.
func (m *Manager) Apply(defID, sourceID, targetID, contractID string) (*Instance, bool, error) {
	def, err := m.registry.Status(defID)
	if err != nil {
		return nil, false, err
	}

	if existing := m.find(defID, sourceID, targetID); existing != nil {
		switch def.Stacking {
		case content.StackingRefresh:
			existing.Remaining = def.DurationAmount
			return existing, false, nil
		case content.StackingStack:
			max := def.MaxStacks
			if max < 1 {
				max = 1
			}
			if existing.Stacks < max {
				existing.Stacks++
			}
			existing.Remaining = def.DurationAmount
			return existing, false, nil
		default: // StackingReject
			return existing, false, nil
		}
	}

	instance := &Instance{
		ID:           m.idGen.New(),
		DefinitionID: defID,
		SourceID:     sourceID,
		TargetID:     targetID,
		ContractID:   contractID,
		DurationKind: def.DurationKind,
		Remaining:    def.DurationAmount,
		Stacks:       1,
	}
	m.instances[instance.ID] = instance
	m.order = append(m.order, instance.ID)

	if contractID != "" {
		if contract := m.contractByID(contractID); contract != nil {
			contract.LinkedInstances = append(contract.LinkedInstances, instance.ID)
		}
	}

	return instance, true, nil
}

func (m *Manager) find(defID, sourceID, targetID string) *Instance {
	for _, id := range m.order {
		inst := m.instances[id]
		if inst.DefinitionID == defID && inst.SourceID == sourceID && inst.TargetID == targetID {
			return inst
		}
	}
	return nil
}

// Remove deletes one instance by id
func (m *Manager) Remove(instanceID string) (*Instance, error) {
	inst, ok := m.instances[instanceID]
	if !ok {
		return nil, errors.NotFoundf("status instance %q not found", instanceID)
	}
	m.delete(instanceID)
	return inst, nil
}

func (m *Manager) delete(instanceID string) {
	inst, ok := m.instances[instanceID]
	if !ok {
		return
	}
	delete(m.instances, instanceID)
	for i, id := range m.order {
		if id == instanceID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if inst.ContractID != "" {
		if contract := m.contractByID(inst.ContractID); contract != nil {
			for i, id := range contract.LinkedInstances {
				if id == instanceID {
					contract.LinkedInstances = append(contract.LinkedInstances[:i], contract.LinkedInstances[i+1:]...)
					break
				}
			}
		}
	}
}

// RemoveByDefinition strips a status across every target that received it
// from the same source and the same contract, not just the first one
func (m *Manager) RemoveByDefinition(defID, sourceID, contractID string) []*Instance {
	var removed []*Instance
	for _, id := range append([]string(nil), m.order...) {
		inst := m.instances[id]
		if inst == nil {
			continue
		}
		if inst.DefinitionID == defID && inst.SourceID == sourceID && inst.ContractID == contractID {
			removed = append(removed, inst)
			m.delete(id)
		}
	}
	return removed
}

// InstancesOn returns a target's active instances in application order
func (m *Manager) InstancesOn(targetID string) []*Instance {
	var out []*Instance
	for _, id := range m.order {
		if inst := m.instances[id]; inst.TargetID == targetID {
			out = append(out, inst)
		}
	}
	return out
}

// Instances returns every active instance in application order
func (m *Manager) Instances() []*Instance {
	out := make([]*Instance, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.instances[id])
	}
	return out
}

// ActiveModifiers collects a target's status modifiers for one roll target,
// repeated per stack
func (m *Manager) ActiveModifiers(targetID string, target modifiers.Target) []modifiers.Modifier {
	var out []modifiers.Modifier
	for _, inst := range m.InstancesOn(targetID) {
		def, err := m.registry.Status(inst.DefinitionID)
		if err != nil {
			continue
		}
		for _, mod := range def.Modifiers {
			if mod.Target != target {
				continue
			}
			if mod.Source == "" {
				mod.Source = def.Name
			}
			for i := 0; i < inst.Stacks; i++ {
				out = append(out, mod)
			}
		}
	}
	return out
}

// DefensiveModifiers collects a target's damage-mitigation modifiers
// regardless of declared roll target
func (m *Manager) DefensiveModifiers(targetID string) []modifiers.Modifier {
	var out []modifiers.Modifier
	for _, inst := range m.InstancesOn(targetID) {
		def, err := m.registry.Status(inst.DefinitionID)
		if err != nil {
			continue
		}
		for _, mod := range def.Modifiers {
			switch mod.Kind {
			case modifiers.KindResistance, modifiers.KindImmunity,
				modifiers.KindVulnerability, modifiers.KindResistAll,
				modifiers.KindIncomingFlat:
				out = append(out, mod)
			}
		}
	}
	return out
}

// IsIncapacitated reports whether any active status incapacitates the target
func (m *Manager) IsIncapacitated(targetID string) bool {
	for _, inst := range m.InstancesOn(targetID) {
		if def, err := m.registry.Status(inst.DefinitionID); err == nil && def.Incapacitates {
			return true
		}
	}
	return false
}

// TickTurnStart reports pending turn-start tick effects (damage over time)
// for the combatant beginning their turn
func (m *Manager) TickTurnStart(targetID string) []Tick {
	var ticks []Tick
	for _, inst := range m.InstancesOn(targetID) {
		def, err := m.registry.Status(inst.DefinitionID)
		if err != nil || def.TickDamage == nil {
			continue
		}
		ticks = append(ticks, Tick{Instance: inst, Status: def})
	}
	return ticks
}

// TickTurnEnd decrements turn-scoped durations for the combatant ending
// their turn and returns expired instances
func (m *Manager) TickTurnEnd(targetID string) []*Instance {
	var expired []*Instance
	for _, inst := range m.InstancesOn(targetID) {
		if inst.DurationKind != content.DurationTurns {
			continue
		}
		inst.Remaining--
		if inst.Remaining <= 0 {
			expired = append(expired, inst)
		}
	}
	for _, inst := range expired {
		m.delete(inst.ID)
	}
	return expired
}

// RoundEnd decrements round-scoped durations across all targets in
// application order and returns expired instances
func (m *Manager) RoundEnd() []*Instance {
	var expired []*Instance
	for _, id := range append([]string(nil), m.order...) {
		inst := m.instances[id]
		if inst == nil || inst.DurationKind != content.DurationRounds {
			continue
		}
		inst.Remaining--
		if inst.Remaining <= 0 {
			expired = append(expired, inst)
		}
	}
	for _, inst := range expired {
		m.delete(inst.ID)
	}
	return expired
}

// OnDamageTaken removes break-on-damage statuses from a damaged target and
// returns what broke
func (m *Manager) OnDamageTaken(targetID string) []*Instance {
	var broken []*Instance
	for _, inst := range m.InstancesOn(targetID) {
		if def, err := m.registry.Status(inst.DefinitionID); err == nil && def.BreaksOnDamage {
			broken = append(broken, inst)
		}
	}
	for _, inst := range broken {
		m.delete(inst.ID)
	}
	return broken
}

// Definition resolves an instance's status definition
func (m *Manager) Definition(inst *Instance) (*content.StatusDefinition, error) {
	return m.registry.Status(inst.DefinitionID)
}
