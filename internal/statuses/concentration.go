package statuses

import "sort"

// ContractByCaster returns a caster's active concentration contract
func (m *Manager) ContractByCaster(casterID string) *Contract {
	return m.contracts[casterID]
}

func (m *Manager) contractByID(contractID string) *Contract {
	for _, contract := range m.contracts {
		if contract.ID == contractID {
			return contract
		}
	}
	return nil
}

// BeginConcentration opens a new contract for a caster. Any existing
// contract is broken first and returned along with its torn-down instances,
// so the old effect is gone before the new action's own roll happens.
func (m *Manager) BeginConcentration(casterID, actionID string) (contract *Contract, broken *Contract, torndown []*Instance) {
	if existing := m.contracts[casterID]; existing != nil {
		broken, torndown = m.BreakConcentration(casterID)
	}

	contract = &Contract{
		ID:       m.idGen.New(),
		CasterID: casterID,
		ActionID: actionID,
	}
	m.contracts[casterID] = contract
	return contract, broken, torndown
}

// LinkSummon ties a summoned combatant's lifetime to a contract
func (m *Manager) LinkSummon(contractID, combatantID string) {
	if contract := m.contractByID(contractID); contract != nil {
		contract.LinkedSummons = append(contract.LinkedSummons, combatantID)
	}
}

// BreakConcentration ends a caster's contract and tears down every linked
// effect instance atomically. No instance referencing the contract survives;
// linked summon ids are left on the returned contract for the pipeline to
// despawn.
func (m *Manager) BreakConcentration(casterID string) (*Contract, []*Instance) {
	contract := m.contracts[casterID]
	if contract == nil {
		return nil, nil
	}
	delete(m.contracts, casterID)

	var removed []*Instance
	for _, instanceID := range append([]string(nil), contract.LinkedInstances...) {
		if inst, ok := m.instances[instanceID]; ok {
			removed = append(removed, inst)
			m.delete(instanceID)
		}
	}
	contract.LinkedInstances = nil
	return contract, removed
}

// Contracts returns all contracts ordered by caster id, for snapshots
func (m *Manager) Contracts() []*Contract {
	casters := make([]string, 0, len(m.contracts))
	for id := range m.contracts {
		casters = append(casters, id)
	}
	sort.Strings(casters)

	out := make([]*Contract, 0, len(casters))
	for _, id := range casters {
		out = append(out, m.contracts[id])
	}
	return out
}

// RestoreState replaces the manager's instances and contracts from a
// snapshot, preserving the given order
func (m *Manager) RestoreState(instances []*Instance, contracts []*Contract) {
	m.instances = make(map[string]*Instance, len(instances))
	m.order = m.order[:0]
	for _, inst := range instances {
		m.instances[inst.ID] = inst
		m.order = append(m.order, inst.ID)
	}

	m.contracts = make(map[string]*Contract, len(contracts))
	for _, contract := range contracts {
		m.contracts[contract.CasterID] = contract
	}
}
