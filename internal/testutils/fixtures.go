// Package testutils provides shared fixtures for engine tests
package testutils

import (
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/economy"
)

// CreateTestCombatant creates a baseline combatant with sane defaults
func CreateTestCombatant(id string, faction shared.Faction) *combat.Combatant {
	abilities := make(map[shared.Attribute]int, len(shared.Attributes))
	for _, attr := range shared.Attributes {
		abilities[attr] = 10
	}

	return &combat.Combatant{
		ID:               id,
		Name:             id,
		Faction:          faction,
		Abilities:        abilities,
		ProficiencyBonus: 2,
		HP:               combat.HPResource{Current: 20, Max: 20},
		AC:               14,
		Speed:            6,
		Reach:            1,
		LifeState:        combat.LifeAlive,
		Budget:           economy.NewBudget(6, 1),
		AttacksPerAction: 1,
		ReactionMode:     combat.ReactionAlways,
	}
}

// WithAbility sets one ability score and returns the combatant for chaining
func WithAbility(c *combat.Combatant, attr shared.Attribute, score int) *combat.Combatant {
	c.Abilities[attr] = score
	return c
}

// CreateTestEncounter creates an encounter holding the given combatants,
// with initiative preassigned in argument order so tests control the turn
// order without rolling
func CreateTestEncounter(combatants ...*combat.Combatant) *combat.Encounter {
	enc := combat.NewEncounter("enc-test", "test encounter")
	for i, c := range combatants {
		c.Initiative = 100 - i
		enc.AddCombatant(c)
	}
	enc.SortTurnOrder()
	enc.Status = combat.EncounterStatusActive
	enc.Round = 1
	for _, c := range combatants {
		c.Budget.StartRound()
	}
	return enc
}
