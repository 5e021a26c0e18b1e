package scenario

import (
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
)

// Demo returns the stock two-on-two skirmish used by the simulator when no
// scenario file is given
func Demo() *Scenario {
	return &Scenario{
		Name: "Crossroads Ambush",
		Combatants: []CombatantSpec{
			{
				ID:      "fighter",
				Name:    "Sera",
				Faction: shared.FactionParty,
				Abilities: map[shared.Attribute]int{
					shared.AttributeStrength:     16,
					shared.AttributeDexterity:    13,
					shared.AttributeConstitution: 14,
				},
				SkillProficiencies: []shared.Skill{shared.SkillAthletics},
				SaveProficiencies:  []shared.Attribute{shared.AttributeStrength, shared.AttributeConstitution},
				ProficiencyBonus:   2,
				MaxHP:              24,
				AC:                 17,
				Speed:              6,
				Position:           combat.Position{X: 0, Y: 0},
				Pools:              map[string]int{"second_wind": 1},
				Reactions:          []string{"opportunity_attack"},
			},
			{
				ID:      "wizard",
				Name:    "Maref",
				Faction: shared.FactionParty,
				Abilities: map[shared.Attribute]int{
					shared.AttributeIntelligence: 16,
					shared.AttributeDexterity:    14,
					shared.AttributeConstitution: 12,
				},
				SaveProficiencies: []shared.Attribute{shared.AttributeIntelligence, shared.AttributeWisdom},
				ProficiencyBonus:  2,
				MaxHP:             14,
				AC:                12,
				Speed:             6,
				Position:          combat.Position{X: 1, Y: 2},
				Reactions:         []string{"shield_reaction"},
			},
			{
				ID:      "orc",
				Name:    "Orc Raider",
				Faction: shared.FactionHostile,
				Abilities: map[shared.Attribute]int{
					shared.AttributeStrength:     16,
					shared.AttributeDexterity:    12,
					shared.AttributeConstitution: 16,
				},
				ProficiencyBonus: 2,
				MaxHP:            15,
				AC:               13,
				Speed:            6,
				Position:         combat.Position{X: 5, Y: 0},
				Reactions:        []string{"opportunity_attack"},
			},
			{
				ID:      "shaman",
				Name:    "Goblin Shaman",
				Faction: shared.FactionHostile,
				Abilities: map[shared.Attribute]int{
					shared.AttributeWisdom:    15,
					shared.AttributeDexterity: 14,
				},
				ProficiencyBonus: 2,
				MaxHP:            10,
				AC:               12,
				Speed:            6,
				Position:         combat.Position{X: 6, Y: 2},
				Resistances:      []shared.DamageType{shared.DamageTypePoison},
			},
		},
		Script: []Step{
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "wizard", ActionID: "bless", TargetIDs: []string{"fighter", "wizard"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "fighter", ActionID: "melee_attack", TargetIDs: []string{"orc"}}},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "fighter", ActionID: "shove", TargetIDs: []string{"orc"}, VariantID: "trip"}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "orc", ActionID: "melee_attack", TargetIDs: []string{"fighter"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "shaman", ActionID: "hold_person", TargetIDs: []string{"fighter"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "wizard", ActionID: "magic_missile", TargetIDs: []string{"shaman", "shaman", "orc"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "fighter", ActionID: "second_wind", TargetIDs: []string{"fighter"}}},
			{Kind: StepMove, ActorID: "fighter", To: &combat.Position{X: 4, Y: 1}},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "fighter", ActionID: "melee_attack", TargetIDs: []string{"shaman"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "orc", ActionID: "melee_attack", TargetIDs: []string{"wizard"}}},
			{Kind: StepEndTurn},
			{Kind: StepAction, Request: &combat.ActionRequest{ActorID: "wizard", ActionID: "firebolt", TargetIDs: []string{"orc"}}},
			{Kind: StepEndTurn},
		},
	}
}
