package shared

// Skill is a named proficiency tied to an ability score.
type Skill string

const (
	SkillAcrobatics     Skill = "acrobatics"
	SkillAnimalHandling Skill = "animal_handling"
	SkillArcana         Skill = "arcana"
	SkillAthletics      Skill = "athletics"
	SkillDeception      Skill = "deception"
	SkillHistory        Skill = "history"
	SkillInsight        Skill = "insight"
	SkillIntimidation   Skill = "intimidation"
	SkillInvestigation  Skill = "investigation"
	SkillMedicine       Skill = "medicine"
	SkillNature         Skill = "nature"
	SkillPerception     Skill = "perception"
	SkillPerformance    Skill = "performance"
	SkillPersuasion     Skill = "persuasion"
	SkillReligion       Skill = "religion"
	SkillSleightOfHand  Skill = "sleight_of_hand"
	SkillStealth        Skill = "stealth"
	SkillSurvival       Skill = "survival"
)

var skillAbilities = map[Skill]Attribute{
	SkillAcrobatics:     AttributeDexterity,
	SkillAnimalHandling: AttributeWisdom,
	SkillArcana:         AttributeIntelligence,
	SkillAthletics:      AttributeStrength,
	SkillDeception:      AttributeCharisma,
	SkillHistory:        AttributeIntelligence,
	SkillInsight:        AttributeWisdom,
	SkillIntimidation:   AttributeCharisma,
	SkillInvestigation:  AttributeIntelligence,
	SkillMedicine:       AttributeWisdom,
	SkillNature:         AttributeIntelligence,
	SkillPerception:     AttributeWisdom,
	SkillPerformance:    AttributeCharisma,
	SkillPersuasion:     AttributeCharisma,
	SkillReligion:       AttributeIntelligence,
	SkillSleightOfHand:  AttributeDexterity,
	SkillStealth:        AttributeDexterity,
	SkillSurvival:       AttributeWisdom,
}

// AbilityForSkill returns the ability score a skill keys off.
func AbilityForSkill(s Skill) Attribute {
	if attr, ok := skillAbilities[s]; ok {
		return attr
	}
	return AttributeNone
}
