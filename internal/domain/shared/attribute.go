package shared

// Attribute is one of the six ability scores.
type Attribute string

var Attributes = []Attribute{AttributeStrength, AttributeDexterity, AttributeConstitution, AttributeIntelligence, AttributeWisdom, AttributeCharisma}

const (
	AttributeNone         Attribute = ""
	AttributeStrength     Attribute = "Str"
	AttributeDexterity    Attribute = "Dex"
	AttributeConstitution Attribute = "Con"
	AttributeIntelligence Attribute = "Int"
	AttributeWisdom       Attribute = "Wis"
	AttributeCharisma     Attribute = "Cha"
)

// ScoreModifier converts a raw ability score to its modifier (10 -> +0, 8 -> -1).
func ScoreModifier(score int) int {
	// Integer division truncates toward zero, which is wrong for odd scores
	// below 10, so floor explicitly.
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}
