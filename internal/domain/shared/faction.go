package shared

// Faction is a combatant's allegiance tag. Party members get the downed
// substate at zero HP; everyone else dies outright.
type Faction string

const (
	FactionParty   Faction = "party"
	FactionHostile Faction = "hostile"
	FactionNeutral Faction = "neutral"
)

// IsParty reports whether the faction uses the downed substate.
func (f Faction) IsParty() bool {
	return f == FactionParty
}

// HostileTo reports whether two factions treat each other as enemies.
func (f Faction) HostileTo(other Faction) bool {
	if f == FactionNeutral || other == FactionNeutral {
		return false
	}
	return f != other
}
