package modifiers

import "github.com/skirmishlab/skirmish/internal/domain/shared"

// DefaultCritThreshold is the natural roll that crits absent modifiers
const DefaultCritThreshold = 20

// Stack accumulates the modifiers applicable to one roll and resolves them.
// Order of addition is preserved for the breakdown; resolution itself is
// order-independent.
type Stack struct {
	mods []Modifier
}

// NewStack creates a stack seeded with the given modifiers
func NewStack(mods ...Modifier) *Stack {
	s := &Stack{}
	s.Add(mods...)
	return s
}

// Add appends modifiers to the stack
func (s *Stack) Add(mods ...Modifier) {
	s.mods = append(s.mods, mods...)
}

// Modifiers returns the collected modifiers in addition order
func (s *Stack) Modifiers() []Modifier {
	return s.mods
}

// AdvantageState nets all advantage and disadvantage sources. Sources never
// stack additively: any advantage plus any disadvantage cancels to Normal.
func (s *Stack) AdvantageState() AdvantageState {
	hasAdv, hasDis := false, false
	for _, m := range s.mods {
		switch m.Kind {
		case KindAdvantage:
			hasAdv = true
		case KindDisadvantage:
			hasDis = true
		}
	}

	switch {
	case hasAdv && hasDis:
		return Normal
	case hasAdv:
		return Advantage
	case hasDis:
		return Disadvantage
	default:
		return Normal
	}
}

// FlatBonus sums the flat bonuses and penalties
func (s *Stack) FlatBonus() int {
	total := 0
	for _, m := range s.mods {
		if m.Kind == KindFlat {
			total += m.Value
		}
	}
	return total
}

// DiceBonuses returns the bonus dice modifiers in addition order
func (s *Stack) DiceBonuses() []Modifier {
	var out []Modifier
	for _, m := range s.mods {
		if m.Kind == KindDice {
			out = append(out, m)
		}
	}
	return out
}

// CritThreshold returns the lowest crit threshold granted, defaulting to 20.
// A threshold below 2 would make every roll a crit, so 2 is the floor.
func (s *Stack) CritThreshold() int {
	threshold := DefaultCritThreshold
	for _, m := range s.mods {
		if m.Kind == KindCritThreshold && m.Value < threshold {
			threshold = m.Value
		}
	}
	if threshold < 2 {
		threshold = 2
	}
	return threshold
}

// OutgoingPercent sums percentage adjustments to outgoing damage
func (s *Stack) OutgoingPercent() int {
	total := 0
	for _, m := range s.mods {
		if m.Kind == KindOutgoingPercent {
			total += m.Value
		}
	}
	return total
}

// IncomingFlat sums flat adjustments to incoming damage
func (s *Stack) IncomingFlat() int {
	total := 0
	for _, m := range s.mods {
		if m.Kind == KindIncomingFlat {
			total += m.Value
		}
	}
	return total
}

// Breakdown reports every contributing modifier in addition order
func (s *Stack) Breakdown() []Entry {
	entries := make([]Entry, 0, len(s.mods))
	for _, m := range s.mods {
		entries = append(entries, Entry{
			Source: m.Source,
			Kind:   m.Kind,
			Detail: m.describe(),
		})
	}
	return entries
}

// DamageProfile resolves a defender's resistance, immunity and vulnerability
// flags for incoming damage.
type DamageProfile struct {
	immune     map[shared.DamageType]bool
	resistant  map[shared.DamageType]bool
	vulnerable map[shared.DamageType]bool
	resistAll  bool
}

// NewDamageProfile builds a profile from defensive modifiers
func NewDamageProfile(mods []Modifier) *DamageProfile {
	p := &DamageProfile{
		immune:     make(map[shared.DamageType]bool),
		resistant:  make(map[shared.DamageType]bool),
		vulnerable: make(map[shared.DamageType]bool),
	}
	for _, m := range mods {
		switch m.Kind {
		case KindImmunity:
			p.immune[m.DamageType] = true
		case KindResistance:
			p.resistant[m.DamageType] = true
		case KindVulnerability:
			p.vulnerable[m.DamageType] = true
		case KindResistAll:
			p.resistAll = true
		}
	}
	return p
}

// Mitigate applies the percentage-incoming layer to one damage amount.
// Immunity wins outright. The blanket resist-all flag is checked
// independently of the per-type lookup and halves the result exactly once.
func (p *DamageProfile) Mitigate(t shared.DamageType, amount int) int {
	if amount <= 0 {
		return 0
	}
	if p.immune[t] {
		return 0
	}
	if p.resistant[t] {
		amount /= 2
	}
	if p.vulnerable[t] {
		amount *= 2
	}
	if p.resistAll {
		amount /= 2
	}
	return amount
}
