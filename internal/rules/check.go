package rules

import (
	"github.com/skirmishlab/skirmish/internal/modifiers"
)

// CheckKind labels what a d20 resolution was for
type CheckKind string

const (
	CheckAttack      CheckKind = "attack"
	CheckSave        CheckKind = "save"
	CheckSkill       CheckKind = "skill"
	CheckContest     CheckKind = "contest"
	CheckDeathSave   CheckKind = "death_save"
	CheckInitiative  CheckKind = "initiative"
	CheckConcentrate CheckKind = "concentration"
)

// CheckResult is the audited outcome of a single d20 resolution. It is
// immutable once produced and carries every contributing modifier so a log
// consumer never has to re-derive a roll.
type CheckResult struct {
	Kind      CheckKind         `json:"kind"`
	Natural   int               `json:"natural"`
	Rolls     []int             `json:"rolls"`
	Advantage string            `json:"advantage"`
	Bonus     int               `json:"bonus"`
	Total     int               `json:"total"`
	DC        int               `json:"dc,omitempty"`
	Success   bool              `json:"success"`
	Critical  bool              `json:"critical,omitempty"`
	Fumble    bool              `json:"fumble,omitempty"`
	Breakdown []modifiers.Entry `json:"breakdown,omitempty"`
}

// TiePolicy decides a contest where both totals match
type TiePolicy string

const (
	// TieDefenderWins is the default: the defender holds their ground
	TieDefenderWins TiePolicy = "defender_wins"
	TieAttackerWins TiePolicy = "attacker_wins"
)

// ContestSide is one participant in an opposed check
type ContestSide struct {
	Bonus int
	Stack *modifiers.Stack
}

// ContestResult holds both rolls of an opposed check. Attacker.Success and
// Defender.Success are synthesized so contest outcomes flow through the same
// did-this-target-fail predicate as save-based actions.
type ContestResult struct {
	Attacker     *CheckResult `json:"attacker"`
	Defender     *CheckResult `json:"defender"`
	AttackerWins bool         `json:"attacker_wins"`
}
