package dice

// Roller provides an interface for rolling dice
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls with advantage (roll twice, take higher)
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls with disadvantage (roll twice, take lower)
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}

// ForkableRoller is a Roller whose stream can be branched. A fork draws from
// its own side-stream; discarding it never perturbs the committed stream, so
// preview queries stay out of replayable resolution order.
type ForkableRoller interface {
	Roller

	// Fork returns an independent roller derived from, but not sharing,
	// this roller's stream
	Fork() Roller
}
