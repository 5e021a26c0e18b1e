package dice

import (
	"errors"
	"math/rand"
	"sync"
)

// SeededRoller implements Roller over a seeded pseudo-random stream. Every
// committed roll in the engine goes through one of these; there is no other
// entropy source. Two rollers built from the same seed produce identical
// draw sequences, and a (seed, draws) cursor is enough to resume a stream
// mid-combat.
type SeededRoller struct {
	mu    sync.Mutex
	rng   *rand.Rand
	seed  int64
	draws uint64
	forks uint64
}

// NewSeededRoller creates a roller positioned at the start of the stream for seed
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// NewSeededRollerAt creates a roller resumed at a saved cursor by replaying
// and discarding the already-consumed draws
func NewSeededRollerAt(seed int64, draws uint64) *SeededRoller {
	r := NewSeededRoller(seed)
	for i := uint64(0); i < draws; i++ {
		r.rng.Int63()
	}
	r.draws = draws
	return r
}

// Seed returns the stream seed
func (r *SeededRoller) Seed() int64 {
	return r.seed
}

// Draws returns how many values have been consumed from the committed stream
func (r *SeededRoller) Draws() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// draw consumes one value in [1, sides] from the stream. Every draw costs
// exactly one generator step regardless of sides, so the (seed, draws)
// cursor positions a resumed stream exactly. Intn would not: its rejection
// sampling consumes a variable number of steps.
func (r *SeededRoller) draw(sides int) int {
	r.draws++
	return int(r.rng.Int63()%int64(sides)) + 1
}

// Roll implements Roller.Roll
func (r *SeededRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		rolls[i] = r.draw(sides)
		total += rolls[i]
	}

	result := &RollResult{
		Total:    total + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: total,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage. Both dice come off
// the same stream in the same order no matter which modifier granted the
// advantage, so replays from the same seed are exact.
func (r *SeededRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roll1 := r.draw(sides)
	roll2 := r.draw(sides)
	kept := roll1
	if roll2 > roll1 {
		kept = roll2
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *SeededRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	roll1 := r.draw(sides)
	roll2 := r.draw(sides)
	kept := roll1
	if roll2 < roll1 {
		kept = roll2
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{roll1, roll2},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}

// Fork returns a roller on an independent side-stream. The child's seed is
// derived from the parent's seed, cursor and fork count, so forks are
// themselves reproducible, but drawing from a fork never advances the
// committed stream.
func (r *SeededRoller) Fork() Roller {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.forks++
	childSeed := int64(uint64(r.seed) ^ r.draws*0x9E3779B97F4A7C15 ^ r.forks<<32)
	return NewSeededRoller(childSeed)
}
