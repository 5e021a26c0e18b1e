package mockdice

import (
	"fmt"
	"sync"

	"github.com/skirmishlab/skirmish/internal/dice"
)

// ManualMockRoller implements dice.ForkableRoller for testing with
// predetermined results
type ManualMockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewManualMockRoller creates a new mock dice roller
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{
		rolls: []int{},
	}
}

// SetNextRoll sets the next roll result
func (m *ManualMockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets multiple roll results
func (m *ManualMockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *ManualMockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll
func (m *ManualMockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements dice.Roller.Roll
func (m *ManualMockRoller) Roll(count, sides, bonus int) (*dice.RollResult, error) {
	if count < 1 || sides < 1 {
		return nil, fmt.Errorf("invalid dice: %dd%d", count, sides)
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		rolls[i] = roll
		total += roll
	}

	result := &dice.RollResult{
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

// RollWithAdvantage implements dice.Roller.RollWithAdvantage
func (m *ManualMockRoller) RollWithAdvantage(sides, bonus int) (*dice.RollResult, error) {
	return m.rollTwiceKeep(sides, bonus, func(a, b int) int {
		if b > a {
			return b
		}
		return a
	})
}

// RollWithDisadvantage implements dice.Roller.RollWithDisadvantage
func (m *ManualMockRoller) RollWithDisadvantage(sides, bonus int) (*dice.RollResult, error) {
	return m.rollTwiceKeep(sides, bonus, func(a, b int) int {
		if b < a {
			return b
		}
		return a
	})
}

func (m *ManualMockRoller) rollTwiceKeep(sides, bonus int, keep func(a, b int) int) (*dice.RollResult, error) {
	roll1, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}
	roll2, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}

	kept := keep(roll1, roll2)
	result := &dice.RollResult{
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

// Fork implements dice.ForkableRoller.Fork. The fork gets a copy of the
// remaining predetermined rolls; consuming it does not advance the parent.
func (m *ManualMockRoller) Fork() dice.Roller {
	m.mu.Lock()
	defer m.mu.Unlock()

	remaining := make([]int, len(m.rolls[m.rollIndex:]))
	copy(remaining, m.rolls[m.rollIndex:])
	return &ManualMockRoller{rolls: remaining}
}
