package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmishlab/skirmish/internal/dice/mock"
	"github.com/skirmishlab/skirmish/internal/modifiers"
)

func newTestEngine(rolls ...int) (*Engine, *mockdice.ManualMockRoller) {
	roller := mockdice.NewManualMockRoller()
	roller.SetRolls(rolls)
	return NewEngine(&EngineConfig{Roller: roller}), roller
}

func TestNewEngine(t *testing.T) {
	t.Run("panics without a roller", func(t *testing.T) {
		assert.Panics(t, func() { NewEngine(nil) })
		assert.Panics(t, func() { NewEngine(&EngineConfig{}) })
	})
}

func TestEngine_RollAttack(t *testing.T) {
	t.Run("hit when total meets AC", func(t *testing.T) {
		engine, _ := newTestEngine(10)
		result, err := engine.RollAttack(5, 15, modifiers.NewStack())
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, 10, result.Natural)
		assert.Equal(t, 15, result.Total)
		assert.False(t, result.Critical)
	})

	t.Run("miss when total falls short", func(t *testing.T) {
		engine, _ := newTestEngine(9)
		result, err := engine.RollAttack(5, 15, modifiers.NewStack())
		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("natural 20 crits and hits any AC", func(t *testing.T) {
		engine, _ := newTestEngine(20)
		result, err := engine.RollAttack(0, 99, modifiers.NewStack())
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.True(t, result.Critical)
	})

	t.Run("natural 1 always misses", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		result, err := engine.RollAttack(30, 5, modifiers.NewStack())
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.True(t, result.Fumble)
		assert.False(t, result.Critical)
	})

	t.Run("lowered crit threshold", func(t *testing.T) {
		stack := modifiers.NewStack(modifiers.Modifier{
			Kind: modifiers.KindCritThreshold, Value: 19, Source: "keen blade",
		})
		engine, _ := newTestEngine(19)
		result, err := engine.RollAttack(0, 25, stack)
		require.NoError(t, err)

		assert.True(t, result.Critical)
		assert.True(t, result.Success, "crits hit regardless of AC")
	})

	t.Run("advantage keeps the higher die", func(t *testing.T) {
		stack := modifiers.NewStack(modifiers.Modifier{
			Kind: modifiers.KindAdvantage, Source: "flanking",
		})
		engine, _ := newTestEngine(7, 16)
		result, err := engine.RollAttack(0, 15, stack)
		require.NoError(t, err)

		assert.Equal(t, 16, result.Natural)
		assert.Equal(t, []int{7, 16}, result.Rolls)
		assert.Equal(t, "advantage", result.Advantage)
		assert.True(t, result.Success)
	})

	t.Run("disadvantage keeps the lower die", func(t *testing.T) {
		stack := modifiers.NewStack(modifiers.Modifier{
			Kind: modifiers.KindDisadvantage, Source: "prone",
		})
		engine, _ := newTestEngine(7, 16)
		result, err := engine.RollAttack(0, 15, stack)
		require.NoError(t, err)

		assert.Equal(t, 7, result.Natural)
		assert.False(t, result.Success)
	})

	t.Run("bonus dice and flat stack into the total", func(t *testing.T) {
		stack := modifiers.NewStack(
			modifiers.Modifier{Kind: modifiers.KindFlat, Value: 2, Source: "magic weapon"},
			modifiers.Modifier{Kind: modifiers.KindDice, DiceCount: 1, DiceSides: 4, Source: "blessed"},
		)
		// d20 then the bless die.
		engine, _ := newTestEngine(10, 3)
		result, err := engine.RollAttack(5, 20, stack)
		require.NoError(t, err)

		assert.Equal(t, 10, result.Bonus)
		assert.Equal(t, 20, result.Total)
		assert.True(t, result.Success)
		assert.Len(t, result.Breakdown, 2)
	})
}

func TestEngine_RollSave(t *testing.T) {
	t.Run("success meets DC", func(t *testing.T) {
		engine, _ := newTestEngine(12)
		result, err := engine.RollSave(3, 15, modifiers.NewStack())
		require.NoError(t, err)

		assert.Equal(t, CheckSave, result.Kind)
		assert.True(t, result.Success)
	})

	t.Run("natural 20 is not an automatic success", func(t *testing.T) {
		engine, _ := newTestEngine(20)
		result, err := engine.RollSave(0, 25, modifiers.NewStack())
		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("natural 1 is not an automatic failure", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		result, err := engine.RollSave(10, 5, modifiers.NewStack())
		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestEngine_Contest(t *testing.T) {
	t.Run("higher total wins", func(t *testing.T) {
		engine, _ := newTestEngine(15, 10)
		result, err := engine.Contest(
			ContestSide{Bonus: 2}, ContestSide{Bonus: 2}, TieDefenderWins,
		)
		require.NoError(t, err)

		assert.True(t, result.AttackerWins)
		assert.True(t, result.Attacker.Success)
		assert.False(t, result.Defender.Success)
	})

	t.Run("tie falls to the defender by default", func(t *testing.T) {
		engine, _ := newTestEngine(12, 14)
		result, err := engine.Contest(
			ContestSide{Bonus: 4}, ContestSide{Bonus: 2}, TieDefenderWins,
		)
		require.NoError(t, err)

		assert.Equal(t, result.Attacker.Total, result.Defender.Total)
		assert.False(t, result.AttackerWins)
		assert.True(t, result.Defender.Success)
	})

	t.Run("tie policy can favor the attacker", func(t *testing.T) {
		engine, _ := newTestEngine(10, 10)
		result, err := engine.Contest(
			ContestSide{Bonus: 0}, ContestSide{Bonus: 0}, TieAttackerWins,
		)
		require.NoError(t, err)
		assert.True(t, result.AttackerWins)
	})

	t.Run("attacker always draws first", func(t *testing.T) {
		engine, _ := newTestEngine(3, 18)
		result, err := engine.Contest(
			ContestSide{Bonus: 0}, ContestSide{Bonus: 0}, TieDefenderWins,
		)
		require.NoError(t, err)

		assert.Equal(t, 3, result.Attacker.Natural)
		assert.Equal(t, 18, result.Defender.Natural)
	})
}

func TestComputeDC(t *testing.T) {
	t.Run("fixed value wins", func(t *testing.T) {
		assert.Equal(t, 15, ComputeDC(15, 4, 2))
	})

	t.Run("derived from ability and proficiency", func(t *testing.T) {
		assert.Equal(t, 14, ComputeDC(0, 4, 2))
	})
}

func TestConcentrationDC(t *testing.T) {
	assert.Equal(t, 10, ConcentrationDC(0))
	assert.Equal(t, 10, ConcentrationDC(19))
	assert.Equal(t, 10, ConcentrationDC(20))
	assert.Equal(t, 11, ConcentrationDC(22))
	assert.Equal(t, 16, ConcentrationDC(33))
}
