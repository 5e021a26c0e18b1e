package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSeededRoller_Determinism(t *testing.T) {
	t.Run("same seed produces identical sequences", func(t *testing.T) {
		a := NewSeededRoller(42)
		b := NewSeededRoller(42)

		for i := 0; i < 50; i++ {
			ra, err := a.Roll(2, 6, 3)
			require.NoError(t, err)
			rb, err := b.Roll(2, 6, 3)
			require.NoError(t, err)
			assert.Equal(t, ra.Rolls, rb.Rolls)
			assert.Equal(t, ra.Total, rb.Total)
		}
	})

	t.Run("different seeds diverge", func(t *testing.T) {
		a := NewSeededRoller(1)
		b := NewSeededRoller(2)

		same := true
		for i := 0; i < 20; i++ {
			ra, _ := a.Roll(1, 20, 0)
			rb, _ := b.Roll(1, 20, 0)
			if ra.Total != rb.Total {
				same = false
			}
		}
		assert.False(t, same)
	})

	t.Run("rolls are within bounds", func(t *testing.T) {
		r := NewSeededRoller(7)
		for i := 0; i < 200; i++ {
			result, err := r.Roll(1, 20, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.RawTotal, 1)
			assert.LessOrEqual(t, result.RawTotal, 20)
		}
	})
}

func TestSeededRoller_CursorResume(t *testing.T) {
	original := NewSeededRoller(99)

	// Burn a mixed prefix of draws, including advantage pairs.
	_, err := original.Roll(3, 8, 2)
	require.NoError(t, err)
	_, err = original.RollWithAdvantage(20, 5)
	require.NoError(t, err)
	_, err = original.Roll(1, 4, 0)
	require.NoError(t, err)

	resumed := NewSeededRollerAt(original.Seed(), original.Draws())

	for i := 0; i < 30; i++ {
		want, err := original.Roll(1, 20, 0)
		require.NoError(t, err)
		got, err := resumed.Roll(1, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, want.Total, got.Total, "draw %d diverged after resume", i)
	}
}

func TestSeededRoller_CursorResumeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		burn := rapid.IntRange(0, 40).Draw(t, "burn")

		original := NewSeededRoller(seed)
		for i := 0; i < burn; i++ {
			sides := rapid.SampledFrom([]int{4, 6, 8, 10, 12, 20}).Draw(t, "sides")
			_, err := original.Roll(1, sides, 0)
			require.NoError(t, err)
		}

		resumed := NewSeededRollerAt(seed, original.Draws())
		want, err := original.Roll(1, 20, 0)
		require.NoError(t, err)
		got, err := resumed.Roll(1, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, want.Total, got.Total)
	})
}

func TestSeededRoller_Fork(t *testing.T) {
	t.Run("fork never advances the committed stream", func(t *testing.T) {
		r := NewSeededRoller(5)
		_, err := r.Roll(1, 20, 0)
		require.NoError(t, err)
		before := r.Draws()

		fork := r.Fork()
		for i := 0; i < 10; i++ {
			_, err := fork.Roll(4, 6, 0)
			require.NoError(t, err)
		}
		assert.Equal(t, before, r.Draws())
	})

	t.Run("committed stream unchanged by forking", func(t *testing.T) {
		plain := NewSeededRoller(11)
		forky := NewSeededRoller(11)

		_, err := plain.Roll(1, 20, 0)
		require.NoError(t, err)
		_, err = forky.Roll(1, 20, 0)
		require.NoError(t, err)

		// Preview rolls on the fork must not shift later committed rolls.
		side := forky.Fork()
		_, err = side.Roll(8, 6, 0)
		require.NoError(t, err)

		want, err := plain.Roll(2, 8, 1)
		require.NoError(t, err)
		got, err := forky.Roll(2, 8, 1)
		require.NoError(t, err)
		assert.Equal(t, want.Rolls, got.Rolls)
	})

	t.Run("forks at the same cursor are reproducible", func(t *testing.T) {
		a := NewSeededRoller(3)
		b := NewSeededRoller(3)
		_, err := a.Roll(1, 20, 0)
		require.NoError(t, err)
		_, err = b.Roll(1, 20, 0)
		require.NoError(t, err)

		fa, _ := a.Fork().Roll(1, 20, 0)
		fb, _ := b.Fork().Roll(1, 20, 0)
		assert.Equal(t, fa.Total, fb.Total)
	})

	t.Run("sibling forks get distinct streams", func(t *testing.T) {
		r := NewSeededRoller(9)
		for i := 0; i < 3; i++ {
			_, err := r.Roll(1, 20, 0)
			require.NoError(t, err)
		}

		// The fork counter feeds the child seed, so back-to-back forks
		// at the same cursor must not mirror each other.
		first := r.Fork()
		second := r.Fork()
		var a, b []int
		for i := 0; i < 8; i++ {
			ra, err := first.Roll(1, 20, 0)
			require.NoError(t, err)
			rb, err := second.Roll(1, 20, 0)
			require.NoError(t, err)
			a = append(a, ra.Total)
			b = append(b, rb.Total)
		}
		assert.NotEqual(t, a, b)
	})
}

func TestSeededRoller_AdvantageDraws(t *testing.T) {
	r := NewSeededRoller(13)
	result, err := r.RollWithAdvantage(20, 2)
	require.NoError(t, err)

	assert.Len(t, result.Rolls, 2)
	kept := result.Rolls[0]
	if result.Rolls[1] > kept {
		kept = result.Rolls[1]
	}
	assert.Equal(t, kept, result.RawTotal)
	assert.Equal(t, kept+2, result.Total)
	assert.Equal(t, uint64(2), r.Draws())
}
