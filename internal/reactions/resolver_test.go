package reactions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/domain/shared"
	"github.com/skirmishlab/skirmish/internal/rules"
	"github.com/skirmishlab/skirmish/internal/testutils"
)

// recordingExecutor captures reaction requests without running a pipeline.
// It can recurse into the resolver to simulate nested windows.
type recordingExecutor struct {
	requests []*combat.ActionRequest
	recurse  func(ctx context.Context, req *combat.ActionRequest) error
}

func (e *recordingExecutor) ExecuteReaction(ctx context.Context, req *combat.ActionRequest) (*combat.ExecutionResult, error) {
	e.requests = append(e.requests, req)
	if e.recurse != nil {
		if err := e.recurse(ctx, req); err != nil {
			return nil, err
		}
	}
	return &combat.ExecutionResult{Request: req}, nil
}

func reactionRegistry(t *testing.T) *content.Registry {
	t.Helper()
	r := content.NewRegistry()

	require.NoError(t, r.AddAction(&content.ActionDefinition{
		ID:   "strike",
		Name: "Strike",
		Cost: content.CostAction,
		Targeting: content.Targeting{Kind: content.TargetEntities},
		Resolution: content.Resolution{
			Kind:          content.ResolutionAttack,
			AttackAbility: shared.AttributeStrength,
		},
		Effects: []content.EffectSpec{{
			Kind:      content.EffectDamage,
			Condition: content.ConditionOnSuccess,
			Damage: &content.DamageEffect{
				Formulas: []rules.DamageFormula{
					{DiceCount: 1, DiceSides: 8, Type: shared.DamageTypeSlashing},
				},
			},
		}},
	}))
	require.NoError(t, r.AddReaction(&content.ReactionDefinition{
		ID:        "opportunity_attack",
		Name:      "Opportunity Attack",
		Window:    content.WindowEnemyLeavesReach,
		Condition: content.ReactEnemyActor,
		ActionID:  "strike",
	}))
	require.NoError(t, r.AddReaction(&content.ReactionDefinition{
		ID:        "parry",
		Name:      "Parry",
		Window:    content.WindowCastStarted,
		Priority:  -10,
		Condition: content.ReactSelfTargeted,
		ActionID:  "strike",
	}))
	require.NoError(t, r.AddReaction(&content.ReactionDefinition{
		ID:        "jeer",
		Name:      "Jeer",
		Window:    content.WindowCastStarted,
		Condition: content.ReactWhenever,
		ActionID:  "strike",
	}))
	require.NoError(t, r.Validate())
	return r
}

func newTestResolver(t *testing.T, maxDepth int) *Resolver {
	t.Helper()
	return NewResolver(&ResolverConfig{
		Registry: reactionRegistry(t),
		MaxDepth: maxDepth,
	})
}

func TestResolver_OpportunityAttack(t *testing.T) {
	t.Run("hostile reactor in reach fires", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		sentinel := testutils.CreateTestCombatant("orc", shared.FactionHostile)
		sentinel.Reactions = []string{"opportunity_attack"}
		sentinel.Position = combat.Position{X: 1, Y: 0}
		enc := testutils.CreateTestEncounter(mover, sentinel)

		exec := &recordingExecutor{}
		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, exec)
		require.NoError(t, err)

		require.Len(t, fired, 1)
		assert.Equal(t, "orc", fired[0].ReactorID)
		assert.Equal(t, "opportunity_attack", fired[0].ReactionID)
		require.Len(t, exec.requests, 1)
		assert.Equal(t, []string{"rogue"}, exec.requests[0].TargetIDs)
		assert.True(t, sentinel.Budget.ReactionUsed)
	})

	t.Run("out of reach does not fire", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		sentinel := testutils.CreateTestCombatant("orc", shared.FactionHostile)
		sentinel.Reactions = []string{"opportunity_attack"}
		sentinel.Position = combat.Position{X: 4, Y: 0}
		enc := testutils.CreateTestEncounter(mover, sentinel)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})

	t.Run("allies never take opportunity attacks", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		ally := testutils.CreateTestCombatant("fighter", shared.FactionParty)
		ally.Reactions = []string{"opportunity_attack"}
		ally.Position = combat.Position{X: 1, Y: 0}
		enc := testutils.CreateTestEncounter(mover, ally)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})
}

func TestResolver_Eligibility(t *testing.T) {
	t.Run("spent reaction keeps the reactor out", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		sentinel := testutils.CreateTestCombatant("orc", shared.FactionHostile)
		sentinel.Reactions = []string{"opportunity_attack"}
		sentinel.Position = combat.Position{X: 1, Y: 0}
		require.NoError(t, sentinel.Budget.UseReaction())
		enc := testutils.CreateTestEncounter(mover, sentinel)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})

	t.Run("unconscious reactors never fire", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		sentinel := testutils.CreateTestCombatant("orc", shared.FactionHostile)
		sentinel.Reactions = []string{"opportunity_attack"}
		sentinel.Position = combat.Position{X: 1, Y: 0}
		sentinel.LifeState = combat.LifeDead
		enc := testutils.CreateTestEncounter(mover, sentinel)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})

	t.Run("never mode opts out", func(t *testing.T) {
		mover := testutils.CreateTestCombatant("rogue", shared.FactionParty)
		sentinel := testutils.CreateTestCombatant("orc", shared.FactionHostile)
		sentinel.Reactions = []string{"opportunity_attack"}
		sentinel.Position = combat.Position{X: 1, Y: 0}
		sentinel.ReactionMode = combat.ReactionNever
		enc := testutils.CreateTestEncounter(mover, sentinel)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowEnemyLeavesReach,
			ActorID: "rogue",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})

	t.Run("the triggering actor never reacts to itself", func(t *testing.T) {
		caster := testutils.CreateTestCombatant("wizard", shared.FactionParty)
		caster.Reactions = []string{"jeer"}
		enc := testutils.CreateTestEncounter(caster)

		fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
			Window:  content.WindowCastStarted,
			ActorID: "wizard",
		}, &recordingExecutor{})
		require.NoError(t, err)
		assert.Empty(t, fired)
	})
}

func TestResolver_SelfTargetedReaction(t *testing.T) {
	caster := testutils.CreateTestCombatant("orc", shared.FactionHostile)
	target := testutils.CreateTestCombatant("wizard", shared.FactionParty)
	target.Reactions = []string{"parry"}
	bystander := testutils.CreateTestCombatant("fighter", shared.FactionParty)
	bystander.Reactions = []string{"parry"}
	enc := testutils.CreateTestEncounter(caster, target, bystander)

	exec := &recordingExecutor{}
	fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
		Window:   content.WindowCastStarted,
		ActorID:  "orc",
		TargetID: "wizard",
	}, exec)
	require.NoError(t, err)

	require.Len(t, fired, 1)
	assert.Equal(t, "wizard", fired[0].ReactorID)
	// Self-scoped reactions aim at the reactor, not the attacker.
	assert.Equal(t, []string{"wizard"}, exec.requests[0].TargetIDs)
}

func TestResolver_PriorityOrdering(t *testing.T) {
	caster := testutils.CreateTestCombatant("orc", shared.FactionHostile)
	// Two reactors: jeer (priority 0) on the first in turn order, parry
	// (priority -10) on the second. Parry must still fire first.
	heckler := testutils.CreateTestCombatant("goblin", shared.FactionHostile)
	heckler.Reactions = []string{"jeer"}
	target := testutils.CreateTestCombatant("wizard", shared.FactionParty)
	target.Reactions = []string{"parry"}
	enc := testutils.CreateTestEncounter(caster, heckler, target)

	exec := &recordingExecutor{}
	fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
		Window:   content.WindowCastStarted,
		ActorID:  "orc",
		TargetID: "wizard",
	}, exec)
	require.NoError(t, err)

	require.Len(t, fired, 2)
	assert.Equal(t, "parry", fired[0].ReactionID)
	assert.Equal(t, "jeer", fired[1].ReactionID)
}

func TestResolver_DepthLimit(t *testing.T) {
	caster := testutils.CreateTestCombatant("orc", shared.FactionHostile)
	target := testutils.CreateTestCombatant("wizard", shared.FactionParty)
	target.Reactions = []string{"parry"}
	enc := testutils.CreateTestEncounter(caster, target)

	resolver := newTestResolver(t, 2)

	var windows int
	exec := &recordingExecutor{}
	exec.recurse = func(ctx context.Context, req *combat.ActionRequest) error {
		windows++
		// Restore the charge so only the depth guard can stop the loop.
		target.Budget.StartRound()
		_, err := resolver.Resolve(ctx, enc, &TriggerEvent{
			Window:   content.WindowCastStarted,
			ActorID:  "orc",
			TargetID: "wizard",
		}, exec)
		return err
	}

	_, err := resolver.Resolve(context.Background(), enc, &TriggerEvent{
		Window:   content.WindowCastStarted,
		ActorID:  "orc",
		TargetID: "wizard",
	}, exec)
	require.NoError(t, err)

	// Depth 2 allows the root window plus one nested window; the window
	// opened at the limit is skipped silently.
	assert.Equal(t, 2, windows)
	assert.Equal(t, 0, resolver.Depth(), "stack unwinds fully")
}

func TestResolver_OneChargePerWindow(t *testing.T) {
	// A reactor holding two reactions on the same window fires only one:
	// the second candidate finds the charge already spent.
	caster := testutils.CreateTestCombatant("orc", shared.FactionHostile)
	target := testutils.CreateTestCombatant("wizard", shared.FactionParty)
	target.Reactions = []string{"parry", "jeer"}
	enc := testutils.CreateTestEncounter(caster, target)

	fired, err := newTestResolver(t, 5).Resolve(context.Background(), enc, &TriggerEvent{
		Window:   content.WindowCastStarted,
		ActorID:  "orc",
		TargetID: "wizard",
	}, &recordingExecutor{})
	require.NoError(t, err)

	require.Len(t, fired, 1)
	assert.Equal(t, "parry", fired[0].ReactionID)
}
