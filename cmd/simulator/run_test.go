package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/config"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/repositories/snapshots/mock"
	"github.com/skirmishlab/skirmish/internal/scenario"
)

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{Seed: 1, MaxReactionDepth: 5},
	}
}

func TestSimulate_Demo(t *testing.T) {
	events, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 7, nil)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	assert.Equal(t, combat.EventEncounterStarted, events[0].Type)
	types := make(map[combat.EventType]bool, len(events))
	for _, ev := range events {
		types[ev.Type] = true
	}
	assert.True(t, types[combat.EventInitiative])
	assert.True(t, types[combat.EventActionStarted])
	assert.True(t, types[combat.EventRoll])
}

func TestSimulate_Deterministic(t *testing.T) {
	first, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 42, nil)
	require.NoError(t, err)
	second, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 42, nil)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))

	diverged, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 43, nil)
	require.NoError(t, err)
	divergedJSON, err := json.Marshal(diverged)
	require.NoError(t, err)
	assert.NotEqual(t, string(firstJSON), string(divergedJSON))
}

func TestSimulate_SavesSnapshot(t *testing.T) {
	repo := mocksnapshots.NewMockRepository()
	_, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 7, repo)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.SaveCalls)
	snapshot, err := repo.Get(context.Background(), "final")
	require.NoError(t, err)
	assert.Equal(t, "final", snapshot.ID)
	assert.NotZero(t, snapshot.RNGDraws)
	assert.NotEmpty(t, snapshot.Log)
}

func TestSimulate_SnapshotSaveFailure(t *testing.T) {
	repo := mocksnapshots.NewMockRepository()
	repo.FailNext = true
	_, err := simulate(context.Background(), testConfig(), zap.NewNop(), scenario.Demo(), 7, repo)
	assert.Error(t, err)
}
