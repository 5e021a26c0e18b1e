// Package pipeline executes action requests to completion: target
// resolution, budget debits, interrupt windows, rules-engine rolls, effect
// application and the resulting structured event log.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/dice"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
	"github.com/skirmishlab/skirmish/internal/errors"
	"github.com/skirmishlab/skirmish/internal/reactions"
	"github.com/skirmishlab/skirmish/internal/rules"
	"github.com/skirmishlab/skirmish/internal/statuses"
	"github.com/skirmishlab/skirmish/internal/uuid"
)

// Service defines the combat pipeline interface
type Service interface {
	// StartEncounter rolls initiative, sorts the turn order and opens
	// round one
	StartEncounter(ctx context.Context) error

	// Execute runs one action request to completion. Request-class
	// failures return a rejected result and a typed error; combat state
	// is untouched by a rejection.
	Execute(ctx context.Context, request *combat.ActionRequest) (*combat.ExecutionResult, error)

	// MoveCombatant spends movement, opening leave-reach interrupt
	// windows along the way
	MoveCombatant(ctx context.Context, actorID string, to combat.Position) (*combat.ExecutionResult, error)

	// EndTurn runs the fixed boundary phases: turn-end effects, status
	// duration decrement, then the next combatant's turn-start effects
	EndTurn(ctx context.Context) error

	// PreviewAction estimates hit chance and damage without advancing
	// the committed RNG stream
	PreviewAction(ctx context.Context, request *combat.ActionRequest) (*Preview, error)

	// Encounter exposes the combat state
	Encounter() *combat.Encounter

	// Statuses exposes the status manager, for snapshots
	Statuses() *statuses.Manager

	// Log returns the full ordered event log of the encounter
	Log() []combat.Event
}

type service struct {
	encounter *combat.Encounter
	registry  *content.Registry
	roller    dice.ForkableRoller
	engine    *rules.Engine
	statuses  *statuses.Manager
	resolver  *reactions.Resolver
	idGen     uuid.Generator
	logger    *zap.Logger

	handlers map[content.EffectKind]effectHandler
	log      []combat.Event
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Encounter   *combat.Encounter
	Registry    *content.Registry
	Roller      dice.ForkableRoller
	Statuses    *statuses.Manager
	Resolver    *reactions.Resolver
	IDGenerator uuid.Generator
	Logger      *zap.Logger
}

// NewService creates a combat pipeline. Content must already be validated;
// an effect kind in content without a registered handler is a fatal
// configuration error here, at load time, never at execution time.
func NewService(cfg *ServiceConfig) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.Encounter == nil {
		return nil, errors.InvalidArgument("encounter is required")
	}
	if cfg.Registry == nil {
		return nil, errors.InvalidArgument("registry is required")
	}
	if cfg.Roller == nil {
		return nil, errors.InvalidArgument("roller is required")
	}
	if !cfg.Registry.Validated() {
		if err := cfg.Registry.Validate(); err != nil {
			return nil, errors.Wrap(err, "content failed validation")
		}
	}

	svc := &service{
		encounter: cfg.Encounter,
		registry:  cfg.Registry,
		roller:    cfg.Roller,
		engine:    rules.NewEngine(&rules.EngineConfig{Roller: cfg.Roller}),
		statuses:  cfg.Statuses,
		resolver:  cfg.Resolver,
		idGen:     cfg.IDGenerator,
		logger:    cfg.Logger,
	}
	if svc.statuses == nil {
		svc.statuses = statuses.NewManager(&statuses.ManagerConfig{Registry: cfg.Registry})
	}
	if svc.resolver == nil {
		svc.resolver = reactions.NewResolver(&reactions.ResolverConfig{Registry: cfg.Registry})
	}
	if svc.idGen == nil {
		svc.idGen = uuid.NewSequenceGenerator("spawn")
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}

	svc.handlers = svc.buildHandlers()
	if err := svc.checkHandlerCoverage(); err != nil {
		return nil, err
	}

	return svc, nil
}

// checkHandlerCoverage walks every effect in the registry and confirms a
// handler exists for its kind
func (s *service) checkHandlerCoverage() error {
	check := func(actionID string, specs []content.EffectSpec) error {
		for _, spec := range specs {
			if _, ok := s.handlers[spec.Kind]; !ok {
				return errors.Validationf("action %q uses effect kind %q with no registered handler", actionID, spec.Kind)
			}
		}
		return nil
	}

	for _, action := range s.registry.Actions() {
		if err := check(action.ID, action.Effects); err != nil {
			return err
		}
		for _, variant := range action.Variants {
			if err := check(action.ID, variant.Effects); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) Encounter() *combat.Encounter {
	return s.encounter
}

func (s *service) Statuses() *statuses.Manager {
	return s.statuses
}

func (s *service) Log() []combat.Event {
	return s.log
}

func (s *service) emit(events ...combat.Event) {
	s.log = append(s.log, events...)
}
