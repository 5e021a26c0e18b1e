// Package reactions implements the interrupt stack: at declared trigger
// windows the pipeline pauses, eligible reactors are collected and ordered
// deterministically, and zero or more reactions execute, possibly opening
// further windows. Depth is bounded by an explicit stack so counterspell
// chains fail predictably instead of exhausting the call stack.
package reactions

import (
	"context"

	"go.uber.org/zap"

	"github.com/skirmishlab/skirmish/internal/content"
	"github.com/skirmishlab/skirmish/internal/domain/combat"
)

// DefaultMaxDepth bounds nested interrupt windows
const DefaultMaxDepth = 5

// TriggerEvent describes what opened an interrupt window
type TriggerEvent struct {
	Window   content.TriggerWindow
	ActorID  string
	TargetID string
	ActionID string
	Damage   int
}

// Executor runs a reaction's action. The pipeline implements this; the
// indirection keeps the resolver free of execution logic.
type Executor interface {
	ExecuteReaction(ctx context.Context, request *combat.ActionRequest) (*combat.ExecutionResult, error)
}

// Policy decides whether a willing-and-able reactor actually fires. AI
// policies plug in here; the default follows the combatant's standing mode.
type Policy func(reactor *combat.Combatant, def *content.ReactionDefinition, ev *TriggerEvent) bool

// DefaultPolicy uses the combatant's ReactionMode: never-use opts out,
// everything else fires
func DefaultPolicy(reactor *combat.Combatant, _ *content.ReactionDefinition, _ *TriggerEvent) bool {
	return reactor.ReactionMode != combat.ReactionNever
}

// Fired records one executed reaction
type Fired struct {
	ReactorID  string
	ReactionID string
	Result     *combat.ExecutionResult
}

// Resolver owns the interrupt stack for an encounter
type Resolver struct {
	registry *content.Registry
	policy   Policy
	maxDepth int
	logger   *zap.Logger

	// stack is the live chain of interrupt frames; its length is the
	// current nesting depth
	stack []*TriggerEvent
}

// ResolverConfig holds configuration for the resolver
type ResolverConfig struct {
	Registry *content.Registry
	Policy   Policy
	MaxDepth int
	Logger   *zap.Logger
}

// NewResolver creates a reaction resolver
func NewResolver(cfg *ResolverConfig) *Resolver {
	if cfg == nil || cfg.Registry == nil {
		panic("registry is required")
	}
	r := &Resolver{
		registry: cfg.Registry,
		policy:   cfg.Policy,
		maxDepth: cfg.MaxDepth,
		logger:   cfg.Logger,
	}
	if r.policy == nil {
		r.policy = DefaultPolicy
	}
	if r.maxDepth <= 0 {
		r.maxDepth = DefaultMaxDepth
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Depth is the current interrupt nesting depth
func (r *Resolver) Depth() int {
	return len(r.stack)
}

type candidate struct {
	reactor *combat.Combatant
	def     *content.ReactionDefinition
}

// Resolve opens an interrupt window. Reactors are enumerated in turn order,
// their registered reactions in registration order, stably reordered by
// declared priority — never by map iteration. Each fired reaction spends
// the reactor's round-scoped reaction charge and may recurse into further
// windows through the executor.
func (r *Resolver) Resolve(ctx context.Context, enc *combat.Encounter, ev *TriggerEvent, exec Executor) ([]Fired, error) {
	if len(r.stack) >= r.maxDepth {
		r.logger.Warn("interrupt depth limit reached, window skipped",
			zap.String("window", string(ev.Window)),
			zap.Int("depth", len(r.stack)))
		return nil, nil
	}

	r.stack = append(r.stack, ev)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
	}()

	candidates := r.collect(enc, ev)
	if len(candidates) == 0 {
		return nil, nil
	}

	// Stable sort by priority keeps initiative order inside equal
	// priorities.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].def.Priority < candidates[j-1].def.Priority; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}

	var fired []Fired
	for _, cand := range candidates {
		// Re-check the charge: an earlier reaction in this same window may
		// have consumed it.
		if !cand.reactor.Budget.HasReaction() || !cand.reactor.IsConscious() {
			continue
		}
		if !r.policy(cand.reactor, cand.def, ev) {
			continue
		}

		if err := cand.reactor.Budget.UseReaction(); err != nil {
			continue
		}

		request := &combat.ActionRequest{
			ActorID:   cand.reactor.ID,
			ActionID:  cand.def.ActionID,
			TargetIDs: []string{r.reactionTarget(cand, ev)},
		}
		result, err := exec.ExecuteReaction(ctx, request)
		if err != nil {
			return fired, err
		}
		fired = append(fired, Fired{
			ReactorID:  cand.reactor.ID,
			ReactionID: cand.def.ID,
			Result:     result,
		})
	}

	return fired, nil
}

func (r *Resolver) collect(enc *combat.Encounter, ev *TriggerEvent) []candidate {
	actor, _ := enc.Combatant(ev.ActorID)

	var out []candidate
	for _, reactor := range enc.CombatantsInOrder() {
		if reactor.ID == ev.ActorID || !reactor.IsConscious() || !reactor.Budget.HasReaction() {
			continue
		}
		for _, reactionID := range reactor.Reactions {
			def, err := r.registry.Reaction(reactionID)
			if err != nil || def.Window != ev.Window {
				continue
			}
			if !r.conditionMatches(reactor, actor, def, ev, enc) {
				continue
			}
			out = append(out, candidate{reactor: reactor, def: def})
		}
	}
	return out
}

func (r *Resolver) conditionMatches(reactor, actor *combat.Combatant, def *content.ReactionDefinition, ev *TriggerEvent, enc *combat.Encounter) bool {
	switch def.Condition {
	case content.ReactSelfTargeted:
		return reactor.ID == ev.TargetID
	case content.ReactAllyTargeted:
		target, ok := enc.Combatant(ev.TargetID)
		return ok && target.Faction == reactor.Faction
	case content.ReactEnemyActor:
		if actor == nil || !reactor.Faction.HostileTo(actor.Faction) {
			return false
		}
		// Leave-reach windows open before the mover steps away; only
		// reactors who actually threaten the mover may interrupt.
		if ev.Window == content.WindowEnemyLeavesReach {
			return reactor.Position.DistanceTo(actor.Position) <= reactor.Reach
		}
		return true
	default: // ReactWhenever
		return true
	}
}

// reactionTarget picks whom the reaction's action is aimed at: self-scoped
// reactions (shield) target the reactor, everything else the triggering
// actor.
func (r *Resolver) reactionTarget(cand candidate, ev *TriggerEvent) string {
	if cand.def.Condition == content.ReactSelfTargeted {
		return cand.reactor.ID
	}
	return ev.ActorID
}
