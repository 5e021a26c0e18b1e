// Package economy tracks the per-combatant, per-turn resource ledger:
// action charges, bonus actions, the reaction, movement, the attack pool
// scoped to its action charge, and named resource pools.
package economy

import (
	"github.com/skirmishlab/skirmish/internal/errors"
)

// ActionCharge is one spendable action. The attack pool lives inside the
// charge that granted it: weapon attacks drain the pool, and spending the
// charge on anything else zeroes only this charge's pool.
type ActionCharge struct {
	Used       bool `json:"used"`
	AttackPool int  `json:"attack_pool"`
}

// ResourcePool is a named expendable resource (spell slots, class charges)
type ResourcePool struct {
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// Budget is a combatant's resource ledger for the current turn and round
type Budget struct {
	Charges          []ActionCharge           `json:"charges"`
	BonusRemaining   int                      `json:"bonus_remaining"`
	ReactionUsed     bool                     `json:"reaction_used"`
	Movement         int                      `json:"movement"`
	MovementMax      int                      `json:"movement_max"`
	AttacksPerAction int                      `json:"attacks_per_action"`
	Pools            map[string]*ResourcePool `json:"pools,omitempty"`
}

// NewBudget creates a ledger for a combatant with the given movement speed
// and weapon attacks per action charge
func NewBudget(movementMax, attacksPerAction int) *Budget {
	if attacksPerAction < 1 {
		attacksPerAction = 1
	}
	b := &Budget{
		MovementMax:      movementMax,
		AttacksPerAction: attacksPerAction,
		Pools:            make(map[string]*ResourcePool),
	}
	b.StartTurn()
	return b
}

// StartTurn resets action, bonus action, movement and the attack pool.
// The reaction is deliberately untouched: it resets at round start only.
func (b *Budget) StartTurn() {
	b.Charges = []ActionCharge{{AttackPool: b.AttacksPerAction}}
	b.BonusRemaining = 1
	b.Movement = b.MovementMax
}

// StartRound restores the reaction. This is the one and only reset path for
// reactions; turn boundaries never touch them.
func (b *Budget) StartRound() {
	b.ReactionUsed = false
}

// GrantExtraAction adds an action charge with a fresh attack pool without
// consuming any economy resource
func (b *Budget) GrantExtraAction() {
	b.Charges = append(b.Charges, ActionCharge{AttackPool: b.AttacksPerAction})
}

// HasAction reports whether any action charge remains spendable
func (b *Budget) HasAction() bool {
	return b.currentCharge() != nil
}

// HasReaction reports whether the reaction is still available this round
func (b *Budget) HasReaction() bool {
	return !b.ReactionUsed
}

func (b *Budget) currentCharge() *ActionCharge {
	for i := range b.Charges {
		if !b.Charges[i].Used {
			return &b.Charges[i]
		}
	}
	return nil
}

// UseWeaponAttack spends one attack from the current charge's pool. The
// charge itself is consumed once the pool runs dry.
func (b *Budget) UseWeaponAttack() error {
	charge := b.currentCharge()
	if charge == nil || charge.AttackPool <= 0 {
		return errors.ResourceExhausted("no attacks remaining")
	}
	charge.AttackPool--
	if charge.AttackPool == 0 {
		charge.Used = true
	}
	return nil
}

// UseAction spends the current charge on a non-weapon action. Only this
// charge's attack pool is cleared; pools of later charges survive.
func (b *Budget) UseAction() error {
	charge := b.currentCharge()
	if charge == nil {
		return errors.ResourceExhausted("no action remaining")
	}
	charge.Used = true
	charge.AttackPool = 0
	return nil
}

// UseBonusAction spends the bonus action
func (b *Budget) UseBonusAction() error {
	if b.BonusRemaining <= 0 {
		return errors.ResourceExhausted("no bonus action remaining")
	}
	b.BonusRemaining--
	return nil
}

// UseReaction spends the reaction for the round
func (b *Budget) UseReaction() error {
	if b.ReactionUsed {
		return errors.ResourceExhausted("reaction already used this round")
	}
	b.ReactionUsed = true
	return nil
}

// UseMovement spends movement
func (b *Budget) UseMovement(distance int) error {
	if distance < 0 {
		return errors.InvalidArgument("movement cannot be negative")
	}
	if distance > b.Movement {
		return errors.ResourceExhaustedf("not enough movement: need %d, have %d", distance, b.Movement)
	}
	b.Movement -= distance
	return nil
}

// AddPool registers a named resource pool
func (b *Budget) AddPool(name string, max int) {
	if b.Pools == nil {
		b.Pools = make(map[string]*ResourcePool)
	}
	b.Pools[name] = &ResourcePool{Max: max, Remaining: max}
}

// SpendPool spends from a named pool
func (b *Budget) SpendPool(name string, amount int) error {
	pool, ok := b.Pools[name]
	if !ok {
		return errors.NotFoundf("resource pool %q not found", name)
	}
	if pool.Remaining < amount {
		return errors.ResourceExhaustedf("resource pool %q exhausted: need %d, have %d", name, amount, pool.Remaining)
	}
	pool.Remaining -= amount
	return nil
}

// RestorePool returns charges to a named pool, clamped at its maximum
func (b *Budget) RestorePool(name string, amount int) error {
	pool, ok := b.Pools[name]
	if !ok {
		return errors.NotFoundf("resource pool %q not found", name)
	}
	pool.Remaining += amount
	if pool.Remaining > pool.Max {
		pool.Remaining = pool.Max
	}
	return nil
}
