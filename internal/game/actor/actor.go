// Package actor is an in-process stand-in for the host's actor, item and
// token collections. The dev host and integration tests use it to exercise
// the macro subsystem end to end.
package actor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/cod/internal/game/dice"
	"github.com/cory-johannsen/cod/internal/game/macro"
	"github.com/cory-johannsen/cod/internal/game/trait"
)

// Actor is a character with trait values and owned items.
// All methods are safe for concurrent use.
type Actor struct {
	id     string
	name   string
	mu     sync.RWMutex
	traits map[string]int
	items  []*Item
}

// New creates an actor with a copy of the given trait values.
//
// Precondition: id and name must be non-empty.
func New(id, name string, traits map[string]int) *Actor {
	if id == "" || name == "" {
		panic("actor.New: precondition violated: id and name must be non-empty")
	}
	cp := make(map[string]int, len(traits))
	for k, v := range traits {
		cp[k] = v
	}
	return &Actor{id: id, name: name, traits: cp}
}

// ID returns the actor id.
func (a *Actor) ID() string { return a.id }

// Name returns the display name.
func (a *Actor) Name() string { return a.name }

// Trait returns the current value of key; unset traits are 0.
func (a *Actor) Trait(key string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.traits[key]
}

// Give appends it to the actor's items and makes the actor its owner.
func (a *Actor) Give(it *Item) {
	a.mu.Lock()
	defer a.mu.Unlock()
	it.owner.Store(a)
	a.items = append(a.items, it)
}

// Items returns the owned items in the order they were given.
func (a *Actor) Items() []macro.Item {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]macro.Item, len(a.items))
	for i, it := range a.items {
		out[i] = it
	}
	return out
}

// Item returns the first owned item named name.
func (a *Actor) Item(name string) (*Item, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, it := range a.items {
		if it.name == name {
			return it, true
		}
	}
	return nil, false
}

// Item is an owned weapon or tool. Items with an attack category roll that
// category's pool for their owner.
type Item struct {
	name   string
	icon   string
	attack string
	pools  *PoolRoller
	owner  atomic.Pointer[Actor]
}

// NewItem creates an unowned item. attack may be empty for items that cannot roll.
//
// Precondition: name non-empty; pools non-nil.
func NewItem(name, icon, attack string, pools *PoolRoller) *Item {
	if name == "" || pools == nil {
		panic("actor.NewItem: precondition violated: name and pools must be set")
	}
	return &Item{name: name, icon: icon, attack: attack, pools: pools}
}

// Name returns the item name.
func (it *Item) Name() string { return it.name }

// Icon returns the icon reference.
func (it *Item) Icon() string { return it.icon }

// Attack returns the attack category key, or "".
func (it *Item) Attack() string { return it.attack }

// Roll rolls the item's attack pool for its owner.
func (it *Item) Roll(ctx context.Context) (any, error) {
	owner := it.owner.Load()
	if owner == nil {
		return nil, fmt.Errorf("item %q has no owner", it.name)
	}
	if it.attack == "" {
		return nil, fmt.Errorf("item %q has no attack to roll", it.name)
	}
	roll, err := it.pools.RollAttack(ctx, owner, it.name, it.attack)
	if err != nil {
		return nil, err
	}
	return roll, nil
}

// AttackRoll is the outcome of an attack pool roll.
type AttackRoll struct {
	Actor  string
	Item   string
	Attack string
	Pool   trait.PoolFormula
	Size   int
	Result dice.RollResult
}

func (r AttackRoll) String() string {
	return fmt.Sprintf("%s rolls %s (%s, %s = %d dice): %s", r.Actor, r.Item, r.Attack, r.Pool, r.Size, r.Result)
}

// PoolRoller sums trait values per the registry's attack formulas and rolls the pool.
type PoolRoller struct {
	registry *trait.Registry
	roller   *dice.Roller
}

// NewPoolRoller wires a registry and a dice roller.
//
// Precondition: both arguments non-nil.
func NewPoolRoller(registry *trait.Registry, roller *dice.Roller) *PoolRoller {
	if registry == nil || roller == nil {
		panic("actor.NewPoolRoller: precondition violated: registry and roller must be non-nil")
	}
	return &PoolRoller{registry: registry, roller: roller}
}

// PoolSize returns the number of dice a roll of attack gives a.
func (p *PoolRoller) PoolSize(a *Actor, attack string) (trait.PoolFormula, int, error) {
	f, err := p.registry.LookupAttackPool(attack)
	if err != nil {
		return trait.PoolFormula{}, 0, err
	}
	return f, a.Trait(f.Attribute) + a.Trait(f.Skill), nil
}

// RollAttack rolls the attack pool for a.
func (p *PoolRoller) RollAttack(ctx context.Context, a *Actor, itemName, attack string) (AttackRoll, error) {
	if err := ctx.Err(); err != nil {
		return AttackRoll{}, err
	}
	f, size, err := p.PoolSize(a, attack)
	if err != nil {
		return AttackRoll{}, err
	}
	res, err := p.roller.RollPool(size)
	if err != nil {
		return AttackRoll{}, fmt.Errorf("rolling %s for %s: %w", attack, a.name, err)
	}
	return AttackRoll{Actor: a.name, Item: itemName, Attack: attack, Pool: f, Size: size, Result: res}, nil
}

// RollInitiative rolls the registry's initiative formula for a, reading the
// referenced trait from the actor's values.
func (p *PoolRoller) RollInitiative(a *Actor) (dice.RollResult, error) {
	ini := p.registry.Initiative()
	return p.roller.Roll(ini.Expression(a.Trait(ini.Ref)))
}
