package trait

import (
	"fmt"

	"github.com/cory-johannsen/cod/internal/game/dice"
)

// Registry is the immutable, validated set of trait tables.
type Registry struct {
	locale     string
	initiative dice.Initiative
	groups     []Group
	attributes []Definition
	skills     []Definition
	traits     map[string]Definition
	attacks    []AttackCategory
	attackIdx  map[string]int
	splats     []Splat
	merits     []Merit
}

// LookupGroup returns the group of an attribute or skill key.
//
// Postcondition: returns a member of ValidGroups, or an error wrapping ErrUnknownTrait.
func (r *Registry) LookupGroup(key string) (GroupKey, error) {
	d, ok := r.traits[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTrait, key)
	}
	return d.Group, nil
}

// LookupAttackPool returns the formula shape for an attack category. Summing
// the actor's current values is the caller's job.
//
// Postcondition: both keys of the result resolve through LookupGroup, or an
// error wrapping ErrUnknownAttack is returned.
func (r *Registry) LookupAttackPool(attackKey string) (PoolFormula, error) {
	i, ok := r.attackIdx[attackKey]
	if !ok {
		return PoolFormula{}, fmt.Errorf("%w: %q", ErrUnknownAttack, attackKey)
	}
	return r.attacks[i].Pool, nil
}

// ListByGroup returns the attributes then the skills of group, each in
// declaration order. Sheet layout depends on this order.
func (r *Registry) ListByGroup(group GroupKey) []Definition {
	var out []Definition
	for _, d := range r.attributes {
		if d.Group == group {
			out = append(out, d)
		}
	}
	for _, d := range r.skills {
		if d.Group == group {
			out = append(out, d)
		}
	}
	return out
}

// Trait returns the definition for an attribute or skill key.
func (r *Registry) Trait(key string) (Definition, bool) {
	d, ok := r.traits[key]
	return d, ok
}

// Attack returns the attack category for key.
func (r *Registry) Attack(key string) (AttackCategory, bool) {
	i, ok := r.attackIdx[key]
	if !ok {
		return AttackCategory{}, false
	}
	return r.attacks[i], true
}

// Attributes returns all attributes in declaration order.
func (r *Registry) Attributes() []Definition { return append([]Definition(nil), r.attributes...) }

// Skills returns all skills in declaration order.
func (r *Registry) Skills() []Definition { return append([]Definition(nil), r.skills...) }

// Groups returns the group labels in declaration order.
func (r *Registry) Groups() []Group { return append([]Group(nil), r.groups...) }

// Attacks returns the attack categories in declaration order.
func (r *Registry) Attacks() []AttackCategory { return append([]AttackCategory(nil), r.attacks...) }

// Splats returns the character types in declaration order.
func (r *Registry) Splats() []Splat { return append([]Splat(nil), r.splats...) }

// Merits returns the full merit catalog, headers included, in declaration order.
func (r *Registry) Merits() []Merit { return append([]Merit(nil), r.merits...) }

// MeritsUnder returns the merits listed after the header with the given key,
// up to the next header.
//
// Postcondition: returns nil when header is not a header key.
func (r *Registry) MeritsUnder(header string) []Merit {
	var out []Merit
	in := false
	for _, m := range r.merits {
		if m.Header {
			if in {
				break
			}
			in = m.Key == header
			continue
		}
		if in {
			out = append(out, m)
		}
	}
	return out
}

// Initiative returns the parsed initiative formula template.
func (r *Registry) Initiative() dice.Initiative { return r.initiative }

// Locale returns the BCP 47 tag of the display labels.
func (r *Registry) Locale() string { return r.locale }
