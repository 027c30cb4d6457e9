// Package trait holds the Chronicles of Darkness trait tables: attributes,
// skills, their groups, attack dice-pool formulas, splats and the merit
// catalog.
//
// A Registry is built once, validated as a whole, and never mutated; share it
// by pointer with every consumer.
package trait

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration marks a defect in the trait tables themselves. It is only
// returned while building a Registry, or by lookups of keys the tables never
// declared.
var ErrConfiguration = errors.New("trait configuration error")

// ErrUnknownTrait is returned by LookupGroup for a key absent from the group mapping.
var ErrUnknownTrait = fmt.Errorf("%w: unknown trait", ErrConfiguration)

// ErrUnknownAttack is returned by LookupAttackPool for an undeclared attack key.
var ErrUnknownAttack = fmt.Errorf("%w: unknown attack category", ErrConfiguration)

// GroupKey is one of the three trait groups.
type GroupKey string

const (
	GroupMental   GroupKey = "mental"
	GroupPhysical GroupKey = "physical"
	GroupSocial   GroupKey = "social"
)

// ValidGroups returns the closed set of group keys.
func ValidGroups() map[GroupKey]bool {
	return map[GroupKey]bool{GroupMental: true, GroupPhysical: true, GroupSocial: true}
}

// Kind distinguishes the two trait namespaces.
type Kind string

const (
	KindAttribute Kind = "attribute"
	KindSkill     Kind = "skill"
)

// Definition describes a single attribute or skill.
type Definition struct {
	Key         string
	DisplayName string
	Group       GroupKey
	Kind        Kind
}

// Group is a display bucket for sheet layout.
type Group struct {
	Key         GroupKey
	DisplayName string
}

// PoolFormula names the attribute and skill whose values are summed into a
// dice pool.
type PoolFormula struct {
	Attribute string
	Skill     string
}

// String returns the persisted "attr,skill" form.
func (f PoolFormula) String() string {
	return f.Attribute + "," + f.Skill
}

// ParsePoolFormula parses the persisted "attr,skill" form.
//
// Postcondition: both fields of the result are non-empty, or an error is returned.
func ParsePoolFormula(s string) (PoolFormula, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return PoolFormula{}, fmt.Errorf("pool formula %q must be \"attribute,skill\"", s)
	}
	f := PoolFormula{Attribute: strings.TrimSpace(parts[0]), Skill: strings.TrimSpace(parts[1])}
	if f.Attribute == "" || f.Skill == "" {
		return PoolFormula{}, fmt.Errorf("pool formula %q has an empty key", s)
	}
	return f, nil
}

// AttackCategory is a combat roll variant and the pool it rolls.
type AttackCategory struct {
	Key         string
	DisplayName string
	Pool        PoolFormula
}

// Splat is a character type.
type Splat struct {
	Key         string
	DisplayName string
}

// Merit is an entry in the universal merit catalog. Header entries open a
// section of the catalog and are not selectable merits.
type Merit struct {
	Key         string
	DisplayName string
	Header      bool
}
