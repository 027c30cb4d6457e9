package dice

import (
	"fmt"
	"strings"
)

// Initiative is a parsed initiative formula template of the form
// "<dice> + @<trait.path>". The host's turn-ordering collaborator substitutes
// the trait value; Expression does the same for local use.
type Initiative struct {
	Template string
	Base     Expression
	Ref      string // trait path without the leading '@'
}

// ParseInitiative parses an initiative template such as
// "1d10 + @advantages.initiative.value".
//
// Postcondition: Returns an Initiative with a non-empty Ref, or an error.
func ParseInitiative(template string) (Initiative, error) {
	plus := strings.IndexByte(template, '+')
	if plus < 0 {
		return Initiative{}, fmt.Errorf("dice: initiative template %q must have the form '<dice> + @<ref>'", template)
	}
	base, err := Parse(template[:plus])
	if err != nil {
		return Initiative{}, fmt.Errorf("dice: initiative template %q: %w", template, err)
	}
	ref := strings.TrimSpace(template[plus+1:])
	if !strings.HasPrefix(ref, "@") || len(ref) == 1 {
		return Initiative{}, fmt.Errorf("dice: initiative template %q: reference must start with '@'", template)
	}
	return Initiative{Template: template, Base: base, Ref: ref[1:]}, nil
}

// Expression substitutes value for the trait reference.
//
// Postcondition: result.Modifier == i.Base.Modifier + value.
func (i Initiative) Expression(value int) Expression {
	mod := i.Base.Modifier + value
	return Expression{
		Raw:      format(i.Base.Count, i.Base.Sides, mod),
		Count:    i.Base.Count,
		Sides:    i.Base.Sides,
		Modifier: mod,
	}
}
