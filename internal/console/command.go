// Package console is a line-oriented stand-in for the tabletop host: it drops
// items on hotbars, moves tokens, switches the speaker, and fires commands so
// the macro subsystem can be driven from a terminal.
package console

import (
	"fmt"
	"sort"
	"strings"
)

// Handler identifiers binding console commands to Console methods.
const (
	HandlerUser       = "user"
	HandlerGrant      = "grant"
	HandlerDrop       = "drop"
	HandlerToken      = "token"
	HandlerSpeak      = "speak"
	HandlerInvoke     = "invoke"
	HandlerPress      = "press"
	HandlerSlots      = "slots"
	HandlerActors     = "actors"
	HandlerTraits     = "traits"
	HandlerAttack     = "attack"
	HandlerMerits     = "merits"
	HandlerInitiative = "initiative"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a console command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "<user> <slot>".
	Usage string
	// Help is the one-line description printed by help.
	Help string
	// Handler names the Console method that runs the command.
	Handler string
	// MinArgs is the fewest whitespace-separated arguments accepted.
	MinArgs int
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "user", Aliases: []string{"as"}, Usage: "<user>", Help: "Set the acting user", Handler: HandlerUser, MinArgs: 1},
		{Name: "grant", Usage: "<user> <actor-id>", Help: "Give a user control of an actor", Handler: HandlerGrant, MinArgs: 2},
		{Name: "drop", Usage: "<user> <slot> <actor-id> <item...>", Help: "Drag an actor's item onto a hotbar slot", Handler: HandlerDrop, MinArgs: 4},
		{Name: "token", Usage: "<token-id> <actor-id|->", Help: "Place a token for an actor, or remove it with -", Handler: HandlerToken, MinArgs: 2},
		{Name: "speak", Usage: "<token-id|-> <actor-id|->", Help: "Set the chat speaker", Handler: HandlerSpeak, MinArgs: 2},
		{Name: "invoke", Aliases: []string{"roll"}, Usage: "<item...>", Help: "Roll an item on the speaking actor", Handler: HandlerInvoke, MinArgs: 1},
		{Name: "press", Aliases: []string{"p"}, Usage: "<user> <slot>", Help: "Fire the command bound to a hotbar slot", Handler: HandlerPress, MinArgs: 2},
		{Name: "slots", Usage: "<user>", Help: "List a user's hotbar", Handler: HandlerSlots, MinArgs: 1},
		{Name: "actors", Help: "List actors and their items", Handler: HandlerActors},
		{Name: "traits", Usage: "<group>", Help: "List attributes and skills in a group", Handler: HandlerTraits, MinArgs: 1},
		{Name: "attack", Usage: "<attack-key>", Help: "Show an attack's dice pool formula", Handler: HandlerAttack, MinArgs: 1},
		{Name: "merits", Usage: "[header]", Help: "List merit headers, or the merits under one", Handler: HandlerMerits},
		{Name: "initiative", Aliases: []string{"init"}, Usage: "<actor-id>", Help: "Roll initiative for an actor", Handler: HandlerInitiative, MinArgs: 1},
		{Name: "help", Aliases: []string{"?"}, Help: "Show this list", Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the console", Handler: HandlerQuit},
	}
}

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command // canonical name → command
	aliases  map[string]string   // alias → canonical name
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if _, exists := r.commands[cmd.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, exists := r.aliases[cmd.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with command name %q", alias, alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(input string) (*Command, bool) {
	if cmd, ok := r.commands[input]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[input]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all registered commands ordered by name.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the text after the command with inner spacing kept, so
	// item names like "Rusty  Knife" survive.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	word, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(word)}
	}
	rest = strings.TrimSpace(rest)
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{Command: strings.ToLower(word), Args: args, RawArgs: rest}
}

// TailAfter returns the raw text following the first n arguments, keeping
// the spacing inside the remainder.
//
// Precondition: len(p.Args) > n.
func (p ParseResult) TailAfter(n int) string {
	rest := p.RawArgs
	for i := 0; i < n; i++ {
		rest = strings.TrimSpace(rest)
		_, rest, _ = strings.Cut(rest, " ")
	}
	return strings.TrimSpace(rest)
}
