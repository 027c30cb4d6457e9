package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/cod/internal/game/macro"
	"github.com/cory-johannsen/cod/internal/game/trait"
)

// absent is the placeholder for an empty token or actor argument.
const absent = "-"

func optional(arg string) string {
	if arg == absent {
		return ""
	}
	return arg
}

func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("slot must be a number, got %q", arg)
	}
	return slot, nil
}

func (c *Console) handleUser(_ context.Context, p ParseResult) error {
	c.user = p.Args[0]
	c.target = c.user
	c.printf("acting as %s\n", c.user)
	return nil
}

func (c *Console) handleGrant(_ context.Context, p ParseResult) error {
	if err := c.host.Directory.Grant(p.Args[0], p.Args[1]); err != nil {
		return err
	}
	c.printf("%s now controls %s\n", p.Args[0], p.Args[1])
	return nil
}

func (c *Console) handleDrop(ctx context.Context, p ParseResult) error {
	user, actorID, item := p.Args[0], p.Args[2], p.TailAfter(3)
	slot, err := parseSlot(p.Args[1])
	if err != nil {
		return err
	}
	c.target = user

	payload := c.host.Directory.DropPayload(user, actorID, item)
	outcome, cmd, err := c.host.Service.BindItemToSlot(ctx, user, payload, slot)
	if err != nil {
		return err
	}
	if outcome == macro.BindAccepted {
		c.printf("slot %d: %s %s\n", slot, cmd.Name, cmd.ScriptBody)
		return nil
	}
	c.printf("drop %s\n", outcome)
	return nil
}

func (c *Console) handleToken(_ context.Context, p ParseResult) error {
	tokenID, actorID := p.Args[0], optional(p.Args[1])
	if actorID == "" {
		c.host.Directory.RemoveToken(tokenID)
		c.printf("token %s removed\n", tokenID)
		return nil
	}
	if err := c.host.Directory.PlaceToken(tokenID, actorID); err != nil {
		return err
	}
	c.printf("token %s placed for %s\n", tokenID, actorID)
	return nil
}

func (c *Console) handleSpeak(_ context.Context, p ParseResult) error {
	c.speaker = macro.Speaker{Token: optional(p.Args[0]), Actor: optional(p.Args[1])}
	c.printf("speaker token=%q actor=%q\n", c.speaker.Token, c.speaker.Actor)
	return nil
}

func (c *Console) handleInvoke(ctx context.Context, p ParseResult) error {
	result, err := c.host.Service.InvokeByName(ctx, c.user, c.speaker, p.RawArgs)
	if err != nil {
		return err
	}
	c.printf("%v\n", result)
	return nil
}

func (c *Console) handlePress(ctx context.Context, p ParseResult) error {
	user := p.Args[0]
	slot, err := parseSlot(p.Args[1])
	if err != nil {
		return err
	}
	c.target = user

	cmd, err := c.host.Hotbar.Slot(ctx, user, slot)
	if errors.Is(err, macro.ErrCommandNotFound) {
		c.printf("slot %d is empty\n", slot)
		return nil
	}
	if err != nil {
		return err
	}
	result, err := c.host.Dispatcher.Execute(ctx, user, c.speaker, cmd)
	if err != nil {
		return err
	}
	c.printf("%v\n", result)
	return nil
}

func (c *Console) handleSlots(ctx context.Context, p ParseResult) error {
	slots, err := c.host.Hotbar.Slots(ctx, p.Args[0])
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		c.printf("hotbar of %s is empty\n", p.Args[0])
		return nil
	}
	numbers := make([]int, 0, len(slots))
	for n := range slots {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		c.printf("%3d  %-20s %s\n", n, slots[n].Name, slots[n].ScriptBody)
	}
	return nil
}

func (c *Console) handleActors(context.Context, ParseResult) error {
	for _, a := range c.host.Directory.All() {
		var names []string
		for _, it := range a.Items() {
			names = append(names, it.Name())
		}
		c.printf("%-10s %-20s items: %s\n", a.ID(), a.Name(), strings.Join(names, ", "))
	}
	return nil
}

func (c *Console) handleTraits(_ context.Context, p ParseResult) error {
	group := trait.GroupKey(p.Args[0])
	if !trait.ValidGroups()[group] {
		return fmt.Errorf("unknown group %q", p.Args[0])
	}
	for _, def := range c.host.Traits.ListByGroup(group) {
		c.printf("%-10s %-14s %s\n", def.Kind, def.Key, def.DisplayName)
	}
	return nil
}

func (c *Console) handleAttack(_ context.Context, p ParseResult) error {
	formula, err := c.host.Traits.LookupAttackPool(p.Args[0])
	if err != nil {
		return err
	}
	attr, _ := c.host.Traits.Trait(formula.Attribute)
	skill, _ := c.host.Traits.Trait(formula.Skill)
	c.printf("%s = %s + %s\n", p.Args[0], attr.DisplayName, skill.DisplayName)
	return nil
}

func (c *Console) handleMerits(_ context.Context, p ParseResult) error {
	if len(p.Args) == 0 {
		for _, m := range c.host.Traits.Merits() {
			if m.Header {
				c.printf("%-14s %s\n", m.Key, m.DisplayName)
			}
		}
		return nil
	}
	merits := c.host.Traits.MeritsUnder(p.Args[0])
	if len(merits) == 0 {
		return fmt.Errorf("no merits under %q", p.Args[0])
	}
	for _, m := range merits {
		c.printf("%-20s %s\n", m.Key, m.DisplayName)
	}
	return nil
}

func (c *Console) handleInitiative(_ context.Context, p ParseResult) error {
	a, ok := c.host.Directory.Actor(p.Args[0])
	if !ok {
		return fmt.Errorf("unknown actor %q", p.Args[0])
	}
	res, err := c.host.Pools.RollInitiative(a)
	if err != nil {
		return err
	}
	c.printf("%s initiative: %d (%s)\n", a.Name(), res.Total(), res)
	return nil
}

func (c *Console) handleHelp(context.Context, ParseResult) error {
	for _, cmd := range c.registry.Commands() {
		usage := cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		c.printf("  %-40s %s\n", usage, cmd.Help)
	}
	return nil
}
