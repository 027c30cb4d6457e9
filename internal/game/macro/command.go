// Package macro turns owned items dropped on a hotbar into replayable,
// de-duplicated commands and dispatches those commands back to an item roll
// on whichever actor is speaking when they fire.
package macro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPermission is returned when a dropped item is not owned by an actor
	// the user controls.
	ErrPermission = errors.New("only owned items can be bound to the hotbar")
	// ErrNoActor is returned when the speaker context resolves to no actor.
	ErrNoActor = errors.New("no controlled actor")
	// ErrItemNotFound is returned when the resolved actor has no item of the requested name.
	ErrItemNotFound = errors.New("item not found on actor")
	// ErrUnknownRoutine is returned when a command names a routine nobody registered.
	ErrUnknownRoutine = errors.New("unknown command routine")
	// ErrCommandNotFound is returned by Library.Find when no command matches the key.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCommandExists is returned by Library.Create when the key is already taken.
	ErrCommandExists = errors.New("command already exists")
	// ErrInvalidSlot is returned by Hotbar implementations for out-of-range slots.
	ErrInvalidSlot = errors.New("invalid hotbar slot")
)

// KindItem is the only drop payload kind that can be bound.
const KindItem = "Item"

// RoutineInvoke rolls the named item on the speaking actor.
const RoutineInvoke = "invoke"

// ItemData is the embedded item carried by a drop from an owned item.
type ItemData struct {
	Name string
	Icon string
}

// DropPayload describes an entity dragged onto a hotbar slot. Item is nil
// when the dragged item is not owned by a controlled actor.
type DropPayload struct {
	Kind string
	Item *ItemData
}

// Speaker is the host's chat speaker context at invocation time. Empty fields
// are absent.
type Speaker struct {
	Token string
	Actor string
}

// Invocation is the structured form of a command body: a registered routine
// and its single argument.
type Invocation struct {
	Routine string
	Arg     string
}

// ItemInvocation returns the invocation that rolls itemName.
func ItemInvocation(itemName string) Invocation {
	return Invocation{Routine: RoutineInvoke, Arg: itemName}
}

// Script renders the human-readable body, e.g. invoke("Pistol").
func (i Invocation) Script() string {
	return fmt.Sprintf("%s(%q)", i.Routine, i.Arg)
}

// Key identifies a command in a user's library. At most one item macro exists per Key.
type Key struct {
	UserID     string
	Name       string
	ScriptBody string
}

// Command is a named, replayable action owned by one user's library.
// Commands are never mutated once created.
type Command struct {
	ID         uuid.UUID
	UserID     string
	Name       string
	ScriptBody string
	Icon       string
	// ItemMacro marks commands created by this package, as opposed to
	// host-native commands that may share a name.
	ItemMacro  bool
	Invocation Invocation
	CreatedAt  time.Time
}

// Key returns the library key of c.
func (c *Command) Key() Key {
	return Key{UserID: c.UserID, Name: c.Name, ScriptBody: c.ScriptBody}
}

// Library is a user's persistent command collection.
type Library interface {
	// Find returns the item macro stored under key, or ErrCommandNotFound.
	Find(ctx context.Context, key Key) (*Command, error)
	// Create stores cmd and returns the stored copy, or ErrCommandExists if
	// an item macro already holds cmd.Key().
	Create(ctx context.Context, cmd *Command) (*Command, error)
}

// Hotbar binds commands to a user's slots. Assign overwrites.
type Hotbar interface {
	Assign(ctx context.Context, userID string, slot int, cmd *Command) error
}

// Notifier delivers user-visible warnings.
type Notifier interface {
	Warn(ctx context.Context, userID, msg string)
}

// Item is an owned possession exposing the host's roll operation.
type Item interface {
	Name() string
	// Roll performs the roll. The result is opaque to this package.
	Roll(ctx context.Context) (any, error)
}

// Actor is a live acting entity.
type Actor interface {
	ID() string
	Name() string
	// Items returns the actor's owned items in the host's order.
	Items() []Item
}

// Actors resolves acting entities from the speaker context.
type Actors interface {
	ByToken(ctx context.Context, tokenID string) (Actor, bool)
	ByID(ctx context.Context, actorID string) (Actor, bool)
}
