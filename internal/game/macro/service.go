package macro

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cod/internal/notify"
)

// BindOutcome is the result of a hotbar drop.
type BindOutcome int

const (
	// BindIgnored means the drop was not an item; nothing happened.
	BindIgnored BindOutcome = iota
	// BindAccepted means the slot now holds the item's command.
	BindAccepted
	// BindRejected means the drop failed; the user was notified where applicable.
	BindRejected
)

func (o BindOutcome) String() string {
	switch o {
	case BindIgnored:
		return "ignored"
	case BindAccepted:
		return "accepted"
	case BindRejected:
		return "rejected"
	}
	return fmt.Sprintf("BindOutcome(%d)", int(o))
}

// Service implements hotbar binding and by-name invocation.
type Service struct {
	library  Library
	hotbar   Hotbar
	actors   Actors
	notifier Notifier
	printer  *notify.Printer
	logger   *zap.Logger

	newID func() uuid.UUID
	now   func() time.Time
}

// NewService wires the subsystem to its host collaborators.
//
// Precondition: every argument must be non-nil.
func NewService(library Library, hotbar Hotbar, actors Actors, notifier Notifier, printer *notify.Printer, logger *zap.Logger) *Service {
	if library == nil || hotbar == nil || actors == nil || notifier == nil || printer == nil || logger == nil {
		panic("macro.NewService: precondition violated: all collaborators must be non-nil")
	}
	return &Service{
		library:  library,
		hotbar:   hotbar,
		actors:   actors,
		notifier: notifier,
		printer:  printer,
		logger:   logger,
		newID:    uuid.New,
		now:      time.Now,
	}
}

// BindItemToSlot binds the dropped item's command to slot, creating the
// command on first use and reusing it afterwards.
//
// Postcondition: BindIgnored with nil error for non-item drops; BindAccepted
// with the bound command; or BindRejected with a non-nil error. A rejection
// for an unowned item wraps ErrPermission and has already warned the user.
func (s *Service) BindItemToSlot(ctx context.Context, userID string, payload DropPayload, slot int) (BindOutcome, *Command, error) {
	if payload.Kind != KindItem {
		return BindIgnored, nil, nil
	}
	if payload.Item == nil {
		s.notifier.Warn(ctx, userID, s.printer.Sprintf(notify.KeyOwnedItemsOnly))
		s.logger.Info("hotbar drop rejected: unowned item", zap.String("user", userID), zap.Int("slot", slot))
		return BindRejected, nil, ErrPermission
	}

	cmd, err := s.commandFor(ctx, userID, *payload.Item)
	if err != nil {
		s.logger.Error("resolving item macro", zap.String("user", userID), zap.String("item", payload.Item.Name), zap.Error(err))
		return BindRejected, nil, err
	}

	if err := s.hotbar.Assign(ctx, userID, slot, cmd); err != nil {
		s.logger.Error("assigning hotbar slot", zap.String("user", userID), zap.Int("slot", slot), zap.Error(err))
		return BindRejected, nil, fmt.Errorf("assigning slot %d: %w", slot, err)
	}

	s.logger.Debug("hotbar slot bound",
		zap.String("user", userID),
		zap.Int("slot", slot),
		zap.String("command", cmd.Name),
		zap.Stringer("id", cmd.ID),
	)
	return BindAccepted, cmd, nil
}

// commandFor finds the user's item macro for item or creates it.
func (s *Service) commandFor(ctx context.Context, userID string, item ItemData) (*Command, error) {
	inv := ItemInvocation(item.Name)
	key := Key{UserID: userID, Name: item.Name, ScriptBody: inv.Script()}

	cmd, err := s.library.Find(ctx, key)
	if err == nil {
		return cmd, nil
	}
	if !errors.Is(err, ErrCommandNotFound) {
		return nil, fmt.Errorf("finding command %q: %w", item.Name, err)
	}

	cmd, err = s.library.Create(ctx, &Command{
		ID:         s.newID(),
		UserID:     userID,
		Name:       item.Name,
		ScriptBody: key.ScriptBody,
		Icon:       item.Icon,
		ItemMacro:  true,
		Invocation: inv,
		CreatedAt:  s.now().UTC(),
	})
	if errors.Is(err, ErrCommandExists) {
		// A concurrent drop of the same item won the insert.
		return s.library.Find(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("creating command %q: %w", item.Name, err)
	}
	s.logger.Info("item macro created", zap.String("user", userID), zap.String("command", cmd.Name), zap.Stringer("id", cmd.ID))
	return cmd, nil
}

// InvokeByName rolls the first item named itemName on the actor resolved from
// speaker: the speaker's token first, then the speaker's actor id.
//
// Postcondition: on success the item's Roll ran exactly once and its result
// is returned unchanged. On ErrNoActor or ErrItemNotFound exactly one warning
// was sent to userID and no roll happened.
func (s *Service) InvokeByName(ctx context.Context, userID string, speaker Speaker, itemName string) (any, error) {
	actor, ok := s.resolveActor(ctx, speaker)
	if !ok {
		s.notifier.Warn(ctx, userID, s.printer.Sprintf(notify.KeyNoActor, itemName))
		s.logger.Info("invocation failed: no actor", zap.String("user", userID), zap.String("item", itemName))
		return nil, fmt.Errorf("%w: invoking %q", ErrNoActor, itemName)
	}

	item := findItem(actor, itemName)
	if item == nil {
		s.notifier.Warn(ctx, userID, s.printer.Sprintf(notify.KeyItemNotFound, actor.Name(), itemName))
		s.logger.Info("invocation failed: item not found",
			zap.String("user", userID),
			zap.String("actor", actor.ID()),
			zap.String("item", itemName),
		)
		return nil, fmt.Errorf("%w: %s has no item named %q", ErrItemNotFound, actor.Name(), itemName)
	}

	s.logger.Debug("dispatching item roll", zap.String("user", userID), zap.String("actor", actor.ID()), zap.String("item", itemName))
	return item.Roll(ctx)
}

func (s *Service) resolveActor(ctx context.Context, speaker Speaker) (Actor, bool) {
	if speaker.Token != "" {
		if a, ok := s.actors.ByToken(ctx, speaker.Token); ok {
			return a, true
		}
	}
	if speaker.Actor != "" {
		return s.actors.ByID(ctx, speaker.Actor)
	}
	return nil, false
}

// findItem returns the first item whose name equals name exactly.
func findItem(actor Actor, name string) Item {
	for _, it := range actor.Items() {
		if it.Name() == name {
			return it
		}
	}
	return nil
}
