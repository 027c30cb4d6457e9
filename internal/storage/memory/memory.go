// Package memory provides in-process command library and hotbar storage for
// standalone hosts and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

// Library is a map-backed macro.Library keyed by macro.Key.
// All methods are safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	commands map[macro.Key]*macro.Command
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{commands: make(map[macro.Key]*macro.Command)}
}

// Find returns the item macro stored under key.
func (l *Library) Find(_ context.Context, key macro.Key) (*macro.Command, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cmd, ok := l.commands[key]
	if !ok {
		return nil, macro.ErrCommandNotFound
	}
	return cloneCommand(cmd), nil
}

// Create stores cmd under cmd.Key(). Commands without ItemMacro are host-native
// and are not tracked by key.
func (l *Library) Create(_ context.Context, cmd *macro.Command) (*macro.Command, error) {
	if !cmd.ItemMacro {
		return nil, fmt.Errorf("memory: only item macros can be stored, got %q", cmd.Name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := cmd.Key()
	if _, exists := l.commands[key]; exists {
		return nil, macro.ErrCommandExists
	}
	stored := cloneCommand(cmd)
	l.commands[key] = stored
	return cloneCommand(stored), nil
}

// List returns every command owned by userID ordered by name.
func (l *Library) List(_ context.Context, userID string) ([]*macro.Command, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*macro.Command
	for k, cmd := range l.commands {
		if k.UserID == userID {
			out = append(out, cloneCommand(cmd))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneCommand(c *macro.Command) *macro.Command {
	cp := *c
	return &cp
}

// Hotbar is a map-backed macro.Hotbar with slots numbered 1..size.
// All methods are safe for concurrent use.
type Hotbar struct {
	mu    sync.RWMutex
	size  int
	slots map[string]map[int]*macro.Command
}

// NewHotbar returns an empty Hotbar with size slots per user.
//
// Precondition: size >= 1.
func NewHotbar(size int) *Hotbar {
	if size < 1 {
		panic("memory.NewHotbar: precondition violated: size must be >= 1")
	}
	return &Hotbar{size: size, slots: make(map[string]map[int]*macro.Command)}
}

// Assign binds cmd to slot, replacing any previous binding.
func (h *Hotbar) Assign(_ context.Context, userID string, slot int, cmd *macro.Command) error {
	if slot < 1 || slot > h.size {
		return fmt.Errorf("%w: %d (must be 1-%d)", macro.ErrInvalidSlot, slot, h.size)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	bar, ok := h.slots[userID]
	if !ok {
		bar = make(map[int]*macro.Command)
		h.slots[userID] = bar
	}
	bar[slot] = cloneCommand(cmd)
	return nil
}

// Slot returns the command bound to slot, or ErrCommandNotFound when empty.
func (h *Hotbar) Slot(_ context.Context, userID string, slot int) (*macro.Command, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cmd, ok := h.slots[userID][slot]
	if !ok {
		return nil, macro.ErrCommandNotFound
	}
	return cloneCommand(cmd), nil
}

// Slots returns a snapshot of every bound slot for userID.
func (h *Hotbar) Slots(_ context.Context, userID string) (map[int]*macro.Command, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int]*macro.Command, len(h.slots[userID]))
	for slot, cmd := range h.slots[userID] {
		out[slot] = cloneCommand(cmd)
	}
	return out, nil
}

var (
	_ macro.Library = (*Library)(nil)
	_ macro.Hotbar  = (*Hotbar)(nil)
)
