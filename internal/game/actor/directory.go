package actor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

// Directory tracks actors, the tokens placed for them, and which users
// control which actors. All methods are safe for concurrent use.
type Directory struct {
	mu       sync.RWMutex
	actors   map[string]*Actor          // id → actor
	tokens   map[string]string          // token id → actor id
	controls map[string]map[string]bool // user → set of actor ids
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		actors:   make(map[string]*Actor),
		tokens:   make(map[string]string),
		controls: make(map[string]map[string]bool),
	}
}

// Add registers a.
//
// Postcondition: returns an error if an actor with the same id exists.
func (d *Directory) Add(a *Actor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.actors[a.id]; exists {
		return fmt.Errorf("actor %q already exists", a.id)
	}
	d.actors[a.id] = a
	return nil
}

// PlaceToken binds tokenID to actorID, replacing any previous binding.
func (d *Directory) PlaceToken(tokenID, actorID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.actors[actorID]; !ok {
		return fmt.Errorf("unknown actor %q", actorID)
	}
	d.tokens[tokenID] = actorID
	return nil
}

// RemoveToken deletes tokenID. Removing an unknown token is a no-op.
func (d *Directory) RemoveToken(tokenID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tokens, tokenID)
}

// Grant gives userID control of actorID.
func (d *Directory) Grant(userID, actorID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.actors[actorID]; !ok {
		return fmt.Errorf("unknown actor %q", actorID)
	}
	set, ok := d.controls[userID]
	if !ok {
		set = make(map[string]bool)
		d.controls[userID] = set
	}
	set[actorID] = true
	return nil
}

// Controls reports whether userID controls actorID.
func (d *Directory) Controls(userID, actorID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.controls[userID][actorID]
}

// Actor returns the actor with the given id.
func (d *Directory) Actor(id string) (*Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[id]
	return a, ok
}

// All returns every actor ordered by id.
func (d *Directory) All() []*Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Actor, 0, len(d.actors))
	for _, a := range d.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ByToken resolves the actor bound to tokenID.
func (d *Directory) ByToken(_ context.Context, tokenID string) (macro.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[d.tokens[tokenID]]
	if !ok {
		return nil, false
	}
	return a, true
}

// ByID resolves the actor with actorID.
func (d *Directory) ByID(_ context.Context, actorID string) (macro.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[actorID]
	if !ok {
		return nil, false
	}
	return a, true
}

// DropPayload builds the payload the host sends when userID drags itemName
// from actorID's sheet. The item is embedded only when the user controls the
// actor and the actor owns the item.
func (d *Directory) DropPayload(userID, actorID, itemName string) macro.DropPayload {
	p := macro.DropPayload{Kind: macro.KindItem}
	a, ok := d.Actor(actorID)
	if !ok || !d.Controls(userID, actorID) {
		return p
	}
	if it, ok := a.Item(itemName); ok {
		p.Item = &macro.ItemData{Name: it.name, Icon: it.icon}
	}
	return p
}

var _ macro.Actors = (*Directory)(nil)
