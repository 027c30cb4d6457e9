package macro

import (
	"context"
	"fmt"
	"sync"
)

// Handler runs one routine with the command's argument.
type Handler func(ctx context.Context, userID string, speaker Speaker, arg string) (any, error)

// Dispatcher maps routine names to handlers. Command bodies are never parsed
// or evaluated; only the stored Invocation is consulted.
type Dispatcher struct {
	mu       sync.RWMutex
	routines map[string]Handler
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{routines: make(map[string]Handler)}
}

// Register binds routine to h.
//
// Precondition: routine non-empty and h non-nil.
// Postcondition: returns an error if routine is already registered.
func (d *Dispatcher) Register(routine string, h Handler) error {
	if routine == "" || h == nil {
		panic("Dispatcher.Register: precondition violated: routine and handler must be set")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.routines[routine]; exists {
		return fmt.Errorf("duplicate routine: %q", routine)
	}
	d.routines[routine] = h
	return nil
}

// Execute runs cmd for userID in the current speaker context.
func (d *Dispatcher) Execute(ctx context.Context, userID string, speaker Speaker, cmd *Command) (any, error) {
	d.mu.RLock()
	h, ok := d.routines[cmd.Invocation.Routine]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (command %q)", ErrUnknownRoutine, cmd.Invocation.Routine, cmd.Name)
	}
	return h(ctx, userID, speaker, cmd.Invocation.Arg)
}

// RegisterRoutines installs the service's routines on d.
func (s *Service) RegisterRoutines(d *Dispatcher) error {
	return d.Register(RoutineInvoke, s.InvokeByName)
}
