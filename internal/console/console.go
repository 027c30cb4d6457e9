package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cod/internal/game/actor"
	"github.com/cory-johannsen/cod/internal/game/macro"
	"github.com/cory-johannsen/cod/internal/game/trait"
	"github.com/cory-johannsen/cod/internal/notify"
)

// HotbarReader reads back bound slots. Every storage backend implements it.
type HotbarReader interface {
	Slot(ctx context.Context, userID string, slot int) (*macro.Command, error)
	Slots(ctx context.Context, userID string) (map[int]*macro.Command, error)
}

// Host bundles the collaborators a Console drives.
type Host struct {
	Service    *macro.Service
	Dispatcher *macro.Dispatcher
	Hotbar     HotbarReader
	Directory  *actor.Directory
	Pools      *actor.PoolRoller
	Traits     *trait.Registry
	Outbox     *notify.Outbox
}

type handlerFunc func(ctx context.Context, p ParseResult) error

// Console executes console lines against a Host and writes replies to out.
// A Console is used by one goroutine at a time.
type Console struct {
	host     Host
	registry *Registry
	handlers map[string]handlerFunc
	out      io.Writer
	logger   *zap.Logger

	user    string
	speaker macro.Speaker
	// target is the user the current command acts for.
	target string
}

// errQuit ends Serve without error.
var errQuit = errors.New("quit")

// New creates a Console acting as user "gm" with an empty speaker.
//
// Precondition: every Host field, out, and logger must be non-nil.
func New(host Host, out io.Writer, logger *zap.Logger) *Console {
	if host.Service == nil || host.Dispatcher == nil || host.Hotbar == nil || host.Directory == nil ||
		host.Pools == nil || host.Traits == nil || host.Outbox == nil || out == nil || logger == nil {
		panic("console.New: precondition violated: all collaborators must be non-nil")
	}
	c := &Console{
		host:     host,
		registry: DefaultRegistry(),
		out:      out,
		logger:   logger,
		user:     "gm",
	}
	c.handlers = map[string]handlerFunc{
		HandlerUser:       c.handleUser,
		HandlerGrant:      c.handleGrant,
		HandlerDrop:       c.handleDrop,
		HandlerToken:      c.handleToken,
		HandlerSpeak:      c.handleSpeak,
		HandlerInvoke:     c.handleInvoke,
		HandlerPress:      c.handlePress,
		HandlerSlots:      c.handleSlots,
		HandlerActors:     c.handleActors,
		HandlerTraits:     c.handleTraits,
		HandlerAttack:     c.handleAttack,
		HandlerMerits:     c.handleMerits,
		HandlerInitiative: c.handleInitiative,
		HandlerHelp:       c.handleHelp,
		HandlerQuit:       func(context.Context, ParseResult) error { return errQuit },
	}
	for _, cmd := range c.registry.Commands() {
		if _, ok := c.handlers[cmd.Handler]; !ok {
			panic(fmt.Sprintf("console.New: precondition violated: no handler for command %q", cmd.Name))
		}
	}
	return c
}

// User returns the acting user.
func (c *Console) User() string { return c.user }

// Speaker returns the current chat speaker.
func (c *Console) Speaker() macro.Speaker { return c.speaker }

// Execute runs one line. Command failures are written to out and do not
// end the session.
//
// Postcondition: returns true when the line asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	p := Parse(line)
	if p.Command == "" {
		return false
	}
	cmd, ok := c.registry.Resolve(p.Command)
	if !ok {
		c.printf("unknown command %q, try help\n", p.Command)
		return false
	}
	if len(p.Args) < cmd.MinArgs {
		c.printf("usage: %s %s\n", cmd.Name, cmd.Usage)
		return false
	}
	c.target = c.user
	err := c.handlers[cmd.Handler](ctx, p)
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		c.logger.Debug("console command failed", zap.String("command", cmd.Name), zap.Error(err))
		c.printf("error: %v\n", err)
	}
	c.flushWarnings()
	return false
}

// Serve reads lines from in until EOF, quit, or ctx is cancelled.
//
// Postcondition: if in implements io.Closer it has been closed, which
// releases the reading goroutine from a pending Read. A reader that cannot
// be closed keeps that goroutine until its next line or EOF.
func (c *Console) Serve(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cl, ok := in.(io.Closer); ok {
		defer func() {
			if err := cl.Close(); err != nil {
				c.logger.Debug("closing console input", zap.Error(err))
			}
		}()
	}
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		c.printf("%s> ", c.user)
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if c.Execute(ctx, line) {
				return nil
			}
		}
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// flushWarnings prints the notifications queued for the user the last
// command acted for.
func (c *Console) flushWarnings() {
	for _, msg := range c.host.Outbox.Drain(c.target) {
		c.printf("! [%s] %s\n", c.target, msg)
	}
}
