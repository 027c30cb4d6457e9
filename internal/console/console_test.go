package console_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/cod/internal/console"
	"github.com/cory-johannsen/cod/internal/game/actor"
	"github.com/cory-johannsen/cod/internal/game/dice"
	"github.com/cory-johannsen/cod/internal/game/macro"
	"github.com/cory-johannsen/cod/internal/game/trait"
	"github.com/cory-johannsen/cod/internal/notify"
	"github.com/cory-johannsen/cod/internal/storage/memory"
)

// faceSource always rolls an 8.
type faceSource struct{}

func (faceSource) Intn(int) int { return 7 }

type fixture struct {
	console *console.Console
	out     *bytes.Buffer
	library *memory.Library
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	registry := trait.DefaultRegistry()
	pools := actor.NewPoolRoller(registry, dice.NewLoggedRoller(faceSource{}, logger))

	dir := actor.NewDirectory()
	mara := actor.New("mara", "Mara", map[string]int{"dex": 3, "firearms": 2, "str": 2, "brawl": 1})
	mara.Give(actor.NewItem("Pistol", "icons/pistol.svg", "ranged", pools))
	mara.Give(actor.NewItem("Rusty  Knife", "icons/knife.svg", "melee", pools))
	require.NoError(t, dir.Add(mara))
	require.NoError(t, dir.Grant("gm", "mara"))

	printer, err := notify.NewPrinter("en-US")
	require.NoError(t, err)
	library := memory.NewLibrary()
	hotbar := memory.NewHotbar(50)
	outbox := notify.NewOutbox()
	svc := macro.NewService(library, hotbar, dir, outbox, printer, logger)
	dispatcher := macro.NewDispatcher()
	require.NoError(t, svc.RegisterRoutines(dispatcher))

	out := &bytes.Buffer{}
	c := console.New(console.Host{
		Service:    svc,
		Dispatcher: dispatcher,
		Hotbar:     hotbar,
		Directory:  dir,
		Pools:      pools,
		Traits:     registry,
		Outbox:     outbox,
	}, out, logger)
	return &fixture{console: c, out: out, library: library}
}

func (f *fixture) run(t *testing.T, line string) string {
	t.Helper()
	f.out.Reset()
	f.console.Execute(context.Background(), line)
	return f.out.String()
}

func TestConsole_DropAndPress(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run(t, "drop gm 1 mara Pistol"), `slot 1: Pistol invoke("Pistol")`)
	f.run(t, "token t1 mara")
	f.run(t, "speak t1 -")

	out := f.run(t, "press gm 1")
	assert.Contains(t, out, "Mara rolls Pistol")
	assert.Contains(t, out, "5 successes")
}

func TestConsole_DropTwiceReusesCommand(t *testing.T) {
	f := newFixture(t)
	f.run(t, "drop gm 1 mara Pistol")
	f.run(t, "drop gm 2 mara Pistol")

	cmds, err := f.library.List(context.Background(), "gm")
	require.NoError(t, err)
	assert.Len(t, cmds, 1)

	out := f.run(t, "slots gm")
	assert.Contains(t, out, "  1  Pistol")
	assert.Contains(t, out, "  2  Pistol")
}

func TestConsole_DropKeepsInnerSpacing(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "drop gm 3 mara Rusty  Knife"), `invoke("Rusty  Knife")`)
}

func TestConsole_DropUncontrolledActorWarns(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "drop player 1 mara Pistol")
	assert.Contains(t, out, "! [player] You can only create macro buttons for owned Items")
	assert.Contains(t, out, "error:")
}

func TestConsole_InvokeWithoutSpeakerWarns(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "invoke Pistol")
	assert.Contains(t, out, "! [gm] No controlled Actor is available to roll Pistol")
}

func TestConsole_InvokeFallsBackToActor(t *testing.T) {
	f := newFixture(t)
	f.run(t, "speak - mara")
	assert.Contains(t, f.run(t, "roll Pistol"), "Mara rolls Pistol")
	assert.Contains(t, f.run(t, "invoke Sword"), "! [gm] Mara does not have an item named Sword")
}

func TestConsole_PressEmptySlot(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "press gm 9"), "slot 9 is empty")
	assert.Contains(t, f.run(t, "press gm nine"), "slot must be a number")
}

func TestConsole_UserSwitch(t *testing.T) {
	f := newFixture(t)
	f.run(t, "as player")
	assert.Equal(t, "player", f.console.User())
	assert.Contains(t, f.run(t, "invoke Pistol"), "! [player]")
}

func TestConsole_RulesQueries(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "attack ranged"), "ranged = ")
	assert.Contains(t, f.run(t, "attack laser"), "error:")
	assert.Contains(t, f.run(t, "traits physical"), "firearms")
	assert.Contains(t, f.run(t, "traits cosmic"), "unknown group")
	assert.Contains(t, f.run(t, "merits"), "fighting")
	assert.Contains(t, f.run(t, "init mara"), "Mara initiative")
	assert.Contains(t, f.run(t, "actors"), "Pistol")
}

func TestConsole_UsageAndUnknown(t *testing.T) {
	f := newFixture(t)
	assert.Contains(t, f.run(t, "drop gm"), "usage: drop")
	assert.Contains(t, f.run(t, "dance"), "unknown command")
	assert.Empty(t, f.run(t, "   "))
}

func TestConsole_Help(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "help")
	for _, cmd := range console.BuiltinCommands() {
		assert.Contains(t, out, cmd.Name)
	}
}

func TestConsole_ServeStopsAtQuit(t *testing.T) {
	f := newFixture(t)
	in := strings.NewReader("speak - mara\nquit\ninvoke Pistol\n")
	require.NoError(t, f.console.Serve(context.Background(), in))
	assert.NotContains(t, f.out.String(), "Mara rolls")
	assert.Equal(t, macro.Speaker{Actor: "mara"}, f.console.Speaker())
}

func TestConsole_ServeStopsAtEOF(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.console.Serve(context.Background(), strings.NewReader("user gm\n")))
}

func TestConsole_ServeClosesInputOnCancel(t *testing.T) {
	f := newFixture(t)
	r, w := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- f.console.Serve(ctx, r) }()

	_, err := io.WriteString(w, "speak - mara\n")
	require.NoError(t, err)
	cancel()

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	_, err = io.WriteString(w, "invoke Pistol\n")
	assert.ErrorIs(t, err, io.ErrClosedPipe, "reader is closed once Serve returns")
}

func TestNew_PanicsOnMissingCollaborator(t *testing.T) {
	assert.Panics(t, func() { console.New(console.Host{}, &bytes.Buffer{}, zaptest.NewLogger(t)) })
}
