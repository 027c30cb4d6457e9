package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cod.db"), 50)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func itemMacro(userID, name string) *macro.Command {
	inv := macro.ItemInvocation(name)
	return &macro.Command{
		UserID:     userID,
		Name:       name,
		ScriptBody: inv.Script(),
		Icon:       "icons/" + name + ".svg",
		ItemMacro:  true,
		Invocation: inv,
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ", 10)
	assert.Error(t, err)
}

func TestOpen_RequiresSlots(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "cod.db"), 0)
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cod.db")
	store, err := Open(path, 10)
	require.NoError(t, err)
	created, err := store.Create(context.Background(), itemMacro("gm", "Pistol"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path, 10)
	require.NoError(t, err, "migrations must be idempotent across reopen")
	defer store.Close()
	found, err := store.Find(context.Background(), created.Key())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCreateAndFind(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, itemMacro("gm", "Pistol"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	found, err := store.Find(ctx, created.Key())
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, `invoke("Pistol")`, found.ScriptBody)
	assert.Equal(t, "icons/Pistol.svg", found.Icon)
	assert.True(t, found.ItemMacro)
	assert.Equal(t, macro.ItemInvocation("Pistol"), found.Invocation)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
}

func TestFind_Missing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Find(context.Background(), macro.Key{UserID: "gm", Name: "Axe", ScriptBody: `invoke("Axe")`})
	assert.ErrorIs(t, err, macro.ErrCommandNotFound)
}

func TestCreate_DuplicateKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, itemMacro("gm", "Knife"))
	require.NoError(t, err)
	_, err = store.Create(ctx, itemMacro("gm", "Knife"))
	assert.ErrorIs(t, err, macro.ErrCommandExists)

	_, err = store.Create(ctx, itemMacro("player", "Knife"))
	assert.NoError(t, err, "keys are scoped per user")
}

func TestCreate_RejectsHostCommand(t *testing.T) {
	store := openTestStore(t)
	cmd := itemMacro("gm", "Chat")
	cmd.ItemMacro = false
	_, err := store.Create(context.Background(), cmd)
	assert.Error(t, err)
}

func TestCreate_ConcurrentSingleWinner(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Create(ctx, itemMacro("gm", "Rifle")); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestList_OrderedByName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"Sword", "Axe", "Pistol"} {
		_, err := store.Create(ctx, itemMacro("gm", name))
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, itemMacro("player", "Bow"))
	require.NoError(t, err)

	cmds, err := store.List(ctx, "gm")
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, []string{"Axe", "Pistol", "Sword"}, []string{cmds[0].Name, cmds[1].Name, cmds[2].Name})
}

func TestAssign_Overwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	pistol, err := store.Create(ctx, itemMacro("gm", "Pistol"))
	require.NoError(t, err)
	sword, err := store.Create(ctx, itemMacro("gm", "Sword"))
	require.NoError(t, err)

	require.NoError(t, store.Assign(ctx, "gm", 1, pistol))
	require.NoError(t, store.Assign(ctx, "gm", 1, sword))
	require.NoError(t, store.Assign(ctx, "gm", 2, pistol))

	got, err := store.Slot(ctx, "gm", 1)
	require.NoError(t, err)
	assert.Equal(t, sword.ID, got.ID)

	slots, err := store.Slots(ctx, "gm")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, pistol.ID, slots[2].ID)

	_, err = store.Slot(ctx, "gm", 3)
	assert.ErrorIs(t, err, macro.ErrCommandNotFound)
}

func TestAssign_RequiresStoredCommand(t *testing.T) {
	store := openTestStore(t)
	unsaved := itemMacro("gm", "Ghost")
	unsaved.ID = uuid.New()
	assert.Error(t, store.Assign(context.Background(), "gm", 1, unsaved))
}

func TestAssign_SlotRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	cmd, err := store.Create(ctx, itemMacro("gm", "Bow"))
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		slot := rapid.IntRange(-10, 70).Draw(t, "slot")
		err := store.Assign(ctx, "gm", slot, cmd)
		if slot >= 1 && slot <= 50 {
			if err != nil {
				t.Fatalf("slot %d rejected: %v", slot, err)
			}
			return
		}
		if !errors.Is(err, macro.ErrInvalidSlot) {
			t.Fatalf("slot %d: want ErrInvalidSlot, got %v", slot, err)
		}
	})
}
