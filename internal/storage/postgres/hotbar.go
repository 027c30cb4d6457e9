package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

// HotbarRepository is a macro.Hotbar stored in the hotbar_slots table.
type HotbarRepository struct {
	db   *pgxpool.Pool
	size int
}

// NewHotbarRepository creates a HotbarRepository with size slots per user.
//
// Precondition: db must be a valid, open connection pool; size >= 1.
func NewHotbarRepository(db *pgxpool.Pool, size int) *HotbarRepository {
	if size < 1 {
		panic("postgres.NewHotbarRepository: precondition violated: size must be >= 1")
	}
	return &HotbarRepository{db: db, size: size}
}

// Assign binds cmd to slot, replacing any previous binding.
//
// Precondition: cmd must already be stored in the commands table.
// Postcondition: The slot refers to cmd, or macro.ErrInvalidSlot is returned.
func (r *HotbarRepository) Assign(ctx context.Context, userID string, slot int, cmd *macro.Command) error {
	if slot < 1 || slot > r.size {
		return fmt.Errorf("%w: %d (must be 1-%d)", macro.ErrInvalidSlot, slot, r.size)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO hotbar_slots (user_id, slot, command_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, slot) DO UPDATE SET command_id = EXCLUDED.command_id`,
		userID, slot, cmd.ID,
	)
	if err != nil {
		return fmt.Errorf("assigning slot %d: %w", slot, err)
	}
	return nil
}

// Slot returns the command bound to slot, or macro.ErrCommandNotFound when empty.
func (r *HotbarRepository) Slot(ctx context.Context, userID string, slot int) (*macro.Command, error) {
	cmd, err := scanCommand(r.db.QueryRow(ctx,
		`SELECT c.id, c.user_id, c.name, c.script_body, c.icon, c.item_macro, c.routine, c.arg, c.created_at
		 FROM hotbar_slots h JOIN commands c ON c.id = h.command_id
		 WHERE h.user_id = $1 AND h.slot = $2`,
		userID, slot,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, macro.ErrCommandNotFound
		}
		return nil, fmt.Errorf("querying slot %d: %w", slot, err)
	}
	return cmd, nil
}

// Slots returns every bound slot for userID.
func (r *HotbarRepository) Slots(ctx context.Context, userID string) (map[int]*macro.Command, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.slot, c.id, c.user_id, c.name, c.script_body, c.icon, c.item_macro, c.routine, c.arg, c.created_at
		 FROM hotbar_slots h JOIN commands c ON c.id = h.command_id
		 WHERE h.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	out := make(map[int]*macro.Command)
	for rows.Next() {
		var (
			slot int
			cmd  macro.Command
		)
		if err := rows.Scan(&slot,
			&cmd.ID, &cmd.UserID, &cmd.Name, &cmd.ScriptBody, &cmd.Icon, &cmd.ItemMacro,
			&cmd.Invocation.Routine, &cmd.Invocation.Arg, &cmd.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		out[slot] = &cmd
	}
	return out, rows.Err()
}

var _ macro.Hotbar = (*HotbarRepository)(nil)
