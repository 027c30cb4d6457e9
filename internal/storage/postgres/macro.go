package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

const commandColumns = `id, user_id, name, script_body, icon, item_macro, routine, arg, created_at`

// MacroRepository is a macro.Library stored in the commands table. A partial
// unique index on (user_id, name, script_body) keeps one item macro per key.
type MacroRepository struct {
	db *pgxpool.Pool
}

// NewMacroRepository creates a MacroRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMacroRepository(db *pgxpool.Pool) *MacroRepository {
	return &MacroRepository{db: db}
}

// Find returns the item macro stored under key.
//
// Postcondition: Returns the command or macro.ErrCommandNotFound.
func (r *MacroRepository) Find(ctx context.Context, key macro.Key) (*macro.Command, error) {
	cmd, err := scanCommand(r.db.QueryRow(ctx,
		`SELECT `+commandColumns+`
		 FROM commands
		 WHERE user_id = $1 AND name = $2 AND script_body = $3 AND item_macro`,
		key.UserID, key.Name, key.ScriptBody,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, macro.ErrCommandNotFound
		}
		return nil, fmt.Errorf("querying command: %w", err)
	}
	return cmd, nil
}

// Create inserts cmd. A zero ID is replaced with a fresh UUID.
//
// Precondition: cmd.ItemMacro must be true.
// Postcondition: Returns the stored command with CreatedAt set, or
// macro.ErrCommandExists if the key is taken.
func (r *MacroRepository) Create(ctx context.Context, cmd *macro.Command) (*macro.Command, error) {
	if !cmd.ItemMacro {
		return nil, fmt.Errorf("postgres: only item macros can be stored, got %q", cmd.Name)
	}
	id := cmd.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	stored, err := scanCommand(r.db.QueryRow(ctx,
		`INSERT INTO commands (id, user_id, name, script_body, icon, item_macro, routine, arg)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
		 RETURNING `+commandColumns,
		id, cmd.UserID, cmd.Name, cmd.ScriptBody, cmd.Icon, cmd.Invocation.Routine, cmd.Invocation.Arg,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, macro.ErrCommandExists
		}
		return nil, fmt.Errorf("inserting command: %w", err)
	}
	return stored, nil
}

// List returns every command owned by userID ordered by name.
func (r *MacroRepository) List(ctx context.Context, userID string) ([]*macro.Command, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+commandColumns+`
		 FROM commands WHERE user_id = $1
		 ORDER BY name, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing commands: %w", err)
	}
	defer rows.Close()

	var out []*macro.Command
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

func scanCommand(row pgx.Row) (*macro.Command, error) {
	var cmd macro.Command
	err := row.Scan(
		&cmd.ID, &cmd.UserID, &cmd.Name, &cmd.ScriptBody, &cmd.Icon, &cmd.ItemMacro,
		&cmd.Invocation.Routine, &cmd.Invocation.Arg, &cmd.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cmd, nil
}

var _ macro.Library = (*MacroRepository)(nil)
