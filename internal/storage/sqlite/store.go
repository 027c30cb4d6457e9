// Package sqlite provides a single-file SQLite command library and hotbar for
// standalone hosts.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/cod/internal/game/macro"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const commandColumns = `id, user_id, name, script_body, icon, item_macro, routine, arg, created_at`

// Store persists command libraries and hotbars in SQLite. It implements both
// macro.Library and macro.Hotbar.
type Store struct {
	sqlDB *sql.DB
	slots int
}

// Open opens the database at path, applies embedded migrations, and returns
// a Store with slots hotbar slots per user.
//
// Precondition: path must be non-empty; slots >= 1.
// Postcondition: Returns a migrated Store or a non-nil error.
func Open(path string, slots int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if slots < 1 {
		return nil, fmt.Errorf("hotbar slots must be >= 1, got %d", slots)
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{sqlDB: sqlDB, slots: slots}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migration source: %w", err)
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	// m.Close would close sqlDB, which the Store keeps using.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Find returns the item macro stored under key, or macro.ErrCommandNotFound.
func (s *Store) Find(ctx context.Context, key macro.Key) (*macro.Command, error) {
	cmd, err := scanCommand(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+commandColumns+` FROM commands
		 WHERE user_id = ? AND name = ? AND script_body = ? AND item_macro = 1`,
		key.UserID, key.Name, key.ScriptBody,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, macro.ErrCommandNotFound
		}
		return nil, fmt.Errorf("query command: %w", err)
	}
	return cmd, nil
}

// Create inserts cmd, or returns macro.ErrCommandExists if its key is taken.
// A zero ID is replaced with a fresh UUID and a zero CreatedAt with the current time.
func (s *Store) Create(ctx context.Context, cmd *macro.Command) (*macro.Command, error) {
	if !cmd.ItemMacro {
		return nil, fmt.Errorf("sqlite: only item macros can be stored, got %q", cmd.Name)
	}
	stored := *cmd
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.CreatedAt = fromMillis(toMillis(stored.CreatedAt))

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO commands (`+commandColumns+`) VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		stored.ID.String(), stored.UserID, stored.Name, stored.ScriptBody, stored.Icon,
		stored.Invocation.Routine, stored.Invocation.Arg, toMillis(stored.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, macro.ErrCommandExists
		}
		return nil, fmt.Errorf("insert command: %w", err)
	}
	return &stored, nil
}

// List returns every command owned by userID ordered by name.
func (s *Store) List(ctx context.Context, userID string) ([]*macro.Command, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+commandColumns+` FROM commands WHERE user_id = ? ORDER BY name, created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	defer rows.Close()

	var out []*macro.Command
	for rows.Next() {
		cmd, err := scanCommand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		out = append(out, cmd)
	}
	return out, rows.Err()
}

// Assign binds cmd to slot, replacing any previous binding.
func (s *Store) Assign(ctx context.Context, userID string, slot int, cmd *macro.Command) error {
	if slot < 1 || slot > s.slots {
		return fmt.Errorf("%w: %d (must be 1-%d)", macro.ErrInvalidSlot, slot, s.slots)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO hotbar_slots (user_id, slot, command_id) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, slot) DO UPDATE SET command_id = excluded.command_id`,
		userID, slot, cmd.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("assign slot %d: %w", slot, err)
	}
	return nil
}

// Slot returns the command bound to slot, or macro.ErrCommandNotFound when empty.
func (s *Store) Slot(ctx context.Context, userID string, slot int) (*macro.Command, error) {
	cmd, err := scanCommand(s.sqlDB.QueryRowContext(ctx,
		`SELECT c.id, c.user_id, c.name, c.script_body, c.icon, c.item_macro, c.routine, c.arg, c.created_at
		 FROM hotbar_slots h JOIN commands c ON c.id = h.command_id
		 WHERE h.user_id = ? AND h.slot = ?`,
		userID, slot,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, macro.ErrCommandNotFound
		}
		return nil, fmt.Errorf("query slot %d: %w", slot, err)
	}
	return cmd, nil
}

// Slots returns every bound slot for userID.
func (s *Store) Slots(ctx context.Context, userID string) (map[int]*macro.Command, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT h.slot FROM hotbar_slots h WHERE h.user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	var numbers []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// One connection: the slot rows must be drained before the joins run.
	out := make(map[int]*macro.Command, len(numbers))
	for _, n := range numbers {
		cmd, err := s.Slot(ctx, userID, n)
		if err != nil {
			return nil, err
		}
		out[n] = cmd
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommand(row rowScanner) (*macro.Command, error) {
	var (
		cmd       macro.Command
		id        string
		itemMacro int
		createdAt int64
	)
	if err := row.Scan(&id, &cmd.UserID, &cmd.Name, &cmd.ScriptBody, &cmd.Icon, &itemMacro,
		&cmd.Invocation.Routine, &cmd.Invocation.Arg, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse command id %q: %w", id, err)
	}
	cmd.ID = parsed
	cmd.ItemMacro = itemMacro == 1
	cmd.CreatedAt = fromMillis(createdAt)
	return &cmd, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

var (
	_ macro.Library = (*Store)(nil)
	_ macro.Hotbar  = (*Store)(nil)
)
