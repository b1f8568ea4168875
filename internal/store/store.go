package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/penseeboheme/storefront/internal/models"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Keys for the persisted client state. These mirror the browser
// localStorage entries of the original storefront.
const (
	KeyAuthToken   = "auth_token"
	KeyAuthUser    = "auth_user"
	KeyAnonymousID = "anonymous_id"
)

// Store is the durable client-side state: the bearer token, the
// serialized user record and the anonymous visitor id survive process
// restarts here, the way localStorage does in a browser.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	slog.Info("running state migrations", "database", dbPath)
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open database. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value for key, or "" when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Snapshot is the state rehydrated at startup, decoupled from the
// steady-state Get/Set API.
type Snapshot struct {
	Token       string
	User        *models.User
	AnonymousID string
}

// LoadSnapshot reads the persisted auth/visitor state in one pass.
// A corrupt user record is dropped rather than failing startup.
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	token, err := s.Get(ctx, KeyAuthToken)
	if err != nil {
		return nil, err
	}
	snap.Token = token

	rawUser, err := s.Get(ctx, KeyAuthUser)
	if err != nil {
		return nil, err
	}
	if rawUser != "" {
		var user models.User
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			slog.Warn("discarding corrupt persisted user record", "error", err)
		} else {
			snap.User = &user
		}
	}

	anonymousID, err := s.Get(ctx, KeyAnonymousID)
	if err != nil {
		return nil, err
	}
	snap.AnonymousID = anonymousID

	return snap, nil
}

// SaveUser serializes the user record under KeyAuthUser.
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return s.Set(ctx, KeyAuthUser, string(data))
}
