// Package repo stores users and simulation run history in PostgreSQL or SQLite.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Sortable fixed-width UTC timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const DefaultListLimit = 50

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type User struct {
	ID           string `db:"id" json:"id"`
	Login        string `db:"login" json:"login"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// Run is one stored simulation. Schema and Result hold JSON documents.
type Run struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"user_id"`
	PipeID        string `db:"pipe_id" json:"pipe_id"`
	OverallStatus string `db:"overall_status" json:"overall_status"`
	Schema        string `db:"schema_json" json:"-"`
	Result        string `db:"result_json" json:"-"`
	CreatedAt     string `db:"created_at" json:"created_at"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, passwordHash string) (string, error)
	GetByLogin(ctx context.Context, login string) (User, error)
	SaveRun(ctx context.Context, run Run) (string, error)
	ListRuns(ctx context.Context, userID string, limit int) ([]Run, error)
	GetRun(ctx context.Context, userID, id string) (Run, error)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		login TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS simulation_runs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		pipe_id TEXT NOT NULL,
		overall_status TEXT NOT NULL,
		schema_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS simulation_runs_user_created ON simulation_runs (user_id, created_at)`,
}

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Repository = (*Store)(nil)

// Open connects with driver "postgres" or "sqlite" and applies migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("repo: open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// One connection keeps ":memory:" databases shared and serialises writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo: ping %s: %w", driver, err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("repo: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) stamp() string { return s.now().UTC().Format(timeLayout) }

func (s *Store) CreateUser(ctx context.Context, login, email, passwordHash string) (string, error) {
	id := uuid.NewString()
	q := s.db.Rebind(`INSERT INTO users (id, login, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, id, login, email, passwordHash, s.stamp()); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("user %q: %w", login, ErrDuplicate)
		}
		return "", err
	}
	return id, nil
}

func (s *Store) GetByLogin(ctx context.Context, login string) (User, error) {
	var u User
	q := s.db.Rebind(`SELECT id, login, email, password_hash, created_at FROM users WHERE login = ?`)
	if err := s.db.GetContext(ctx, &u, q, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (s *Store) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == "" {
		run.CreatedAt = s.stamp()
	}
	q := `INSERT INTO simulation_runs (id, user_id, pipe_id, overall_status, schema_json, result_json, created_at)
		VALUES (:id, :user_id, :pipe_id, :overall_status, :schema_json, :result_json, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, run); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("run %s: %w", run.ID, ErrDuplicate)
		}
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns the newest runs of userID first.
func (s *Store) ListRuns(ctx context.Context, userID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	runs := []Run{}
	q := s.db.Rebind(`SELECT id, user_id, pipe_id, overall_status, schema_json, result_json, created_at
		FROM simulation_runs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &runs, q, userID, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun only finds runs owned by userID.
func (s *Store) GetRun(ctx context.Context, userID, id string) (Run, error) {
	var run Run
	q := s.db.Rebind(`SELECT id, user_id, pipe_id, overall_status, schema_json, result_json, created_at
		FROM simulation_runs WHERE user_id = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &run, q, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
