// Package sqlcontent stores screen content and the interaction log in a SQL
// database.
//
// SQLite (mattn/go-sqlite3) and PostgreSQL (lib/pq) are supported. Content is
// keyed by reference so editors can change report texts without redeploying
// the graph.
package sqlcontent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/rs/zerolog"
)

// Connection pool configuration for Postgres.
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 10
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

//go:embed migrations_postgres.sql
var postgresMigrations string

// Dialect selects the SQL backend.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case SQLite:
		return "sqlite3", nil
	case Postgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported content dialect %q", d)
}

// Store implements ports.ContentResolver and ports.InteractionLog on top of
// database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
	mask    func(string) string
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMask applies mask to questions and answers before they are recorded.
func WithMask(mask func(string) string) Option {
	return func(s *Store) {
		s.mask = mask
	}
}

// Open connects to dsn, runs migrations and returns the store.
// For SQLite the DSN is a file path (or ":memory:"); missing directories are created.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	driver, err := dialect.driver()
	if err != nil {
		return nil, err
	}

	if dialect == SQLite && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect, err)
	}

	switch dialect {
	case Postgres:
		db.SetMaxOpenConns(DefaultMaxOpenConns)
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(DefaultConnMaxLifetime)
	case SQLite:
		// A single connection keeps ":memory:" databases shared across queries.
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection and runs migrations.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*Store, error) {
	s := &Store{db: db, dialect: dialect, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%s ping failed: %w", dialect, err)
	}

	migrations := sqliteMigrations
	if dialect == Postgres {
		migrations = postgresMigrations
	}
	if _, err := db.ExecContext(ctx, migrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	s.logger.Debug().Str("dialect", string(dialect)).Msg("content migrations applied")
	return s, nil
}

// bind rewrites ? placeholders for Postgres.
func (s *Store) bind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Resolve returns the body stored under ref.
func (s *Store) Resolve(ctx context.Context, ref domain.ContentRef) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT body FROM report_content WHERE ref = ?`), string(ref)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", domain.ErrContentUnavailable, ref)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("content", string(ref)).Msg("content query failed")
		return "", fmt.Errorf("failed to query content %s: %w", ref, err)
	}
	return body, nil
}

// Put inserts or replaces the body behind ref.
func (s *Store) Put(ctx context.Context, ref domain.ContentRef, body string) error {
	_, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO report_content (ref, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (ref) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
		string(ref), body)
	if err != nil {
		return fmt.Errorf("failed to store content %s: %w", ref, err)
	}
	return nil
}

// Seed inserts every body whose reference is not stored yet.
// Existing rows are left untouched so edited texts survive restarts.
func (s *Store) Seed(ctx context.Context, bodies map[domain.ContentRef]string) (int, error) {
	refs := make([]string, 0, len(bodies))
	for ref := range bodies {
		refs = append(refs, string(ref))
	}
	sort.Strings(refs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := s.bind(`INSERT INTO report_content (ref, body) VALUES (?, ?) ON CONFLICT (ref) DO NOTHING`)
	inserted := 0
	for _, ref := range refs {
		res, err := tx.ExecContext(ctx, query, ref, bodies[domain.ContentRef(ref)])
		if err != nil {
			return 0, fmt.Errorf("failed to seed content %s: %w", ref, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	s.logger.Info().Int("inserted", inserted).Int("total", len(refs)).Msg("content seeded")
	return inserted, nil
}

// Refs lists the stored references.
func (s *Store) Refs(ctx context.Context) ([]domain.ContentRef, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ref FROM report_content ORDER BY ref`)
	if err != nil {
		return nil, fmt.Errorf("failed to query content refs: %w", err)
	}
	defer rows.Close()

	var refs []domain.ContentRef
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan content ref: %w", err)
		}
		refs = append(refs, domain.ContentRef(ref))
	}
	return refs, rows.Err()
}

// Record appends i to the interaction log.
func (s *Store) Record(ctx context.Context, i domain.Interaction) error {
	if s.mask != nil {
		i.Question = s.mask(i.Question)
		i.Answer = s.mask(i.Answer)
	}
	if i.At.IsZero() {
		i.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO interactions (user_id, from_screen, screen, action, outcome, question, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		i.UserID, string(i.From), string(i.Screen), string(i.Action), string(i.Outcome), i.Question, i.Answer, i.At.UTC())
	if err != nil {
		return fmt.Errorf("failed to record interaction for %s: %w", i.UserID, err)
	}
	return nil
}

// Interactions returns the latest limit interactions of userID, oldest first.
func (s *Store) Interactions(ctx context.Context, userID string, limit int) ([]domain.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`
		SELECT user_id, from_screen, screen, action, outcome, question, answer, created_at
		FROM interactions WHERE user_id = ? ORDER BY id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		var (
			i                             domain.Interaction
			from, screen, action, outcome string
		)
		if err := rows.Scan(&i.UserID, &from, &screen, &action, &outcome, &i.Question, &i.Answer, &i.At); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		i.From, i.Screen = domain.ScreenID(from), domain.ScreenID(screen)
		i.Action, i.Outcome = domain.ActionLabel(action), domain.Outcome(outcome)
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
