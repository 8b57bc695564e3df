// Package runlog records script runs in a SQL database so that
// `quill history` can list them later.
package runlog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// MaxOutput is the number of output bytes kept per run.
const MaxOutput = 64 * 1024

// Config selects the database.
type Config struct {
	Driver     string // "sqlite", "postgres", "mysql"
	DSN        string
	MaxEntries int // 0 keeps every run
}

// Run is one recorded execution.
type Run struct {
	ID        int64
	File      string
	Digest    string // hex BLAKE2b-256 of the source
	StartedAt time.Time
	Duration  time.Duration
	OK        bool
	Error     string
	Output    []byte
}

// Filter narrows List.
type Filter struct {
	Since time.Time // zero means no lower bound
	Limit int       // 0 means no limit
}

// Store is an open run history.
type Store struct {
	db         *sql.DB
	driver     string
	maxEntries int
}

// Digest returns the hex BLAKE2b-256 of src.
func Digest(src string) string {
	sum := blake2b.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Open connects to the database and creates the runs table if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case "sqlite":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			dsn = withPragmas(dsn)
		}
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported history driver: %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// A single connection keeps :memory: databases alive between calls
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: cfg.Driver, maxEntries: cfg.MaxEntries}
	if _, err := db.ExecContext(ctx, s.schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create runs table: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) schema() string {
	var id, blob string
	switch s.driver {
	case "postgres":
		id, blob = "id BIGSERIAL PRIMARY KEY", "BYTEA"
	case "mysql":
		id, blob = "id BIGINT AUTO_INCREMENT PRIMARY KEY", "LONGBLOB"
	default:
		id, blob = "id INTEGER PRIMARY KEY AUTOINCREMENT", "BLOB"
	}

	return `CREATE TABLE IF NOT EXISTS runs (
	` + id + `,
	file TEXT NOT NULL,
	digest VARCHAR(64) NOT NULL,
	started_at BIGINT NOT NULL,
	duration_ns BIGINT NOT NULL,
	ok INTEGER NOT NULL,
	error TEXT NOT NULL,
	output ` + blob + `
)`
}

const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// withPragmas appends the sqlite pragmas, keeping any query already on the DSN.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqlitePragmas
	}
	return dsn + "?" + sqlitePragmas
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Record stores run and returns its id. Runs beyond the configured maximum
// are deleted, oldest first.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	output := run.Output
	if len(output) > MaxOutput {
		output = output[:MaxOutput]
	}
	ok := 0
	if run.OK {
		ok = 1
	}
	args := []any{run.File, run.Digest, run.StartedAt.UnixNano(), int64(run.Duration), ok, run.Error, output}

	query := "INSERT INTO runs (file, digest, started_at, duration_ns, ok, error, output) VALUES (?, ?, ?, ?, ?, ?, ?)"

	var id int64
	if s.driver == "postgres" {
		// lib/pq does not support LastInsertId
		if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
	}

	if err := s.prune(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// prune deletes every run older than the newest maxEntries
func (s *Store) prune(ctx context.Context) error {
	if s.maxEntries <= 0 {
		return nil
	}

	var cutoff int64
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT id FROM runs ORDER BY id DESC LIMIT 1 OFFSET ?"), s.maxEntries,
	).Scan(&cutoff)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM runs WHERE id <= ?"), cutoff); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Run, error) {
	query := "SELECT id, file, digest, started_at, duration_ns, ok, error, output FROM runs"
	var args []any
	if !f.Since.IsZero() {
		query += " WHERE started_at >= ?"
		args = append(args, f.Since.UnixNano())
	}
	query += " ORDER BY started_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt int64
			duration  int64
			ok        int
		)
		if err := rows.Scan(&run.ID, &run.File, &run.Digest, &startedAt, &duration, &ok, &run.Error, &run.Output); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		run.StartedAt = time.Unix(0, startedAt)
		run.Duration = time.Duration(duration)
		run.OK = ok == 1
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
