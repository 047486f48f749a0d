package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/logging"
)

// Fixed width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type dialect struct {
	driver      string
	numberedArg bool // $1, $2 instead of ?
}

var (
	sqliteDialect   = dialect{driver: "sqlite"}
	postgresDialect = dialect{driver: "postgres", numberedArg: true}
)

func (d dialect) rebind(query string) string {
	if !d.numberedArg {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS vulnerabilities (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vulnerability_titles (
		vulnerability_id TEXT NOT NULL,
		locale TEXT NOT NULL,
		title TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vulnerability_titles_key ON vulnerability_titles (locale, title)`,
	`CREATE INDEX IF NOT EXISTS idx_vulnerability_titles_vuln ON vulnerability_titles (vulnerability_id)`,
}

// SQLStore implements Store on database/sql for SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func openSQL(d dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if d.driver == sqliteDialect.driver {
		// SQLite allows one writer; serialise through a single connection.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: d, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, query := range migrations {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

type titleKey struct {
	locale, title string
}

func (s *SQLStore) CreateBatch(ctx context.Context, batch []engine.Vulnerability) (CreateResult, error) {
	var res CreateResult
	if len(batch) == 0 {
		return res, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inBatch := make(map[titleKey]bool)
	for _, v := range batch {
		dup, err := s.duplicateTitle(ctx, tx, v, inBatch)
		if err != nil {
			return CreateResult{}, err
		}
		if dup != "" {
			logging.Logger.Debugw("skipping existing vulnerability", "title", dup)
			res.Duplicates = append(res.Duplicates, dup)
			continue
		}
		if _, err := s.insert(ctx, tx, v); err != nil {
			return CreateResult{}, err
		}
		for _, d := range v.Details {
			inBatch[titleKey{d.Locale, d.Title}] = true
		}
		res.Created++
	}

	if err := tx.Commit(); err != nil {
		return CreateResult{}, fmt.Errorf("failed to commit batch: %w", err)
	}
	return res, nil
}

// duplicateTitle returns the first title of v that is already taken.
func (s *SQLStore) duplicateTitle(ctx context.Context, tx *sql.Tx, v engine.Vulnerability, inBatch map[titleKey]bool) (string, error) {
	query := s.dialect.rebind(`SELECT 1 FROM vulnerability_titles WHERE locale = ? AND title = ? LIMIT 1`)
	for _, d := range v.Details {
		if inBatch[titleKey{d.Locale, d.Title}] {
			return d.Title, nil
		}
		var one int
		err := tx.QueryRowContext(ctx, query, d.Locale, d.Title).Scan(&one)
		if err == nil {
			return d.Title, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to check for duplicates: %w", err)
		}
	}
	return "", nil
}

func (s *SQLStore) insert(ctx context.Context, tx *sql.Tx, v engine.Vulnerability) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode vulnerability: %w", err)
	}
	id := uuid.NewString()
	created := s.now().UTC().Format(timeLayout)

	if _, err := tx.ExecContext(ctx,
		s.dialect.rebind(`INSERT INTO vulnerabilities (id, payload, created_at) VALUES (?, ?, ?)`),
		id, string(payload), created); err != nil {
		return "", fmt.Errorf("failed to insert vulnerability: %w", err)
	}
	for _, d := range v.Details {
		if _, err := tx.ExecContext(ctx,
			s.dialect.rebind(`INSERT INTO vulnerability_titles (vulnerability_id, locale, title) VALUES (?, ?, ?)`),
			id, d.Locale, d.Title); err != nil {
			return "", fmt.Errorf("failed to index title: %w", err)
		}
	}
	return id, nil
}

func (s *SQLStore) MergeByIDs(ctx context.Context, ids []string, title, locale string) (MergeResult, error) {
	if len(ids) < 2 {
		return MergeResult{}, fmt.Errorf("merge needs at least two vulnerabilities, got %d", len(ids))
	}
	if locale == "" {
		return MergeResult{}, fmt.Errorf("merge locale is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return MergeResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seen := make(map[string]bool, len(ids))
	var sources []engine.Vulnerability
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var payload string
		err := tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT payload FROM vulnerabilities WHERE id = ?`), id).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return MergeResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return MergeResult{}, fmt.Errorf("failed to load %s: %w", id, err)
		}
		var v engine.Vulnerability
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return MergeResult{}, fmt.Errorf("failed to decode %s: %w", id, err)
		}
		sources = append(sources, v)
	}
	if len(sources) < 2 {
		return MergeResult{}, fmt.Errorf("merge needs at least two distinct vulnerabilities")
	}

	for id := range seen {
		if err := s.delete(ctx, tx, id); err != nil {
			return MergeResult{}, err
		}
	}
	newID, err := s.insert(ctx, tx, mergeVulnerabilities(sources, title, locale))
	if err != nil {
		return MergeResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return MergeResult{}, fmt.Errorf("failed to commit merge: %w", err)
	}
	return MergeResult{Merged: len(sources), ID: newID}, nil
}

func (s *SQLStore) delete(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM vulnerability_titles WHERE vulnerability_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete titles of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM vulnerabilities WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	return nil
}

// List returns every record, oldest first.
func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, payload, created_at FROM vulnerabilities ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload, created string
		if err := rows.Scan(&rec.ID, &payload, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &rec.Vulnerability); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("bad timestamp on %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Purge deletes every record and returns how many were removed.
func (s *SQLStore) Purge(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vulnerability_titles`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM vulnerabilities`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), tx.Commit()
}
