// Package keystore records compiled builds and their answer keys in SQL
// storage.
//
// SQLite is the default backend: pure Go modernc.org/sqlite, or
// mattn/go-sqlite3 when built with -tags cgo_sqlite. DSNs starting with
// postgres:// or postgresql:// use PostgreSQL through pgx.
package keystore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/FocuswithJustin/ExamTeX/core/compiler"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/render"
)

// Build is one recorded compilation.
type Build struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Fingerprint string                `json:"source_blake3"`
	Seed        int64                 `json:"seed"`
	Questions   int                   `json:"questions"`
	Created     time.Time             `json:"created"`
	Answers     []render.AnswerRecord `json:"answers,omitempty"`
}

// NewBuild describes docs as a build named name.
func NewBuild(id, name string, docs *compiler.Documents) Build {
	return Build{
		ID:          id,
		Name:        name,
		Fingerprint: docs.Fingerprint,
		Seed:        docs.Seed,
		Questions:   docs.Questions,
		Created:     time.Now().UTC(),
		Answers:     docs.Records,
	}
}

// Store is an answer key registry.
type Store struct {
	db       *sql.DB
	postgres bool
}

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	seed        BIGINT NOT NULL,
	questions   INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS answers (
	build_id TEXT NOT NULL REFERENCES builds(id),
	position INTEGER NOT NULL,
	number   INTEGER NOT NULL,
	part     INTEGER NOT NULL,
	subpart  INTEGER NOT NULL,
	module   TEXT NOT NULL,
	letter   TEXT NOT NULL,
	answer   TEXT NOT NULL,
	PRIMARY KEY (build_id, position)
);
CREATE INDEX IF NOT EXISTS builds_fingerprint ON builds(fingerprint);
`

// IsPostgres reports whether dsn selects the PostgreSQL backend.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// DriverType names the SQLite implementation compiled in.
func DriverType() string {
	return driverType
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	s := &Store{postgres: IsPostgres(dsn)}
	driver := sqliteDriver
	if s.postgres {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.NewConfig("store.dsn", dsn, "open: "+err.Error())
	}
	if !s.postgres {
		// one writer at a time
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect key store")
	}
	s.db = db

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "create schema")
		}
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if !s.postgres {
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

// Record stores b and its answers in one transaction.
func (s *Store) Record(ctx context.Context, b Build) error {
	if b.ID == "" {
		return errors.NewValidation(0, "build", "missing build ID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO builds (id, name, fingerprint, seed, questions, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		b.ID, b.Name, b.Fingerprint, b.Seed, b.Questions, b.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrapf(err, "insert build %s", b.ID)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO answers (build_id, position, number, part, subpart, module, letter, answer) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return errors.Wrap(err, "prepare answers")
	}
	defer stmt.Close()
	for i, a := range b.Answers {
		if _, err := stmt.ExecContext(ctx, b.ID, i, a.Number, a.Part, a.Subpart, a.Module, a.Letter, a.Text); err != nil {
			return errors.Wrapf(err, "insert answer %d", a.Number)
		}
	}
	return tx.Commit()
}

// List returns the most recent builds first, without answers. A limit of
// zero or less lists every build.
func (s *Store) List(ctx context.Context, limit int) ([]Build, error) {
	query := `SELECT id, name, fingerprint, seed, questions, created_at FROM builds ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "list builds")
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var (
		b       Build
		created string
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Fingerprint, &b.Seed, &b.Questions, &created); err != nil {
		return Build{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Build{}, errors.Wrapf(err, "build %s: created_at", b.ID)
	}
	b.Created = t
	return b, nil
}

// Get returns a build with its answers.
func (s *Store) Get(ctx context.Context, id string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, fingerprint, seed, questions, created_at FROM builds WHERE id = ?`), id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("build", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get build %s", id)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT number, part, subpart, module, letter, answer FROM answers WHERE build_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, errors.Wrapf(err, "answers of %s", id)
	}
	defer rows.Close()
	for rows.Next() {
		var a render.AnswerRecord
		if err := rows.Scan(&a.Number, &a.Part, &a.Subpart, &a.Module, &a.Letter, &a.Text); err != nil {
			return nil, err
		}
		b.Answers = append(b.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByFingerprint returns the builds compiled from the same source.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, name, fingerprint, seed, questions, created_at FROM builds WHERE fingerprint = ? ORDER BY created_at DESC, id`), fingerprint)
	if err != nil {
		return nil, errors.Wrap(err, "find builds")
	}
	defer rows.Close()
	var out []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
