// Package postgres implements storage.Store on a pgx connection pool.
// All inserts use ON CONFLICT DO NOTHING so re-running a harvest never
// duplicates or overwrites rows. Each table batch commits as one
// transaction; sibling tables commit independently.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/economistry/repec-harvester/internal/directory"
	"github.com/economistry/repec-harvester/internal/entity"
	"github.com/economistry/repec-harvester/internal/storage"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store is the Postgres-backed persistence layer.
type Store struct {
	pool pool
}

var _ storage.Store = (*Store)(nil)

// New connects a pool using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: p}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing with pgxmock).
func NewWithPool(p pool) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: p}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS author_urls (
	author_url TEXT PRIMARY KEY,
	first_name TEXT,
	middle_name TEXT,
	last_name TEXT
)`,
	`CREATE TABLE IF NOT EXISTS paper_details (
	paper_url TEXT PRIMARY KEY,
	paper TEXT NOT NULL,
	year TEXT
)`,
	`CREATE TABLE IF NOT EXISTS author_details (
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	repec_short_id TEXT,
	twitter TEXT,
	homepage TEXT,
	author_url TEXT,
	PRIMARY KEY (first_name, last_name)
)`,
	`CREATE TABLE IF NOT EXISTS author_paper (
	paper_url TEXT NOT NULL,
	paper TEXT,
	author TEXT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	PRIMARY KEY (paper_url, first_name, last_name)
)`,
	`CREATE TABLE IF NOT EXISTS author_affiliations (
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	position INT NOT NULL,
	department TEXT,
	organisation TEXT,
	location TEXT,
	PRIMARY KEY (first_name, last_name, position)
)`,
	`CREATE TABLE IF NOT EXISTS paper_abstracts (
	paper_url TEXT PRIMARY KEY,
	abstract TEXT
)`,
}

// InitSchema creates any missing tables.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// UpsertAuthorURLs inserts worklist entries, skipping known paths.
func (s *Store) UpsertAuthorURLs(ctx context.Context, entries []directory.Entry) (int, error) {
	const q = `INSERT INTO author_urls (author_url, first_name, middle_name, last_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (author_url) DO NOTHING`

	return s.insertBatch(ctx, "author_urls", len(entries), func(tx pgx.Tx, i int) (pgconn.CommandTag, error) {
		e := entries[i]
		return tx.Exec(ctx, q, e.ProfilePath, nullable(e.FirstName), nullable(e.MiddleName), e.LastName)
	})
}

// UpsertAuthor inserts the author row and its affiliations in one
// transaction, returning how many author rows landed (0 on name-key
// conflict). An existing (first_name, last_name) row is left as-is.
func (s *Store) UpsertAuthor(ctx context.Context, author entity.Author) (int, error) {
	if author.FirstName == "" || author.LastName == "" {
		return 0, fmt.Errorf("author name is required")
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin author tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const authorQ = `INSERT INTO author_details (first_name, last_name, repec_short_id, twitter, homepage, author_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (first_name, last_name) DO NOTHING`
	tag, err := tx.Exec(ctx, authorQ,
		author.FirstName,
		author.LastName,
		nullable(author.RepecShortID),
		nullable(author.Twitter),
		nullable(author.Homepage),
		nullable(author.ProfilePath),
	)
	if err != nil {
		return 0, fmt.Errorf("insert author %s %s: %w", author.FirstName, author.LastName, err)
	}

	const affQ = `INSERT INTO author_affiliations (first_name, last_name, position, department, organisation, location)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (first_name, last_name, position) DO NOTHING`
	for _, aff := range author.Affiliations {
		if _, err := tx.Exec(ctx, affQ,
			author.FirstName,
			author.LastName,
			aff.Position,
			nullable(aff.Department),
			nullable(aff.Organisation),
			nullable(aff.Location),
		); err != nil {
			return 0, fmt.Errorf("insert affiliation %d: %w", aff.Position, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit author tx: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// UpsertPapers inserts paper rows keyed by path.
func (s *Store) UpsertPapers(ctx context.Context, papers []entity.Paper) (int, error) {
	const q = `INSERT INTO paper_details (paper_url, paper, year)
VALUES ($1, $2, $3)
ON CONFLICT (paper_url) DO NOTHING`

	return s.insertBatch(ctx, "paper_details", len(papers), func(tx pgx.Tx, i int) (pgconn.CommandTag, error) {
		p := papers[i]
		var year *string
		if p.Year != nil {
			y := p.YearString()
			year = &y
		}
		return tx.Exec(ctx, q, p.Path, p.Title, year)
	})
}

// UpsertAuthorships inserts join rows keyed by (path, first, last).
func (s *Store) UpsertAuthorships(ctx context.Context, rows []entity.Authorship) (int, error) {
	const q = `INSERT INTO author_paper (paper_url, paper, author, first_name, last_name)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (paper_url, first_name, last_name) DO NOTHING`

	return s.insertBatch(ctx, "author_paper", len(rows), func(tx pgx.Tx, i int) (pgconn.CommandTag, error) {
		r := rows[i]
		return tx.Exec(ctx, q, r.PaperPath, r.PaperTitle, r.Author, r.FirstName, r.LastName)
	})
}

// UpsertAbstracts inserts abstract rows keyed by path.
func (s *Store) UpsertAbstracts(ctx context.Context, abstracts []entity.Abstract) (int, error) {
	const q = `INSERT INTO paper_abstracts (paper_url, abstract)
VALUES ($1, $2)
ON CONFLICT (paper_url) DO NOTHING`

	return s.insertBatch(ctx, "paper_abstracts", len(abstracts), func(tx pgx.Tx, i int) (pgconn.CommandTag, error) {
		a := abstracts[i]
		return tx.Exec(ctx, q, a.PaperPath, a.Text)
	})
}

// insertBatch runs n single-row inserts in one transaction and returns
// how many actually landed.
func (s *Store) insertBatch(
	ctx context.Context,
	table string,
	n int,
	exec func(tx pgx.Tx, i int) (pgconn.CommandTag, error),
) (int, error) {
	if n == 0 {
		return 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin %s tx: %w", table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for i := 0; i < n; i++ {
		tag, err := exec(tx, i)
		if err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s tx: %w", table, err)
	}
	return inserted, nil
}

// UnprocessedAuthorURLs returns indexed profile paths that have no
// author row yet.
func (s *Store) UnprocessedAuthorURLs(ctx context.Context) ([]string, error) {
	const q = `SELECT t1.author_url
FROM author_urls t1
LEFT JOIN author_details t2 ON t2.author_url = t1.author_url
WHERE t2.author_url IS NULL`
	return s.queryStrings(ctx, q)
}

// PaperPathsWithoutAbstracts returns paper paths that have no abstract
// row yet.
func (s *Store) PaperPathsWithoutAbstracts(ctx context.Context) ([]string, error) {
	const q = `SELECT t1.paper_url
FROM paper_details t1
LEFT JOIN paper_abstracts t2 ON t2.paper_url = t1.paper_url
WHERE t2.paper_url IS NULL`
	return s.queryStrings(ctx, q)
}

func (s *Store) queryStrings(ctx context.Context, q string) ([]string, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// TwitterAuthors lists authors with a usable twitter handle.
func (s *Store) TwitterAuthors(ctx context.Context) ([]storage.TwitterAuthor, error) {
	const q = `SELECT first_name, last_name, COALESCE(repec_short_id, ''), twitter
FROM author_details
WHERE twitter IS NOT NULL AND twitter <> '' AND twitter <> 'NaN'`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query twitter authors: %w", err)
	}
	defer rows.Close()

	var out []storage.TwitterAuthor
	for rows.Next() {
		var ta storage.TwitterAuthor
		if err := rows.Scan(&ta.FirstName, &ta.LastName, &ta.RepecShortID, &ta.Handle); err != nil {
			return nil, fmt.Errorf("scan twitter author: %w", err)
		}
		out = append(out, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate twitter authors: %w", err)
	}
	return out, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
