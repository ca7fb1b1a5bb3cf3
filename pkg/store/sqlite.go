package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists clauses in SQLite. Composition metadata
// (dependencies, conflicts, conditions) is stored as JSON columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db and runs schema migration.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate clause schema: %w", err)
	}
	return s, nil
}

// OpenSQLiteStore opens (or creates) the database at path and runs
// migration.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS clauses (
		id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		clause_type TEXT NOT NULL,
		version TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		is_required INTEGER NOT NULL DEFAULT 0,
		is_system INTEGER NOT NULL DEFAULT 0,
		dependencies JSON,
		conflicts JSON,
		conditions JSON,
		PRIMARY KEY (company_id, slug, version)
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

const clauseColumns = `id, slug, name, category, clause_type, version, content, is_required, is_system, dependencies, conflicts, conditions`

// GetClauseBySlug returns the highest-versioned clause for the slug in
// the company scope, or clause.ErrNotFound.
func (s *SQLiteStore) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	query := `SELECT ` + clauseColumns + ` FROM clauses WHERE company_id = ? AND slug = ?`
	rows, err := s.db.QueryContext(ctx, query, scope, slug)
	if err != nil {
		return nil, fmt.Errorf("query clause %q: %w", slug, err)
	}
	defer func() { _ = rows.Close() }()

	var versions []clause.Clause
	for rows.Next() {
		c, err := scanClauseRow(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, clause.ErrNotFound
	}
	return highestVersion(versions), nil
}

// Put inserts a clause under the company scope.
func (s *SQLiteStore) Put(ctx context.Context, scope string, c clause.Clause) error {
	query := `INSERT INTO clauses (
		id, company_id, slug, name, category, clause_type, version, content,
		is_required, is_system, dependencies, conflicts, conditions
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	deps, _ := json.Marshal(c.Dependencies)
	conflicts, _ := json.Marshal(c.Conflicts)
	conditions, _ := json.Marshal(c.Conditions)

	_, err := s.db.ExecContext(ctx, query,
		c.ID, scope, c.Slug, c.Name, string(c.Category), string(c.Type), c.Version, c.Content,
		boolToInt(c.IsRequired), boolToInt(c.IsSystem),
		string(deps), string(conflicts), string(conditions),
	)
	if err != nil {
		return fmt.Errorf("insert clause %q: %w", c.Slug, err)
	}
	return nil
}

func scanClauseRow(rows *sql.Rows) (*clause.Clause, error) {
	var (
		c          clause.Clause
		category   string
		clauseType string
		required   int
		system     int
		deps       sql.NullString
		conflicts  sql.NullString
		conditions sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &category, &clauseType, &c.Version, &c.Content,
		&required, &system, &deps, &conflicts, &conditions); err != nil {
		return nil, fmt.Errorf("scan clause row: %w", err)
	}
	c.Category = clause.Category(category)
	c.Type = clause.ClauseType(clauseType)
	c.IsRequired = required != 0
	c.IsSystem = system != 0
	if deps.Valid && deps.String != "" {
		if err := json.Unmarshal([]byte(deps.String), &c.Dependencies); err != nil {
			return nil, fmt.Errorf("decode dependencies for %q: %w", c.Slug, err)
		}
	}
	if conflicts.Valid && conflicts.String != "" {
		if err := json.Unmarshal([]byte(conflicts.String), &c.Conflicts); err != nil {
			return nil, fmt.Errorf("decode conflicts for %q: %w", c.Slug, err)
		}
	}
	if conditions.Valid && conditions.String != "" {
		if err := json.Unmarshal([]byte(conditions.String), &c.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions for %q: %w", c.Slug, err)
		}
	}
	return &c, nil
}

func highestVersion(versions []clause.Clause) *clause.Clause {
	best := versions[0]
	bestVer := parseVersion(best.Version)
	for _, c := range versions[1:] {
		v := parseVersion(c.Version)
		if bestVer == nil || (v != nil && v.GreaterThan(bestVer)) {
			best, bestVer = c, v
		}
	}
	out := best
	return &out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
