package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lexweave/lexweave/pkg/clause"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresStore persists clauses in Postgres, for server deployments
// where several assembly workers share one clause library.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps db and runs schema migration.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate clause schema: %w", err)
	}
	return s, nil
}

// OpenPostgresStore connects with the given DSN and runs migration.
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return NewPostgresStore(db)
}

func (s *PostgresStore) migrate() error {
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
		is_required BOOLEAN NOT NULL DEFAULT FALSE,
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		dependencies JSONB,
		conflicts JSONB,
		conditions JSONB,
		PRIMARY KEY (company_id, slug, version)
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// GetClauseBySlug returns the highest-versioned clause for the slug in
// the company scope, or clause.ErrNotFound.
func (s *PostgresStore) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	query := `
		SELECT id, slug, name, category, clause_type, version, content,
		       is_required, is_system, dependencies, conflicts, conditions
		FROM clauses
		WHERE company_id = $1 AND slug = $2`
	rows, err := s.db.QueryContext(ctx, query, scope, slug)
	if err != nil {
		return nil, fmt.Errorf("query clause %q: %w", slug, err)
	}
	defer func() { _ = rows.Close() }()

	var versions []clause.Clause
	for rows.Next() {
		var (
			c          clause.Clause
			category   string
			clauseType string
			deps       sql.NullString
			conflicts  sql.NullString
			conditions sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &category, &clauseType, &c.Version, &c.Content,
			&c.IsRequired, &c.IsSystem, &deps, &conflicts, &conditions); err != nil {
			return nil, fmt.Errorf("scan clause row: %w", err)
		}
		c.Category = clause.Category(category)
		c.Type = clause.ClauseType(clauseType)
		if err := decodeJSONColumn(deps, &c.Dependencies); err != nil {
			return nil, fmt.Errorf("decode dependencies for %q: %w", c.Slug, err)
		}
		if err := decodeJSONColumn(conflicts, &c.Conflicts); err != nil {
			return nil, fmt.Errorf("decode conflicts for %q: %w", c.Slug, err)
		}
		if err := decodeJSONColumn(conditions, &c.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions for %q: %w", c.Slug, err)
		}
		versions = append(versions, c)
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
func (s *PostgresStore) Put(ctx context.Context, scope string, c clause.Clause) error {
	query := `INSERT INTO clauses (
		id, company_id, slug, name, category, clause_type, version, content,
		is_required, is_system, dependencies, conflicts, conditions
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	deps, _ := json.Marshal(c.Dependencies)
	conflicts, _ := json.Marshal(c.Conflicts)
	conditions, _ := json.Marshal(c.Conditions)

	_, err := s.db.ExecContext(ctx, query,
		c.ID, scope, c.Slug, c.Name, string(c.Category), string(c.Type), c.Version, c.Content,
		c.IsRequired, c.IsSystem, string(deps), string(conflicts), string(conditions),
	)
	if err != nil {
		return fmt.Errorf("insert clause %q: %w", c.Slug, err)
	}
	return nil
}

func decodeJSONColumn(col sql.NullString, out any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), out)
}
