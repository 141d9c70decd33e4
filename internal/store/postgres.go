package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/pkg/models"
)

// jobTables lists the tables ReadTable may serve. Table and column names are
// only ever taken from here or from information_schema, never from callers verbatim.
var jobTables = map[string]bool{
	tabular.TableActiveQueue:     true,
	tabular.TableWorkflowCatalog: true,
}

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT username, password_hash, role, jobs, created_at, updated_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.Username, &u.PasswordHash, &u.Role, &u.Jobs, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user *models.User) error {
	jobs := user.Jobs
	if jobs == nil {
		jobs = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, password_hash, role, jobs, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (username) DO UPDATE SET
		   password_hash = EXCLUDED.password_hash,
		   role = EXCLUDED.role,
		   jobs = EXCLUDED.jobs,
		   updated_at = NOW()`,
		user.Username, user.PasswordHash, user.Role, jobs)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// --- Job tables ---

// ReadTable implements tabular.Store. Every value is cast to text so the
// job engine sees the same cell representation as any other source.
// Rows come back in insertion order.
func (s *PostgresStore) ReadTable(ctx context.Context, name string, columns []tabular.Column) ([]tabular.Row, error) {
	if !jobTables[name] {
		return nil, fmt.Errorf("%w: %s", tabular.ErrUnknownTable, name)
	}

	present, err := s.tableColumns(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w: %s", tabular.ErrUnknownTable, name)
	}

	selected := make([]string, 0, len(columns))
	exprs := make([]string, 0, len(columns))
	for _, c := range columns {
		if !present[c.Name] {
			if c.Optional {
				continue
			}
			return nil, tabular.MissingColumnError(name, c.Name)
		}
		selected = append(selected, c.Name)
		exprs = append(exprs, pgx.Identifier{c.Name}.Sanitize()+"::text")
	}
	if len(exprs) == 0 {
		exprs = append(exprs, "NULL")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY row_order",
		strings.Join(exprs, ", "), pgx.Identifier{name}.Sanitize())
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer rows.Close()

	var out []tabular.Row
	vals := make([]*string, len(exprs))
	dest := make([]any, len(exprs))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make(tabular.Row, len(selected))
		for i, col := range selected {
			if vals[i] != nil {
				row[col] = *vals[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return out, nil
}

func (s *PostgresStore) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols[c] = true
	}
	return cols, rows.Err()
}
