package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type PostgresRepository[K comparable, E any] struct {
	db     *sql.DB
	schema Schema[K, E]
}

var _ Repository[int64, HelpRequest] = (*PostgresRepository[int64, HelpRequest])(nil)

func NewPostgresRepository[K comparable, E any](db *sql.DB, schema Schema[K, E]) *PostgresRepository[K, E] {
	return &PostgresRepository[K, E]{db: db, schema: schema}
}

func NewPostgresRepositories(db *sql.DB) Repositories {
	return Repositories{
		Organizations:   NewPostgresRepository(db, OrganizationSchema),
		DiningCommons:   NewPostgresRepository(db, DiningCommonsSchema),
		HelpRequests:    NewPostgresRepository(db, HelpRequestSchema),
		MenuItemReviews: NewPostgresRepository(db, MenuItemReviewSchema),
		Dates:           NewPostgresRepository(db, DateSchema),
	}
}

func (r *PostgresRepository[K, E]) selectColumns() string {
	return r.schema.KeyColumn + ", " + strings.Join(r.schema.Columns, ", ")
}

func (r *PostgresRepository[K, E]) FindAll(ctx context.Context) ([]E, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, r.selectColumns(), r.schema.Table, r.schema.KeyColumn)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items := make([]E, 0)
	for rows.Next() {
		item, err := r.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.schema.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.schema.Table, err)
	}
	return items, nil
}

func (r *PostgresRepository[K, E]) FindByID(ctx context.Context, key K) (E, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=$1`, r.selectColumns(), r.schema.Table, r.schema.KeyColumn)
	item, err := r.schema.Scan(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		var zero E
		return zero, false, nil
	}
	if err != nil {
		var zero E
		return zero, false, fmt.Errorf("get %s: %w", r.schema.Table, err)
	}
	return item, true, nil
}

func (r *PostgresRepository[K, E]) Save(ctx context.Context, entity E) (E, error) {
	if r.schema.Surrogate && r.schema.hasZeroKey(entity) {
		return r.insertReturningKey(ctx, entity)
	}
	return r.upsert(ctx, entity)
}

func (r *PostgresRepository[K, E]) insertReturningKey(ctx context.Context, entity E) (E, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.schema.Table,
		strings.Join(r.schema.Columns, ", "),
		placeholders(1, len(r.schema.Columns)),
		r.schema.KeyColumn,
	)
	var key K
	if err := r.db.QueryRowContext(ctx, query, r.schema.Values(entity)...).Scan(&key); err != nil {
		return entity, fmt.Errorf("insert %s: %w", r.schema.Table, err)
	}
	return r.schema.WithKey(entity, key), nil
}

func (r *PostgresRepository[K, E]) upsert(ctx context.Context, entity E) (E, error) {
	assignments := make([]string, 0, len(r.schema.Columns))
	for _, column := range r.schema.Columns {
		assignments = append(assignments, column+"=EXCLUDED."+column)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET %s
	`,
		r.schema.Table,
		r.selectColumns(),
		placeholders(1, len(r.schema.Columns)+1),
		r.schema.KeyColumn,
		strings.Join(assignments, ", "),
	)
	args := append([]any{r.schema.KeyOf(entity)}, r.schema.Values(entity)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return entity, fmt.Errorf("save %s: %w", r.schema.Table, err)
	}
	return entity, nil
}

func (r *PostgresRepository[K, E]) Delete(ctx context.Context, entity E) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s=$1`, r.schema.Table, r.schema.KeyColumn)
	if _, err := r.db.ExecContext(ctx, query, r.schema.KeyOf(entity)); err != nil {
		return fmt.Errorf("delete %s: %w", r.schema.Table, err)
	}
	return nil
}

func placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
