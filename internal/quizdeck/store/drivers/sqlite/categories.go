package sqlite

import (
	"context"
	"database/sql"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

type categoriesRepo struct {
	db dbtx
}

const categoryColumns = `id, name, description, created_at, updated_at`

func scanCategory(row rowScanner) (domain.Category, error) {
	var (
		c    domain.Category
		desc sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Category{}, err
	}
	c.Description = mapNullString(desc)
	return c, nil
}

func (r *categoriesRepo) Create(ctx context.Context, c domain.Category) error {
	ts := now()
	if !c.CreatedAt.IsZero() {
		ts = c.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.Description), ts, ts,
	)
	return mapConstraint(err)
}

func (r *categoriesRepo) GetByID(ctx context.Context, id string) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func (r *categoriesRepo) GetByName(ctx context.Context, name string) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name)
	c, err := scanCategory(row)
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func (r *categoriesRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *categoriesRepo) ListSummaries(ctx context.Context) ([]domain.CategorySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.created_at, c.updated_at,
			COUNT(q.id) AS question_count
		FROM categories c
		LEFT JOIN questions q ON q.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.CategorySummary
	for rows.Next() {
		var (
			s    domain.CategorySummary
			desc sql.NullString
		)
		err := rows.Scan(&s.ID, &s.Name, &desc, &s.CreatedAt, &s.UpdatedAt,
			&s.QuestionCount)
		if err != nil {
			return nil, err
		}
		s.Description = mapNullString(desc)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *categoriesRepo) Update(ctx context.Context, c domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, mapStringNull(c.Description), now(), c.ID)
	if err != nil {
		return mapConstraint(err)
	}
	return requireAffected(res)
}

func (r *categoriesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
