package sqlite

import (
	"context"
	"database/sql"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
)

type questionsRepo struct {
	db dbtx
}

const questionColumns = `id, question_text, option_a, option_b, option_c,
	option_d, correct_answer, explanation, category_id, created_at, updated_at`

func scanQuestion(row rowScanner) (domain.Question, error) {
	var (
		q    domain.Question
		expl sql.NullString
	)
	err := row.Scan(
		&q.ID, &q.QuestionText, &q.OptionA, &q.OptionB, &q.OptionC,
		&q.OptionD, &q.CorrectAnswer, &expl, &q.CategoryID,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return domain.Question{}, err
	}
	q.Explanation = mapNullString(expl)
	return q, nil
}

func collectQuestions(rows *sql.Rows) ([]domain.Question, error) {
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *questionsRepo) Create(ctx context.Context, q domain.Question) error {
	ts := now()
	if !q.CreatedAt.IsZero() {
		ts = q.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (
			id, question_text, option_a, option_b, option_c, option_d,
			correct_answer, explanation, category_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, mapStringNull(q.Explanation), q.CategoryID, ts, ts,
	)
	return err
}

func (r *questionsRepo) GetByID(ctx context.Context, id string) (domain.Question, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return domain.Question{}, mapNotFound(err)
	}
	return q, nil
}

func (r *questionsRepo) List(ctx context.Context, categoryID string, offset, limit int) ([]domain.Question, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if categoryID == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+questionColumns+` FROM questions
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?`,
			limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+questionColumns+` FROM questions
			WHERE category_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ? OFFSET ?`,
			categoryID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (r *questionsRepo) ListByCategory(ctx context.Context, categoryID string) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM questions
		WHERE category_id = ?
		ORDER BY created_at, id`,
		categoryID)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (r *questionsRepo) ListRandomByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+questionColumns+` FROM questions
		WHERE category_id = ?
		ORDER BY RANDOM()
		LIMIT ?`,
		categoryID, limit)
	if err != nil {
		return nil, err
	}
	return collectQuestions(rows)
}

func (r *questionsRepo) Update(ctx context.Context, q domain.Question) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE questions
		SET question_text = ?, option_a = ?, option_b = ?, option_c = ?,
			option_d = ?, correct_answer = ?, explanation = ?,
			category_id = ?, updated_at = ?
		WHERE id = ?`,
		q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, mapStringNull(q.Explanation), q.CategoryID,
		now(), q.ID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *questionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
