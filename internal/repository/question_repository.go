package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, course_id, text, secondary_text, options, secondary_options,
	correct_option, points, feedback, image_url, display_number, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.CourseID, &q.Text, &q.SecondaryText, &q.Options,
		&q.SecondaryOptions, &q.CorrectOption, &q.Points, &q.Feedback,
		&q.ImageURL, &q.DisplayNumber, &q.CreatedAt)
	return q, err
}

// GetByID retrieves one question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByIDs retrieves every question that still exists among the given ids.
// Missing ids are simply absent from the result; callers decide what a gap
// means (quiz resolution silently drops them).
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListBank retrieves questions for the authoring bank view, paginated and
// optionally scoped to one course. Ordered by display_number ascending with
// NULL first — a display convenience that never affects quiz order.
func (r *QuestionRepository) ListBank(ctx context.Context, courseID *uuid.UUID, limit, offset int, search string) ([]model.Question, int, error) {
	baseQuery := ` FROM questions WHERE 1=1`
	args := []any{}

	if courseID != nil {
		args = append(args, *courseID)
		baseQuery += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		baseQuery += fmt.Sprintf(" AND text ILIKE $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + questionColumns + baseQuery +
		` ORDER BY display_number ASC NULLS FIRST, created_at ASC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// ListByCourse retrieves all questions belonging to one course. Used as the
// random-selection pool for a single-course scope.
func (r *QuestionRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Question, error) {
	return r.listAll(ctx, `SELECT `+questionColumns+` FROM questions WHERE course_id = $1`, courseID)
}

// ListAll retrieves every question across all courses ("all courses" scope).
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	return r.listAll(ctx, `SELECT `+questionColumns+` FROM questions`)
}

func (r *QuestionRepository) listAll(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (course_id, text, secondary_text, options, secondary_options,
		   correct_option, points, feedback, image_url, display_number)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		q.CourseID, q.Text, q.SecondaryText, q.Options, q.SecondaryOptions,
		q.CorrectOption, q.Points, q.Feedback, q.ImageURL, q.DisplayNumber,
	).Scan(&q.ID, &q.CreatedAt)
}

// Update modifies an existing question in place. Quizzes referencing it pick
// up the new content on their next resolution.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET text = $1, secondary_text = $2, options = $3, secondary_options = $4,
		     correct_option = $5, points = $6, feedback = $7, image_url = $8,
		     display_number = $9
		 WHERE id = $10`,
		q.Text, q.SecondaryText, q.Options, q.SecondaryOptions,
		q.CorrectOption, q.Points, q.Feedback, q.ImageURL, q.DisplayNumber, q.ID)
	return err
}

// Delete removes a question. Quizzes that still reference the id keep the
// dangling reference; resolution drops it silently.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}
