package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// QuizRepository handles quiz definition data access. Nested structure
// (sections, point overrides) is stored as JSONB documents.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, course_id, title, description, question_ids, question_points,
	sections, duration_minutes, max_grade, show_marks, show_whether_correct,
	show_right_answer, show_feedback, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (model.Quiz, error) {
	var (
		q             model.Quiz
		pointsJSON    []byte
		sectionsJSON  []byte
	)
	err := row.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.QuestionIDs,
		&pointsJSON, &sectionsJSON, &q.DurationMin, &q.MaxGrade,
		&q.Review.ShowMarks, &q.Review.ShowWhetherCorrect,
		&q.Review.ShowRightAnswer, &q.Review.ShowFeedback,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return q, err
	}

	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &q.QuestionPoints); err != nil {
			return q, fmt.Errorf("decode question_points: %w", err)
		}
	}
	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &q.Sections); err != nil {
			return q, fmt.Errorf("decode sections: %w", err)
		}
	}
	return q, nil
}

func encodeQuizDocs(q *model.Quiz) (pointsJSON, sectionsJSON []byte, err error) {
	pointsJSON, err = json.Marshal(q.QuestionPoints)
	if err != nil {
		return nil, nil, fmt.Errorf("encode question_points: %w", err)
	}
	sectionsJSON, err = json.Marshal(q.Sections)
	if err != nil {
		return nil, nil, fmt.Errorf("encode sections: %w", err)
	}
	return pointsJSON, sectionsJSON, nil
}

// GetByID retrieves one quiz definition.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id)
	q, err := scanQuiz(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByCourses retrieves quizzes belonging to any of the given courses,
// newest first. Used for the student lobby.
func (r *QuizRepository) ListByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]model.Quiz, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE course_id = ANY($1) ORDER BY created_at DESC`,
		courseIDs)
}

// List retrieves all quizzes, newest first.
func (r *QuizRepository) List(ctx context.Context) ([]model.Quiz, error) {
	return r.list(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
}

func (r *QuizRepository) list(ctx context.Context, query string, args ...any) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// Create inserts a new quiz definition.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	pointsJSON, sectionsJSON, err := encodeQuizDocs(q)
	if err != nil {
		return err
	}
	if q.QuestionIDs == nil {
		q.QuestionIDs = []uuid.UUID{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (course_id, title, description, question_ids, question_points,
		   sections, duration_minutes, max_grade, show_marks, show_whether_correct,
		   show_right_answer, show_feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at`,
		q.CourseID, q.Title, q.Description, q.QuestionIDs, pointsJSON, sectionsJSON,
		q.DurationMin, q.MaxGrade, q.Review.ShowMarks, q.Review.ShowWhetherCorrect,
		q.Review.ShowRightAnswer, q.Review.ShowFeedback,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update persists the full quiz definition. Authoring operations compute a new
// definition value; this writes it back as one document.
func (r *QuizRepository) Update(ctx context.Context, q *model.Quiz) error {
	pointsJSON, sectionsJSON, err := encodeQuizDocs(q)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, description = $2, question_ids = $3, question_points = $4,
		     sections = $5, duration_minutes = $6, max_grade = $7, show_marks = $8,
		     show_whether_correct = $9, show_right_answer = $10, show_feedback = $11,
		     updated_at = NOW()
		 WHERE id = $12`,
		q.Title, q.Description, q.QuestionIDs, pointsJSON, sectionsJSON,
		q.DurationMin, q.MaxGrade, q.Review.ShowMarks, q.Review.ShowWhetherCorrect,
		q.Review.ShowRightAnswer, q.Review.ShowFeedback, q.ID)
	return err
}

// Delete removes a quiz definition. Attempts against it are kept.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}
