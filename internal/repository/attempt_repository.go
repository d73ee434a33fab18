package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// AttemptRepository handles attempt data access. Attempts are append-only:
// there is deliberately no update or delete here.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, quiz_id, student_id, answers, score, total_points, started_at, completed_at`

func scanAttempt(row interface{ Scan(...any) error }) (model.Attempt, error) {
	var a model.Attempt
	err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &a.Answers,
		&a.Score, &a.TotalPoints, &a.StartedAt, &a.CompletedAt)
	return a, err
}

// Create inserts the one immutable attempt record produced by a submission.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	if a.Answers == nil {
		a.Answers = []int{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (quiz_id, student_id, answers, score, total_points, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.QuizID, a.StudentID, a.Answers, a.Score, a.TotalPoints, a.StartedAt, a.CompletedAt,
	).Scan(&a.ID)
}

// GetByID retrieves one attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id)
	a, err := scanAttempt(row)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByQuizAndStudent retrieves the student's attempt at a quiz, if any.
func (r *AttemptRepository) GetByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (*model.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE quiz_id = $1 AND student_id = $2
		 ORDER BY completed_at DESC LIMIT 1`, quizID, studentID)
	a, err := scanAttempt(row)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByStudent retrieves all attempts by one student, newest first.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	return r.list(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE student_id = $1 ORDER BY completed_at DESC`, studentID)
}

// ListByQuiz retrieves all attempts at one quiz, newest first.
func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Attempt, error) {
	return r.list(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE quiz_id = $1 ORDER BY completed_at DESC`, quizID)
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...any) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
