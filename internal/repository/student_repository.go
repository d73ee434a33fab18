package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// StudentRepository handles student roster data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = `id, email, display_name, course_ids, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }) (model.Student, error) {
	var s model.Student
	err := row.Scan(&s.ID, &s.Email, &s.DisplayName, &s.CourseIDs, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID retrieves one roster record.
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	s, err := scanStudent(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List retrieves the full roster ordered by display name.
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// Create inserts a new roster record.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	if s.CourseIDs == nil {
		s.CourseIDs = []uuid.UUID{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (email, display_name, course_ids)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.Email, s.DisplayName, s.CourseIDs,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies a roster record, including enrollment.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	if s.CourseIDs == nil {
		s.CourseIDs = []uuid.UUID{}
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET email = $1, display_name = $2, course_ids = $3, updated_at = NOW()
		 WHERE id = $4`,
		s.Email, s.DisplayName, s.CourseIDs, s.ID)
	return err
}

// Delete removes a roster record. Their attempts are kept.
func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}
