package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
)

// StudentService handles roster management. Credentials are the identity
// provider's concern; only profile and enrollment live here.
type StudentService struct {
	studentRepo *repository.StudentRepository
	log         zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, log zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		log:         log.With().Str("component", "student_service").Logger(),
	}
}

// GetByID retrieves a roster record by its UUID.
func (s *StudentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// List retrieves the full roster.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// Create adds a student to the roster.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		CourseIDs:   req.CourseIDs,
	}
	if student.CourseIDs == nil {
		student.CourseIDs = []uuid.UUID{}
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// Update replaces a roster record's profile and enrollments.
func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student.Email = req.Email
	student.DisplayName = req.DisplayName
	student.CourseIDs = req.CourseIDs
	if student.CourseIDs == nil {
		student.CourseIDs = []uuid.UUID{}
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return student, nil
}

// Delete removes a student from the roster. Past attempt records stay.
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.studentRepo.Delete(ctx, id)
}
