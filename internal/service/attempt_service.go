package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
)

// Domain errors for attempt admission.
var (
	ErrNotEnrolled      = errors.New("student is not enrolled in the quiz's course")
	ErrAlreadyAttempted = errors.New("student has already attempted this quiz")
)

// AttemptService persists attempt records and assembles the student lobby.
// It is the engine's store: each submitted attempt is written once to
// PostgreSQL and a stats job is enqueued for the background aggregator.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	studentRepo *repository.StudentRepository
	quizRepo    *repository.QuizRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	studentRepo *repository.StudentRepository,
	quizRepo *repository.QuizRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		studentRepo: studentRepo,
		quizRepo:    quizRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// CreateAttempt writes the finished attempt record and enqueues its stats
// job. A queue failure is logged, never surfaced: the record is the source
// of truth and the aggregate is derivable.
func (s *AttemptService) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	job := model.QuizStatsJob{
		QuizID:      attempt.QuizID,
		StudentID:   attempt.StudentID,
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
	}
	payload, err := json.Marshal(job)
	if err == nil {
		err = s.rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, payload).Err()
	}
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("quiz_id", attempt.QuizID.String()).
			Msg("Failed to enqueue stats job")
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("quiz_id", attempt.QuizID.String()).
		Str("student_id", attempt.StudentID.String()).
		Float64("score", attempt.Score).
		Msg("Attempt persisted")
	return nil
}

// Admit checks whether the student may start an attempt on the quiz: they
// must be enrolled in the quiz's course and must not have a completed
// attempt already. Returns the student and quiz for the caller to build the
// engine from.
func (s *AttemptService) Admit(ctx context.Context, quizID, studentID uuid.UUID) (*model.Student, *model.Quiz, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load student: %w", err)
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz: %w", err)
	}

	if !student.EnrolledIn(quiz.CourseID) {
		return nil, nil, ErrNotEnrolled
	}

	existing, err := s.attemptRepo.GetByQuizAndStudent(ctx, quizID, studentID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("check prior attempt: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrAlreadyAttempted
	}

	return student, quiz, nil
}

// GetByID retrieves a single attempt record.
func (s *AttemptService) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	return s.attemptRepo.GetByID(ctx, id)
}

// GetByQuizAndStudent retrieves the student's attempt on a quiz, or
// pgx.ErrNoRows when none exists.
func (s *AttemptService) GetByQuizAndStudent(ctx context.Context, quizID, studentID uuid.UUID) (*model.Attempt, error) {
	return s.attemptRepo.GetByQuizAndStudent(ctx, quizID, studentID)
}

// ListByStudent retrieves all of a student's attempt records.
func (s *AttemptService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

// ListByQuiz retrieves every attempt on a quiz, for admin review.
func (s *AttemptService) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attemptRepo.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, nil
}

// Lobby assembles the student's quiz list: every quiz in their enrolled
// courses, marked with whether it has been attempted.
func (s *AttemptService) Lobby(ctx context.Context, studentID uuid.UUID) ([]model.LobbyEntry, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if len(student.CourseIDs) == 0 {
		return []model.LobbyEntry{}, nil
	}

	quizzes, err := s.quizRepo.ListByCourses(ctx, student.CourseIDs)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attemptByQuiz := make(map[uuid.UUID]*model.Attempt, len(attempts))
	for i := range attempts {
		if _, ok := attemptByQuiz[attempts[i].QuizID]; !ok {
			attemptByQuiz[attempts[i].QuizID] = &attempts[i]
		}
	}

	entries := make([]model.LobbyEntry, 0, len(quizzes))
	for i := range quizzes {
		entry := model.LobbyEntry{
			QuizID:      quizzes[i].ID,
			CourseID:    quizzes[i].CourseID,
			Title:       quizzes[i].Title,
			Description: quizzes[i].Description,
			DurationMin: quizzes[i].DurationMin,
		}
		if attempt, ok := attemptByQuiz[quizzes[i].ID]; ok {
			entry.Attempted = true
			id := attempt.ID
			entry.AttemptID = &id
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
