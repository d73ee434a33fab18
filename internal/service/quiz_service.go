package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/config"
	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
)

// ErrQuizHasNoQuestions reports a quiz whose sequence resolves to nothing.
var ErrQuizHasNoQuestions = errors.New("quiz has no resolvable questions")

// QuizService handles quiz CRUD and the Redis-cached student paper.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetByID retrieves a quiz document by its UUID.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, id)
}

// List retrieves all quiz documents.
func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	quizzes, err := s.quizRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// ListByCourses retrieves the quizzes attached to any of the given courses.
func (s *QuizService) ListByCourses(ctx context.Context, courseIDs []uuid.UUID) ([]model.Quiz, error) {
	if len(courseIDs) == 0 {
		return []model.Quiz{}, nil
	}
	quizzes, err := s.quizRepo.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// Create builds a new quiz document with an empty question sequence.
func (s *QuizService) Create(ctx context.Context, req *model.CreateQuizRequest) (*model.Quiz, error) {
	maxGrade := req.MaxGrade
	if maxGrade <= 0 {
		maxGrade = 100
	}

	quiz := &model.Quiz{
		CourseID:       req.CourseID,
		Title:          req.Title,
		Description:    req.Description,
		QuestionIDs:    []uuid.UUID{},
		QuestionPoints: map[uuid.UUID]float64{},
		Sections:       []model.Section{},
		DurationMin:    req.DurationMin,
		MaxGrade:       maxGrade,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Update applies the settings fields of the request. Question order is left
// untouched; it is edited through the authoring operations.
func (s *QuizService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.DurationMin > 0 {
		quiz.DurationMin = req.DurationMin
	}
	if req.MaxGrade != nil {
		quiz.MaxGrade = *req.MaxGrade
	}
	if req.Review != nil {
		quiz.Review = *req.Review
	}

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	s.InvalidateQuizCache(ctx, quiz.ID)
	return quiz, nil
}

// Delete removes a quiz document and its cached paper.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quizRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.InvalidateQuizCache(ctx, id)
	return nil
}

// ResolveQuiz loads the quiz and resolves its question sequence against the
// live question bank. The two values drive both attempt scoring and review.
func (s *QuizService) ResolveQuiz(ctx context.Context, id uuid.UUID) (*model.Quiz, []model.Question, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.resolveQuestions(ctx, quiz)
	if err != nil {
		return nil, nil, err
	}
	return quiz, questions, nil
}

func (s *QuizService) resolveQuestions(ctx context.Context, quiz *model.Quiz) ([]model.Question, error) {
	fetched, err := s.questionRepo.GetByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	byID := make(map[uuid.UUID]*model.Question, len(fetched))
	for i := range fetched {
		byID[fetched[i].ID] = &fetched[i]
	}
	return ResolveQuestions(quiz, byID), nil
}

// GetQuizPaper returns the student-facing paper, from Redis when warm. A
// cache miss resolves from PostgreSQL and re-warms the key.
func (s *QuizService) GetQuizPaper(ctx context.Context, id uuid.UUID) (*model.QuizPaper, error) {
	key := config.CacheKey.QuizPaperKey(id)

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		paper := &model.QuizPaper{}
		if jsonErr := json.Unmarshal(data, paper); jsonErr == nil {
			return paper, nil
		}
		s.log.Warn().Str("quiz_id", id.String()).Msg("Corrupt cached paper, re-warming")
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("Redis unavailable, falling back to PostgreSQL")
	}

	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.WarmQuizCache(ctx, quiz)
}

// WarmQuizCache resolves a quiz's paper and writes it to Redis. Used on
// startup prewarm, after authoring edits, and on cache miss.
func (s *QuizService) WarmQuizCache(ctx context.Context, quiz *model.Quiz) (*model.QuizPaper, error) {
	questions, err := s.resolveQuestions(ctx, quiz)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrQuizHasNoQuestions
	}

	studentQuestions := make([]model.QuestionForStudent, len(questions))
	for i := range questions {
		studentQuestions[i] = questions[i].ForStudent()
	}

	paper := &model.QuizPaper{
		QuizID:      quiz.ID,
		Title:       quiz.Title,
		DurationMin: quiz.DurationMin,
		Questions:   studentQuestions,
		Sections:    quiz.Sections,
	}

	paperJSON, err := json.Marshal(paper)
	if err != nil {
		return nil, fmt.Errorf("marshal paper: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.QuizPaperKey(quiz.ID), paperJSON, 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quiz.ID.String()).Msg("Failed to cache paper")
	} else {
		s.log.Info().
			Str("quiz_id", quiz.ID.String()).
			Int("questions", len(questions)).
			Msg("Cache warmed")
	}
	return paper, nil
}

// PrewarmAllCaches loads every quiz paper into Redis on application startup.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	quizzes, err := s.quizRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		s.log.Info().Msg("No quizzes to prewarm")
		return nil
	}

	warmed := 0
	for i := range quizzes {
		if _, err := s.WarmQuizCache(ctx, &quizzes[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("quiz_id", quizzes[i].ID.String()).
				Msg("Failed to warm quiz, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(quizzes)).
		Msg("Prewarming complete")
	return nil
}

// InvalidateQuizCache drops the cached paper after an edit. The next read
// re-warms it from PostgreSQL.
func (s *QuizService) InvalidateQuizCache(ctx context.Context, id uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.QuizPaperKey(id)).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id.String()).Msg("Failed to invalidate cached paper")
	}
}
