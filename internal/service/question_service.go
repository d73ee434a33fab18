package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/model"
	"github.com/quizdesk/quizdesk-backend/internal/repository"
	"github.com/quizdesk/quizdesk-backend/internal/response"
)

// QuestionService handles question-bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// GetByID retrieves a question by its UUID.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// ListBank retrieves a page of the question bank, optionally filtered by
// course and a text search. Bank listings sort by display number; that order
// is cosmetic and never affects a quiz's own sequence.
func (s *QuestionService) ListBank(ctx context.Context, courseID *uuid.UUID, page, perPage int, search string) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	questions, total, err := s.questionRepo.ListBank(ctx, courseID, limit, offset, search)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}

	totalPages := (total + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return questions, pagination, nil
}

// Create validates and inserts a new question. A zero point value defaults
// to 1.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	points := req.Points
	if points == 0 {
		points = 1
	}

	question := &model.Question{
		CourseID:         req.CourseID,
		Text:             req.Text,
		SecondaryText:    req.SecondaryText,
		Options:          req.Options,
		SecondaryOptions: req.SecondaryOptions,
		CorrectOption:    req.CorrectOption,
		Points:           points,
		Feedback:         req.Feedback,
		ImageURL:         req.ImageURL,
		DisplayNumber:    req.DisplayNumber,
	}
	if err := question.Validate(); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// Update validates and replaces a question's content. The course it belongs
// to is fixed at creation.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	question.Text = req.Text
	question.SecondaryText = req.SecondaryText
	question.Options = req.Options
	question.SecondaryOptions = req.SecondaryOptions
	question.CorrectOption = req.CorrectOption
	if req.Points > 0 {
		question.Points = req.Points
	}
	question.Feedback = req.Feedback
	question.ImageURL = req.ImageURL
	question.DisplayNumber = req.DisplayNumber

	if err := question.Validate(); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

// Delete removes a question from the bank. Quiz sequences that still
// reference it are left alone; resolution drops the dangling id.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.Delete(ctx, id)
}
