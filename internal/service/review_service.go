package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizdesk/quizdesk-backend/internal/model"
)

// ErrNotAttemptOwner rejects a review request for someone else's attempt.
var ErrNotAttemptOwner = errors.New("attempt belongs to a different student")

// ReviewItem is one question's row in a review breakdown. Fields gated off
// by the quiz's review flags stay nil and are omitted from the payload.
type ReviewItem struct {
	QuestionID     uuid.UUID `json:"question_id"`
	Text           string    `json:"text"`
	Options        []string  `json:"options"`
	SelectedOption int       `json:"selected_option"`
	Answered       bool      `json:"answered"`
	EarnedPoints   *float64  `json:"earned_points,omitempty"`
	PossiblePoints *float64  `json:"possible_points,omitempty"`
	Correct        *bool     `json:"correct,omitempty"`
	CorrectOption  *int      `json:"correct_option,omitempty"`
	Feedback       *string   `json:"feedback,omitempty"`
}

// AttemptReview is a completed attempt rendered per-question. Nothing here
// is persisted; the breakdown is recomputed from the quiz's current state on
// every request.
type AttemptReview struct {
	AttemptID   uuid.UUID    `json:"attempt_id"`
	QuizID      uuid.UUID    `json:"quiz_id"`
	CompletedAt time.Time    `json:"completed_at"`
	Score       *float64     `json:"score,omitempty"`
	TotalPoints *float64     `json:"total_points,omitempty"`
	Percentage  *int         `json:"percentage,omitempty"`
	Questions   []ReviewItem `json:"questions"`
}

// ReviewService renders completed attempts as read-only breakdowns.
type ReviewService struct {
	attemptService *AttemptService
	quizService    *QuizService
	log            zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(attemptService *AttemptService, quizService *QuizService, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		attemptService: attemptService,
		quizService:    quizService,
		log:            log.With().Str("component", "review_service").Logger(),
	}
}

// Review loads an attempt, checks ownership, and builds the breakdown from
// the quiz's current definition. Attempts do not snapshot the definition, so
// a later edit changes what a review displays; that staleness is accepted.
func (s *ReviewService) Review(ctx context.Context, attemptID, studentID uuid.UUID) (*AttemptReview, error) {
	attempt, err := s.attemptService.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}

	quiz, questions, err := s.quizService.ResolveQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	return BuildReview(attempt, quiz, questions), nil
}

// BuildReview assembles the per-question breakdown, honoring the quiz's
// review-visibility flags:
//
//   - show_marks reveals earned/possible points and the aggregate score
//   - show_whether_correct reveals right/wrong per question
//   - show_right_answer reveals the correct option when the answer was wrong
//   - show_feedback reveals remedial text, but only alongside the right
//     answer — feedback without show_right_answer stays hidden
func BuildReview(attempt *model.Attempt, quiz *model.Quiz, questions []model.Question) *AttemptReview {
	review := &AttemptReview{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		CompletedAt: attempt.CompletedAt,
		Questions:   make([]ReviewItem, 0, len(questions)),
	}

	flags := quiz.Review
	if flags.ShowMarks {
		score, total := attempt.Score, attempt.TotalPoints
		pct := attempt.Percentage()
		review.Score = &score
		review.TotalPoints = &total
		review.Percentage = &pct
	}

	for i := range questions {
		q := &questions[i]

		selected := model.AnswerUnanswered
		if i < len(attempt.Answers) {
			selected = attempt.Answers[i]
		}
		correct := selected == q.CorrectOption

		item := ReviewItem{
			QuestionID:     q.ID,
			Text:           q.Text,
			Options:        q.Options,
			SelectedOption: selected,
			Answered:       selected != model.AnswerUnanswered,
		}

		if flags.ShowMarks {
			possible := quiz.EffectivePoints(q)
			earned := 0.0
			if correct {
				earned = possible
			}
			item.PossiblePoints = &possible
			item.EarnedPoints = &earned
		}
		if flags.ShowWhetherCorrect {
			c := correct
			item.Correct = &c
		}
		if !correct && flags.ShowRightAnswer {
			idx := q.CorrectOption
			item.CorrectOption = &idx
			if flags.ShowFeedback && q.Feedback != nil {
				item.Feedback = q.Feedback
			}
		}

		review.Questions = append(review.Questions, item)
	}
	return review
}
