package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Question is a single scoring item: option texts, one correct index, and a
// point weight. SecondaryText/SecondaryOptions carry an optional second-locale
// variant; SecondaryOptions may be shorter than Options but never longer.
type Question struct {
	ID               uuid.UUID `json:"id"`
	CourseID         uuid.UUID `json:"course_id"`
	Text             string    `json:"text"`
	SecondaryText    *string   `json:"secondary_text,omitempty"`
	Options          []string  `json:"options"`
	SecondaryOptions []string  `json:"secondary_options,omitempty"`
	CorrectOption    int       `json:"correct_option_index"`
	Points           float64   `json:"points"`
	// Feedback is the remedial text shown on review when the answer was
	// wrong, subject to the quiz's review flags.
	Feedback *string `json:"feedback,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
	// DisplayNumber is a nullable sort hint for bank listings only. The quiz
	// definition's own question order is authoritative for attempts.
	DisplayNumber *int      `json:"display_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validation errors for question content.
var (
	ErrTooFewOptions          = errors.New("question needs at least two options")
	ErrCorrectOptionOutOfSet  = errors.New("correct option index is out of range")
	ErrSecondaryOptionsLength = errors.New("secondary options cannot outnumber options")
	ErrNonPositivePoints      = errors.New("point value must be positive")
)

// Validate checks the question invariants that the database cannot express.
func (q *Question) Validate() error {
	if len(q.Options) < 2 {
		return ErrTooFewOptions
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return ErrCorrectOptionOutOfSet
	}
	if len(q.SecondaryOptions) > len(q.Options) {
		return ErrSecondaryOptionsLength
	}
	if q.Points <= 0 {
		return ErrNonPositivePoints
	}
	return nil
}

// QuestionForStudent is a question stripped of its answer key, safe to send
// to a student taking an attempt.
type QuestionForStudent struct {
	ID               uuid.UUID `json:"id"`
	Text             string    `json:"text"`
	SecondaryText    *string   `json:"secondary_text,omitempty"`
	Options          []string  `json:"options"`
	SecondaryOptions []string  `json:"secondary_options,omitempty"`
	ImageURL         *string   `json:"image_url,omitempty"`
	DisplayNumber    *int      `json:"display_number,omitempty"`
}

// ForStudent returns the answer-key-free view of the question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:               q.ID,
		Text:             q.Text,
		SecondaryText:    q.SecondaryText,
		Options:          q.Options,
		SecondaryOptions: q.SecondaryOptions,
		ImageURL:         q.ImageURL,
		DisplayNumber:    q.DisplayNumber,
	}
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	CourseID         uuid.UUID `json:"course_id" binding:"required"`
	Text             string    `json:"text" binding:"required,min=1,max=2000"`
	SecondaryText    *string   `json:"secondary_text" binding:"omitempty,max=2000"`
	Options          []string  `json:"options" binding:"required,min=2,dive,required"`
	SecondaryOptions []string  `json:"secondary_options" binding:"omitempty"`
	CorrectOption    int       `json:"correct_option_index" binding:"min=0"`
	Points           float64   `json:"points" binding:"omitempty,gt=0"`
	Feedback         *string   `json:"feedback" binding:"omitempty,max=2000"`
	ImageURL         *string   `json:"image_url" binding:"omitempty,url"`
	DisplayNumber    *int      `json:"display_number" binding:"omitempty"`
}

// UpdateQuestionRequest is the payload for updating a question.
type UpdateQuestionRequest struct {
	Text             string    `json:"text" binding:"required,min=1,max=2000"`
	SecondaryText    *string   `json:"secondary_text" binding:"omitempty,max=2000"`
	Options          []string  `json:"options" binding:"required,min=2,dive,required"`
	SecondaryOptions []string  `json:"secondary_options" binding:"omitempty"`
	CorrectOption    int       `json:"correct_option_index" binding:"min=0"`
	Points           float64   `json:"points" binding:"omitempty,gt=0"`
	Feedback         *string   `json:"feedback" binding:"omitempty,max=2000"`
	ImageURL         *string   `json:"image_url" binding:"omitempty,url"`
	DisplayNumber    *int      `json:"display_number" binding:"omitempty"`
}
