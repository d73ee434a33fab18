package model

import (
	"time"

	"github.com/google/uuid"
)

// Section is a cosmetic heading anchored to a position in a quiz's question
// order. StartQuestionID is the question the heading immediately precedes;
// nil means the section trails after all ordered questions.
type Section struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	StartQuestionID *uuid.UUID `json:"start_question_id"`
	Shuffle         bool       `json:"shuffle"`
}

// ReviewOptions are the four independent visibility flags applied when a
// completed attempt is reviewed.
type ReviewOptions struct {
	ShowMarks          bool `json:"show_marks"`
	ShowWhetherCorrect bool `json:"show_whether_correct"`
	ShowRightAnswer    bool `json:"show_right_answer"`
	ShowFeedback       bool `json:"show_feedback"`
}

// Quiz is an authored, ordered, sectioned set of question references plus
// timing and review configuration. QuestionIDs may contain duplicates and may
// reference questions that no longer exist; both are tolerated downstream.
type Quiz struct {
	ID             uuid.UUID             `json:"id"`
	CourseID       uuid.UUID             `json:"course_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	QuestionIDs    []uuid.UUID           `json:"question_ids"`
	QuestionPoints map[uuid.UUID]float64 `json:"question_points,omitempty"`
	Sections       []Section             `json:"sections,omitempty"`
	DurationMin    int                   `json:"duration_minutes"`
	MaxGrade       float64               `json:"max_grade"`
	Review         ReviewOptions         `json:"review_options"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// EffectivePoints returns the question's point weight as used within this
// quiz, honoring a per-quiz override when present.
func (q *Quiz) EffectivePoints(question *Question) float64 {
	if override, ok := q.QuestionPoints[question.ID]; ok {
		return override
	}
	return question.Points
}

// QuizPaper is the cached student-facing payload: the resolved questions
// without answer keys, grouped with the section headings.
type QuizPaper struct {
	QuizID      uuid.UUID            `json:"quiz_id"`
	Title       string               `json:"title"`
	DurationMin int                  `json:"duration_minutes"`
	Questions   []QuestionForStudent `json:"questions"`
	Sections    []Section            `json:"sections,omitempty"`
}

// CreateQuizRequest is the payload for creating a new quiz.
type CreateQuizRequest struct {
	CourseID    uuid.UUID `json:"course_id" binding:"required"`
	Title       string    `json:"title" binding:"required,min=2,max=255"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	DurationMin int       `json:"duration_minutes" binding:"required,min=1,max=480"`
	MaxGrade    float64   `json:"max_grade" binding:"omitempty,gt=0"`
}

// UpdateQuizRequest is the payload for updating quiz settings. Question order
// is edited through the dedicated authoring operations, not here.
type UpdateQuizRequest struct {
	Title       string         `json:"title" binding:"omitempty,min=2,max=255"`
	Description *string        `json:"description" binding:"omitempty,max=2000"`
	DurationMin int            `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	MaxGrade    *float64       `json:"max_grade" binding:"omitempty,gt=0"`
	Review      *ReviewOptions `json:"review_options" binding:"omitempty"`
}

// InsertQuestionsRequest asks for question ids to be spliced into the quiz
// order at the given anchor.
type InsertQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
	Anchor      AnchorRef   `json:"anchor"`
}

// InsertRandomRequest asks for n random unused questions from a course scope.
// CourseID empty with AllCourses false means the quiz's own course.
type InsertRandomRequest struct {
	Count      int        `json:"count" binding:"required,min=1,max=100"`
	CourseID   *uuid.UUID `json:"course_id" binding:"omitempty"`
	AllCourses bool       `json:"all_courses"`
	Anchor     AnchorRef  `json:"anchor"`
}

// AddSectionRequest creates a new section heading at the given anchor.
type AddSectionRequest struct {
	Title   string    `json:"title" binding:"required,min=1,max=255"`
	Shuffle bool      `json:"shuffle"`
	Anchor  AnchorRef `json:"anchor"`
}

// Anchor kinds accepted by the authoring operations.
const (
	AnchorStart         = "start"
	AnchorEnd           = "end"
	AnchorAfterQuestion = "after_question"
	AnchorSection       = "section"
)

// AnchorRef is the wire form of an insertion anchor.
// Kind is one of "start", "end", "after_question", "section"; an empty kind
// means sequence-end.
type AnchorRef struct {
	Kind     string     `json:"kind" binding:"omitempty,oneof=start end after_question section"`
	TargetID *uuid.UUID `json:"target_id" binding:"omitempty"`
}
