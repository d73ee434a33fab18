package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerUnanswered is the sentinel slot value for a question the student
// never answered. It can never equal a valid option index, so it never scores.
const AnswerUnanswered = -1

// Attempt is one student's completed, scored pass through a quiz. It is
// written exactly once at submission and never updated.
type Attempt struct {
	ID          uuid.UUID `json:"id"`
	QuizID      uuid.UUID `json:"quiz_id"`
	StudentID   uuid.UUID `json:"student_id"`
	Answers     []int     `json:"answers"`
	Score       float64   `json:"score"`
	TotalPoints float64   `json:"total_points"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Percentage returns the attempt's rounded score percentage. A zero-point
// quiz is defined as 0% rather than a division by zero.
func (a *Attempt) Percentage() int {
	if a.TotalPoints <= 0 {
		return 0
	}
	return int(a.Score/a.TotalPoints*100 + 0.5)
}

// LobbyEntry is one row of the student lobby: a quiz from an enrolled
// course, marked with whether this student has already attempted it.
type LobbyEntry struct {
	QuizID      uuid.UUID  `json:"quiz_id"`
	CourseID    uuid.UUID  `json:"course_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DurationMin int        `json:"duration_minutes"`
	Attempted   bool       `json:"attempted"`
	AttemptID   *uuid.UUID `json:"attempt_id,omitempty"`
}
