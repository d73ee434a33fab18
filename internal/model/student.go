package model

import (
	"time"

	"github.com/google/uuid"
)

// Student is a roster record. Credentials live with the external identity
// provider; this service only stores profile and enrollment data.
type Student struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	CourseIDs   []uuid.UUID `json:"course_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// EnrolledIn reports whether the student is enrolled in the given course.
func (s *Student) EnrolledIn(courseID uuid.UUID) bool {
	for _, id := range s.CourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// CreateStudentRequest is the payload for adding a student to the roster.
type CreateStudentRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	DisplayName string      `json:"display_name" binding:"required,min=2,max=100"`
	CourseIDs   []uuid.UUID `json:"course_ids" binding:"omitempty"`
}

// UpdateStudentRequest is the payload for updating a roster record.
type UpdateStudentRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	DisplayName string      `json:"display_name" binding:"required,min=2,max=100"`
	CourseIDs   []uuid.UUID `json:"course_ids" binding:"omitempty"`
}
