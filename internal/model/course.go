package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is a named curriculum grouping that owns questions and quizzes.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ShortCode   string    `json:"short_code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a new course.
type CreateCourseRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	ShortCode   string `json:"short_code" binding:"required,min=2,max=20"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateCourseRequest is the payload for updating an existing course.
type UpdateCourseRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	ShortCode   string `json:"short_code" binding:"required,min=2,max=20"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}
