package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quizdesk/quizdesk-backend/internal/middleware"
	"github.com/quizdesk/quizdesk-backend/internal/response"
	"github.com/quizdesk/quizdesk-backend/internal/service"
)

// StudentPortalHandler is the student-facing surface: lobby, quiz paper,
// attempt history, and post-attempt review.
type StudentPortalHandler struct {
	attemptService *service.AttemptService
	quizService    *service.QuizService
	reviewService  *service.ReviewService
}

func NewStudentPortalHandler(
	attemptService *service.AttemptService,
	quizService *service.QuizService,
	reviewService *service.ReviewService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		attemptService: attemptService,
		quizService:    quizService,
		reviewService:  reviewService,
	}
}

// Lobby godoc
// GET /api/v1/student/quizzes
func (h *StudentPortalHandler) Lobby(c *gin.Context) {
	studentID, ok := middleware.GetSubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	entries, err := h.attemptService.Lobby(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": entries})
}

// GetPaper godoc
// GET /api/v1/student/quizzes/:quiz_id/paper
// Returns the cached answer-free paper. The student must be enrolled and
// must not have attempted the quiz yet.
func (h *StudentPortalHandler) GetPaper(c *gin.Context) {
	studentID, ok := middleware.GetSubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, _, err := h.attemptService.Admit(c.Request.Context(), quizID, studentID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotEnrolled):
			response.Fail(c, http.StatusForbidden, response.ErrNotEnrolled)
		case errors.Is(err, service.ErrAlreadyAttempted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	paper, err := h.quizService.GetQuizPaper(c.Request.Context(), quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizHasNoQuestions) {
			response.Fail(c, http.StatusConflict, response.ErrQuizHasNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// MyAttempts godoc
// GET /api/v1/student/attempts
func (h *StudentPortalHandler) MyAttempts(c *gin.Context) {
	studentID, ok := middleware.GetSubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	attempts, err := h.attemptService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// Review godoc
// GET /api/v1/student/attempts/:attempt_id/review
func (h *StudentPortalHandler) Review(c *gin.Context) {
	studentID, ok := middleware.GetSubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	review, err := h.reviewService.Review(c.Request.Context(), attemptID, studentID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotAttemptOwner):
			response.Fail(c, http.StatusForbidden, response.ErrReviewNotPermitted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}
