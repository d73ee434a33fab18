package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Identity ──────────────────────────────────────────────────────
	ErrTokenRequired     ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid      ErrCode = "TOKEN_INVALID"
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Quiz authoring ────────────────────────────────────────────────
	ErrNoEligibleQuestions ErrCode = "NO_ELIGIBLE_QUESTIONS"
	ErrInvalidQuestion     ErrCode = "INVALID_QUESTION"

	// ─── Attempts ──────────────────────────────────────────────────────
	ErrQuizNotAvailable    ErrCode = "QUIZ_NOT_AVAILABLE"
	ErrNotEnrolled         ErrCode = "NOT_ENROLLED"
	ErrAlreadyAttempted    ErrCode = "ALREADY_ATTEMPTED"
	ErrQuizHasNoQuestions  ErrCode = "QUIZ_HAS_NO_QUESTIONS"
	ErrSubmitNotPersisted  ErrCode = "SUBMIT_NOT_PERSISTED"
	ErrReviewNotPermitted  ErrCode = "REVIEW_NOT_PERMITTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "The requested resource was not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrDependencyExists:
		return "The resource cannot be deleted because other data still uses it."

	case ErrNoEligibleQuestions:
		return "No eligible questions were found for random selection."
	case ErrInvalidQuestion:
		return "The question content is invalid."

	case ErrQuizNotAvailable:
		return "This quiz is not currently available."
	case ErrNotEnrolled:
		return "You are not enrolled in this quiz's course."
	case ErrAlreadyAttempted:
		return "You have already completed this quiz."
	case ErrQuizHasNoQuestions:
		return "This quiz has no resolvable questions."
	case ErrSubmitNotPersisted:
		return "The submission could not be saved. Please retry."
	case ErrReviewNotPermitted:
		return "Reviewing this attempt is not permitted."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
