package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Question banks ────────────────────────────────────────────────
	ErrBankNotFound    ErrCode = "BANK_NOT_FOUND"
	ErrBankRequired    ErrCode = "BANK_REQUIRED"
	ErrMissingColumn   ErrCode = "MISSING_COLUMN"
	ErrEmptySource     ErrCode = "EMPTY_SOURCE"
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionNotFound    ErrCode = "SESSION_NOT_FOUND"
	ErrSessionFinished    ErrCode = "SESSION_ALREADY_FINISHED"
	ErrSessionNotDone     ErrCode = "SESSION_NOT_FINISHED"
	ErrDeadlinePassed     ErrCode = "DEADLINE_PASSED"
	ErrDeadlineNotPassed  ErrCode = "DEADLINE_NOT_PASSED"
	ErrQuestionOutOfRange ErrCode = "QUESTION_OUT_OF_RANGE"

	// ─── Reports ───────────────────────────────────────────────────────
	ErrReportUnavailable ErrCode = "REPORT_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Question banks ────────────────────────────────────────────────
	case ErrBankNotFound:
		return "The requested question bank is not registered."
	case ErrBankRequired:
		return "No question bank was specified and no default is configured."
	case ErrMissingColumn:
		return "A required column could not be resolved from the file header."
	case ErrEmptySource:
		return "The file contains no usable question rows."
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Upload a .csv or .xlsx file."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the size limit."

	// ─── Sessions ──────────────────────────────────────────────────────
	case ErrSessionNotFound:
		return "The session does not exist or has been discarded."
	case ErrSessionFinished:
		return "The session has already finished."
	case ErrSessionNotDone:
		return "The session has not finished yet."
	case ErrDeadlinePassed:
		return "Time is up. The session has expired."
	case ErrDeadlineNotPassed:
		return "The session still has time remaining."
	case ErrQuestionOutOfRange:
		return "The question index is outside the loaded bank."

	// ─── Reports ───────────────────────────────────────────────────────
	case ErrReportUnavailable:
		return "The review report could not be generated."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
