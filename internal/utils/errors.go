package utils

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Standard error codes for the engine
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrInvalidInput = "INVALID_INPUT"

	// Vote submission errors
	ErrRateLimited    = "RATE_LIMITED"
	ErrNetworkFailure = "NETWORK_FAILURE"
	ErrTimeout        = "TIMEOUT"

	// Actor communication errors
	ErrActorTimeout = "ACTOR_TIMEOUT"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewSubjectNotFoundError(subjectID string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: "Subject not loaded: " + subjectID,
	}
}

func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: "Invalid vote: " + reason,
	}
}

func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    ErrRateLimited,
		Message: "Vote rejected: minimum interval between votes not elapsed",
	}
}

func NewNetworkFailureError(originalErr error) *AppError {
	return &AppError{
		Code:    ErrNetworkFailure,
		Message: "Vote submission failed",
		Origin:  originalErr,
	}
}

func NewTimeoutError() *AppError {
	return &AppError{
		Code:    ErrTimeout,
		Message: "Vote submission timed out",
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return 404 // http.StatusNotFound
	case ErrInvalidInput:
		return 400 // http.StatusBadRequest
	case ErrRateLimited:
		return 429 // http.StatusTooManyRequests
	case ErrNetworkFailure:
		return 502 // http.StatusBadGateway
	case ErrTimeout:
		return 504 // http.StatusGatewayTimeout
	case ErrActorTimeout:
		return 500 // http.StatusInternalServerError
	default:
		return 500 // http.StatusInternalServerError for unknown errors
	}
}
