package services

import "fmt"

// ReasonCode identifies why an operation was rejected.
type ReasonCode string

const (
	ReasonValidation        ReasonCode = "VALIDATION_ERROR"
	ReasonUnauthorized      ReasonCode = "UNAUTHORIZED"
	ReasonNotFound          ReasonCode = "NOT_FOUND"
	ReasonWrongStatus       ReasonCode = "WRONG_STATUS"
	ReasonWindowClosed      ReasonCode = "WINDOW_CLOSED"
	ReasonAlreadyScored     ReasonCode = "ALREADY_SCORED"
	ReasonLocked            ReasonCode = "PREDICTION_LOCKED"
	ReasonWindowOpen        ReasonCode = "WINDOW_OPEN"
	ReasonConflict          ReasonCode = "CONFLICT"
	ReasonHasPredictions    ReasonCode = "HAS_PREDICTIONS"
	ReasonInvalidTransition ReasonCode = "INVALID_TRANSITION"
)

// PoolError is an expected rejection surfaced verbatim to the caller.
// Anything that is not a *PoolError is an infrastructure failure.
type PoolError struct {
	Code    ReasonCode `json:"code"`
	Message string     `json:"error"`
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on code and message so sentinels compare with errors.Is.
func (e *PoolError) Is(target error) bool {
	t, ok := target.(*PoolError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || e.Message == t.Message)
}

func newPoolError(code ReasonCode, format string, args ...interface{}) *PoolError {
	return &PoolError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUnauthenticated = &PoolError{Code: ReasonUnauthorized, Message: "authentication required"}
	ErrAdminRequired   = &PoolError{Code: ReasonUnauthorized, Message: "admin access required"}
	ErrInvalidScore    = &PoolError{Code: ReasonValidation, Message: "scores must be integers between 0 and 50"}

	ErrMatchNotFound   = &PoolError{Code: ReasonNotFound, Message: "match not found"}
	ErrNotPredictable  = &PoolError{Code: ReasonWrongStatus, Message: "cannot predict on matches that are not scheduled"}
	ErrWindowClosed    = &PoolError{Code: ReasonWindowClosed, Message: "prediction window has closed"}
	ErrAlreadyScored   = &PoolError{Code: ReasonAlreadyScored, Message: "match already has a result"}
	ErrPredictionLock  = &PoolError{Code: ReasonLocked, Message: "prediction locked: match has started or status changed"}
	ErrPredictionsHide = &PoolError{Code: ReasonWindowOpen, Message: "predictions are not viewable until match starts"}
	ErrMatchCancelled  = &PoolError{Code: ReasonWrongStatus, Message: "match is cancelled"}
	ErrHasPredictions  = &PoolError{Code: ReasonHasPredictions, Message: "cannot delete match with existing predictions"}

	ErrInvalidCredentials = &PoolError{Code: ReasonUnauthorized, Message: "invalid username or password"}
	ErrInvalidToken       = &PoolError{Code: ReasonUnauthorized, Message: "invalid or expired token"}
	ErrUsernameTaken      = &PoolError{Code: ReasonConflict, Message: "username already exists"}
)

// ValidationError builds a VALIDATION_ERROR with a specific message.
func ValidationError(format string, args ...interface{}) *PoolError {
	return newPoolError(ReasonValidation, format, args...)
}
