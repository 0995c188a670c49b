package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so wrapped or cloned instances compare equal.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the registration workflow taxonomy.
var (
	ErrNotFound             = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation           = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal             = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrConfigurationMissing = New("CONFIGURATION_MISSING", http.StatusServiceUnavailable, "backend not configured; connect a database or use sample data")
	ErrVerificationRequired = New("VERIFICATION_REQUIRED", http.StatusBadRequest, "please verify you are not a robot")
	ErrAlreadyRegistered    = New("ALREADY_REGISTERED", http.StatusConflict, "you have already registered for this course with this email")
	ErrSubmissionFailed     = New("SUBMISSION_FAILED", http.StatusBadGateway, "could not complete registration, please try again")
	ErrCourseNotFound       = New("COURSE_NOT_FOUND", http.StatusNotFound, "course not found")
	ErrEnrollmentFailed     = New("ENROLLMENT_FAILED", http.StatusBadGateway, "could not enroll in the course, please try again")
	ErrSessionNotFound      = New("SESSION_NOT_FOUND", http.StatusNotFound, "registration session not found")
	ErrSubmissionInFlight   = New("SUBMISSION_IN_FLIGHT", http.StatusConflict, "a submission is already in progress")
	ErrCacheMiss            = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
