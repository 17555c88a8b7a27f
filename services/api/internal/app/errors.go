package app

import (
	"errors"
	"fmt"
)

var (
	// Conflicts. Messages are user-facing and steer the caller towards
	// signing in instead of re-registering.
	ErrAccountExists            = errors.New("an account already exists for this email; sign in instead")
	ErrPendingApplicationExists = errors.New("a registration is already pending for this email")
	ErrDuplicateAssignment      = errors.New("this mentor and student are already assigned in the cohort")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrCohortHasAssignments = errors.New("cohort has assignments and cannot be deleted")
	ErrMentorRoleRequired   = errors.New("mentor account with mentor role required")
	ErrStudentRoleRequired  = errors.New("student account with student role required")
	ErrAccountInactive      = errors.New("account is not active")
)

// ValidationError reports a malformed or missing field in a submission.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func validationErr(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAccountExists) ||
		errors.Is(err, ErrPendingApplicationExists) ||
		errors.Is(err, ErrDuplicateAssignment) ||
		errors.Is(err, ErrCohortHasAssignments)
}
