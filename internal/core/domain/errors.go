package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUserNotFound     = errors.New("user not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrAuthorNotFound   = errors.New("author not found")

	// ErrConflict is the parent of every uniqueness violation.
	ErrConflict   = errors.New("conflict")
	ErrUserExists = fmt.Errorf("%w: user with this email or username already exists", ErrConflict)
	ErrSlugTaken  = fmt.Errorf("%w: post with this slug already exists", ErrConflict)
)

// ParamError reports a malformed or missing request parameter.
// It matches ErrInvalidParameter under errors.Is.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// NewParamError builds a ParamError for the named parameter.
func NewParamError(param, reason string) *ParamError {
	return &ParamError{Param: param, Reason: reason}
}
