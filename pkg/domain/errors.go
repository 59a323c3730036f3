package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrPlanNotFound      = errors.New("plan not found")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidWindow     = errors.New("invalid time window")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
