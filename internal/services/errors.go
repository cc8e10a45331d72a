package services

import "errors"

// Messages double as the response bodies the API returns.
var (
	ErrMissingFields      = errors.New("missing fields")
	ErrEmailExists        = errors.New("email exists")
	ErrInvalidCredentials = errors.New("invalid")
	ErrNotFound           = errors.New("not found")
	ErrMissingName        = errors.New("missing name")
	ErrInvalidSchedule    = errors.New("invalid schedule time")
	ErrNoFile             = errors.New("No file uploaded")
)
