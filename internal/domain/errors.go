package domain

import "errors"

var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrLoadFailure        = errors.New("document could not be loaded")
	ErrAPIEndpointMissing = errors.New("required operation configured without an API endpoint")
	ErrAPITimeout         = errors.New("content lookup timed out")
	ErrAPIFailure         = errors.New("content lookup failed")
	ErrValidationFailure  = errors.New("invalid processing options")
	ErrProcessing         = errors.New("processing failed")
	ErrRunNotFound        = errors.New("run not found")
	ErrJobNotFound        = errors.New("batch job not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
