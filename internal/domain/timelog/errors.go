package timelog

import "errors"

// Time log domain errors
var (
	// Clock-in errors
	ErrAlreadyClockedIn = errors.New("you already have an open work session")

	// Clock-out errors
	ErrAlreadyClosed = errors.New("work session is already closed")

	// General errors
	ErrTimeLogNotFound = errors.New("time log not found")
	ErrUnauthorized    = errors.New("unauthorized to access this time log")
)
