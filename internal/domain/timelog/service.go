package timelog

import (
	"context"
)

// ClockService defines the clock-in/clock-out business logic.
type ClockService interface {
	// ClockIn opens a work session for the authenticated employee.
	// Fails with ErrAlreadyClockedIn when an open session exists.
	ClockIn(ctx context.Context, req ClockInRequest) (TimeLogResponse, error)

	// ClockOut closes an open session. The recorded duration comes from the
	// client-observed elapsed seconds, rounded to whole minutes.
	ClockOut(ctx context.Context, req ClockOutRequest) (TimeLogResponse, error)

	// GetMyTimeLogs retrieves time logs for the authenticated employee
	GetMyTimeLogs(ctx context.Context, filter TimeLogFilter) (ListTimeLogResponse, error)

	// ListTimeLogs retrieves time logs across the organization (manager/owner)
	ListTimeLogs(ctx context.Context, filter TimeLogFilter) (ListTimeLogResponse, error)

	// GetTimeLog retrieves a single time log by ID
	GetTimeLog(ctx context.Context, id string) (TimeLogResponse, error)
}
