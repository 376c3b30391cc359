package timelog

import (
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/validator"
)

// ========================================
// TIME LOG DTOs
// ========================================

type ClockInRequest struct {
	Notes                *string                `json:"notes,omitempty"`
	ProjectAllocations   map[string]interface{} `json:"project_allocations,omitempty"`
	ExpectedWorkingHours *float64               `json:"expected_working_hours,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ExpectedWorkingHours != nil && (*r.ExpectedWorkingHours <= 0 || *r.ExpectedWorkingHours > 24) {
		errs = append(errs, validator.ValidationError{
			Field:   "expected_working_hours",
			Message: "expected_working_hours must be between 0 and 24",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ClockOutRequest struct {
	TimeLogID        string `json:"time_log_id"`
	ElapsedSeconds   int64  `json:"elapsed_seconds"`
	WasInGracePeriod bool   `json:"was_in_grace_period"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TimeLogID) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_log_id",
			Message: "time_log_id is required",
		})
	}

	if r.ElapsedSeconds < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "elapsed_seconds",
			Message: "elapsed_seconds must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TimeLogFilter struct {
	EmployeeID   *string
	EmployeeName *string
	Date         *string
	StartDate    *string
	EndDate      *string
	Status       *string
	Page         int
	Limit        int
	SortBy       string
	SortOrder    string
}

func (f *TimeLogFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil && *f.Date != "" {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Status != nil && *f.Status != "" {
		valid := []string{
			string(StatusNormal), string(StatusGracePeriod),
			string(StatusAutoTerminated), string(StatusAbsent),
		}
		if !validator.IsInSlice(*f.Status, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: normal, grace_period, auto_terminated, absent",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TimeLogResponse struct {
	ID                    string                 `json:"id"`
	EmployeeID            string                 `json:"employee_id"`
	EmployeeName          *string                `json:"employee_name,omitempty"`
	Date                  string                 `json:"date"`
	ClockInTime           *string                `json:"clock_in_time,omitempty"`
	ClockOutTime          *string                `json:"clock_out_time,omitempty"`
	DurationMinutes       *int                   `json:"duration_minutes,omitempty"`
	Status                string                 `json:"status"`
	ExpectedClockOutTime  *string                `json:"expected_clock_out_time,omitempty"`
	GracePeriodEndTime    *string                `json:"grace_period_end_time,omitempty"`
	Notes                 *string                `json:"notes,omitempty"`
	ProjectTimeData       map[string]interface{} `json:"project_time_data,omitempty"`
	IsSubmitted           bool                   `json:"is_submitted"`
	IsApproved            bool                   `json:"is_approved"`
	ApprovedBy            *string                `json:"approved_by,omitempty"`
	ApprovedAt            *string                `json:"approved_at,omitempty"`
	RejectionReason       *string                `json:"rejection_reason,omitempty"`
	ClarificationStatus   string                 `json:"clarification_status"`
	ClarificationResponse *string                `json:"clarification_response,omitempty"`
	CreatedAt             string                 `json:"created_at"`
	UpdatedAt             string                 `json:"updated_at"`
}

type ListTimeLogResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	TimeLogs   []TimeLogResponse `json:"time_logs"`
}
