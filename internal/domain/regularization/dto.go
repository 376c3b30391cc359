package regularization

import (
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/validator"
)

// ========================================
// REGULARIZATION DTOs
// ========================================

type SubmitRequest struct {
	TimeLogID         *string `json:"time_log_id,omitempty"`
	Date              string  `json:"date"`
	RequestedClockIn  string  `json:"requested_clock_in"`
	RequestedClockOut string  `json:"requested_clock_out"`
	Reason            string  `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if _, ok := validator.IsValidDateTime(r.RequestedClockIn); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_clock_in",
			Message: "requested_clock_in must be an ISO8601 timestamp",
		})
	}

	if _, ok := validator.IsValidDateTime(r.RequestedClockOut); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_clock_out",
			Message: "requested_clock_out must be an ISO8601 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DecideRequest struct {
	ID    string `json:"-"`
	Notes string `json:"notes"`
}

type ClarificationRequest struct {
	ID string `json:"-"`
}

type ClarificationResponseRequest struct {
	ID       string `json:"-"`
	Response string `json:"response"`
}

func (r *ClarificationResponseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Response) {
		errs = append(errs, validator.ValidationError{
			Field:   "response",
			Message: "response is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Filter struct {
	EmployeeID *string
	Status     *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && *f.Status != "" {
		valid := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(*f.Status, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee_id"`
	EmployeeName          *string `json:"employee_name,omitempty"`
	TimeLogID             *string `json:"time_log_id,omitempty"`
	Date                  string  `json:"date"`
	OriginalClockIn       *string `json:"original_clock_in,omitempty"`
	OriginalClockOut      *string `json:"original_clock_out,omitempty"`
	RequestedClockIn      string  `json:"requested_clock_in"`
	RequestedClockOut     string  `json:"requested_clock_out"`
	Reason                string  `json:"reason"`
	Status                string  `json:"status"`
	ApproverNotes         *string `json:"approver_notes,omitempty"`
	ApprovedBy            *string `json:"approved_by,omitempty"`
	ApprovedAt            *string `json:"approved_at,omitempty"`
	ClarificationStatus   string  `json:"clarification_status"`
	ClarificationResponse *string `json:"clarification_response,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	Requests   []Response `json:"requests"`
}
