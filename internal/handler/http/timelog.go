package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/handler/http/response"
)

type TimeLogHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyTimeLogs(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type timeLogHandlerImpl struct {
	clockService timelog.ClockService
}

func NewTimeLogHandler(clockService timelog.ClockService) TimeLogHandler {
	return &timeLogHandlerImpl{
		clockService: clockService,
	}
}

// ClockIn implements TimeLogHandler.
func (h *timeLogHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req timelog.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.clockService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements TimeLogHandler.
func (h *timeLogHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req timelog.ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.TimeLogID = chi.URLParam(r, "id")

	result, err := h.clockService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

func parseTimeLogFilter(r *http.Request) timelog.TimeLogFilter {
	filter := timelog.TimeLogFilter{}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if employeeName := r.URL.Query().Get("employee_name"); employeeName != "" {
		filter.EmployeeName = &employeeName
	}
	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}
	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}
	filter.Page = page

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	filter.Limit = limit

	filter.SortBy = r.URL.Query().Get("sort_by")
	filter.SortOrder = r.URL.Query().Get("sort_order")

	return filter
}

// List implements TimeLogHandler.
func (h *timeLogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := parseTimeLogFilter(r)

	results, err := h.clockService.ListTimeLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetMyTimeLogs implements TimeLogHandler.
func (h *timeLogHandlerImpl) GetMyTimeLogs(w http.ResponseWriter, r *http.Request) {
	filter := parseTimeLogFilter(r)

	results, err := h.clockService.GetMyTimeLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Get implements TimeLogHandler.
func (h *timeLogHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.clockService.GetTimeLog(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
