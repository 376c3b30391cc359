package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/regularization"
	"github.com/chronos-hq/timetrack-backend-go/internal/handler/http/response"
)

type RegularizationHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	RequestClarification(w http.ResponseWriter, r *http.Request)
	SubmitClarification(w http.ResponseWriter, r *http.Request)
}

type regularizationHandlerImpl struct {
	regService regularization.Service
}

func NewRegularizationHandler(regService regularization.Service) RegularizationHandler {
	return &regularizationHandlerImpl{
		regService: regService,
	}
}

// Submit implements RegularizationHandler.
func (h *regularizationHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req regularization.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.regService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Regularization request submitted", result)
}

func parseRegularizationFilter(r *http.Request) regularization.Filter {
	filter := regularization.Filter{}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		filter.StartDate = &startDate
	}
	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		filter.EndDate = &endDate
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

	return filter
}

// List implements RegularizationHandler.
func (h *regularizationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.regService.ListRequests(r.Context(), parseRegularizationFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetMyRequests implements RegularizationHandler.
func (h *regularizationHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	results, err := h.regService.GetMyRequests(r.Context(), parseRegularizationFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Approve implements RegularizationHandler.
func (h *regularizationHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req regularization.DecideRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.regService.Approve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization request approved", result)
}

// Reject implements RegularizationHandler.
func (h *regularizationHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req regularization.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.regService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Regularization request rejected", result)
}

// RequestClarification implements RegularizationHandler.
func (h *regularizationHandlerImpl) RequestClarification(w http.ResponseWriter, r *http.Request) {
	req := regularization.ClarificationRequest{ID: chi.URLParam(r, "id")}

	if err := h.regService.RequestClarification(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clarification requested", nil)
}

// SubmitClarification implements RegularizationHandler.
func (h *regularizationHandlerImpl) SubmitClarification(w http.ResponseWriter, r *http.Request) {
	var req regularization.ClarificationResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := h.regService.SubmitClarification(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clarification submitted", nil)
}
