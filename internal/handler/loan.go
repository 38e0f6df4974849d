package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/loan-engine/internal/domain"
	"github.com/segyhp/loan-engine/pkg/response"
)

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: NewValidator(),
	}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req domain.CreateLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, validationMessage(err))
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, "Loan created successfully", loan)
}

// ListLoans handles GET /loans?type=&status=&page=&limit=
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter := domain.LoanFilter{UserID: userID}
	query := r.URL.Query()

	if raw := query.Get("type"); raw != "" {
		loanType, err := domain.ParseLoanType(raw)
		if err != nil {
			response.FromError(w, r, err)
			return
		}
		filter.Type = loanType
	}

	if raw := query.Get("status"); raw != "" {
		status, err := domain.ParseLoanStatus(raw)
		if err != nil {
			response.FromError(w, r, err)
			return
		}
		filter.Status = status
	}

	var err error
	if filter.Page, err = queryInt(r, "page"); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Success(w, loans)
}

// GetLoan handles GET /loans/{id}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid loan ID")
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id, userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Success(w, loan)
}

// UpdateStatus handles PATCH /loans/{id}/status
func (h *LoanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid loan ID")
		return
	}

	var req domain.UpdateLoanStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Status must be 'pending' or 'paid'")
		return
	}

	loan, err := h.service.UpdateStatus(r.Context(), id, userID, req.Status)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Status updated", loan)
}

// DeleteLoan handles DELETE /loans/{id}
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid loan ID")
		return
	}

	if err := h.service.DeleteLoan(r.Context(), id, userID); err != nil {
		response.FromError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Loan deleted successfully", nil)
}

// LoanStats handles GET /loans/stats
func (h *LoanHandler) LoanStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.LoanStats(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Success(w, stats)
}
