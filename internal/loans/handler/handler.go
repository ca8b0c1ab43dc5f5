// Package handler exposes the loans module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loanflow_backend/internal/loans/service"
	"loanflow_backend/internal/loans/transport"
	"loanflow_backend/platform/httpkit"
	"loanflow_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid application ID"
)

// Handler handles HTTP requests for loan applications.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new loans handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit creates a loan application and kicks off the pipeline.
// POST /api/v1/loans
func (h *Handler) Submit(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.SubmitLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	email := req.UserData.Email
	if email == "" {
		email = identity.Email()
	}

	result, err := h.svc.Submit(c.Request.Context(), service.SubmitParams{
		UserID:         identity.UserID(),
		Amount:         req.Amount,
		Purpose:        req.Purpose,
		TenureMonths:   req.TenureMonths,
		MonthlyIncome:  req.UserData.MonthlyIncome,
		EmploymentType: req.UserData.EmploymentType,
		TaxID:          req.UserData.PANNumber,
		Phone:          req.UserData.Phone,
		Email:          email,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.SubmitLoanResponse{
		Success:       true,
		ApplicationID: result.ApplicationID,
		Message:       result.Message,
	})
}

// List returns the caller's applications, newest first.
// GET /api/v1/loans
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	apps, err := h.svc.List(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromApplications(apps))
}

// Get returns one of the caller's applications.
// GET /api/v1/loans/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	app, err := h.svc.Get(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromApplication(app))
}

// ListActivities returns an application's audit trail, oldest first.
// GET /api/v1/loans/:id/activities
func (h *Handler) ListActivities(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	activities, err := h.svc.ListActivities(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromActivities(activities))
}

// Cancel withdraws a pending application.
// POST /api/v1/loans/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	app, err := h.svc.Cancel(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromApplication(app))
}
