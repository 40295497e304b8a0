package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/service"
	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/httpkit"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/validator"
)

// Handler handles HTTP requests for claims and phone extraction.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid claim id"
	msgInvalidStatus    = "invalid status"
)

// New creates a new claims handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// ExtractText extracts the contact phone from posted document text.
// POST /api/v1/phone/extract
func (h *Handler) ExtractText(c *gin.Context) {
	var req transport.ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.ExtractText(c.Request.Context(), req.Text))
}

// InspectText reports how each label and candidate was judged.
// POST /api/v1/phone/inspect
func (h *Handler) InspectText(c *gin.Context) {
	var req transport.ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.InspectText(c.Request.Context(), req.Text))
}

// ImportClaims stores a batch of claims.
// POST /api/v1/claims/import
func (h *Handler) ImportClaims(c *gin.Context) {
	var req transport.ImportClaimsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Import(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	h.log.WithContext(c.Request.Context()).Info("claims import requested",
		"operator", identity.UserID().String(), "imported", result.Imported)
	httpkit.OK(c, result)
}

// ListClaims retrieves claims with filters.
// GET /api/v1/claims
func (h *Handler) ListClaims(c *gin.Context) {
	var req transport.ListClaimsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExportClaims streams claims as JSON lines, one record per claim.
// GET /api/v1/claims/export.jsonl
func (h *Handler) ExportClaims(c *gin.Context) {
	status := repository.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidStatus, nil)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Disposition", `attachment; filename="claims.jsonl"`)
	c.Status(http.StatusOK)

	written, err := h.svc.ExportJSONL(c.Request.Context(), c.Writer, status)
	if err != nil {
		// Headers are already sent; record the failure for the request log.
		_ = c.Error(err)
		return
	}
	h.log.WithContext(c.Request.Context()).Debug("claims exported", "records", written)
}

// GetClaim retrieves a claim by ID.
// GET /api/v1/claims/:id
func (h *Handler) GetClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExtractClaim runs extraction for one claim and returns the stored outcome.
// POST /api/v1/claims/:id/extract
func (h *Handler) ExtractClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.ExtractClaim(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ExtractPending processes pending claims inline, or hands them to the
// worker when async is set.
// POST /api/v1/claims/extract-pending
func (h *Handler) ExtractPending(c *gin.Context) {
	var req transport.ExtractPendingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if req.Async {
		result, err := h.svc.EnqueuePending(c.Request.Context(), req.Limit)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Accepted(c, result)
		return
	}

	result, err := h.svc.ExtractPending(c.Request.Context(), req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
