package suspensions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/validation"
)

// Handler handles HTTP requests for account suspensions
type Handler struct {
	service *Service
}

// NewHandler creates a new suspension handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SuspendUser applies a suspension per the escalation table
// POST /api/v1/suspensions
func (h *Handler) SuspendUser(c *gin.Context) {
	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			common.ErrorResponse(c, http.StatusBadRequest, validation.NewValidationError(verrs).Error())
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SuspendUser(c.Request.Context(), &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to suspend user")
		return
	}

	common.CreatedResponse(c, result)
}

// LiftSuspension clears a suspension on one role
// DELETE /api/v1/suspensions/:user_id/:role
func (h *Handler) LiftSuspension(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}
	role := Role(c.Param("role"))
	if role != RoleGuest && role != RoleHost {
		common.ErrorResponse(c, http.StatusBadRequest, "role must be guest or host")
		return
	}

	if err := h.service.LiftSuspension(c.Request.Context(), userID, role); err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to lift suspension")
		return
	}

	common.SuccessResponse(c, gin.H{"user_id": userID, "role": role, "suspended": false})
}

// GetStatus returns the suspension standing of one role
// GET /api/v1/suspensions/:user_id/:role
func (h *Handler) GetStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user id")
		return
	}
	role := Role(c.Param("role"))
	if role != RoleGuest && role != RoleHost {
		common.ErrorResponse(c, http.StatusBadRequest, "role must be guest or host")
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID, role)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get suspension status")
		return
	}

	common.SuccessResponse(c, status)
}

// ListViolationTypes returns the violation types the escalation table covers
// GET /api/v1/suspensions/violation-types
func (h *Handler) ListViolationTypes(c *gin.Context) {
	common.SuccessResponse(c, gin.H{"violation_types": KnownViolationTypes()})
}
