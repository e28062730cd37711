package disputes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/common"
)

// Handler handles HTTP requests for disputes
type Handler struct {
	service *Service
}

// NewHandler creates a new dispute handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// FileDispute files a guest dispute against a pending charge record
// POST /api/v1/charges/:record_id/dispute
func (h *Handler) FileDispute(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid charge record id")
		return
	}

	var req FileDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.FileDispute(c.Request.Context(), recordID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to file dispute")
		return
	}

	common.SuccessResponse(c, record)
}

// ResolveDispute applies an administrative resolution action
// POST /api/v1/charges/:record_id/resolve
func (h *Handler) ResolveDispute(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid charge record id")
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ResolveDispute(c.Request.Context(), recordID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to resolve dispute")
		return
	}

	common.SuccessResponse(c, result)
}
