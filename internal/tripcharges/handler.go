package tripcharges

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/common"
)

// Handler handles HTTP requests for trip charges
type Handler struct {
	service *Service
}

// NewHandler creates a new trip charge handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// FinalizeTrip finalizes a trip and computes its charges
// POST /api/v1/bookings/:booking_id/finalize
func (h *Handler) FinalizeTrip(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req FinalizeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.FinalizeTrip(c.Request.Context(), bookingID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to finalize trip")
		return
	}

	common.CreatedResponse(c, record)
}

// PreviewCharges computes charges without persisting
// POST /api/v1/bookings/:booking_id/charges/preview
func (h *Handler) PreviewCharges(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	var req FinalizeTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	charges, validation, err := h.service.PreviewCharges(c.Request.Context(), bookingID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to preview charges")
		return
	}

	common.SuccessResponse(c, gin.H{
		"charges":    charges,
		"validation": validation,
	})
}

// GetCharges returns the persisted charges for a booking
// GET /api/v1/bookings/:booking_id/charges
func (h *Handler) GetCharges(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	record, err := h.service.GetCharges(c.Request.Context(), bookingID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get charges")
		return
	}

	common.SuccessResponse(c, record)
}
