package claims

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/common"
)

// Handler handles HTTP requests for claims
type Handler struct {
	service *Service
}

// NewHandler creates a new claim handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateClaim files a new claim
// POST /api/v1/hosts/:host_id/claims
func (h *Handler) CreateClaim(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("host_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid host id")
		return
	}

	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	claim, err := h.service.CreateClaim(c.Request.Context(), hostID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create claim")
		return
	}

	common.CreatedResponse(c, claim)
}

// GetClaim returns a claim by ID
// GET /api/v1/claims/:claim_id
func (h *Handler) GetClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claim_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := h.service.GetClaim(c.Request.Context(), claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get claim")
		return
	}

	common.SuccessResponse(c, claim)
}

// ListHostClaims returns all claims filed by a host
// GET /api/v1/hosts/:host_id/claims
func (h *Handler) ListHostClaims(c *gin.Context) {
	hostID, err := uuid.Parse(c.Param("host_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid host id")
		return
	}

	claims, err := h.service.ListHostClaims(c.Request.Context(), hostID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list claims")
		return
	}

	common.SuccessResponse(c, claims)
}

// ApproveClaim approves a pending claim
// POST /api/v1/claims/:claim_id/approve
func (h *Handler) ApproveClaim(c *gin.Context) {
	h.review(c, h.service.ApproveClaim)
}

// DenyClaim denies a pending claim
// POST /api/v1/claims/:claim_id/deny
func (h *Handler) DenyClaim(c *gin.Context) {
	h.review(c, h.service.DenyClaim)
}

func (h *Handler) review(c *gin.Context, fn func(ctx context.Context, claimID uuid.UUID) (*Claim, error)) {
	claimID, err := uuid.Parse(c.Param("claim_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := fn(c.Request.Context(), claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update claim")
		return
	}

	common.SuccessResponse(c, claim)
}

// ChargeGuest collects the guest's remaining responsibility on a claim
// POST /api/v1/claims/:claim_id/charge-guest
func (h *Handler) ChargeGuest(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claim_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim id")
		return
	}

	result, err := h.service.ChargeGuestForClaim(c.Request.Context(), claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to charge guest")
		return
	}

	common.SuccessResponse(c, result)
}

// ListPendingTransfers returns queued host payouts
// GET /api/v1/transfers/pending
func (h *Handler) ListPendingTransfers(c *gin.Context) {
	transfers, err := h.service.ListPendingTransfers(c.Request.Context())
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list transfers")
		return
	}

	common.SuccessResponse(c, transfers)
}

// RetryTransfer re-attempts a queued host payout
// POST /api/v1/transfers/:transfer_id/retry
func (h *Handler) RetryTransfer(c *gin.Context) {
	transferID, err := uuid.Parse(c.Param("transfer_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid transfer id")
		return
	}

	transfer, err := h.service.RetryTransfer(c.Request.Context(), transferID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to retry transfer")
		return
	}

	common.SuccessResponse(c, transfer)
}
