package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/barterly/pos-sync/internal/service"
	"github.com/barterly/pos-sync/internal/utils"
)

// SyncHandler handles product sync HTTP endpoints.
type SyncHandler struct {
	syncService     *service.SyncService
	progressService *service.ProgressService
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(syncService *service.SyncService, progressService *service.ProgressService) *SyncHandler {
	return &SyncHandler{syncService: syncService, progressService: progressService}
}

type syncRequest struct {
	POSIntegrationID string `json:"pos_integration_id" binding:"required"`
}

// SyncProducts runs one catalog sync for the caller's integration. Partial
// failures still return 200 with the per-item errors in the body.
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	merchantID := c.GetString("merchant_id")

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "pos_integration_id is required")
		return
	}

	result, err := h.syncService.SyncProducts(c.Request.Context(), merchantID, req.POSIntegrationID)
	if err != nil {
		code, apiCode := syncErrorStatus(err)
		utils.Error(c, code, apiCode, err.Error())
		return
	}

	utils.Success(c, 200, "Product sync completed", result)
}

// GetProgress returns the live or terminal state of one sync run.
func (h *SyncHandler) GetProgress(c *gin.Context) {
	merchantID := c.GetString("merchant_id")
	progressID := c.Param("progressId")

	progress, err := h.progressService.Get(c.Request.Context(), merchantID, progressID)
	if err != nil {
		if errors.Is(err, service.ErrProgressNotFound) {
			utils.Error(c, 404, "PROGRESS_NOT_FOUND", "Sync progress not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get sync progress")
		return
	}

	utils.Success(c, 200, "Sync progress retrieved", progress)
}

func syncErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrIntegrationNotFound):
		return 404, "INTEGRATION_NOT_FOUND"
	case errors.Is(err, service.ErrIntegrationInactive):
		return 400, "INTEGRATION_INACTIVE"
	case errors.Is(err, service.ErrProviderUnsupported):
		return 400, "PROVIDER_UNSUPPORTED"
	case errors.Is(err, service.ErrMissingConfig):
		return 400, "INTEGRATION_CONFIG_INCOMPLETE"
	case errors.Is(err, service.ErrAuthExpired):
		return 401, "PROVIDER_AUTH_EXPIRED"
	case errors.Is(err, service.ErrCredential):
		return 500, "CREDENTIAL_ERROR"
	default:
		return 500, "SYNC_FAILED"
	}
}
