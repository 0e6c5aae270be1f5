package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/barterly/pos-sync/internal/service"
	"github.com/barterly/pos-sync/internal/utils"
)

// IntegrationHandler handles POS integration read endpoints.
type IntegrationHandler struct {
	integrationService *service.IntegrationService
}

// NewIntegrationHandler constructs an IntegrationHandler.
func NewIntegrationHandler(integrationService *service.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationService: integrationService}
}

// GetIntegrations lists the caller's POS integrations.
func (h *IntegrationHandler) GetIntegrations(c *gin.Context) {
	merchantID := c.GetString("merchant_id")

	integrations, err := h.integrationService.List(merchantID)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to list integrations")
		return
	}

	utils.Success(c, 200, "Integrations retrieved", gin.H{
		"integrations": integrations,
		"providers":    h.integrationService.Providers(),
	})
}
