package service

import (
	"github.com/barterly/pos-sync/internal/models"
)

// IntegrationLister lists integrations for read endpoints and the background
// worker; kept separate from IntegrationStore because sync itself never lists.
type IntegrationLister interface {
	ListByMerchant(merchantID string) ([]models.POSIntegration, error)
	ListActive() ([]models.POSIntegration, error)
}

// IntegrationService serves read access to a merchant's POS integrations.
type IntegrationService struct {
	integrations IntegrationLister
	registry     *AdapterRegistry
}

// NewIntegrationService creates an IntegrationService.
func NewIntegrationService(integrations IntegrationLister, registry *AdapterRegistry) *IntegrationService {
	return &IntegrationService{integrations: integrations, registry: registry}
}

// List returns the merchant's integrations. Token fields never serialize
// (json:"-" on the model), so the raw models are safe to return.
func (s *IntegrationService) List(merchantID string) ([]models.POSIntegration, error) {
	integs, err := s.integrations.ListByMerchant(merchantID)
	if err != nil {
		return nil, err
	}
	if integs == nil {
		integs = []models.POSIntegration{}
	}
	return integs, nil
}

// Providers returns the provider names with a registered sync adapter.
func (s *IntegrationService) Providers() []models.Provider {
	return s.registry.Providers()
}
