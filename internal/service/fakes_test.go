package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/barterly/pos-sync/internal/models"
)

// fakeCategoryStore serves a fixed category table keyed by slug.
type fakeCategoryStore struct {
	categories map[string]*models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	s := &fakeCategoryStore{categories: make(map[string]*models.Category)}
	seed := []struct {
		id         int
		name, slug string
		restricted bool
	}{
		{1, "Alcohol", "alcohol", true},
		{2, "Tobacco", "tobacco", true},
		{3, "Lottery", "lottery", true},
		{4, "Gift Cards", "gift-cards", true},
		{5, "Pharmacy", "pharmacy", true},
		{6, "Firearms", "firearms", true},
		{7, "Food & Beverage", "food-beverage", false},
		{8, "Electronics", "electronics", false},
		{9, "Other", "other", false},
	}
	for _, c := range seed {
		s.categories[c.slug] = &models.Category{
			ID:           c.id,
			Name:         c.name,
			Slug:         c.slug,
			IsRestricted: c.restricted,
		}
	}
	return s
}

func (s *fakeCategoryStore) GetBySlug(slug string) (*models.Category, error) {
	if c, ok := s.categories[slug]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *fakeCategoryStore) GetByNameOrSlug(label string) (*models.Category, error) {
	needle := strings.ToLower(strings.TrimSpace(label))
	for _, c := range s.categories {
		if strings.ToLower(c.Name) == needle || c.Slug == needle {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

// fakeProductStore records upserts keyed by the external identity so tests
// can assert idempotence.
type fakeProductStore struct {
	mu          sync.Mutex
	products    map[string]*models.Product
	upserts     int
	deactivated int
	failFor     map[string]error // product name -> forced upsert error
	countErr    error
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{
		products: make(map[string]*models.Product),
		failFor:  make(map[string]error),
	}
}

func productKey(integrationID, externalProductID string, externalVariantID *string) string {
	variant := ""
	if externalVariantID != nil {
		variant = *externalVariantID
	}
	return fmt.Sprintf("%s|%s|%s", integrationID, externalProductID, variant)
}

func (s *fakeProductStore) Upsert(p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[p.Name]; ok {
		return err
	}
	s.upserts++
	s.products[productKey(p.IntegrationID, p.ExternalProductID, p.ExternalVariantID)] = p
	return nil
}

func (s *fakeProductStore) CountByIntegration(integrationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	n := 0
	for _, p := range s.products {
		if p.IntegrationID == integrationID {
			n++
		}
	}
	return n, nil
}

func (s *fakeProductStore) DeactivateMissing(integrationID string, syncedBefore sql.NullTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.IntegrationID != integrationID {
			continue
		}
		if p.LastSyncedAt == nil || p.LastSyncedAt.Before(syncedBefore.Time) {
			p.IsActive = false
			s.deactivated++
		}
	}
	return nil
}

func (s *fakeProductStore) byName(name string) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// fakeProgressStore keeps progress records in memory.
type fakeProgressStore struct {
	mu      sync.Mutex
	records map[string]*models.SyncProgress
	updates int
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]*models.SyncProgress)}
}

func (s *fakeProgressStore) Create(p *models.SyncProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.records[p.ID] = &cp
	return nil
}

func (s *fakeProgressStore) Update(p *models.SyncProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	cp := *p
	s.records[p.ID] = &cp
	return nil
}

func (s *fakeProgressStore) GetByID(id string) (*models.SyncProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.records[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

// fakeIntegrationStore serves a fixed integration set.
type fakeIntegrationStore struct {
	mu           sync.Mutex
	integrations map[string]*models.POSIntegration
	tokenUpdates int
}

func newFakeIntegrationStore(integs ...*models.POSIntegration) *fakeIntegrationStore {
	s := &fakeIntegrationStore{integrations: make(map[string]*models.POSIntegration)}
	for _, i := range integs {
		s.integrations[i.ID] = i
	}
	return s
}

func (s *fakeIntegrationStore) GetByIDForMerchant(id, merchantID string) (*models.POSIntegration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	integ, ok := s.integrations[id]
	if !ok || integ.MerchantID != merchantID {
		return nil, sql.ErrNoRows
	}
	cp := *integ
	return &cp, nil
}

func (s *fakeIntegrationStore) UpdateMerchantIdentifier(id, merchantIdentifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if integ, ok := s.integrations[id]; ok {
		integ.MerchantIdentifier = &merchantIdentifier
	}
	return nil
}

func (s *fakeIntegrationStore) UpdateLastSyncAt(id string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if integ, ok := s.integrations[id]; ok {
		integ.LastSyncAt = &t
	}
	return nil
}

func (s *fakeIntegrationStore) UpdateTokens(id string, encAccessToken string, encRefreshToken *string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenUpdates++
	if integ, ok := s.integrations[id]; ok {
		integ.AccessToken = encAccessToken
		if encRefreshToken != nil {
			integ.RefreshToken = encRefreshToken
		}
		integ.TokenExpiresAt = expiresAt
	}
	return nil
}

func (s *fakeIntegrationStore) ListByMerchant(merchantID string) ([]models.POSIntegration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.POSIntegration
	for _, i := range s.integrations {
		if i.MerchantID == merchantID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (s *fakeIntegrationStore) ListActive() ([]models.POSIntegration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.POSIntegration
	for _, i := range s.integrations {
		if i.Status == models.IntegrationActive {
			out = append(out, *i)
		}
	}
	return out, nil
}

// plainCipher passes tokens through with a reversible marker so tests can
// tell encrypted from plaintext values.
type plainCipher struct{}

func (plainCipher) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (plainCipher) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", fmt.Errorf("not an encrypted value: %q", ciphertext)
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

// stubAdapter lets sync service tests script adapter behavior per call.
type stubAdapter struct {
	provider models.Provider
	calls    int
	tokens   []string
	results  []stubResult
}

type stubResult struct {
	outcome *SyncOutcome
	err     error
}

func (a *stubAdapter) Provider() models.Provider {
	return a.provider
}

func (a *stubAdapter) Sync(ctx context.Context, creds Credentials, integ *models.POSIntegration, progressID string) (*SyncOutcome, error) {
	a.tokens = append(a.tokens, creds.AccessToken)
	idx := a.calls
	a.calls++
	if idx >= len(a.results) {
		idx = len(a.results) - 1
	}
	res := a.results[idx]
	return res.outcome, res.err
}

// stubRefresher counts refreshes and hands out a scripted token.
type stubRefresher struct {
	calls int
	token string
	err   error
}

func (r *stubRefresher) Refresh(ctx context.Context, integ *models.POSIntegration, refreshToken string) (*RefreshedTokens, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &RefreshedTokens{AccessToken: r.token}, nil
}

func testIntegration(provider models.Provider) *models.POSIntegration {
	refresh := "enc:refresh-token"
	store := "test-store"
	return &models.POSIntegration{
		ID:              "11111111-1111-1111-1111-111111111111",
		MerchantID:      "22222222-2222-2222-2222-222222222222",
		Provider:        provider,
		AccessToken:     "enc:access-token",
		RefreshToken:    &refresh,
		StoreIdentifier: &store,
		Environment:     models.EnvProduction,
		Status:          models.IntegrationActive,
	}
}
