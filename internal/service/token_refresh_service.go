package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/config"
	"github.com/barterly/pos-sync/internal/models"
	"github.com/barterly/pos-sync/pkg/posapi"
)

// Provider token endpoints. Sandbox and production hosts differ for Square
// and Clover; Lightspeed has a single auth host.
const (
	squareTokenURL        = "https://connect.squareup.com/oauth2/token"
	squareSandboxTokenURL = "https://connect.squareupsandbox.com/oauth2/token"
	cloverTokenURL        = "https://api.clover.com/oauth/v2/refresh"
	cloverSandboxTokenURL = "https://apisandbox.dev.clover.com/oauth/v2/refresh"
	lightspeedTokenURL    = "https://cloud.lightspeedapp.com/auth/oauth/token"
)

// RefreshedTokens carries the plaintext result of one refresh exchange.
// The encrypted forms are already persisted by the time this is returned.
type RefreshedTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// TokenRefreshService exchanges refresh tokens for new access tokens and
// persists the rotated, re-encrypted credentials. Shopify and Toast tokens
// have no refresh flow and always fail with ErrRefreshUnsupported.
type TokenRefreshService struct {
	integrations IntegrationStore
	cipher       TokenCipher
	square       config.SquareConfig
	clover       config.CloverConfig
	lightspeed   config.LightspeedConfig
	httpClient   *http.Client

	// Endpoint overrides, for tests.
	SquareTokenURL     string
	CloverTokenURL     string
	LightspeedTokenURL string
}

// NewTokenRefreshService creates a TokenRefreshService.
func NewTokenRefreshService(integrations IntegrationStore, cipher TokenCipher, cfg *config.Config) *TokenRefreshService {
	return &TokenRefreshService{
		integrations: integrations,
		cipher:       cipher,
		square:       cfg.Square,
		clover:       cfg.Clover,
		lightspeed:   cfg.Lightspeed,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Refresh performs one token exchange for the integration and persists the
// rotated tokens. refreshToken is the already-decrypted refresh token. A
// failed persist fails the whole refresh: the caller must never believe a
// rotation succeeded that was not stored.
func (s *TokenRefreshService) Refresh(ctx context.Context, integ *models.POSIntegration, refreshToken string) (*RefreshedTokens, error) {
	switch integ.Provider {
	case models.ProviderSquare, models.ProviderClover, models.ProviderLightspeed:
	case models.ProviderShopify, models.ProviderToast:
		return nil, fmt.Errorf("%w: %s tokens have no refresh flow", ErrRefreshUnsupported, integ.Provider)
	default:
		return nil, fmt.Errorf("%w: %s", ErrRefreshUnsupported, integ.Provider)
	}

	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	var (
		rotated *RefreshedTokens
		err     error
	)
	switch integ.Provider {
	case models.ProviderSquare:
		rotated, err = s.refreshSquare(ctx, integ, refreshToken)
	case models.ProviderClover:
		rotated, err = s.refreshClover(ctx, integ, refreshToken)
	case models.ProviderLightspeed:
		rotated, err = s.refreshLightspeed(ctx, refreshToken)
	}
	if err != nil {
		return nil, err
	}
	if rotated.AccessToken == "" {
		return nil, fmt.Errorf("%s token endpoint returned no access token", integ.Provider)
	}

	encAccess, err := s.cipher.Encrypt(rotated.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encrypt rotated access token: %v", ErrCredential, err)
	}
	var encRefresh *string
	if rotated.RefreshToken != "" {
		enc, err := s.cipher.Encrypt(rotated.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encrypt rotated refresh token: %v", ErrCredential, err)
		}
		encRefresh = &enc
	}

	if err := s.integrations.UpdateTokens(integ.ID, encAccess, encRefresh, rotated.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to persist rotated tokens: %w", err)
	}

	log.Info().
		Str("integration_id", integ.ID).
		Str("provider", string(integ.Provider)).
		Msg("Rotated provider tokens")

	return rotated, nil
}

type squareTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

func (s *TokenRefreshService) refreshSquare(ctx context.Context, integ *models.POSIntegration, refreshToken string) (*RefreshedTokens, error) {
	endpoint := s.SquareTokenURL
	if endpoint == "" {
		endpoint = squareTokenURL
		if integ.IsSandbox() {
			endpoint = squareSandboxTokenURL
		}
	}

	payload := map[string]string{
		"client_id":     s.square.AppID,
		"client_secret": s.square.AppSecret,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}

	var parsed squareTokenResponse
	if err := s.postJSON(ctx, "square", endpoint, payload, &parsed); err != nil {
		return nil, err
	}

	rotated := &RefreshedTokens{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
	}
	if parsed.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, parsed.ExpiresAt); err == nil {
			rotated.ExpiresAt = &t
		}
	}
	return rotated, nil
}

type cloverTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *TokenRefreshService) refreshClover(ctx context.Context, integ *models.POSIntegration, refreshToken string) (*RefreshedTokens, error) {
	endpoint := s.CloverTokenURL
	if endpoint == "" {
		endpoint = cloverTokenURL
		if integ.IsSandbox() {
			endpoint = cloverSandboxTokenURL
		}
	}

	payload := map[string]string{
		"client_id":     s.clover.AppID,
		"refresh_token": refreshToken,
	}

	var parsed cloverTokenResponse
	if err := s.postJSON(ctx, "clover", endpoint, payload, &parsed); err != nil {
		return nil, err
	}

	return &RefreshedTokens{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
	}, nil
}

type lightspeedTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// refreshLightspeed exchanges the refresh token. Lightspeed expects a
// form-urlencoded body, unlike Square and Clover which take JSON.
func (s *TokenRefreshService) refreshLightspeed(ctx context.Context, refreshToken string) (*RefreshedTokens, error) {
	endpoint := s.LightspeedTokenURL
	if endpoint == "" {
		endpoint = lightspeedTokenURL
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.lightspeed.ClientID)
	form.Set("client_secret", s.lightspeed.ClientSecret)
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("lightspeed: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var parsed lightspeedTokenResponse
	if err := s.doTokenRequest(req, "lightspeed", endpoint, &parsed); err != nil {
		return nil, err
	}

	rotated := &RefreshedTokens{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
	}
	if parsed.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
		rotated.ExpiresAt = &t
	}
	return rotated, nil
}

func (s *TokenRefreshService) postJSON(ctx context.Context, provider, endpoint string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal token request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to create token request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.doTokenRequest(req, provider, endpoint, result)
}

func (s *TokenRefreshService) doTokenRequest(req *http.Request, provider, endpoint string, result any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: token request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read token response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &posapi.APIError{
			Provider:   provider,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%s: failed to decode token response: %w", provider, err)
	}
	return nil
}
