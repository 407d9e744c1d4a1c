package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kendall-kelly/campus-requests-api/config"
)

// Auth0UserInfo is the part of Auth0's /userinfo response used to create a profile
type Auth0UserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserInfoProvider fetches the profile behind an access token
type UserInfoProvider interface {
	GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error)
}

// UserInfoError is returned when Auth0 answers /userinfo with a non-200 status
type UserInfoError struct {
	StatusCode int
	Body       string
}

func (e *UserInfoError) Error() string {
	return fmt.Sprintf("userinfo endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// Rejected reports whether Auth0 refused the access token itself
func (e *UserInfoError) Rejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Auth0Service calls the Auth0 authentication API
type Auth0Service struct {
	userInfoURL string
	httpClient  *http.Client
}

// NewAuth0Service creates the client. A domain that already carries a scheme
// is used as-is, which lets tests point it at an httptest server.
func NewAuth0Service(cfg *config.Config) *Auth0Service {
	base := strings.TrimSuffix(cfg.Auth0Domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Auth0Service{
		userInfoURL: base + "/userinfo",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUserInfo fetches the caller's profile from /userinfo
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &UserInfoError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var info Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	info.Email = strings.TrimSpace(info.Email)
	info.Name = strings.TrimSpace(info.Name)
	return &info, nil
}
