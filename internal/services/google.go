package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleProfile is the subset of the Google ID-token claims the signup
// flow needs.
type GoogleProfile struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Audience   string `json:"aud"`
}

// GoogleVerifier exchanges a provider ID token for a verified profile.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleAuthService verifies Google ID tokens against the tokeninfo
// endpoint and checks the audience claim.
type GoogleAuthService struct {
	clientID string
	client   *http.Client
}

// NewGoogleAuthService constructs a GoogleAuthService.
func NewGoogleAuthService(clientID string) *GoogleAuthService {
	return &GoogleAuthService{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyIDToken validates the token with Google and returns the profile.
// Any provider failure is wrapped in ErrExternalService.
func (s *GoogleAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned %d", ErrExternalService, resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	if s.clientID != "" && profile.Audience != s.clientID {
		return nil, fmt.Errorf("%w: token audience mismatch", ErrExternalService)
	}

	if profile.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrExternalService)
	}

	return &profile, nil
}
