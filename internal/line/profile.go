package line

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Profile is a LINE user profile as returned by the Login API.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl,omitempty"`
}

// ProfileProvider resolves an access token to a user profile. The HTTP
// implementation talks to the LINE Login API; tests substitute their own.
type ProfileProvider interface {
	GetProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// HTTPProfileProvider fetches profiles from the LINE platform.
type HTTPProfileProvider struct {
	client *http.Client

	// profileURL is overridable for tests.
	profileURL string
}

// NewProfileProvider creates a provider against the LINE Login API.
func NewProfileProvider() *HTTPProfileProvider {
	return &HTTPProfileProvider{
		client:     &http.Client{Timeout: 10 * time.Second},
		profileURL: profileEndpoint,
	}
}

// GetProfile resolves an access token obtained by the client-side login
// flow into the account's profile.
func (p *HTTPProfileProvider) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line: profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("line: profile request returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("line: failed to decode profile: %w", err)
	}
	return &profile, nil
}

// ValidUserID reports whether s looks like a LINE platform user ID.
// Real IDs are U-prefixed and 33 characters; anything short or
// unprefixed is a client bug.
func ValidUserID(s string) bool {
	return len(s) >= 30 && s[0] == 'U'
}
