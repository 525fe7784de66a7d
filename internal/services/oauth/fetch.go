package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseSize caps provider response bodies
const maxResponseSize = 1 << 20

func (b *Broker) fetchUserInfo(ctx context.Context, p *provider, accessToken string) (UserInfo, error) {
	body, err := b.get(ctx, p.spec.UserInfoURL, accessToken)
	if err != nil {
		return nil, classify("user info", err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var info UserInfo
	if err := dec.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %w", ErrProviderExchangeFailed, err)
	}
	return info, nil
}

type providerEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// fetchPrimaryEmail returns the verified primary address, or "" when the
// user has none
func (b *Broker) fetchPrimaryEmail(ctx context.Context, p *provider, accessToken string) (string, error) {
	body, err := b.get(ctx, p.spec.EmailsURL, accessToken)
	if err != nil {
		return "", classify("emails", err)
	}

	var emails []providerEmail
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("%w: decode emails: %w", ErrProviderExchangeFailed, err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return strings.TrimSpace(e.Email), nil
		}
	}
	return "", nil
}

// statusError is a non-2xx provider response
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func (b *Broker) get(ctx context.Context, url, accessToken string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Provider bodies stay in server logs only
		return nil, &statusError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}
