package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/fireteam-cli/internal/domain"
)

const (
	DefaultTokenURL       = "https://www.bungie.net/platform/app/oauth/token/"
	maxTokenResponseBytes = 1 << 20
)

var ErrRefreshTokenInvalid = errors.New("refresh token rejected")

// TokenClient exchanges authorization codes and refresh tokens at the Bungie
// token endpoint. It implements ports.TokenRefresher.
type TokenClient struct {
	TokenURL       string
	ClientID       string
	ClientSecret   string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Now            func() time.Time
}

type tokenResponse struct {
	AccessToken      string          `json:"access_token"`
	TokenType        string          `json:"token_type"`
	ExpiresIn        json.RawMessage `json:"expires_in"`
	ExpirationDate   string          `json:"expirationDate"`
	RefreshToken     string          `json:"refresh_token"`
	RefreshExpiresIn json.RawMessage `json:"refresh_expires_in"`
	MembershipID     string          `json:"membership_id"`
}

type oauthErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c TokenClient) ExchangeCode(ctx context.Context, code string) (domain.Credential, error) {
	if code == "" {
		return domain.Credential{}, errors.New("authorization code is required")
	}

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)

	cred, err := c.requestToken(ctx, values)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("exchange code for tokens: %w", err)
	}
	return cred, nil
}

func (c TokenClient) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	if refreshToken == "" {
		return domain.Credential{}, errors.New("refresh token is required")
	}

	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("refresh_token", refreshToken)

	cred, err := c.requestToken(ctx, values)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("refresh tokens: %w", err)
	}
	return cred, nil
}

func (c TokenClient) requestToken(ctx context.Context, values url.Values) (domain.Credential, error) {
	if c.ClientID == "" {
		return domain.Credential{}, errors.New("client id is required")
	}
	values.Set("client_id", c.ClientID)
	if c.ClientSecret != "" {
		values.Set("client_secret", c.ClientSecret)
	}

	endpoint := c.TokenURL
	if endpoint == "" {
		endpoint = DefaultTokenURL
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("request token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Credential{}, decodeOAuthError(resp)
	}

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&payload); err != nil {
		return domain.Credential{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return domain.Credential{}, errors.New("token response missing access_token")
	}

	return domain.Credential{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    c.expiresAt(payload),
		SubjectID:    payload.MembershipID,
	}, nil
}

// expiresAt prefers a relative expires_in and falls back to an absolute
// expirationDate. Neither present means the expiry is unknown.
func (c TokenClient) expiresAt(payload tokenResponse) time.Time {
	if seconds, ok := parseSeconds(payload.ExpiresIn); ok && seconds > 0 {
		return c.now().Add(time.Duration(seconds) * time.Second)
	}
	if payload.ExpirationDate != "" {
		if parsed, err := time.Parse(time.RFC3339, payload.ExpirationDate); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// parseSeconds accepts both numeric and quoted-numeric JSON.
func parseSeconds(raw json.RawMessage) (int64, bool) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return 0, false
	}
	seconds, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return seconds, true
}

func (c TokenClient) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c TokenClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c TokenClient) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func decodeOAuthError(resp *http.Response) error {
	var oauthErr oauthErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&oauthErr); err != nil || oauthErr.Error == "" {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	message := oauthErr.Error
	if oauthErr.ErrorDescription != "" {
		message = oauthErr.Error + ": " + oauthErr.ErrorDescription
	}
	if oauthErr.Error == "invalid_grant" {
		return fmt.Errorf("%s: %w", message, ErrRefreshTokenInvalid)
	}
	return errors.New(message)
}
