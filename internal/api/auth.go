package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/manageday-dev/manageday/internal/authz"
	"github.com/manageday-dev/manageday/internal/models"
	"github.com/manageday-dev/manageday/internal/session"
)

// LoginResult is the outcome of a successful password exchange.
type LoginResult struct {
	Credential models.Credential
	Identity   *models.Identity
	Role       authz.Role
	// Degraded is set when the token was issued but the identity fetch
	// failed; the session runs with a synthesized identity and the
	// least-privileged role until the identity can be refetched.
	Degraded bool
}

// Login performs the OAuth2 password-grant exchange and resolves the
// caller's identity. The exchange uses form encoding per the wire contract
// and goes over the direct client, not the pipeline: a 401 here means wrong
// credentials, and there is no session yet to attach or expire.
//
// The credential is persisted into the scope selected by remember before
// the identity fetch, so an identity failure never strands a valid token.
// If the identity fetch fails, login still succeeds with a synthesized
// identity and the employee role; the password exchange is the
// security-relevant step and it already passed.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) (*LoginResult, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.directClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Failed exchange: no storage write happened, none will.
		return nil, classifyLoginResponse(resp.StatusCode, data)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(data, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, goerrors.New("token endpoint returned no access token", goerrors.CategoryAuth).
			WithTextCode(ErrCodeRequestFailed)
	}

	cred := models.Credential{Token: tokenResp.AccessToken, TokenType: tokenResp.TokenType}
	if cred.TokenType == "" {
		cred.TokenType = models.DefaultTokenType
	}

	scope := session.ScopeFor(remember)
	if err := c.store.Persist(cred, nil, scope); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}

	identity, err := c.fetchIdentity(ctx, cred)
	if err != nil {
		c.log.Warn().Err(err).Msg("identity fetch after login failed, continuing with degraded session")
		return &LoginResult{
			Credential: cred,
			Identity:   &models.Identity{Email: username},
			Role:       authz.RoleEmployee,
			Degraded:   true,
		}, nil
	}

	if err := c.store.UpdateIdentity(identity); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache identity")
	}

	return &LoginResult{
		Credential: cred,
		Identity:   identity,
		Role:       authz.RoleOf(identity),
	}, nil
}

// fetchIdentity resolves /users/me with an explicitly built Authorization
// header. It deliberately bypasses the pipeline: during login there is no
// settled session state for the pipeline to consult, and a failure here
// must not trigger the pipeline's 401 side effects.
func (c *Client) fetchIdentity(ctx context.Context, cred models.Credential) (*models.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", cred.Header())
	req.Header.Set("Accept", "application/json")

	resp, err := c.directClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity fetch failed (status %d): %s", resp.StatusCode, string(body))
	}

	var identity models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity: %w", err)
	}
	return &identity, nil
}
