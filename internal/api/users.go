package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/manageday-dev/manageday/internal/models"
)

// CurrentUser fetches the authenticated identity and refreshes the copy
// cached next to the credential, repopulating sessions that were restored
// with a token but no parsable identity.
func (c *Client) CurrentUser(ctx context.Context) (*models.Identity, error) {
	var identity models.Identity
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &identity); err != nil {
		return nil, err
	}
	if err := c.store.UpdateIdentity(&identity); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache identity")
	}
	return &identity, nil
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name     string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateProfile updates the authenticated user's profile and refreshes the
// stored identity copy with the server's response.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.Identity, error) {
	var identity models.Identity
	if err := c.do(ctx, http.MethodPut, "/users/me", nil, update, &identity); err != nil {
		return nil, err
	}
	if err := c.store.UpdateIdentity(&identity); err != nil {
		c.log.Warn().Err(err).Msg("failed to cache identity")
	}
	return &identity, nil
}

// RegisterUser creates a new account (admin only).
type RegisterUser struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"full_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, user RegisterUser) (*models.User, error) {
	var created models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Users lists accounts with pagination (admin only).
func (c *Client) Users(ctx context.Context, skip, limit int) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", pageQuery(skip, limit), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User fetches one account by ID (admin only).
func (c *Client) User(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an account by ID (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int64, update map[string]any) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account by ID (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

func pageQuery(skip, limit int) url.Values {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	return query
}
