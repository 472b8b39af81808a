package models

import "encoding/json"

// Credential is the bearer token pair attached to outbound requests.
// It is opaque to the client beyond being placed in an Authorization header.
type Credential struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
}

// DefaultTokenType is used when the token endpoint omits token_type.
const DefaultTokenType = "Bearer"

// Header returns the value for the Authorization header, e.g. "Bearer <token>".
func (c Credential) Header() string {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return tokenType + " " + c.Token
}

// Identity is the authenticated user's profile as returned by /users/me.
// IsSuperuser is the privilege flag role derivation is based on.
type Identity struct {
	ID          int64  `json:"id,omitempty"`
	Email       string `json:"email"`
	Name        string `json:"full_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// ParseIdentity decodes a serialized identity. Empty input yields a nil
// identity and no error.
func ParseIdentity(data string) (*Identity, error) {
	if data == "" {
		return nil, nil
	}
	var identity Identity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// User is a managed account as exposed by the admin user endpoints.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"full_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsSuperuser bool   `json:"is_superuser"`
	IsActive    bool   `json:"is_active"`
}

// Product represents a product record.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// Order represents an order record.
type Order struct {
	ID           int64   `json:"id"`
	CustomerName string  `json:"customer_name"`
	Status       string  `json:"status"`
	Total        float64 `json:"total"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// HealthStatus is the result of a health probe, including the measured
// round-trip time in milliseconds.
type HealthStatus struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}
