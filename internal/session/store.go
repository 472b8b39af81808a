package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/manageday-dev/manageday/internal/models"
)

// Scope selects the persistence lifetime of a credential.
type Scope int

const (
	// ScopeDurable outlives reboots; selected by "remember me" logins.
	ScopeDurable Scope = iota
	// ScopeEphemeral is cleared when the login session ends.
	ScopeEphemeral
)

func (s Scope) String() string {
	if s == ScopeDurable {
		return "durable"
	}
	return "ephemeral"
}

// ScopeFor maps the remember-me flag to a storage scope.
func ScopeFor(remember bool) Scope {
	if remember {
		return ScopeDurable
	}
	return ScopeEphemeral
}

// Store holds the credential and identity across two mutually exclusive
// scopes. Persist structurally guarantees that at most one scope is
// populated: it clears both scopes before writing the new session into the
// chosen one.
type Store struct {
	mu       sync.Mutex
	backends map[Scope]Backend
}

// NewStore builds a Store over one backend per scope.
func NewStore(durable, ephemeral Backend) *Store {
	return &Store{
		backends: map[Scope]Backend{
			ScopeDurable:   durable,
			ScopeEphemeral: ephemeral,
		},
	}
}

// Persist writes the credential, its type, the serialized identity, and the
// token expiry (when derivable from the token's exp claim) into the chosen
// scope, after clearing both scopes. A nil identity persists credential-only.
func (s *Store) Persist(cred models.Credential, identity *models.Identity, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.clearLocked(); err != nil {
		return err
	}

	backend := s.backends[scope]
	if err := backend.Set(KeyToken, cred.Token); err != nil {
		return err
	}
	tokenType := cred.TokenType
	if tokenType == "" {
		tokenType = models.DefaultTokenType
	}
	if err := backend.Set(KeyTokenType, tokenType); err != nil {
		return err
	}

	if identity != nil {
		data, err := json.Marshal(identity)
		if err != nil {
			return fmt.Errorf("failed to serialize identity: %w", err)
		}
		if err := backend.Set(KeyIdentity, string(data)); err != nil {
			return err
		}
	}

	if expiry, ok := tokenExpiry(cred.Token); ok {
		if err := backend.Set(KeyTokenExpiry, expiry.Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return nil
}

// Read returns the stored credential and identity, checking the durable
// scope first. An unparsable stored identity is reported as a nil identity
// next to the credential; the session stays usable and the identity is
// refetched lazily. The error is reserved for backend failures other than
// absence.
func (s *Store) Read() (*models.Credential, *models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *Store) readLocked() (*models.Credential, *models.Identity, error) {
	for _, scope := range []Scope{ScopeDurable, ScopeEphemeral} {
		backend := s.backends[scope]

		token, err := backend.Get(KeyToken)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		tokenType, err := backend.Get(KeyTokenType)
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			return nil, nil, err
		}
		cred := &models.Credential{Token: token, TokenType: tokenType}
		if cred.TokenType == "" {
			cred.TokenType = models.DefaultTokenType
		}

		raw, err := backend.Get(KeyIdentity)
		if err != nil && !errors.Is(err, ErrKeyNotFound) {
			return nil, nil, err
		}
		// Parse failures yield a nil identity, not a broken session.
		identity, _ := models.ParseIdentity(raw)
		return cred, identity, nil
	}

	return nil, nil, nil
}

// Clear removes every session entry from both scopes unconditionally.
// It is idempotent and does not touch any in-memory session state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	var firstErr error
	for _, backend := range s.backends {
		for _, key := range allKeys {
			if err := backend.Delete(key); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// HasCredential reports whether either scope currently holds a token.
func (s *Store) HasCredential() bool {
	cred, _, _ := s.Read()
	return cred != nil
}

// UpdateIdentity replaces the stored identity copy in whichever scope holds
// the credential. With no active session this is a no-op: there is no scope
// to bind the identity to.
func (s *Store) UpdateIdentity(identity *models.Identity) error {
	if identity == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to serialize identity: %w", err)
	}

	for _, scope := range []Scope{ScopeDurable, ScopeEphemeral} {
		backend := s.backends[scope]
		if _, err := backend.Get(KeyToken); err != nil {
			continue
		}
		return backend.Set(KeyIdentity, string(data))
	}
	return nil
}

// Notify subscribes fn to external mutations on every backend that can
// report them. Backends without a change signal are skipped, so on a
// keyring-only setup this collapses to a no-op.
func (s *Store) Notify(fn func(key, newValue string)) (stop func()) {
	var stops []func()
	for _, backend := range s.backends {
		if notifier, ok := backend.(Notifier); ok {
			stops = append(stops, notifier.Notify(fn))
		}
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature; the client has no verification key and only
// records the expiry as metadata. Non-JWT tokens have no expiry entry.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
