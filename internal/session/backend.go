package session

import "errors"

// Storage keys for the persisted session. Each scope holds the same four
// entries; only one scope is populated at a time.
const (
	KeyToken       = "manageday_token"
	KeyTokenType   = "manageday_token_type"
	KeyIdentity    = "manageday_user"
	KeyTokenExpiry = "manageday_token_expiry"
)

// allKeys is the full set of entries removed on Clear.
var allKeys = []string{KeyToken, KeyTokenType, KeyIdentity, KeyTokenExpiry}

// ErrKeyNotFound is returned by Backend.Get when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Backend is a key/value store for a single persistence scope.
// Implementations must be safe for concurrent use.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Notifier reports mutations made to a backend from outside this process
// (another terminal, another instance of the CLI). An empty newValue means
// the key was removed. Backends without an external change signal simply
// don't implement it; subscribers then never fire, which is the correct
// single-context behavior.
type Notifier interface {
	Notify(fn func(key, newValue string)) (stop func())
}
