package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "manageday-cli"

// KeyringBackend persists session entries in the OS keychain/credential
// manager. It is the durable scope: values survive reboots and are only
// removed by an explicit logout (or by another process clearing them).
type KeyringBackend struct {
	service string
}

// NewKeyringBackend returns a backend scoped to the given keyring service
// name. An empty service falls back to the CLI default.
func NewKeyringBackend(service string) *KeyringBackend {
	if service == "" {
		service = keyringService
	}
	return &KeyringBackend{service: service}
}

func (k *KeyringBackend) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}
	return value, nil
}

func (k *KeyringBackend) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringBackend) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
