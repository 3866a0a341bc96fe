// Package keyring stores tracked credentials in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/tracked/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetConnectionString retrieves the database connection string.
func GetConnectionString() (string, error) {
	return get(constants.KeyringUserDatabase)
}

// SetConnectionString stores the database connection string.
func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.KeyringUserDatabase, connStr)
}

// DeleteConnectionString removes the database connection string.
func DeleteConnectionString() error {
	return del(constants.KeyringUserDatabase)
}

// GetAPIToken retrieves the bearer token used to talk to a tracked server.
func GetAPIToken() (string, error) {
	return get(constants.KeyringUserAPIToken)
}

// SetAPIToken stores the bearer token used to talk to a tracked server.
func SetAPIToken(token string) error {
	if token == "" {
		return errors.New("API token cannot be empty")
	}
	return set(constants.KeyringUserAPIToken, token)
}

// DeleteAPIToken removes the stored bearer token.
func DeleteAPIToken() error {
	return del(constants.KeyringUserAPIToken)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func get(user string) (string, error) {
	secret, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func set(user, secret string) error {
	if err := keyring.Set(constants.AppName, user, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func del(user string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}
