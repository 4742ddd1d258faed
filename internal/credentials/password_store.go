// Package credentials keeps PostgreSQL passwords of saved queries in the OS
// keyring so they never land in a config file.
package credentials

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazyjson"

var ErrPasswordNotFound = errors.New("password not found in keyring")

// PasswordSaveError wraps a keyring write failure
type PasswordSaveError struct {
	Err     error
	Message string
}

func (e *PasswordSaveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PasswordSaveError) Unwrap() error { return e.Err }

// PasswordReadError wraps a keyring read failure other than a missing entry
type PasswordReadError struct {
	Err error
}

func (e *PasswordReadError) Error() string {
	return fmt.Sprintf("failed to read password from keyring: %v", e.Err)
}

func (e *PasswordReadError) Unwrap() error { return e.Err }

// PasswordStore reads and writes passwords keyed by server, database and user
type PasswordStore struct {
	service string
}

func NewPasswordStore() *PasswordStore {
	return &PasswordStore{service: serviceName}
}

// Save stores a password. Empty passwords are not stored.
func (ps *PasswordStore) Save(host string, port int, database, user, password string) error {
	if password == "" {
		return nil
	}

	if err := keyring.Set(ps.service, makeKey(host, port, database, user), password); err != nil {
		return &PasswordSaveError{
			Err:     err,
			Message: "failed to save password to keyring",
		}
	}
	return nil
}

// Get retrieves a password, ErrPasswordNotFound when none was saved
func (ps *PasswordStore) Get(host string, port int, database, user string) (string, error) {
	password, err := keyring.Get(ps.service, makeKey(host, port, database, user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", &PasswordReadError{Err: err}
	}
	return password, nil
}

// Delete removes a password; a missing entry is not an error
func (ps *PasswordStore) Delete(host string, port int, database, user string) error {
	err := keyring.Delete(ps.service, makeKey(host, port, database, user))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}

// makeKey formats "host:port:database:user"
func makeKey(host string, port int, database, user string) string {
	return fmt.Sprintf("%s:%d:%s:%s", host, port, database, user)
}
