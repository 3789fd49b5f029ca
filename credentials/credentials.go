// Package credentials manages the OpenAI API key used by the openai
// classifier. The key is kept in the system keyring:
// - macOS: Keychain
// - Windows: Credential Manager
// - Linux: Secret Service (libsecret)
//
// OPENAI_API_KEY, when set, takes precedence over the stored key.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// EnvAPIKey is the environment variable checked before the keyring.
const EnvAPIKey = "OPENAI_API_KEY"

// ErrInvalidKey is returned when a key to be stored is malformed.
var ErrInvalidKey = errors.New("invalid API key")

// Status describes where the active key comes from.
type Status struct {
	// Configured is true when a key is available.
	Configured bool `json:"configured" yaml:"configured"`
	// Source describes the provider that supplied the key.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Masked is the key with most characters hidden.
	Masked string `json:"masked,omitempty" yaml:"masked,omitempty"`
	// Shadowed is true when the environment overrides a stored key.
	Shadowed bool `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
}

// Store resolves and manages the API key.
type Store struct {
	env     KeyProvider
	keyring *KeyringKeyProvider
}

// NewStore creates a Store backed by OPENAI_API_KEY and the system keyring.
func NewStore() *Store {
	return &Store{
		env:     NewEnvKeyProvider(EnvAPIKey),
		keyring: NewKeyringKeyProvider(),
	}
}

// APIKey returns the active key and the description of its source. It
// fails with ErrNotConfigured when neither source has a key.
func (s *Store) APIKey() (string, string, error) {
	if key, err := s.env.GetKey(); err == nil {
		return key, s.env.Description(), nil
	}

	key, err := s.keyring.GetKey()
	if err == nil {
		return key, s.keyring.Description(), nil
	}
	if cverrors.IsNotFound(err) {
		return "", "", fmt.Errorf("%w: no OpenAI API key (run 'conversa auth set-key' or export %s)", cverrors.ErrNotConfigured, EnvAPIKey)
	}
	return "", "", err
}

// Save stores key in the keyring.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if err := ValidateAPIKey(key); err != nil {
		return err
	}
	return s.keyring.SetKey(key)
}

// Delete removes the stored key. Deleting when nothing is stored is not
// an error.
func (s *Store) Delete() error {
	err := s.keyring.DeleteKey()
	if err != nil && !cverrors.IsNotFound(err) {
		return err
	}
	return nil
}

// Status reports which key is active without revealing it.
func (s *Store) Status() (Status, error) {
	_, storedErr := s.keyring.GetKey()
	if storedErr != nil && !cverrors.IsNotFound(storedErr) {
		return Status{}, storedErr
	}
	stored := storedErr == nil

	key, source, err := s.APIKey()
	if err != nil {
		if cverrors.IsNotConfigured(err) {
			return Status{}, nil
		}
		return Status{}, err
	}

	_, envErr := s.env.GetKey()
	return Status{
		Configured: true,
		Source:     source,
		Masked:     MaskAPIKey(key),
		Shadowed:   envErr == nil && stored,
	}, nil
}

// ValidateAPIKey performs basic format checks on a key.
func ValidateAPIKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidKey)
	case strings.ContainsAny(key, " \t\r\n"):
		return fmt.Errorf("%w: key contains whitespace", ErrInvalidKey)
	case len(key) < 20:
		return fmt.Errorf("%w: key is too short", ErrInvalidKey)
	}
	return nil
}

// MaskAPIKey returns a masked API key showing only the first and last
// four characters.
func MaskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", 8) + "..." + apiKey[len(apiKey)-4:]
}
