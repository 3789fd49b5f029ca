package credentials

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

const (
	// keyringService is the service name used in the system keyring.
	keyringService = "conversa"
	// keyringUser is the account name the OpenAI key is stored under.
	keyringUser = "openai-api-key"
)

// ErrKeyringUnavailable indicates the system keyring is not available.
var ErrKeyringUnavailable = errors.New("system keyring unavailable")

// KeyProvider is a source of the API key.
type KeyProvider interface {
	// GetKey returns the stored key, or an error wrapping ErrNotFound.
	GetKey() (string, error)

	// Description returns a human-readable description of the storage mechanism.
	Description() string
}

// KeyringKeyProvider stores the key in the system keyring
// (macOS Keychain, Windows Credential Manager, Linux Secret Service).
type KeyringKeyProvider struct {
	mu sync.Mutex
}

// NewKeyringKeyProvider creates a new KeyringKeyProvider.
func NewKeyringKeyProvider() *KeyringKeyProvider {
	return &KeyringKeyProvider{}
}

// GetKey retrieves the key from the system keyring.
func (p *KeyringKeyProvider) GetKey() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return "", keyringError(err)
	}
	return key, nil
}

// SetKey stores key in the system keyring, replacing any existing key.
func (p *KeyringKeyProvider) SetKey(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		return fmt.Errorf("%w: storing key: %v", ErrKeyringUnavailable, err)
	}
	return nil
}

// DeleteKey removes the key from the system keyring.
func (p *KeyringKeyProvider) DeleteKey() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		return keyringError(err)
	}
	return nil
}

// Description returns a description of this key provider.
func (p *KeyringKeyProvider) Description() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain"
	case "windows":
		return "Windows Credential Manager"
	default:
		return "System Keyring (Secret Service)"
	}
}

func keyringError(err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: no key in %s", cverrors.ErrNotFound, keyringService)
	}
	return fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
}

// EnvKeyProvider reads the key from an environment variable.
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a new EnvKeyProvider that reads the key from the given env var.
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

// GetKey returns the key from the environment variable.
func (p *EnvKeyProvider) GetKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(p.envVar))
	if key == "" {
		return "", fmt.Errorf("%w: environment variable %s not set", cverrors.ErrNotFound, p.envVar)
	}
	return key, nil
}

// Description returns a description of this key provider.
func (p *EnvKeyProvider) Description() string {
	return fmt.Sprintf("Environment variable (%s)", p.envVar)
}
