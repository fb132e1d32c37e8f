package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/steipete/sheetfield/internal/config"
)

// Kind names a stored credential.
type Kind string

const (
	KindAPIKey         Kind = "api_key"
	KindServiceAccount Kind = "service_account"
)

const (
	keyringPasswordEnv = "SHEETFIELD_KEYRING_PASSWORD"
	keyringBackendEnv  = "SHEETFIELD_KEYRING_BACKEND"
)

var (
	errInvalidKeyringBackend = errors.New("invalid keyring backend")
	errNoTTY                 = errors.New("no TTY for keyring password prompt; set " + keyringPasswordEnv)
)

type Store interface {
	Keys() ([]string, error)
	Set(kind Kind, secret Secret) error
	Get(kind Kind) (Secret, error)
	Delete(kind Kind) error
}

type Secret struct {
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Data      []byte    `json:"-"`
}

type KeyringStore struct {
	ring keyring.Keyring
}

type storedSecret struct {
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// OpenDefault opens the OS keyring, or the file backend where none exists.
// backend overrides SHEETFIELD_KEYRING_BACKEND when non-empty.
func OpenDefault(backend string) (Store, error) {
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(backend) == "" {
		backend = os.Getenv(keyringBackendEnv)
	}
	allowed, err := allowedBackends(backend)
	if err != nil {
		return nil, err
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:      config.AppName,
		AllowedBackends:  allowed,
		FileDir:          keyringDir,
		FilePasswordFunc: fileKeyringPasswordFunc(),
	})
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (s *KeyringStore) Keys() ([]string, error) {
	return s.ring.Keys()
}

func (s *KeyringStore) Set(kind Kind, secret Secret) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if len(secret.Data) == 0 {
		return fmt.Errorf("missing %s", kind)
	}
	if secret.CreatedAt.IsZero() {
		secret.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(storedSecret{Data: secret.Data, CreatedAt: secret.CreatedAt})
	if err != nil {
		return err
	}
	return s.ring.Set(keyring.Item{
		Key:   secretKey(kind),
		Data:  payload,
		Label: fmt.Sprintf("%s %s", config.AppName, kind),
	})
}

func (s *KeyringStore) Get(kind Kind) (Secret, error) {
	if err := validKind(kind); err != nil {
		return Secret{}, err
	}
	it, err := s.ring.Get(secretKey(kind))
	if err != nil {
		return Secret{}, err
	}
	var st storedSecret
	if err := json.Unmarshal(it.Data, &st); err != nil {
		return Secret{}, err
	}
	return Secret{Kind: kind, CreatedAt: st.CreatedAt, Data: st.Data}, nil
}

func (s *KeyringStore) Delete(kind Kind) error {
	if err := validKind(kind); err != nil {
		return err
	}
	return s.ring.Remove(secretKey(kind))
}

func ParseSecretKey(k string) (Kind, bool) {
	const prefix = "secret:"
	if !strings.HasPrefix(k, prefix) {
		return "", false
	}
	kind := Kind(strings.TrimSpace(strings.TrimPrefix(k, prefix)))
	if validKind(kind) != nil {
		return "", false
	}
	return kind, true
}

func secretKey(kind Kind) string {
	return fmt.Sprintf("secret:%s", kind)
}

func validKind(kind Kind) error {
	switch kind {
	case KindAPIKey, KindServiceAccount:
		return nil
	default:
		return fmt.Errorf("unknown secret kind %q", kind)
	}
}

func allowedBackends(v string) ([]keyring.BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "secret-service":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected auto|keychain|secret-service|wincred|file)", errInvalidKeyringBackend, v)
	}
}

func fileKeyringPasswordFunc() keyring.PromptFunc {
	return fileKeyringPasswordFuncFrom(os.Getenv(keyringPasswordEnv), term.IsTerminal(int(os.Stdin.Fd())))
}

func fileKeyringPasswordFuncFrom(password string, isTTY bool) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}
	if isTTY {
		return keyring.TerminalPrompt
	}
	return func(string) (string, error) {
		return "", errNoTTY
	}
}
