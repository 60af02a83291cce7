package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "jobcollect"
)

// ErrNoAPIKey means neither the keychain nor the environment holds a key.
var ErrNoAPIKey = errors.New("provider API key not found (set it in keychain or via env)")

// ProviderAPIKey looks in the keychain first, then in envVar.
func ProviderAPIKey(keyringAccount, envVar string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}
	if strings.TrimSpace(envVar) != "" {
		if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
			return key, nil
		}
	}
	return "", ErrNoAPIKey
}

func SetProviderAPIKey(keyringAccount, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, strings.TrimSpace(key))
}

func DeleteProviderAPIKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
