package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
)

// SecretsLoader overlays credentials kept in Vault onto an env-loaded configuration.
type SecretsLoader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
	retryDelay  time.Duration
}

func NewSecretsLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository) *SecretsLoader {
	return &SecretsLoader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
		retryDelay:  time.Second,
	}
}

// Load authenticates, reads apps/data/<mount> and applies the known keys.
// It returns the number of keys applied.
func (l *SecretsLoader) Load(ctx context.Context) (int, error) {
	if !l.cfg.SecretsStorage.Enabled {
		return 0, fmt.Errorf("secret storage is not enabled")
	}

	if err := l.authenticate(ctx); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	data, err := l.readData(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	applied := 0

	for key, value := range data {
		strValue, ok := value.(string)
		if !ok || strValue == "" {
			continue
		}

		if l.apply(key, strValue) {
			applied++
		}
	}

	return applied, nil
}

func (l *SecretsLoader) authenticate(ctx context.Context) error {
	storage := l.cfg.SecretsStorage

	switch strings.ToLower(storage.AuthMethod) {
	case "token":
		if storage.Token == "" {
			return fmt.Errorf("token is required for token auth method")
		}

		l.secretsRepo.SetToken(storage.Token)

		return nil

	case "approle":
		if storage.RoleID == "" || storage.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.secretsRepo.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   storage.RoleID,
			"secret_id": storage.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", storage.AuthMethod)
	}
}

func (l *SecretsLoader) readData(ctx context.Context) (map[string]any, error) {
	path := fmt.Sprintf("apps/data/%s", l.cfg.SecretsStorage.MountPath)

	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = l.retryDelay

	secret, err := backoff.Retry(
		ctx,
		func() (*api.Secret, error) {
			return l.secretsRepo.GetSecrets(ctx, path)
		},
		backoff.WithMaxTries(l.cfg.SecretsStorage.MaxRetries+1),
		backoff.WithBackOff(expBackoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read from path %s: %w", path, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid secret format at path %s, missing 'data' key", path)
	}

	return data, nil
}

func (l *SecretsLoader) apply(key, value string) bool {
	switch key {
	case "MONGODB_URI":
		l.cfg.Database.URI = value
	case "MONGODB_USERNAME":
		l.cfg.Database.Username = value
	case "MONGODB_PASSWORD":
		l.cfg.Database.Password = value
	case "CACHE_PASSWORD":
		l.cfg.Cache.Password = value
	default:
		return false
	}

	return true
}
