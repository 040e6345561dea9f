// Package env resolves secrets from environment variables. The key
// "telegram_bot_token" maps to ISNAD_SECRET_TELEGRAM_BOT_TOKEN.
package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/isnadmansour/IsnadTasks/internal/ports"
)

const envPrefix = "ISNAD_SECRET_"

type Store struct{}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := envName(key)
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("env secret %q not set", name)
	}

	return value, nil
}

func envName(key string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)

	return envPrefix + strings.ToUpper(mapped)
}
