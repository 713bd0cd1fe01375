package providers

import (
	"coinbot/internal/structures"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var ErrLinkSecretRequired = errors.New("LINK_SECRET is required when spotify.clientID is set")

// NewSecretsProvider reads secrets from the environment. LINK_SECRET signs
// connect links and OAuth state, so it must be set once Spotify is
// configured. Without Spotify a random per-process secret is used.
func NewSecretsProvider(conf *structures.Config, logger Logger) (*structures.Secrets, error) {
	var secrets structures.Secrets
	if err := env.Parse(&secrets); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if secrets.LinkSecret != "" {
		return &secrets, nil
	}
	if conf.Spotify.ClientID != "" {
		return nil, ErrLinkSecretRequired
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate link secret: %w", err)
	}
	secrets.LinkSecret = hex.EncodeToString(buf)
	logger.Warnf(TypeApp, "LINK_SECRET is not set, using a random secret for this process")
	return &secrets, nil
}
