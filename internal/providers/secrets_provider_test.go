package providers

import (
	"coinbot/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warnCountingLogger struct {
	cacheTestLogger
	warnings int
}

func (l *warnCountingLogger) Warnf(_ TypeEnum, _ string, _ ...interface{}) { l.warnings++ }

func TestSecretsProvider_FromEnv(t *testing.T) {
	t.Setenv("LINK_SECRET", "s3cret")
	t.Setenv("HELIX_TOKEN", "tok")
	logger := &warnCountingLogger{}

	secrets, err := NewSecretsProvider(&structures.Config{}, logger)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secrets.LinkSecret)
	assert.Equal(t, "tok", secrets.HelixToken)
	assert.Zero(t, logger.warnings)
}

func TestSecretsProvider_RequiredWithSpotify(t *testing.T) {
	t.Setenv("LINK_SECRET", "")
	conf := &structures.Config{Spotify: structures.SpotifyConfig{ClientID: "cid"}}

	_, err := NewSecretsProvider(conf, &warnCountingLogger{})
	assert.ErrorIs(t, err, ErrLinkSecretRequired)
}

func TestSecretsProvider_RandomWithoutSpotify(t *testing.T) {
	t.Setenv("LINK_SECRET", "")
	logger := &warnCountingLogger{}

	first, err := NewSecretsProvider(&structures.Config{}, logger)
	require.NoError(t, err)
	second, err := NewSecretsProvider(&structures.Config{}, logger)
	require.NoError(t, err)

	assert.Len(t, first.LinkSecret, 64)
	assert.NotEqual(t, "change-me", first.LinkSecret)
	assert.NotEqual(t, first.LinkSecret, second.LinkSecret)
	assert.Equal(t, 2, logger.warnings)
}
