package structures

// Secrets are read from the environment only and never from the config file.
type Secrets struct {
	BotOAuthToken       string `env:"BOT_OAUTH_TOKEN"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	HelixToken          string `env:"HELIX_TOKEN"`
	LinkSecret          string `env:"LINK_SECRET"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
}
