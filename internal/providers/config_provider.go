package providers

import (
	"coinbot/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const AppName = "CoinBot"

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.prefix", "-")
	v.SetDefault("bot.url", "wss://irc-ws.chat.twitch.tv:443")
	v.SetDefault("economy.claimAmount", 1000)
	v.SetDefault("economy.claimCooldown", 24*time.Hour)
	v.SetDefault("economy.wordReward", 1000)
	v.SetDefault("bonus.amount", 20000)
	v.SetDefault("bonus.minInterval", 30*time.Minute)
	v.SetDefault("bonus.maxInterval", 120*time.Minute)
	v.SetDefault("bonus.window", 10*time.Minute)
	v.SetDefault("reminders.checkInterval", 5*time.Second)
	v.SetDefault("stats.topSize", 5)
	v.SetDefault("persistence.driver", "file")
	v.SetDefault("persistence.filePath", "data/state.dat")
	v.SetDefault("persistence.saveInterval", time.Minute)
	v.SetDefault("persistence.redisKey", "coinbot:state")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 3000)
	v.SetDefault("webServer.publicURL", "http://127.0.0.1:3000")
	v.SetDefault("spotify.authURL", "https://accounts.spotify.com/authorize")
	v.SetDefault("spotify.tokenURL", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.apiURL", "https://api.spotify.com/v1")
	v.SetDefault("followers.pollInterval", time.Minute)
	v.SetDefault("followers.apiURL", "https://api.twitch.tv/helix")
	v.SetDefault("cache.size", 8)
	v.SetDefault("cache.ttl", 15)
	v.SetDefault("cache.ttls", map[string]int{"song": 10, "helix": 3600, "api": 15})
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	_ = v.BindEnv("logger.level", "COINBOT_LOG_LEVEL")
	_ = v.BindEnv("bot.username", "COINBOT_USERNAME")
	_ = v.BindEnv("bot.channels", "COINBOT_CHANNELS")
	_ = v.BindEnv("bot.prefix", "COINBOT_PREFIX")
	_ = v.BindEnv("persistence.driver", "COINBOT_STORE_DRIVER")
	_ = v.BindEnv("persistence.saveInterval", "COINBOT_SAVE_INTERVAL")
	_ = v.BindEnv("persistence.redisAddr", "COINBOT_REDIS_ADDR")
	_ = v.BindEnv("webServer.port", "COINBOT_PORT")
	_ = v.BindEnv("webServer.publicURL", "COINBOT_PUBLIC_URL")
	_ = v.BindEnv("spotify.clientID", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify.redirectURL", "SPOTIFY_REDIRECT_URI")
	_ = v.BindEnv("followers.clientID", "CLIENT_ID")
	_ = v.BindEnv("followers.broadcasterName", "BROADCASTER_NAME")
	_ = v.BindEnv("cache.enabled", "COINBOT_CACHE_ENABLED")
	_ = v.BindEnv("metrics.enabled", "COINBOT_METRICS_ENABLED")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
