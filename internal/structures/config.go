package structures

import "time"

type Server struct {
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"required|uint|min:1"`
	PublicURL string `yaml:"publicURL" validate:"required|fullUrl"`
}

type BotConfig struct {
	Username string   `yaml:"username" validate:"required"`
	Channels []string `yaml:"channels" validate:"required|minLen:1"`
	Prefix   string   `yaml:"prefix" validate:"required"`
	URL      string   `yaml:"url" validate:"required"`
}

type EconomyConfig struct {
	ClaimAmount   int64         `yaml:"claimAmount" validate:"required|min:1"`
	ClaimCooldown time.Duration `yaml:"claimCooldown" validate:"required"`
	WordReward    int64         `yaml:"wordReward" validate:"required|min:1"`
}

type BonusConfig struct {
	Amount      int64         `yaml:"amount" validate:"required|min:1"`
	MinInterval time.Duration `yaml:"minInterval" validate:"required"`
	MaxInterval time.Duration `yaml:"maxInterval" validate:"required"`
	Window      time.Duration `yaml:"window" validate:"required"`
}

type RemindersConfig struct {
	CheckInterval time.Duration `yaml:"checkInterval" validate:"required"`
}

type StatsConfig struct {
	Timezone string `yaml:"timezone"`
	TopSize  int    `yaml:"topSize" validate:"required|min:1"`
}

type Persistence struct {
	Driver       string        `yaml:"driver" validate:"required|in:file,redis,sqlite"`
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required"`
	RedisAddr    string        `yaml:"redisAddr"`
	RedisDB      int           `yaml:"redisDB"`
	RedisKey     string        `yaml:"redisKey"`
	SQLitePath   string        `yaml:"sqlitePath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SpotifyConfig struct {
	ClientID    string `yaml:"clientID"`
	RedirectURL string `yaml:"redirectURL"`
	AuthURL     string `yaml:"authURL" validate:"required"`
	TokenURL    string `yaml:"tokenURL" validate:"required"`
	APIURL      string `yaml:"apiURL" validate:"required"`
}

type FollowersConfig struct {
	Enabled         bool          `yaml:"enabled"`
	ClientID        string        `yaml:"clientID"`
	BroadcasterName string        `yaml:"broadcasterName"`
	PollInterval    time.Duration `yaml:"pollInterval"`
	APIURL          string        `yaml:"apiURL"`
}

type CacheConfig struct {
	Enabled bool           `yaml:"enabled"`
	Size    int            `yaml:"size"`
	TTL     int            `yaml:"ttl"`
	TTLs    map[string]int `yaml:"ttls"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Bot         BotConfig       `yaml:"bot"`
	Economy     EconomyConfig   `yaml:"economy"`
	Bonus       BonusConfig     `yaml:"bonus"`
	Reminders   RemindersConfig `yaml:"reminders"`
	Stats       StatsConfig     `yaml:"stats"`
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Spotify     SpotifyConfig   `yaml:"spotify"`
	Followers   FollowersConfig `yaml:"followers"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
