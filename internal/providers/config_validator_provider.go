package providers

import (
	"coinbot/internal/structures"
	"errors"
	"fmt"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if c.conf.Bonus.MinInterval > c.conf.Bonus.MaxInterval {
		return errors.New("bonus.minInterval must not exceed bonus.maxInterval")
	}

	switch c.conf.Persistence.Driver {
	case "redis":
		if c.conf.Persistence.RedisAddr == "" {
			return errors.New("persistence.redisAddr is required for the redis driver")
		}
	case "sqlite":
		if c.conf.Persistence.SQLitePath == "" {
			return errors.New("persistence.sqlitePath is required for the sqlite driver")
		}
	}

	if tz := c.conf.Stats.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("stats.timezone: %w", err)
		}
	}

	if c.conf.Followers.Enabled && c.conf.Followers.PollInterval <= 0 {
		return errors.New("followers.pollInterval must be positive when followers are enabled")
	}

	return nil
}
