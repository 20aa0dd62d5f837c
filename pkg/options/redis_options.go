package options

import (
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

var _ IOptions = (*RedisOptions)(nil)

// RedisOptions configures the optional Redis-backed command store. A
// deployment that leaves Enabled false runs entirely on the in-memory
// store instead.
type RedisOptions struct {
	URL     string `json:"url" mapstructure:"url"`
	Prefix  string `json:"prefix" mapstructure:"prefix"`
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
}

// NewRedisOptions creates a RedisOptions with default parameters.
func NewRedisOptions() *RedisOptions {
	return &RedisOptions{
		URL:    "redis://127.0.0.1:6379/0",
		Prefix: "fleetdiag:",
	}
}

func (o *RedisOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if _, err := redis.ParseURL(o.URL); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (o *RedisOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "redis.enabled", o.Enabled, "Persist commands/responses in Redis instead of in-memory only.")
	fs.StringVar(&o.URL, "redis.url", o.URL, "Redis connection URL.")
	fs.StringVar(&o.Prefix, "redis.prefix", o.Prefix, "Key prefix for everything this store writes to Redis.")
}

// Client constructs a *redis.Client from o. Callers should check
// Enabled first; Client doesn't consult it.
func (o *RedisOptions) Client() (*redis.Client, error) {
	parsed, err := redis.ParseURL(o.URL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(parsed), nil
}
