package global

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	conf   AppConfig
	confMu sync.RWMutex
)

// Conf returns the loaded configuration.
func Conf() AppConfig {
	confMu.RLock()
	defer confMu.RUnlock()
	return conf
}

// Load reads the YAML config at path (optional, "" skips the file),
// applies environment overrides and stores the result globally.
func Load(path string) (AppConfig, error) {
	c := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrap(err, "read config file")
		}
		var m map[string]any
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return c, errors.Wrap(err, "parse config yaml")
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			Result:           &c,
		})
		if err != nil {
			return c, errors.Wrap(err, "build config decoder")
		}
		if err := dec.Decode(m); err != nil {
			return c, errors.Wrap(err, "decode config")
		}
	}

	applyEnv(&c)

	confMu.Lock()
	conf = c
	confMu.Unlock()
	return c, nil
}

// applyEnv lets deploy-time settings win over the file. Only operational
// endpoints and secrets, not tuning knobs.
func applyEnv(c *AppConfig) {
	if v := os.Getenv("GATEWAY_ID"); v != "" {
		c.NodeID = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("NATS_SERVERS"); v != "" {
		c.Nats.Servers = splitCSV(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.IdleTimeout = d
		}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetForTest replaces the global config. Test helper only.
func SetForTest(c AppConfig) {
	confMu.Lock()
	conf = c
	confMu.Unlock()
}
