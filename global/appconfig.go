package global

import "time"

// AppConfig is the full gateway configuration. Loaded once at startup
// from a YAML file plus environment overrides; read-only afterwards.
type AppConfig struct {
	NodeID   string `mapstructure:"node_id"`   // gateway node id, goes into presence and events
	HTTPAddr string `mapstructure:"http_addr"` // listen address, e.g. ":8080"
	LogLevel string `mapstructure:"log_level"`

	// Hub knobs.
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`      // inactivity window before forced disconnect
	MaxBodyBytes    int           `mapstructure:"max_body_bytes"`    // max message body length
	SendQueueSize   int           `mapstructure:"send_queue_size"`   // outbound queue capacity per connection
	PersistTimeout  time.Duration `mapstructure:"persist_timeout"`   // budget for one store call
	ReplayOnConnect bool          `mapstructure:"replay_on_connect"` // implicit replay for all conversations on connect
	PresenceTTL     time.Duration `mapstructure:"presence_ttl"`      // redis presence key TTL

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Nats     NatsConfig     `mapstructure:"nats"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NatsConfig struct {
	Servers []string `mapstructure:"servers"`
	Name    string   `mapstructure:"name"`
}

func defaults() AppConfig {
	return AppConfig{
		NodeID:          "msg_gw-1",
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		IdleTimeout:     75 * time.Second,
		MaxBodyBytes:    4096,
		SendQueueSize:   256,
		PersistTimeout:  5 * time.Second,
		ReplayOnConnect: false,
		PresenceTTL:     90 * time.Second,
		TokenTTL:        2 * time.Hour,
	}
}
