package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path, overlays APP_* environment variables
// (APP_POSTGRES_USER for postgres.user and so on) and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override keys the
// file leaves out.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "scorekeeper-service")
	v.SetDefault("app.version", "0.0.1")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.host", "")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.level", "")
	v.SetDefault("logger.format", "")
	v.SetDefault("logger.output_target", "")
	v.SetDefault("logger.env", "")

	v.SetDefault("storage.driver", StorageMemory)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 30)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("game.max_on_court", 5)
	v.SetDefault("game.max_overtimes", 3)
	v.SetDefault("game.tick_interval", time.Second)

	v.SetDefault("events.driver", EventsNone)
	v.SetDefault("events.forward_ticks", false)
	v.SetDefault("events.nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("events.nats.stream", "SCOREKEEPER_EVENTS")
	v.SetDefault("events.nats.subject_prefix", "scorekeeper.games")
	v.SetDefault("events.redis.addr", "127.0.0.1:6379")
	v.SetDefault("events.redis.password", "")
	v.SetDefault("events.redis.db", 0)
	v.SetDefault("events.redis.stream_prefix", "scorekeeper.games")
	v.SetDefault("events.redis.max_len", 10000)
}

// bindSecrets also accepts the conventional POSTGRES_* and DB_* names used
// by container images.
func bindSecrets(v *viper.Viper) error {
	binds := map[string][]string{
		"postgres.user":     {"APP_POSTGRES_USER", "POSTGRES_USER", "DB_USER"},
		"postgres.password": {"APP_POSTGRES_PASSWORD", "POSTGRES_PASSWORD", "DB_PASSWORD"},
		"postgres.db":       {"APP_POSTGRES_DB", "POSTGRES_DB", "DB_NAME"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	if c.Storage.Driver == StoragePostgres {
		var missing []string
		if c.Postgres.User == "" {
			missing = append(missing, "postgres.user")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "postgres.password")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "postgres.db")
		}
		if len(missing) > 0 {
			return fmt.Errorf("postgres storage requires %s", strings.Join(missing, ", "))
		}
	}
	switch c.Events.Driver {
	case EventsNATS:
		if c.Events.NATS.URL == "" || c.Events.NATS.Stream == "" || c.Events.NATS.SubjectPrefix == "" {
			return errors.New("nats events require url, stream and subject_prefix")
		}
	case EventsRedis:
		if c.Events.Redis.Addr == "" || c.Events.Redis.StreamPrefix == "" {
			return errors.New("redis events require addr and stream_prefix")
		}
	}
	return nil
}
