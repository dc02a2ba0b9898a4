package config

import (
	"net"
	"strconv"
	"time"

	"github.com/maxviazov/scorekeeper-service/internal/logger"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	EventsNone  = "none"
	EventsNATS  = "nats"
	EventsRedis = "redis"
)

type Config struct {
	App      AppConfig           `mapstructure:"app"`
	Logger   logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Game     GameConfig          `mapstructure:"game"`
	Events   EventsConfig        `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name" validate:"required"`
	Version         string        `mapstructure:"version"`
	Env             string        `mapstructure:"env" validate:"oneof=dev test staging prod"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory postgres"`
}

// PostgresConfig holds connection and pool settings. Durations are seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"db"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	// Migrate applies embedded migrations at startup.
	Migrate bool `mapstructure:"migrate"`
}

// GameConfig carries the rule knobs the transitions leave to the caller.
type GameConfig struct {
	MaxOnCourt   int           `mapstructure:"max_on_court" validate:"gte=1,lte=15"`
	MaxOvertimes int           `mapstructure:"max_overtimes" validate:"gte=0"`
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
}

type EventsConfig struct {
	Driver       string      `mapstructure:"driver" validate:"oneof=none nats redis"`
	ForwardTicks bool        `mapstructure:"forward_ticks"`
	NATS         NATSConfig  `mapstructure:"nats"`
	Redis        RedisConfig `mapstructure:"redis"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	Stream        string `mapstructure:"stream"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	MaxLen       int64  `mapstructure:"max_len"`
}

// Addr is the listen address of the HTTP server.
func (a AppConfig) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
