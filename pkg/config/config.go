package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Log         LogConfig       `mapstructure:"log"`
	Web         WebConfig       `mapstructure:"web"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnforceHTTPS bool          `mapstructure:"enforce_https"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Name            string        `mapstructure:"name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogQueries      bool          `mapstructure:"log_queries"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Backend  string        `mapstructure:"backend"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelemetryConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	MetricsPort    string `mapstructure:"metrics_port"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	LokiURL string `mapstructure:"loki_url"`
}

// WebConfig configures the browser view host.
type WebConfig struct {
	Port           string        `mapstructure:"port"`
	APIURL         string        `mapstructure:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

const envPrefix = "USERDIR"

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", "3001")
	v.SetDefault("server.cors_origin", "http://localhost:3000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.enforce_https", false)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "user_management.db")
	v.SetDefault("database.name", "user_management")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("telemetry.service_name", "userdir")
	v.SetDefault("telemetry.service_version", "1.0.0")
	v.SetDefault("telemetry.metrics_port", "9091")
	v.SetDefault("telemetry.otlp_endpoint", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.loki_url", "")

	v.SetDefault("web.port", "3000")
	v.SetDefault("web.api_url", "http://localhost:3001")
	v.SetDefault("web.request_timeout", 10*time.Second)
}

// Load reads defaults, then the optional YAML file at path, then USERDIR_* environment
// variables. An empty path falls back to CONFIG_FILE and then ./config.yaml; a missing
// file is not an error.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		cfg.Environment = "production"
	}

	return &cfg, nil
}

func GetDefaultConfig() *AppConfig {
	v := viper.New()
	setDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return &cfg
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
