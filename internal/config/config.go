package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type API struct {
	BaseURL        string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"API_REQUEST_TIMEOUT" env-default:"0s"`
}

type Storage struct {
	Backend   string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	Path      string `yaml:"path" env:"STORAGE_PATH" env-default:".storefront/state.json"`
	Namespace string `yaml:"namespace" env:"STORAGE_NAMESPACE" env-default:"storefront"`
}

type Database struct {
	Host     string `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port     string `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User     string `yaml:"PG_USER" env:"PG_USER"`
	Password string `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name     string `yaml:"PG_DBNAME" env:"PG_DBNAME" env-default:"storefront"`
	SSLMode  string `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type Downloads struct {
	Dir string `yaml:"dir" env:"DOWNLOAD_DIR" env-default:"."`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"warn"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

const (
	FetchErrorsSwallow = "swallow"
	FetchErrorsSurface = "surface"
)

type Config struct {
	Env          string       `yaml:"env" env:"ENV" env-default:"local"`
	API          API          `yaml:"api"`
	Storage      Storage      `yaml:"storage"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Downloads    Downloads    `yaml:"downloads"`
	FetchErrors  string       `yaml:"fetch_errors" env:"FETCH_ERRORS" env-default:"swallow"`
	Log          Log          `yaml:"log"`
	Otel         Otel         `yaml:"otel"`
}

// Load reads the file at configPath, falling back to CONFIG_PATH and then to
// the environment alone.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	if configPath == "" {
		var cfg Config

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("can not read config from environment: %w", err)
		}

		return &cfg, cfg.validate()
	}

	return LoadConfigFromPath(configPath)
}

func LoadConfigFromPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.FetchErrors {
	case FetchErrorsSwallow, FetchErrorsSurface:
	default:
		return fmt.Errorf("fetch_errors must be %q or %q, got %q", FetchErrorsSwallow, FetchErrorsSurface, c.FetchErrors)
	}

	return nil
}

// SurfaceFetchErrors reports whether catalog and invoice fetch failures reach the view.
func (c *Config) SurfaceFetchErrors() bool {
	return c.FetchErrors == FetchErrorsSurface
}

func (d *Database) GetDSN() string {
	dsn := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}

	return dsn.String()
}

func (r *RedisConnect) GetDSN() string {
	dsn := url.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(r.Host, r.Port),
		Path:   "/" + strconv.Itoa(r.DB),
	}

	if r.Username != "" || r.Password != "" {
		dsn.User = url.UserPassword(r.Username, r.Password)
	}

	return dsn.String()
}
