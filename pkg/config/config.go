package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/countdown/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite  = "sqlite"
	BackendMongoDB = "mongodb"
)

type Config struct {
	URA      URAConfig      `yaml:"ura"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Messages MessagesConfig `yaml:"messages"`
	Stations StationsConfig `yaml:"stations"`
	Redis    RedisConfig    `yaml:"redis"`
}

type URAConfig struct {
	BaseURL  string        `yaml:"base_url" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

type RefreshConfig struct {
	Arrivals time.Duration `yaml:"arrivals" validate:"gt=0"`
	Journey  time.Duration `yaml:"journey" validate:"gt=0"`
	Display  time.Duration `yaml:"display" validate:"gt=0"`
}

type MessagesConfig struct {
	PriorityCeiling int `yaml:"priority_ceiling" validate:"gte=1,lte=9"`
}

type StationsConfig struct {
	URL        string        `yaml:"url" validate:"required,url"`
	Path       string        `yaml:"path" validate:"required"`
	Backend    string        `yaml:"backend" validate:"oneof=sqlite mongodb"`
	SQLitePath string        `yaml:"sqlite_path" validate:"required_if=Backend sqlite"`
	MongoDB    MongoDBConfig `yaml:"mongodb"`
}

type MongoDBConfig struct {
	Connection string `yaml:"connection"`
	Database   string `yaml:"database"`
}

// RedisConfig is optional, an empty address disables snapshot publishing and response caching
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Database int    `yaml:"database" validate:"gte=0"`
}

func Default() Config {
	return Config{
		URA: URAConfig{
			BaseURL:  "http://countdown.api.tfl.gov.uk/interfaces/ura/instant_V1",
			Timeout:  20 * time.Second,
			CacheTTL: 5 * time.Minute,
		},
		Refresh: RefreshConfig{
			Arrivals: 30 * time.Second,
			Journey:  30 * time.Second,
			Display:  16 * time.Millisecond,
		},
		Messages: MessagesConfig{
			PriorityCeiling: 5,
		},
		Stations: StationsConfig{
			URL:        "https://github.com/KrisztianOlah/london-sail/raw/devel/stations.csv",
			Path:       "data/stations.csv",
			Backend:    BackendSQLite,
			SQLitePath: "data/countdown.db",
			MongoDB: MongoDBConfig{
				Connection: "mongodb://localhost:27017",
				Database:   "countdown",
			},
		},
	}
}

// Load builds the configuration from defaults, then the TRAVIGO_* environment, then the
// YAML file at path when one is given, and validates the result
func Load(env map[string]string, path string) (*Config, error) {
	cfg := Default()

	if err := cfg.applyEnvironment(env); err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Stations.Backend == BackendMongoDB && cfg.Stations.MongoDB.Connection == "" {
		return nil, fmt.Errorf("invalid config: mongodb stations backend needs a connection string")
	}

	return &cfg, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	var err error

	c.URA.BaseURL = util.EnvironmentString(env, "TRAVIGO_URA_BASE_URL", c.URA.BaseURL)
	if c.URA.Timeout, err = util.EnvironmentDuration(env, "TRAVIGO_URA_TIMEOUT", c.URA.Timeout); err != nil {
		return envError("TRAVIGO_URA_TIMEOUT", err)
	}
	if c.URA.CacheTTL, err = util.EnvironmentDuration(env, "TRAVIGO_CACHE_TTL", c.URA.CacheTTL); err != nil {
		return envError("TRAVIGO_CACHE_TTL", err)
	}

	if c.Refresh.Arrivals, err = util.EnvironmentDuration(env, "TRAVIGO_ARRIVALS_REFRESH", c.Refresh.Arrivals); err != nil {
		return envError("TRAVIGO_ARRIVALS_REFRESH", err)
	}
	if c.Refresh.Journey, err = util.EnvironmentDuration(env, "TRAVIGO_JOURNEY_REFRESH", c.Refresh.Journey); err != nil {
		return envError("TRAVIGO_JOURNEY_REFRESH", err)
	}
	if c.Refresh.Display, err = util.EnvironmentDuration(env, "TRAVIGO_DISPLAY_REFRESH", c.Refresh.Display); err != nil {
		return envError("TRAVIGO_DISPLAY_REFRESH", err)
	}

	if c.Messages.PriorityCeiling, err = util.EnvironmentInt(env, "TRAVIGO_MESSAGE_PRIORITY_CEILING", c.Messages.PriorityCeiling); err != nil {
		return envError("TRAVIGO_MESSAGE_PRIORITY_CEILING", err)
	}

	c.Stations.URL = util.EnvironmentString(env, "TRAVIGO_STATIONS_URL", c.Stations.URL)
	c.Stations.Path = util.EnvironmentString(env, "TRAVIGO_STATIONS_PATH", c.Stations.Path)
	c.Stations.Backend = util.EnvironmentString(env, "TRAVIGO_STATIONS_BACKEND", c.Stations.Backend)
	c.Stations.SQLitePath = util.EnvironmentString(env, "TRAVIGO_SQLITE_PATH", c.Stations.SQLitePath)
	c.Stations.MongoDB.Connection = util.EnvironmentString(env, "TRAVIGO_MONGODB_CONNECTION", c.Stations.MongoDB.Connection)
	c.Stations.MongoDB.Database = util.EnvironmentString(env, "TRAVIGO_MONGODB_DATABASE", c.Stations.MongoDB.Database)

	c.Redis.Address = util.EnvironmentString(env, "TRAVIGO_REDIS_ADDRESS", c.Redis.Address)
	c.Redis.Password = util.EnvironmentString(env, "TRAVIGO_REDIS_PASSWORD", c.Redis.Password)
	if c.Redis.Database, err = util.EnvironmentInt(env, "TRAVIGO_REDIS_DATABASE", c.Redis.Database); err != nil {
		return envError("TRAVIGO_REDIS_DATABASE", err)
	}

	return nil
}

func envError(key string, err error) error {
	return fmt.Errorf("environment variable %s: %w", key, err)
}
