// Package config loads the pagerdemo configuration from an optional YAML file
// and PAGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config represents the demo service configuration.
type Config struct {
	Server *Server
	Store  *Store
	Paging *Paging
	Logger *Logger
	Seed   *Seed
}

type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Store struct {
	// Driver is "sqlite" or "mongo".
	Driver string
	DSN    string
	Mongo  *Mongo
}

type Mongo struct {
	URI      string
	Database string
}

type Paging struct {
	MaxLimit       int
	RequestTimeout time.Duration
}

// Logger logger config struct
type Logger struct {
	Level  string
	Format string
}

type Seed struct {
	// Count is the number of clients created on startup. Zero disables seeding.
	Count int
}

// Load reads the configuration. With an empty path it looks for an optional
// pagerdemo.yaml in the working directory. Environment variables override
// file values: server.addr is PAGER_SERVER_ADDR and so on.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("pagerdemo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: getServerConfig(v),
		Store:  getStoreConfig(v),
		Paging: getPagingConfig(v),
		Logger: getLoggerConfig(v),
		Seed:   &Seed{Count: getIntOrDefault(v, "seed.count", 250)},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Addr:            getStringOrDefault(v, "server.addr", ":8080"),
		ShutdownTimeout: getDurationOrDefault(v, "server.shutdown_timeout", 10*time.Second),
	}
}

func getStoreConfig(v *viper.Viper) *Store {
	return &Store{
		Driver: strings.ToLower(getStringOrDefault(v, "store.driver", DriverSQLite)),
		DSN:    getStringOrDefault(v, "store.dsn", "file::memory:?cache=shared"),
		Mongo: &Mongo{
			URI:      v.GetString("store.mongo.uri"),
			Database: getStringOrDefault(v, "store.mongo.database", "pagerdemo"),
		},
	}
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		MaxLimit:       getIntOrDefault(v, "paging.max_limit", 100),
		RequestTimeout: getDurationOrDefault(v, "paging.request_timeout", 5*time.Second),
	}
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:  getStringOrDefault(v, "log.level", "info"),
		Format: getStringOrDefault(v, "log.format", "json"),
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver '%s'", DriverSQLite)
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required for driver '%s'", DriverMongo)
		}
	default:
		return fmt.Errorf("unknown store.driver '%s'", c.Store.Driver)
	}

	if c.Paging.MaxLimit <= 0 {
		return fmt.Errorf("paging.max_limit must be positive, got %d", c.Paging.MaxLimit)
	}
	if c.Seed.Count < 0 {
		return fmt.Errorf("seed.count must not be negative, got %d", c.Seed.Count)
	}

	return nil
}
