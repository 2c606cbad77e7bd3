package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      LogConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Server   ServerConfig
	Scoring  ScoringConfig
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	File    string `mapstructure:"file"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type ServerConfig struct {
	Addr  string  `mapstructure:"addr"`
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

type ScoringConfig struct {
	Seed          int64   `mapstructure:"seed"`
	HomeAdvantage float64 `mapstructure:"home_advantage"`
	GoalDivisor   float64 `mapstructure:"goal_divisor"`
	MaxGoals      int     `mapstructure:"max_goals"`
}

const envPrefix = "CHAMPIONSHIP"

var backends = map[string]bool{"file": true, "postgres": true, "mongo": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.file", "championship_data.txt")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "championship")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.rate", 5)
	v.SetDefault("server.burst", 10)
	v.SetDefault("scoring.seed", 0)
	v.SetDefault("scoring.home_advantage", 1.2)
	v.SetDefault("scoring.goal_divisor", 50)
	v.SetDefault("scoring.max_goals", 5)
}

// Load reads configuration from a .env file, an optional config file and the
// environment, in increasing order of precedence. When path is empty a
// config.yaml is looked up in the working directory and ./config; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !backends[c.Storage.Backend] {
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "file" && c.Storage.File == "" {
		return errors.New("storage.file is required for the file backend")
	}
	if c.Storage.Backend == "postgres" && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required for the postgres backend")
	}
	if c.Storage.Backend == "mongo" && (c.Mongo.URI == "" || c.Mongo.Database == "") {
		return errors.New("mongo.uri and mongo.database are required for the mongo backend")
	}
	if c.Scoring.HomeAdvantage <= 0 || c.Scoring.GoalDivisor <= 0 || c.Scoring.MaxGoals <= 0 {
		return errors.New("scoring.home_advantage, scoring.goal_divisor and scoring.max_goals must be positive")
	}
	if c.Server.Rate <= 0 || c.Server.Burst <= 0 {
		return errors.New("server.rate and server.burst must be positive")
	}
	return nil
}
