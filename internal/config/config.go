package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/greenplate/ordering/internal/log"
)

type Application struct {
	Env  string `mapstructure:"env"  json:"env"`
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Storage selects where the cart snapshot is persisted. Backend is one of
// file, redis or postgres; Path and Key apply to the file and redis backends
// respectively.
type Storage struct {
	Backend string `mapstructure:"backend" json:"backend"`
	Path    string `mapstructure:"path"    json:"path"`
	Key     string `mapstructure:"key"     json:"key"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"password"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"password"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Checkout struct {
	SettlementDelayMillis int    `mapstructure:"settlement_delay_millis" json:"settlement_delay_millis"`
	DeliveryEstimate      string `mapstructure:"delivery_estimate"       json:"delivery_estimate"`
}

type Catalog struct {
	URL            string `mapstructure:"url"             json:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Storage     `mapstructure:"storage"     json:"storage"`
	Checkout    `mapstructure:"checkout"    json:"checkout"`
	Catalog     `mapstructure:"catalog"     json:"catalog"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

var (
	once   sync.Once
	config *Config
)

func InitConfig(c context.Context, filename string) *Config {
	cfg := Config{}
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		viper.SetConfigName(filename)
		viper.AddConfigPath("./env")
		viper.SetConfigType("yaml")
		viper.AutomaticEnv()

		viper.SetDefault("application.host", "0.0.0.0")
		viper.SetDefault("application.port", 8080)
		viper.SetDefault("storage.backend", "file")
		viper.SetDefault("storage.path", "./data/greenPlateCart.json")
		viper.SetDefault("storage.key", "greenPlateCart")
		viper.SetDefault("checkout.settlement_delay_millis", 2000)
		viper.SetDefault("checkout.delivery_estimate", "25-35 min")
		viper.SetDefault("catalog.timeout_seconds", 10)

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := viper.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		err = viper.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}
