package configs

import (
	"errors"

	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Auth struct {
		TokenTTLHours int `mapstructure:"token-ttl-hours"`
		SweepMinutes  int `mapstructure:"sweep-minutes"`
	} `mapstructure:"auth"`
	Ledger struct {
		MinAmount string `mapstructure:"min-amount"`
		MaxAmount string `mapstructure:"max-amount"`
	} `mapstructure:"ledger"`
}

var AppConfig Config

func LoadConfig() {
	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("auth.token-ttl-hours", 24)
	viper.SetDefault("auth.sweep-minutes", 60)
	viper.SetDefault("ledger.min-amount", "1.00")
	viper.SetDefault("ledger.max-amount", "50000.00")

	viper.AutomaticEnv()

	var fileLookupError viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &fileLookupError) {
			logger.Log.Fatal("config file not found", zap.Error(err))
		}
		logger.Log.Fatal("failed to read config", zap.Error(err))
	}

	viper.Unmarshal(&AppConfig)
}
