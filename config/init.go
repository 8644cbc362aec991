package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/payrelay/internal/logger"
	"github.com/customeros/payrelay/internal/tracing"
)

type Config struct {
	AppConfig              *AppConfig
	Logger                 *logger.Config
	Tracing                *tracing.JaegerConfig
	StripeConfig           *StripeConfig
	MetaConfig             *MetaConfig
	TikTokConfig           *TikTokConfig
	ProductConfig          *ProductConfig
	PayRelayDatabaseConfig *PayRelayDatabaseConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:              &AppConfig{},
		Logger:                 &logger.Config{},
		Tracing:                &tracing.JaegerConfig{},
		StripeConfig:           &StripeConfig{},
		MetaConfig:             &MetaConfig{},
		TikTokConfig:           &TikTokConfig{},
		ProductConfig:          &ProductConfig{},
		PayRelayDatabaseConfig: &PayRelayDatabaseConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading payrelay config: %v", err)
	}

	return config, nil
}
