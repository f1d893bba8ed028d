package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"crm-softphone-connector/pkg/constants"
)

type Config struct {
	Port                   string
	LogLevel               string
	DefaultRegion          string
	ConnectorID            string
	QueuePromotionDelayMS  int64
	RepollIntervalMS       int64
	RepollMaxAttempts      int
	BoostRepollIntervalMS  int64
	BoostRepollMaxAttempts int
}

func Load() *Config {
	config := &Config{
		Port:                   getEnv(constants.EnvPort, "8080"),
		LogLevel:               getEnv(constants.EnvLogLevel, "info"),
		DefaultRegion:          getEnv(constants.EnvDefaultRegion, "US"),
		ConnectorID:            generateConnectorID(),
		QueuePromotionDelayMS:  getEnvInt64(constants.EnvQueuePromotionDelay, constants.DefaultQueuePromotionDelayMS),
		RepollIntervalMS:       getEnvInt64(constants.EnvRepollInterval, constants.DefaultRepollIntervalMS),
		RepollMaxAttempts:      getEnvInt(constants.EnvRepollMaxAttempts, constants.DefaultRepollMaxAttempts),
		BoostRepollIntervalMS:  getEnvInt64(constants.EnvBoostRepollInterval, constants.DefaultBoostRepollIntervalMS),
		BoostRepollMaxAttempts: getEnvInt(constants.EnvBoostRepollMaxAttempts, constants.DefaultBoostRepollMaxAttempts),
	}

	return config
}

func (c *Config) QueuePromotionDelay() time.Duration {
	return constants.MillisecondsToDuration(c.QueuePromotionDelayMS)
}

func (c *Config) RepollInterval() time.Duration {
	return constants.MillisecondsToDuration(c.RepollIntervalMS)
}

func (c *Config) BoostRepollInterval() time.Duration {
	return constants.MillisecondsToDuration(c.BoostRepollIntervalMS)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func generateConnectorID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return uuid.New().String()
	}
	return hostname + "-" + uuid.New().String()[:8]
}
