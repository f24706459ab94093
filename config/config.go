package config

import (
	"swipestats/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion   string `mapstructure:"GENERAL_VERSION"`
	Environment      string `mapstructure:"ENVIRONMENT"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     int    `mapstructure:"DB_PORT"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	CacheAddress     string `mapstructure:"CACHE_ADDRESS"`
	CachePort        int    `mapstructure:"CACHE_PORT"`

	// Ingestion settings
	BlobFetchTimeoutSec int `mapstructure:"BLOB_FETCH_TIMEOUT_SEC"`

	// Cross-account merge identity heuristic: birth dates further apart than
	// this are flagged as a likely different-person mistake.
	IdentityDriftYears int `mapstructure:"IDENTITY_DRIFT_YEARS"`

	// Cohort aggregation settings
	CohortMinProfiles   int `mapstructure:"COHORT_MIN_PROFILES"`
	CohortMinDateSample int `mapstructure:"COHORT_MIN_DATE_SAMPLE"`
	CohortFetchBatch    int `mapstructure:"COHORT_FETCH_BATCH"`
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"CACHE_ADDRESS", "CACHE_PORT",
		"BLOB_FETCH_TIMEOUT_SEC",
		"IDENTITY_DRIFT_YEARS",
		"COHORT_MIN_PROFILES", "COHORT_MIN_DATE_SAMPLE", "COHORT_FETCH_BATCH",
	}

	for _, envVar := range envVars {
		if err := viper.BindEnv(envVar); err != nil {
			return Config{}, log.Err("failed to bind environment variable", err, "envVar", envVar)
		}
	}

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("CACHE_PORT", 6379)
	viper.SetDefault("BLOB_FETCH_TIMEOUT_SEC", 60)
	viper.SetDefault("IDENTITY_DRIFT_YEARS", 1)
	viper.SetDefault("COHORT_MIN_PROFILES", 3)
	viper.SetDefault("COHORT_MIN_DATE_SAMPLE", 3)
	viper.SetDefault("COHORT_FETCH_BATCH", 500)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("failed to unmarshal config", err)
	}

	log.Info("Config initialized", "environment", config.Environment)
	return config, nil
}
