package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	NodeEnv string
	Port    string

	Device   DeviceConfig
	Database DatabaseConfig
	Remote   RemoteConfig
}

// DeviceConfig is the registration of this terminal against the server.
// It defines the scope every sync run operates under.
type DeviceConfig struct {
	InstanceID string
	CompanyID  string
	Territory  string
	Warehouse  string
	PriceList  string
}

// DatabaseConfig holds the on-device database configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Verbose  bool
}

// RemoteConfig holds the business server connection.
type RemoteConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		return nil, fmt.Errorf("INSTANCE_ID is required")
	}
	companyID := os.Getenv("COMPANY_ID")
	if companyID == "" {
		return nil, fmt.Errorf("COMPANY_ID is required")
	}

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "3001"),
		Device: DeviceConfig{
			InstanceID: instanceID,
			CompanyID:  companyID,
			Territory:  os.Getenv("TERRITORY"),
			Warehouse:  os.Getenv("WAREHOUSE"),
			PriceList:  os.Getenv("PRICE_LIST"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "possync"),
			Verbose:  getEnv("DB_VERBOSE", "false") == "true",
		},
		Remote: RemoteConfig{
			URL:      os.Getenv("REMOTE_URL"),
			Database: getEnv("REMOTE_DATABASE", "erp"),
			Username: os.Getenv("REMOTE_USERNAME"),
			Password: os.Getenv("REMOTE_PASSWORD"),
		},
	}, nil
}

// getEnv gets environment variable with default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
