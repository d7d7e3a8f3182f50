package app

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	// Required - Defaults to 8080 - Listen and Serve port
	ServerPort int `mapstructure:"server_port"`

	// Required - Defaults to http://localhost:8000 - Execution backend base URL
	APIBaseURL string `mapstructure:"api_base_url"`

	// Optional - Bearer token forwarded to the backend
	APIToken string `mapstructure:"api_token"`

	// Required - No default - Organization owning the stored credentials
	OrgID int `mapstructure:"org_id"`

	// Required - No default - Acting user id for generate/restore calls
	UserID int `mapstructure:"user_id"`

	// Optional - Defaults to .igfe-cache - Directory for the list fallback cache
	CacheDir string `mapstructure:"cache_dir"`

	// Optional - Defaults to 30s - Interval between status sweeps
	SweepInterval string `mapstructure:"sweep_interval"`

	// Optional - Defaults to 2s - Succeeded statuses idle again after this
	StatusCooldown string `mapstructure:"status_cooldown"`

	// Logrus Configuration
	Logging LoggingConfig `mapstructure:",squash"`
}

type LoggingConfig struct {
	// Optional - Defaults to Text - Logrus formater
	Format string `mapstructure:"log_format"`

	// Optional - Defaults to Error - Only log when greater then set level
	// Possible Level: Debug, Info, Warning, Error, Fatal and Panic
	Level string `mapstructure:"log_level"`
}

// Load the server configuration from <path>/config.yml or from the ENV with IGFE_[var]
func LoadServerConfig(config *ServerConfig, path string) error {
	v := viper.New()

	// Search for configuration file at <path>/config.yml
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Allow ENV vars of IGFE_[var]
	v.SetEnvPrefix("igfe")
	v.AutomaticEnv()

	// Set Defaults
	v.SetDefault("server_port", 8080)
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("cache_dir", ".igfe-cache")
	v.SetDefault("sweep_interval", "30s")
	v.SetDefault("status_cooldown", "2s")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, everything has an ENV or default
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("Failed to read the configuration file: %s", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return err
	}

	return nil
}
