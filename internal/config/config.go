// Package config defines and loads the application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings for the token service that
// supplies owner identity to the API.
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMin int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}
