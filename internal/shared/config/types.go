// Package config defines the configuration types shared across the application.
package config

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig holds database connection configuration.
// Driver selects between "mysql" (production) and "sqlite" (development/tests).
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// RedisConfig holds redis configuration for the consent status cache.
// The cache is optional; an empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// VaultConfig holds the field vault key material configuration.
// MasterKey is a hex-encoded 32-byte key. The cipher key and the index-token
// key are both derived from it; the raw value must never be logged.
type VaultConfig struct {
	MasterKey string `mapstructure:"master_key"`
}

// AuthConfig holds boundary authentication configuration. The trust layer
// itself does not authenticate; the JWT secret is used by the HTTP boundary
// to resolve the acting user for audit attribution.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}
