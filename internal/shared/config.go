package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden with a SEMDATA_* environment variable after the file is read.
type Config struct {
	Store   StoreConfig   `toml:"store" envPrefix:"SEMDATA_STORE_"`
	Mapping MappingConfig `toml:"mapping" envPrefix:"SEMDATA_MAPPING_"`
	Server  ServerConfig  `toml:"server" envPrefix:"SEMDATA_SERVER_"`
	Log     LogConfig     `toml:"log" envPrefix:"SEMDATA_LOG_"`
}

// StoreConfig contains the default store location and remote credentials.
type StoreConfig struct {
	Location     string `toml:"location" env:"LOCATION"`
	Repository   string `toml:"repository" env:"REPOSITORY"`
	Username     string `toml:"username" env:"USERNAME"`
	Password     string `toml:"password" env:"PASSWORD"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// MappingConfig points at the entity mapping file.
type MappingConfig struct {
	Path   string `toml:"path" env:"PATH"`
	Policy string `toml:"policy" env:"POLICY"`
}

// ServerConfig contains the listen address and the credentials clients must present to `semdata serve`.
type ServerConfig struct {
	Addr     string `toml:"addr" env:"ADDR"`
	Username string `toml:"username" env:"USERNAME"`
	Password string `toml:"password" env:"PASSWORD"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnv overlays SEMDATA_* environment variables onto config. Unset variables leave fields untouched.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
