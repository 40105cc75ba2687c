package service

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	MinSecretSize = 32
	MaxSecretSize = 64
)

// Config is a configuration for a Service, loaded from a TOML file the same
// way internal/tqw loads world data: BurntSushi/toml unmarshaled straight
// into tagged fields. Grounded on server/config.go's Config, trimmed to the
// grammar service's single sqlite-backed store.
type Config struct {
	// ListenAddress is the host:port the service binds to.
	ListenAddress string `toml:"listen_address"`

	// DataDir is the directory the grammar cache's sqlite database lives in.
	DataDir string `toml:"data_dir"`

	// TokenSecret signs issued bearer tokens. Must be between MinSecretSize
	// and MaxSecretSize bytes.
	TokenSecret string `toml:"token_secret"`

	// AdminPassword is the plaintext admin password, bcrypt-hashed at load
	// time by FillDefaults/Validate's caller (see cmd/taulserver). Never
	// logged or persisted in plaintext past that point.
	AdminPassword string `toml:"admin_password"`

	// UnauthDelayMillis throttles failed-auth responses, same purpose as
	// server/config.go's field of the same name.
	UnauthDelayMillis int `toml:"unauth_delay_millis"`
}

// LoadConfig reads and parses a TOML config file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// UnauthDelay returns the configured delay as a time.Duration. A value less
// than 1 disables the delay.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a copy of cfg with unset fields given their defaults.
func (cfg Config) FillDefaults() Config {
	newCfg := cfg

	if newCfg.ListenAddress == "" {
		newCfg.ListenAddress = ":8080"
	}
	if newCfg.DataDir == "" {
		newCfg.DataDir = "."
	}
	if newCfg.UnauthDelayMillis == 0 {
		newCfg.UnauthDelayMillis = 1000
	}

	return newCfg
}

// Validate returns an error if cfg has invalid or missing required fields.
// Call it on the result of FillDefaults so defaulted fields aren't flagged.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token_secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token_secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("admin_password: must be set")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir: must be set")
	}
	return nil
}

// EnsureDataDir creates cfg.DataDir if it does not already exist.
func (cfg Config) EnsureDataDir() error {
	return os.MkdirAll(cfg.DataDir, 0770)
}
