package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pinkeeper/internal/flagx"
	"github.com/dmitrijs2005/pinkeeper/internal/timex"
)

// JSONConfig is the on-disk shape of a config file. Durations accept either
// a string such as "15m" or integer nanoseconds. Fields absent from the file
// (empty strings, nil pointers) leave the current value untouched.
type JSONConfig struct {
	EndpointAddrGRPC      string          `json:"endpoint_addr_grpc"`
	LedgerBackend         string          `json:"ledger_backend"`
	DatabaseDSN           string          `json:"database_dsn"`
	SQLitePath            string          `json:"sqlite_path"`
	SecretKey             string          `json:"secret_key"`
	KDFIterations         *int            `json:"kdf_iterations"`
	SaltLength            *int            `json:"salt_length"`
	DigestLength          *int            `json:"digest_length"`
	KDFConcurrency        *int            `json:"kdf_concurrency"`
	MaxAttempts           *int            `json:"max_attempts"`
	LockoutDuration       *timex.Duration `json:"lockout_duration"`
	GrantValidityDuration *timex.Duration `json:"grant_validity_duration"`
	LogLevel              string          `json:"log_level"`
}

// parseJSON overlays the JSON file named by -c/-config (or PINKEEPER_CONFIG)
// onto config. No file configured is not an error.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JSONConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LedgerBackend, c.LedgerBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SQLitePath, c.SQLitePath)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	setInt(&config.KDFIterations, c.KDFIterations)
	setInt(&config.SaltLength, c.SaltLength)
	setInt(&config.DigestLength, c.DigestLength)
	setInt(&config.KDFConcurrency, c.KDFConcurrency)
	setInt(&config.MaxAttempts, c.MaxAttempts)

	if c.LockoutDuration != nil {
		config.LockoutDuration = c.LockoutDuration.Duration
	}
	if c.GrantValidityDuration != nil {
		config.GrantValidityDuration = c.GrantValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
