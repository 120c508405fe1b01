package config

import (
	"os"
	"time"
)

// TokenEnvVar is consulted when neither the JSON file nor -t set a token.
const TokenEnvVar = "PINKEEPER_TOKEN"

// Config holds runtime settings for pinctl.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50061"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig applies defaults, the JSON file and flags from args, in that
// order. It returns the positional arguments left after the flags.
func LoadConfig(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv(TokenEnvVar)
	}
	return cfg, rest, nil
}
