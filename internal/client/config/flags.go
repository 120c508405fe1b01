package config

import (
	"flag"
	"io"
	"time"
)

// parseFlags reads pinctl flags from args and returns what follows them
// (the command and its arguments). -c/-config are accepted here too so they
// do not end flag parsing; parseJSON has already consumed them.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	fs := flag.NewFlagSet("pinctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	timeout := fs.Int("w", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.String("c", "", "path to JSON config file (short)")
	fs.String("config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return fs.Args(), nil
}
