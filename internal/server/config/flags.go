package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-l", "-d", "-f", "-s", "-i", "-n", "-k", "-w", "-m", "-o", "-g", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50061")
//	-l string   ledger backend: memory, sqlite or postgres
//	-d string   PostgreSQL DSN
//	-f string   SQLite database file
//	-s string   HMAC secret key
//	-i int      PBKDF2 iterations
//	-n int      salt length, bytes
//	-k int      digest length, bytes
//	-w int      concurrent KDF derivations
//	-m int      failed attempts before lockout
//	-o int      lockout duration, minutes
//	-g int      step-up grant validity, minutes
//	-v string   log level
//
// Only the flags above are picked out of args with flagx.FilterArgs, so
// -c/-config and flags of other components do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("pinkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.LedgerBackend, "l", config.LedgerBackend, "ledger backend (memory, sqlite, postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite database file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.KDFIterations, "i", config.KDFIterations, "pbkdf2 iterations")
	fs.IntVar(&config.SaltLength, "n", config.SaltLength, "salt length (bytes)")
	fs.IntVar(&config.DigestLength, "k", config.DigestLength, "digest length (bytes)")
	fs.IntVar(&config.KDFConcurrency, "w", config.KDFConcurrency, "concurrent kdf derivations")
	fs.IntVar(&config.MaxAttempts, "m", config.MaxAttempts, "failed attempts before lockout")

	lockoutDuration := fs.Int("o", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")
	grantValidityDuration := fs.Int("g", int(config.GrantValidityDuration.Minutes()), "step-up grant validity (in minutes)")

	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Durations change only when their flag is given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
		case "g":
			config.GrantValidityDuration = time.Duration(*grantValidityDuration) * time.Minute
		}
	})
	return nil
}
