package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/teamkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-e string   database driver: pgx or sqlite
//	-d string   database DSN
//	-r int      recovery token validity, minutes
//	-l string   log level
//
// Arguments are filtered with flagx.FilterArgs first so the -c/-config flag
// and flags of other components do not break parsing. Malformed values panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-e", "-d", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "e", config.DatabaseDriver, "database driver (pgx or sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	recovery := fs.Int("r", int(config.RecoveryTokenValidityDuration.Minutes()), "recovery_token_validity_duration (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RecoveryTokenValidityDuration = time.Duration(*recovery) * time.Minute
}
