package config

import (
	"flag"

	"github.com/dmitrijs2005/usercache/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
//	-d string   database DSN (file path, ":memory:" or postgres://...)
//	-b string   cache backend: sql or badger
//	-k int      number of live users a sync keeps
//	-a string   HTTP listen address
//	-i int      sync interval in seconds, 0 disables the scheduler
//	-l string   log level
//
// Only these flags are looked at; see flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-b", "-k", "-a", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.CacheBackend, "b", cfg.CacheBackend, "cache backend (sql|badger)")
	fs.IntVar(&cfg.CacheSize, "k", cfg.CacheSize, "number of live users a sync keeps")
	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "HTTP listen address")
	fs.Var(flagx.Seconds{D: &cfg.SyncInterval}, "i", "sync interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
