package config

import "github.com/kelseyhightower/envconfig"

const envPrefix = "usercache"

// parseEnv overlays cfg with USERCACHE_* variables. Unset variables keep the
// current value. It panics on malformed values.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		panic(err)
	}
}
