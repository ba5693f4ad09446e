// Package config loads runtime settings for the usercache binaries.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. defaults (LoadDefaults)
//  2. a JSON file named by -c/-config
//  3. USERCACHE_* environment variables
//  4. command-line flags
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings such as "30s" or integer nanoseconds.
package config
