package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/usercache/internal/flagx"
	"github.com/dmitrijs2005/usercache/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Absent keys keep the current
// value.
type JsonConfig struct {
	DatabaseDSN  *string         `json:"database_dsn"`
	CacheBackend *string         `json:"cache_backend"`
	BadgerDir    *string         `json:"badger_dir"`
	CacheSize    *int            `json:"cache_size"`
	HTTPAddr     *string         `json:"http_addr"`
	SyncInterval *timex.Duration `json:"sync_interval"`
	LogLevel     *string         `json:"log_level"`
	LogFormat    *string         `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config in args. It
// panics on read or unmarshal errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.CacheBackend, jc.CacheBackend)
	set(&cfg.BadgerDir, jc.BadgerDir)
	set(&cfg.CacheSize, jc.CacheSize)
	set(&cfg.HTTPAddr, jc.HTTPAddr)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	if jc.SyncInterval != nil {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
