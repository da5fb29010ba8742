package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the TOML layout:
//
//	[server]
//	port = "3030"
//	listen_host = "127.0.0.1"
//	cors_origins = ["http://localhost:3002"]
//	api_keys = ["..."]
//
//	[storage]
//	driver = "sqlite"
//	database_url = "postgres://..."
//	db_max_conns = 21
//	sqlite_path = "/var/lib/namedgraph/graph.db"
//
//	[logging]
//	level = "info"
//	format = "json"
//
//	[edges]
//	scan_concurrency = 8
//	graph_cache_size = 256
type fileConfig struct {
	Server struct {
		Port        string   `toml:"port"`
		ListenHost  string   `toml:"listen_host"`
		CORSOrigins []string `toml:"cors_origins"`
		APIKeys     []string `toml:"api_keys"`
	} `toml:"server"`
	Storage struct {
		Driver      string `toml:"driver"`
		DatabaseURL string `toml:"database_url"`
		DBMaxConns  int32  `toml:"db_max_conns"`
		SQLitePath  string `toml:"sqlite_path"`
	} `toml:"storage"`
	Logging struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"logging"`
	Edges struct {
		ScanConcurrency int  `toml:"scan_concurrency"`
		GraphCacheSize  *int `toml:"graph_cache_size"`
	} `toml:"edges"`
}

// applyFile overlays the values set in the TOML file at path.
func (c *Config) applyFile(path string) error {
	var fc fileConfig

	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("could not decode TOML config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in TOML config %s: %v", path, undecoded)
	}

	setString(&c.Port, fc.Server.Port)
	setString(&c.ListenHost, fc.Server.ListenHost)
	setString(&c.StorageDriver, fc.Storage.Driver)
	setString(&c.SQLitePath, fc.Storage.SQLitePath)
	setString(&c.LogLevel, fc.Logging.Level)
	setString(&c.LogFormat, fc.Logging.Format)

	if fc.Storage.DatabaseURL != "" {
		c.DatabaseURL = Secret(fc.Storage.DatabaseURL)
	}

	if len(fc.Server.CORSOrigins) > 0 {
		c.CORSOrigins = fc.Server.CORSOrigins
	}

	for _, k := range fc.Server.APIKeys {
		c.APIKeys = append(c.APIKeys, Secret(k))
	}

	if fc.Storage.DBMaxConns != 0 {
		c.DBMaxConns = fc.Storage.DBMaxConns
	}

	if fc.Edges.ScanConcurrency != 0 {
		c.ScanConcurrency = fc.Edges.ScanConcurrency
	}

	if fc.Edges.GraphCacheSize != nil {
		c.GraphCacheSize = *fc.Edges.GraphCacheSize
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
