package config

import "time"

// SourceConfig configures where quotes are loaded from.
type SourceConfig struct {
	// Location is a CSV path, a spreadsheet share URL, or "<file>.db#<table>".
	Location string `yaml:"location"`

	// FetchTimeout bounds a remote sheet download.
	FetchTimeout string `yaml:"fetch_timeout"`

	// CacheTTL expires remote snapshots. Local sources ignore it and are
	// kept until refreshed.
	CacheTTL string `yaml:"cache_ttl"`

	// Watch reloads a local CSV when it changes on disk.
	Watch bool `yaml:"watch"`
}

// DefaultSourceConfig returns the source defaults.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Location:     "data.csv",
		FetchTimeout: "30s",
		CacheTTL:     "300s",
	}
}

// GetFetchTimeout returns the fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Source.FetchTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL returns the remote cache TTL as a duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Source.CacheTTL)
	if err != nil || d <= 0 {
		return 300 * time.Second
	}
	return d
}
