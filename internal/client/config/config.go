package config

import "time"

// Config holds runtime settings for the InfyAir terminal client.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API, including the /api prefix.
//   - CredentialsDSN: sqlite DSN for the local credential store.
//   - ValidateOnStart: whether a restored session is re-validated against
//     the server in the background.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	APIBaseURL      string
	CredentialsDSN  string
	ValidateOnStart bool
	RequestTimeout  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:5000/api"
	c.CredentialsDSN = "infyair.db"
	c.ValidateOnStart = true
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
