package appconf

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONConfig mirrors the on-disk configuration file. Zero values fall back to defaults.
type JSONConfig struct {
	Port int    `json:"port"`
	Env  string `json:"env"`

	Upstream struct {
		BaseURL          string  `json:"base-url"`
		TimeoutMs        int     `json:"timeout-ms"`
		RequestsPerSec   float64 `json:"requests-per-second"`
		Burst            int     `json:"burst"`
		JourneyCacheSize *int    `json:"journey-cache-size"`
		JourneyCacheTTLs int     `json:"journey-cache-ttl-seconds"`
	} `json:"upstream"`

	RateLimit struct {
		Limit             *int     `json:"limit"`
		WindowMs          int      `json:"window-ms"`
		ResetAll          *bool    `json:"reset-all"`
		ExemptAddresses   []string `json:"exempt-addresses"`
		TrustProxyHeaders bool     `json:"trust-proxy-headers"`
	} `json:"rate-limit"`

	Verbose bool `json:"verbose"`
}

// LoadFromFile reads and decodes a JSON configuration file.
func LoadFromFile(path string) (*JSONConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg JSONConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := ParseEnvironment(cfg.Env); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ToAppConfig layers the file values over DefaultConfig. The API key is never read from the file.
func (j *JSONConfig) ToAppConfig() Config {
	cfg := DefaultConfig()

	if j.Port != 0 {
		cfg.Port = j.Port
	}
	// LoadFromFile already rejected unknown names.
	cfg.Env, _ = ParseEnvironment(j.Env)

	if j.Upstream.BaseURL != "" {
		cfg.UpstreamBaseURL = j.Upstream.BaseURL
	}
	if j.Upstream.TimeoutMs > 0 {
		cfg.UpstreamTimeout = time.Duration(j.Upstream.TimeoutMs) * time.Millisecond
	}
	if j.Upstream.RequestsPerSec > 0 {
		cfg.UpstreamRPS = j.Upstream.RequestsPerSec
		cfg.UpstreamBurst = int(j.Upstream.RequestsPerSec)
	}
	if j.Upstream.Burst > 0 {
		cfg.UpstreamBurst = j.Upstream.Burst
	}
	if j.Upstream.JourneyCacheSize != nil {
		cfg.JourneyCacheSize = *j.Upstream.JourneyCacheSize
	}
	if j.Upstream.JourneyCacheTTLs > 0 {
		cfg.JourneyCacheTTL = time.Duration(j.Upstream.JourneyCacheTTLs) * time.Second
	}

	if j.RateLimit.Limit != nil {
		cfg.RateLimit = *j.RateLimit.Limit
	}
	if j.RateLimit.WindowMs > 0 {
		cfg.RateLimitWindow = time.Duration(j.RateLimit.WindowMs) * time.Millisecond
	}
	if j.RateLimit.ResetAll != nil {
		cfg.RateLimitResetAll = *j.RateLimit.ResetAll
	}
	cfg.ExemptAddresses = append([]string(nil), j.RateLimit.ExemptAddresses...)
	cfg.TrustProxyHeaders = j.RateLimit.TrustProxyHeaders

	cfg.Verbose = j.Verbose
	return cfg
}
