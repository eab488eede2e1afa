// Package appconf holds the runtime configuration of the trip ranking service.
package appconf

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "unknown"
	}
}

// ParseEnvironment maps a name such as "production" to an Environment.
func ParseEnvironment(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "development", "dev", "":
		return Development, nil
	case "test":
		return Test, nil
	case "production", "prod":
		return Production, nil
	default:
		return Development, fmt.Errorf("unknown environment %q (expected development|test|production)", name)
	}
}

const (
	DefaultPort             = 3000
	DefaultUpstreamBaseURL  = "https://gateway.apiportal.ns.nl/reisinformatie-api"
	DefaultUpstreamTimeout  = 10 * time.Second
	DefaultUpstreamRPS      = 20.0
	DefaultRateLimit        = 500
	DefaultRateLimitWindow  = time.Minute
	DefaultJourneyCacheSize = 1000
	DefaultJourneyCacheTTL  = 5 * time.Minute

	// APIKeyEnvVar names the environment variable carrying the upstream subscription key.
	APIKeyEnvVar = "APIKEY"
)

// Config holds the application configuration.
type Config struct {
	Port int
	Env  Environment

	// Upstream reisinformatie API
	UpstreamBaseURL string
	UpstreamAPIKey  string
	UpstreamTimeout time.Duration
	UpstreamRPS     float64 // outbound requests per second, 0 disables the budget
	UpstreamBurst   int

	// Inbound per-address request counter
	RateLimit         int
	RateLimitWindow   time.Duration
	RateLimitResetAll bool
	ExemptAddresses   []string
	TrustProxyHeaders bool

	JourneyCacheSize int // 0 disables the journey detail cache
	JourneyCacheTTL  time.Duration

	Verbose bool
}

// DefaultConfig returns a Config with every optional field populated.
func DefaultConfig() Config {
	return Config{
		Port:              DefaultPort,
		Env:               Development,
		UpstreamBaseURL:   DefaultUpstreamBaseURL,
		UpstreamTimeout:   DefaultUpstreamTimeout,
		UpstreamRPS:       DefaultUpstreamRPS,
		UpstreamBurst:     int(DefaultUpstreamRPS),
		RateLimit:         DefaultRateLimit,
		RateLimitWindow:   DefaultRateLimitWindow,
		RateLimitResetAll: true,
		JourneyCacheSize:  DefaultJourneyCacheSize,
		JourneyCacheTTL:   DefaultJourneyCacheTTL,
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.UpstreamAPIKey) == "" {
		errs = append(errs, fmt.Errorf("upstream API key is missing, set the %s environment variable", APIKeyEnvVar))
	}
	if c.UpstreamBaseURL == "" {
		errs = append(errs, errors.New("upstream base URL is empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("upstream timeout must be positive"))
	}
	if c.UpstreamRPS < 0 {
		errs = append(errs, errors.New("upstream requests per second must not be negative"))
	}
	if c.JourneyCacheSize < 0 {
		errs = append(errs, errors.New("journey cache size must not be negative"))
	}
	return errors.Join(errs...)
}

// ParseAddressList splits a comma separated list, trimming whitespace and dropping empty entries.
func ParseAddressList(input string) []string {
	addresses := []string{}
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}
	return addresses
}
