package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tripranker.dev/internal/appconf"
	"tripranker.dev/internal/logging"
)

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, api := CreateServer(coreApp, cfg)
	if err := Run(ctx, srv, api, coreApp.Logger); err != nil {
		logging.LogError(coreApp.Logger, "server stopped with error", err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from the optional config file, the
// command line flags, which win over the file when set explicitly, and the
// APIKEY environment variable.
func loadConfig(args []string, getenv func(string) string, output io.Writer) (appconf.Config, error) {
	defaults := appconf.DefaultConfig()

	fs := flag.NewFlagSet("tripranker", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath string
		envName    string
		exempt     string
		flagCfg    = defaults
	)
	fs.StringVar(&configPath, "config", "", "Path to a JSON config file")
	fs.IntVar(&flagCfg.Port, "port", defaults.Port, "API server port")
	fs.StringVar(&envName, "env", defaults.Env.String(), "Environment (development|test|production)")
	fs.StringVar(&flagCfg.UpstreamBaseURL, "upstream-url", defaults.UpstreamBaseURL, "Base URL of the reisinformatie API")
	fs.DurationVar(&flagCfg.UpstreamTimeout, "upstream-timeout", defaults.UpstreamTimeout, "Timeout for a single upstream call")
	fs.Float64Var(&flagCfg.UpstreamRPS, "upstream-rps", defaults.UpstreamRPS, "Outbound requests per second, 0 for unlimited")
	fs.IntVar(&flagCfg.UpstreamBurst, "upstream-burst", defaults.UpstreamBurst, "Outbound request burst")
	fs.IntVar(&flagCfg.JourneyCacheSize, "journey-cache-size", defaults.JourneyCacheSize, "Journey details to cache, 0 disables the cache")
	fs.DurationVar(&flagCfg.JourneyCacheTTL, "journey-cache-ttl", defaults.JourneyCacheTTL, "How long a cached journey detail stays valid")
	fs.IntVar(&flagCfg.RateLimit, "rate-limit", defaults.RateLimit, "Requests per client address per window")
	fs.DurationVar(&flagCfg.RateLimitWindow, "rate-limit-window", defaults.RateLimitWindow, "Rate limit window")
	fs.BoolVar(&flagCfg.RateLimitResetAll, "rate-limit-reset-all", defaults.RateLimitResetAll, "Clear every counter at the end of a window instead of only exhausted ones")
	fs.StringVar(&exempt, "exempt-addresses", "", "Comma separated client addresses that are never rate limited")
	fs.BoolVar(&flagCfg.TrustProxyHeaders, "trust-proxy-headers", false, "Take the client address from X-Forwarded-For")
	fs.BoolVar(&flagCfg.Verbose, "verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	env, err := appconf.ParseEnvironment(envName)
	if err != nil {
		return appconf.Config{}, err
	}
	flagCfg.Env = env
	flagCfg.ExemptAddresses = appconf.ParseAddressList(exempt)

	cfg := flagCfg
	if configPath != "" {
		jsonCfg, err := appconf.LoadFromFile(configPath)
		if err != nil {
			return appconf.Config{}, err
		}
		cfg = jsonCfg.ToAppConfig()
		fs.Visit(func(f *flag.Flag) {
			applyFlag(&cfg, flagCfg, f.Name)
		})
	}

	cfg.UpstreamAPIKey = getenv(appconf.APIKeyEnvVar)

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

// applyFlag copies one explicitly set flag from src over a file based config.
func applyFlag(dst *appconf.Config, src appconf.Config, name string) {
	switch name {
	case "port":
		dst.Port = src.Port
	case "env":
		dst.Env = src.Env
	case "upstream-url":
		dst.UpstreamBaseURL = src.UpstreamBaseURL
	case "upstream-timeout":
		dst.UpstreamTimeout = src.UpstreamTimeout
	case "upstream-rps":
		dst.UpstreamRPS = src.UpstreamRPS
	case "upstream-burst":
		dst.UpstreamBurst = src.UpstreamBurst
	case "journey-cache-size":
		dst.JourneyCacheSize = src.JourneyCacheSize
	case "journey-cache-ttl":
		dst.JourneyCacheTTL = src.JourneyCacheTTL
	case "rate-limit":
		dst.RateLimit = src.RateLimit
	case "rate-limit-window":
		dst.RateLimitWindow = src.RateLimitWindow
	case "rate-limit-reset-all":
		dst.RateLimitResetAll = src.RateLimitResetAll
	case "exempt-addresses":
		dst.ExemptAddresses = src.ExemptAddresses
	case "trust-proxy-headers":
		dst.TrustProxyHeaders = src.TrustProxyHeaders
	case "verbose":
		dst.Verbose = src.Verbose
	}
}
