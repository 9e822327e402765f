package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// Hostname is the public hostname where this proxy is reachable. It is
	// used when rebuilding pagination links so that "next" points back here.
	// Empty means: use the Host header of the inbound request.
	Hostname string

	// Protocol is the scheme ("http" or "https") used in rebuilt pagination
	// links.
	Protocol string

	// UpstreamURL is the base URL all upstream fetches go to.
	UpstreamURL string

	// AllowUndefinedReferer controls whether requests with a missing,
	// "undefined" or unparsable referer are let through.
	AllowUndefinedReferer bool

	// MaxCount is the upper bound applied to the client-requested item count
	// for GraphQL queries.
	MaxCount int

	// DefaultCount is the item count used when the client does not send one.
	DefaultCount int

	// FalsePositiveRate is the target false-positive rate for the blacklist
	// bloom filter.
	FalsePositiveRate float64

	// BlacklistDB is an optional path to a SQLite database holding blacklist
	// domains. Empty means: use the built-in list.
	BlacklistDB string

	// RepoURL is where unroutable requests are pointed to.
	RepoURL string

	// Debug enables raw error detail in error responses.
	Debug bool

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string

	// SentryDSN enables Sentry error tracking when non-empty.
	SentryDSN string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	protocol := os.Getenv("PROXY_PROTOCOL")
	if protocol == "" {
		if os.Getenv("ENV") == "prod" {
			protocol = "https"
		} else {
			protocol = "http"
		}
	}
	if protocol != "http" && protocol != "https" {
		return nil, fmt.Errorf("invalid PROXY_PROTOCOL %q: must be http or https", protocol)
	}

	upstreamURL := os.Getenv("UPSTREAM_URL")
	if upstreamURL == "" {
		upstreamURL = "https://www.instagram.com"
	}

	allowUndefined := true
	if v := os.Getenv("ALLOW_UNDEFINED_REFERER"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_UNDEFINED_REFERER: %w", err)
		}
		allowUndefined = parsed
	}

	maxCount := 25
	if v := os.Getenv("MAX_COUNT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid MAX_COUNT %q", v)
		}
		maxCount = parsed
	}

	defaultCount := 1
	if v := os.Getenv("DEFAULT_COUNT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid DEFAULT_COUNT %q", v)
		}
		defaultCount = parsed
	}
	if defaultCount > maxCount {
		return nil, fmt.Errorf("DEFAULT_COUNT %d exceeds MAX_COUNT %d", defaultCount, maxCount)
	}

	fpRate := 0.01
	if v := os.Getenv("BLOOM_FALSE_POSITIVE_RATE"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 || parsed >= 1 {
			return nil, fmt.Errorf("invalid BLOOM_FALSE_POSITIVE_RATE %q", v)
		}
		fpRate = parsed
	}

	repoURL := os.Getenv("REPO_URL")
	if repoURL == "" {
		repoURL = "https://github.com/whizzzkid/instagram-proxy-api"
	}

	debug := false
	if v := os.Getenv("DEBUG"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG: %w", err)
		}
		debug = parsed
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Port:                  port,
		Hostname:              os.Getenv("PROXY_HOSTNAME"),
		Protocol:              protocol,
		UpstreamURL:           upstreamURL,
		AllowUndefinedReferer: allowUndefined,
		MaxCount:              maxCount,
		DefaultCount:          defaultCount,
		FalsePositiveRate:     fpRate,
		BlacklistDB:           os.Getenv("BLACKLIST_DB"),
		RepoURL:               repoURL,
		Debug:                 debug,
		LogLevel:              logLevel,
		SentryDSN:             os.Getenv("SENTRY_DSN"),
	}, nil
}
