package config

import (
	"fmt"
	"net/url"
)

// ValidateFrontend checks a FrontendConfig for invalid values.
func ValidateFrontend(cfg *FrontendConfig) error {
	if cfg.Listen.Port < 1 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be 1-65535, got %d", cfg.Listen.Port)
	}
	if cfg.Processing.IP == "" {
		return fmt.Errorf("processing.ip is required")
	}
	if cfg.Processing.Port < 1 || cfg.Processing.Port > 65535 {
		return fmt.Errorf("processing.port must be 1-65535, got %d", cfg.Processing.Port)
	}
	if cfg.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0")
	}
	if cfg.RateLimit.MaxPerMinute < 0 {
		return fmt.Errorf("rate_limit.max_per_minute must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.MaxConnsPerHost < 1 {
		return fmt.Errorf("fetcher.max_conns_per_host must be >= 1")
	}
	if cfg.Pipeline.ImageLimit < 0 {
		return fmt.Errorf("pipeline.image_limit must be >= 0")
	}
	if cfg.Pipeline.MaxInFlight < 1 {
		return fmt.Errorf("pipeline.max_in_flight must be >= 1")
	}
	return validateLogging(cfg.Logging)
}

// ValidateBackend checks a BackendConfig for invalid values.
func ValidateBackend(cfg *BackendConfig) error {
	if cfg.Listen.Port < 1 || cfg.Listen.Port > 65535 {
		return fmt.Errorf("listen.port must be 1-65535, got %d", cfg.Listen.Port)
	}
	if cfg.Pool.Processes < 1 {
		return fmt.Errorf("pool.processes must be >= 1, got %d", cfg.Pool.Processes)
	}
	if cfg.Pool.JobTimeout <= 0 {
		return fmt.Errorf("pool.job_timeout must be > 0")
	}
	return validateLogging(cfg.Logging)
}

func validateLogging(cfg LoggingConfig) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Level)
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Format)
	}
	return nil
}

// ValidateURL checks that a URL is well-formed, uses an http(s) scheme,
// and has a host. Submissions failing this check are rejected with 400.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
