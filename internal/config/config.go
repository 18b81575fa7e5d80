package config

import "time"

// Version is set at build time via ldflags.
var Version = "dev"

// FrontendConfig is the root configuration for scrape-frontend.
type FrontendConfig struct {
	Listen     ListenConfig     `mapstructure:"listen"     yaml:"listen"`
	Processing ProcessingConfig `mapstructure:"processing" yaml:"processing"`
	Cache      CacheConfig      `mapstructure:"cache"      yaml:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" yaml:"rate_limit"`
	Fetcher    FetcherConfig    `mapstructure:"fetcher"    yaml:"fetcher"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"   yaml:"pipeline"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// ListenConfig controls where an HTTP or TCP server binds.
type ListenConfig struct {
	IP   string `mapstructure:"ip"   yaml:"ip"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// ProcessingConfig locates the processing back-end.
type ProcessingConfig struct {
	IP             string        `mapstructure:"ip"              yaml:"ip"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"    yaml:"read_timeout"`
}

// CacheConfig controls the per-URL result cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// RateLimitConfig controls the per-domain sliding window limiter.
type RateLimitConfig struct {
	MaxPerMinute int `mapstructure:"max_per_minute" yaml:"max_per_minute"`
}

// FetcherConfig controls the HTML fetch step of the scrape pipeline.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxConnsPerHost int           `mapstructure:"max_conns_per_host" yaml:"max_conns_per_host"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
}

// PipelineConfig controls the scrape pipeline's background execution.
type PipelineConfig struct {
	ImageLimit  int `mapstructure:"image_limit"   yaml:"image_limit"`
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight"`
}

// LoggingConfig holds the logging level and format read from config.
// Both are validated, but the binaries build their loggers from the
// --verbose flag only; these values are not applied to the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BackendConfig is the root configuration for scrape-backend.
type BackendConfig struct {
	Listen  ListenConfig  `mapstructure:"listen"  yaml:"listen"`
	Pool    PoolConfig    `mapstructure:"pool"    yaml:"pool"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// PoolConfig controls the isolated worker pool.
type PoolConfig struct {
	Processes  int           `mapstructure:"processes"   yaml:"processes"`
	WorkerPath string        `mapstructure:"worker_path" yaml:"worker_path"`
	JobTimeout time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`
}

// DefaultFrontendConfig returns a FrontendConfig with sensible defaults.
func DefaultFrontendConfig() *FrontendConfig {
	return &FrontendConfig{
		Listen: ListenConfig{IP: "0.0.0.0", Port: 8080},
		Processing: ProcessingConfig{
			ConnectTimeout: 30 * time.Second,
			ReadTimeout:    30 * time.Second,
		},
		Cache:     CacheConfig{TTL: 3600 * time.Second},
		RateLimit: RateLimitConfig{MaxPerMinute: 5},
		Fetcher: FetcherConfig{
			RequestTimeout:  30 * time.Second,
			MaxConnsPerHost: 8,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024,
			IdleConnTimeout: 90 * time.Second,
		},
		Pipeline: PipelineConfig{
			ImageLimit:  3,
			MaxInFlight: 256,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultBackendConfig returns a BackendConfig with sensible defaults.
func DefaultBackendConfig() *BackendConfig {
	return &BackendConfig{
		Listen: ListenConfig{IP: "0.0.0.0", Port: 9090},
		Pool: PoolConfig{
			Processes:  0, // resolved to runtime.NumCPU() at load time
			WorkerPath: "",
			JobTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
