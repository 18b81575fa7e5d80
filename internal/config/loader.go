package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// LoadFrontend reads FrontendConfig from file, environment, and defaults.
// Priority (highest to lowest): CLI flags (applied by the caller after this
// returns) > env vars > config file > defaults.
func LoadFrontend(configPath string) (*FrontendConfig, error) {
	cfg := DefaultFrontendConfig()

	v := newViper("scrapefrontend", configPath)
	setFrontendDefaults(v, cfg)

	if err := readConfig(v, configPath); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadBackend reads BackendConfig from file, environment, and defaults.
func LoadBackend(configPath string) (*BackendConfig, error) {
	cfg := DefaultBackendConfig()

	v := newViper("scrapebackend", configPath)
	setBackendDefaults(v, cfg)

	if err := readConfig(v, configPath); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Pool.Processes <= 0 {
		cfg.Pool.Processes = max(1, runtime.NumCPU())
	}
	return cfg, nil
}

func newViper(envPrefix, configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(envPrefix)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+envPrefix))
		}
	}
	return v
}

func readConfig(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return fmt.Errorf("read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified.
	}
	return nil
}

func setFrontendDefaults(v *viper.Viper, cfg *FrontendConfig) {
	v.SetDefault("listen.ip", cfg.Listen.IP)
	v.SetDefault("listen.port", cfg.Listen.Port)

	v.SetDefault("processing.ip", cfg.Processing.IP)
	v.SetDefault("processing.port", cfg.Processing.Port)
	v.SetDefault("processing.connect_timeout", cfg.Processing.ConnectTimeout)
	v.SetDefault("processing.read_timeout", cfg.Processing.ReadTimeout)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("rate_limit.max_per_minute", cfg.RateLimit.MaxPerMinute)

	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.max_conns_per_host", cfg.Fetcher.MaxConnsPerHost)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)

	v.SetDefault("pipeline.image_limit", cfg.Pipeline.ImageLimit)
	v.SetDefault("pipeline.max_in_flight", cfg.Pipeline.MaxInFlight)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

func setBackendDefaults(v *viper.Viper, cfg *BackendConfig) {
	v.SetDefault("listen.ip", cfg.Listen.IP)
	v.SetDefault("listen.port", cfg.Listen.Port)
	v.SetDefault("pool.processes", cfg.Pool.Processes)
	v.SetDefault("pool.worker_path", cfg.Pool.WorkerPath)
	v.SetDefault("pool.job_timeout", cfg.Pool.JobTimeout)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
