// Command scrape-frontend runs the HTTP front-end: task lifecycle,
// caching, rate limiting, and the scrape pipeline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agustinabelencapo0/scrapecoord/internal/cache"
	"github.com/agustinabelencapo0/scrapecoord/internal/config"
	"github.com/agustinabelencapo0/scrapecoord/internal/fetcher"
	"github.com/agustinabelencapo0/scrapecoord/internal/httpapi"
	"github.com/agustinabelencapo0/scrapecoord/internal/procclient"
	"github.com/agustinabelencapo0/scrapecoord/internal/ratelimit"
	"github.com/agustinabelencapo0/scrapecoord/internal/scrapepipeline"
	"github.com/agustinabelencapo0/scrapecoord/internal/taskmanager"
)

var (
	cfgFile    string
	verbose    bool
	listenIP   string
	listenPort int
	procIP     string
	procPort   int
	workers    int
	rateLimit  int
	cacheTTL   int
)

func main() {
	cmd := &cobra.Command{
		Use:   "scrape-frontend",
		Short: "HTTP front-end for the scrape coordination plane",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&listenIP, "ip", "i", "", "listen address")
	cmd.Flags().IntVarP(&listenPort, "port", "p", 0, "listen port")
	cmd.Flags().StringVar(&procIP, "proc-ip", "", "processing back-end address")
	cmd.Flags().IntVar(&procPort, "proc-port", 0, "processing back-end port")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "max concurrent connections per host")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "max requests per domain per minute")
	cmd.Flags().IntVar(&cacheTTL, "cache-ttl", 0, "cache TTL in seconds")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.LoadFrontend(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)

	if err := config.ValidateFrontend(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg.Fetcher, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	client := procclient.New(
		fmt.Sprintf("%s:%d", cfg.Processing.IP, cfg.Processing.Port),
		cfg.Processing.ConnectTimeout,
		cfg.Processing.ReadTimeout,
	)

	tasks := taskmanager.New()
	resultCache := cache.New(cfg.Cache.TTL)
	limiter := ratelimit.New(cfg.RateLimit.MaxPerMinute)
	pipeline := scrapepipeline.New(httpFetcher, client, tasks, resultCache, cfg.Pipeline.ImageLimit, logger)

	server := httpapi.New(tasks, resultCache, limiter, pipeline, cfg.Pipeline.MaxInFlight, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Listen.IP, cfg.Listen.Port)
	httpServer := &http.Server{Addr: addr, Handler: server}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("scrape-frontend listening", "addr", addr, "proc_addr", client.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("background pipelines did not drain before shutdown deadline", "error", err)
		}
	}
	return nil
}

func applyCLIOverrides(cfg *config.FrontendConfig) {
	if listenIP != "" {
		cfg.Listen.IP = listenIP
	}
	if listenPort != 0 {
		cfg.Listen.Port = listenPort
	}
	if procIP != "" {
		cfg.Processing.IP = procIP
	}
	if procPort != 0 {
		cfg.Processing.Port = procPort
	}
	if workers != 0 {
		cfg.Fetcher.MaxConnsPerHost = workers
	}
	if rateLimit != 0 {
		cfg.RateLimit.MaxPerMinute = rateLimit
	}
	if cacheTTL != 0 {
		cfg.Cache.TTL = time.Duration(cacheTTL) * time.Second
	}
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
