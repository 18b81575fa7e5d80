// Command scrape-backend runs the processing back-end: a TCP server
// dispatching each framed request to the isolated worker pool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agustinabelencapo0/scrapecoord/internal/config"
	"github.com/agustinabelencapo0/scrapecoord/internal/procserver"
	"github.com/agustinabelencapo0/scrapecoord/internal/workerpool"
)

var (
	cfgFile    string
	verbose    bool
	listenIP   string
	listenPort int
	processes  int
	workerPath string
)

func main() {
	cmd := &cobra.Command{
		Use:   "scrape-backend",
		Short: "Processing back-end for the scrape coordination plane",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().StringVarP(&listenIP, "ip", "i", "", "listen address")
	cmd.Flags().IntVarP(&listenPort, "port", "p", 0, "listen port")
	cmd.Flags().IntVarP(&processes, "processes", "n", 0, "number of worker processes in the pool")
	cmd.Flags().StringVar(&workerPath, "worker-path", "", "path to the scrape-worker binary")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := config.LoadBackend(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cfg)

	if cfg.Pool.WorkerPath == "" {
		cfg.Pool.WorkerPath = defaultWorkerPath()
	}
	if err := config.ValidateBackend(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	pool, err := workerpool.New(cfg.Pool.WorkerPath, cfg.Pool.Processes, logger)
	if err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}
	defer pool.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Listen.IP, cfg.Listen.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := procserver.New(listener, pool, cfg.Pool.JobTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("scrape-backend listening", "addr", addr, "processes", cfg.Pool.Processes, "worker_path", cfg.Pool.WorkerPath)
	return server.Serve(ctx)
}

func applyCLIOverrides(cfg *config.BackendConfig) {
	if listenIP != "" {
		cfg.Listen.IP = listenIP
	}
	if listenPort != 0 {
		cfg.Listen.Port = listenPort
	}
	if processes != 0 {
		cfg.Pool.Processes = processes
	}
	if workerPath != "" {
		cfg.Pool.WorkerPath = workerPath
	}
}

// defaultWorkerPath looks for a scrape-worker binary next to this one,
// falling back to PATH resolution.
func defaultWorkerPath() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "scrape-worker")
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate
		}
	}
	if resolved, err := exec.LookPath("scrape-worker"); err == nil {
		return resolved
	}
	return "scrape-worker"
}

func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
