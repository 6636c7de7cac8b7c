// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/daemon"
	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/effect"
	"github.com/we-are-mono/wled/presets"
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/types"
)

var metricsAddr string

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the wled daemon",
	Long: `Starts the frame loop, applies the boot preset and listens for commands
on a Unix socket.`,
	Run: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9110)")
}

func runDaemon(cmd *cobra.Command, args []string) {
	pidFile := os.Getenv("WLED_PID_FILE")
	if pidFile == "" {
		pidFile = "/var/run/wled.pid"
	}
	if err := checkExistingDaemon(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	if err := writePIDFile(pidFile); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to write PID file: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(pidFile)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := state.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Invalid config:\n%v\n", err)
		os.Exit(1)
	}

	emitter := logger.NewEmitter()
	if err := initializeLogger(cfg.Logging, emitter); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := serveDaemon(cfg, emitter); err != nil {
		logger.Error("Daemon failed", logger.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}

func serveDaemon(cfg *types.Config, emitter *logger.Emitter) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	objects := newLocalStore(cfg, store.NewMetrics(reg))
	defer objects.Close()

	strip, err := buildStrip(cfg)
	if err != nil {
		return err
	}

	loop := daemon.NewLoop(daemon.LoopConfig{
		Strip:     strip,
		Store:     objects,
		Presets:   presets.NewManager(objects, cfg.PresetsFile, logger.Default()),
		FrameRate: cfg.FrameRate,
		Logger:    logger.Default(),
		Metrics:   daemon.NewMetrics(reg),
	})

	if cfg.BootPreset != 0 {
		if _, err := loop.ApplyPreset(cfg.BootPreset); err != nil {
			logger.Warn("Boot preset not applied",
				logger.Field{Key: "preset", Value: cfg.BootPreset},
				logger.Field{Key: "error", Value: err.Error()})
		}
	}

	server, err := daemon.NewServer(daemon.GetSocketPath(), loop, emitter)
	if err != nil {
		return err
	}

	var exporter *daemon.Exporter
	if metricsAddr != "" {
		exporter = daemon.NewExporter(metricsAddr, reg)
		go func() {
			if err := exporter.Start(); err != nil {
				logger.Error("Metrics exporter failed", logger.Field{Key: "error", Value: err.Error()})
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	serveDone := make(chan error, 1)
	go func() { serveDone <- server.Serve() }()

	logger.Info("Daemon started",
		logger.Field{Key: "leds", Value: cfg.LEDCount},
		logger.Field{Key: "segments", Value: len(cfg.Segments)},
		logger.Field{Key: "fps", Value: cfg.FrameRate})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case runErr = <-serveDone:
		stop()
	}

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", logger.Field{Key: "error", Value: err.Error()})
	}
	if exporter != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Error("Failed to stop metrics exporter", logger.Field{Key: "error", Value: err.Error()})
		}
	}
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return runErr
}

// buildStrip creates the strip and segments described by cfg
func buildStrip(cfg *types.Config) (*effect.Strip, error) {
	alloc := effect.NewAllocator(cfg.MaxSegmentData)
	strip := effect.NewStrip(cfg.LEDCount, effect.Default(), alloc,
		logger.Default().With(logger.Field{Key: "component", Value: "strip"}))

	for i, sc := range cfg.Segments {
		seg, err := strip.AddSegment(sc.Start, sc.Stop, sc.Rows)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if sc.Mode == nil {
			continue
		}
		if err := seg.SetMode(strip.Table(), effect.ModeID(*sc.Mode)); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return strip, nil
}

// checkExistingDaemon checks if a daemon is already running.
// Returns error if daemon is running, nil if safe to start.
// Automatically removes stale PID files.
func checkExistingDaemon(pidFile string) error {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("PID file exists but cannot be read: %w (remove %s manually if daemon is not running)", err, pidFile)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return fmt.Errorf("invalid PID in %s: %s (remove file manually if daemon is not running)", pidFile, pidStr)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		os.Remove(pidFile)
		return nil
	}

	// Signal 0 checks for existence without delivering anything
	if err := process.Signal(syscall.Signal(0)); err != nil {
		os.Remove(pidFile)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d (stop it first or remove %s if it's stale)", pid, pidFile)
}

func writePIDFile(pidFile string) error {
	pid := os.Getpid()
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", pid)), 0600)
}

// initializeLogger sets up the global logger. A configured log file wins;
// otherwise journald is used when systemd-cat exists, and stderr through
// hclog when it does not.
func initializeLogger(cfg *types.LoggingConfig, emitter *logger.Emitter) error {
	if cfg == nil {
		cfg = &types.LoggingConfig{Level: "info", Format: "text"}
	}
	config := logger.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		Component: "daemon",
	}

	var backend logger.Backend
	name := "stderr"
	switch {
	case cfg.File != "":
		fileBackend, err := logger.NewFileBackend(cfg.File, config.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize file backend: %w", err)
		}
		backend, name = fileBackend, "file"
	default:
		if _, err := exec.LookPath("systemd-cat"); err == nil {
			journaldBackend, err := logger.NewJournaldBackend(config.Format)
			if err != nil {
				log.Printf("[WARN] Could not initialize journald backend: %v, falling back to stderr", err)
			} else {
				backend, name = journaldBackend, "journald"
			}
		}
		if backend == nil {
			backend = logger.NewHCLogBackend(os.Stderr, config.Level, config.Format == "json")
		}
	}

	logger.Init(config, []logger.Backend{backend}, emitter)
	logger.Info("Logging initialized",
		logger.Field{Key: "backend", Value: name},
		logger.Field{Key: "format", Value: config.Format})
	return nil
}
