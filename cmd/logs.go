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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/client"
	"github.com/we-are-mono/wled/daemon"
	"github.com/we-are-mono/wled/daemon/logger"
)

const defaultLogFile = "/var/log/wled/wled.log"

var (
	logsFollow    bool
	logsLines     int
	logsSince     string
	logsComponent string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show wled daemon logs",
	Long:  `Display logs from the wled daemon using journalctl (systemd) or tail on the configured log file.`,
	Run:   runLogs,
}

var logsWatchCmd = &cobra.Command{
	Use:   "watch [level]",
	Short: "Watch logs in real-time from the wled daemon",
	Long:  `Stream logs from the running daemon. Optionally filter by minimum level (debug, info, warn, error).`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogsWatch,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsWatchCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output in real-time")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since time (e.g., '1 hour ago', '2024-01-01')")

	logsWatchCmd.Flags().StringVar(&logsComponent, "component", "", "Filter by component name (store, presets, loop, ...)")
}

func runLogs(cmd *cobra.Command, args []string) {
	// A configured log file takes precedence over the journal
	if cfg, err := loadConfig(); err == nil && cfg.Logging != nil && cfg.Logging.File != "" {
		runTailLogs(cfg.Logging.File)
		return
	}
	if _, err := exec.LookPath("journalctl"); err == nil {
		runCommand(journalctlArgs())
		return
	}
	runTailLogs(defaultLogFile)
}

func journalctlArgs() []string {
	jcmd := []string{"journalctl", "-u", "wled"}
	if logsFollow {
		jcmd = append(jcmd, "-f")
	}
	if logsLines > 0 && !logsFollow {
		jcmd = append(jcmd, "-n", fmt.Sprintf("%d", logsLines))
	}
	if logsSince != "" {
		jcmd = append(jcmd, "--since", logsSince)
	}
	if !logsFollow {
		jcmd = append(jcmd, "--no-pager")
	}
	return jcmd
}

func runTailLogs(logFile string) {
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "[ERROR] Log file not found: %s\n", logFile)
		fmt.Fprintf(os.Stderr, "[INFO] Make sure the wled daemon is running or has been run at least once.\n")
		exitWithError()
		return
	}

	tailCmd := []string{"tail"}
	if logsFollow {
		tailCmd = append(tailCmd, "-f")
	}
	if logsLines > 0 {
		tailCmd = append(tailCmd, "-n", fmt.Sprintf("%d", logsLines))
	}
	tailCmd = append(tailCmd, logFile)

	if logsSince != "" {
		fmt.Fprintf(os.Stderr, "[WARN] --since flag is not supported without journalctl, ignoring\n")
	}
	runCommand(tailCmd)
}

func runCommand(argv []string) {
	execCmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // argv built from fixed binaries and validated flags
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	execCmd.Stdin = os.Stdin

	if err := execCmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to run %s: %v\n", argv[0], err)
		exitWithError()
	}
}

// printLogEntry formats one streamed log entry
func printLogEntry(w io.Writer, data []byte) error {
	var entry logger.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("failed to parse log entry: %w", err)
	}
	_, err := fmt.Fprintln(w, entry.ToText())
	return err
}

func runLogsWatch(cmd *cobra.Command, args []string) {
	filter := daemon.LogFilter{Component: logsComponent}
	if len(args) > 0 {
		filter.Level = args[0]
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- client.StreamLogs(filter, func(data []byte) error {
			return printLogEntry(os.Stdout, data)
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
		}
	case <-sigChan:
		fmt.Println("\nStopping log stream...")
	}
}
