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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/plugins"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage store plugins",
	Long: `Store plugins serve the object store from a separate process over
go-plugin RPC. wled itself can act as one with "wled plugin serve".`,
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed store plugins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executePluginList(os.Stdout, plugins.NewPluginManager())
	},
}

var pluginInfoCmd = &cobra.Command{
	Use:   "info <plugin>",
	Short: "Start a plugin and show its metadata and store status",
	Long: `Starts the plugin, queries its metadata and store status, then stops it.

Example:
  wled plugin info builtin
  wled plugin info flash`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginInfo,
}

var pluginServeCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Serve the local object store as a plugin",
	Long:   `Runs the plugin side of the store protocol. Started by a plugin client, not by hand.`,
	Args:   cobra.NoArgs,
	Hidden: true,
	Run:    runPluginServe,
}

func init() {
	rootCmd.AddCommand(pluginCmd)
	pluginCmd.AddCommand(pluginListCmd, pluginInfoCmd, pluginServeCmd)
}

func executePluginList(w io.Writer, pm *plugins.PluginManager) error {
	names, err := pm.ListPlugins()
	if err != nil {
		return fmt.Errorf("failed to list plugins: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No plugins found")
		return nil
	}

	fmt.Fprintln(w, "Installed plugins:")
	for _, name := range names {
		path, err := pm.FindPlugin(name)
		if err != nil {
			fmt.Fprintf(w, "  %s - [ERROR: %v]\n", name, err)
			continue
		}
		fmt.Fprintf(w, "  %s - %s\n", name, path)
	}
	return nil
}

func runPluginInfo(cmd *cobra.Command, args []string) error {
	path, pargs, err := resolvePlugin(plugins.NewPluginManager(), args[0])
	if err != nil {
		return err
	}

	pc, err := plugins.NewPluginClient(path, pargs...)
	if err != nil {
		return fmt.Errorf("failed to start plugin: %w", err)
	}
	defer pc.Close()

	provider, err := pc.Dispense()
	if err != nil {
		return fmt.Errorf("failed to dispense plugin: %w", err)
	}

	fmt.Printf("Plugin: %s\n", args[0])
	fmt.Printf("Path: %s\n", path)
	return printPluginInfo(os.Stdout, provider)
}

func printPluginInfo(w io.Writer, provider plugins.Provider) error {
	ctx := context.Background()

	meta, err := provider.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	fmt.Fprintf(w, "Namespace: %s\n", meta.Namespace)
	fmt.Fprintf(w, "Version: %s\n", meta.Version)
	fmt.Fprintf(w, "Description: %s\n", meta.Description)
	if meta.DataDir != "" {
		fmt.Fprintf(w, "Data dir: %s\n", meta.DataDir)
	}
	if len(meta.Files) > 0 {
		fmt.Fprintf(w, "Files: %s\n", strings.Join(meta.Files, ", "))
	}

	status, err := provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Fprintln(w, "Status:")
	return printJSON(w, json.RawMessage(status))
}

func runPluginServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] Failed to load config: %v\n", err)
		exitWithError()
		return
	}

	// stdout carries the plugin handshake; hclog JSON on stderr is picked up by the client
	logger.Init(logger.Config{Level: cfg.Logging.Level, Component: "plugin"},
		[]logger.Backend{logger.NewHCLogBackend(os.Stderr, cfg.Logging.Level, true)}, nil)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Error("Failed to create data dir", logger.Field{Key: "error", Value: err.Error()})
		exitWithError()
		return
	}

	s := newLocalStore(cfg, nil)
	defer s.Close()

	plugins.ServePlugin(&plugins.StoreProvider{
		Store:   s,
		DataDir: cfg.DataDir,
		Files:   []string{cfg.PresetsFile},
		Version: Version,
	})
}
