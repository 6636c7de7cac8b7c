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
	"os"

	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/plugins"
	"github.com/we-are-mono/wled/presets"
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/types"
)

// builtinPlugin runs this binary as its own store plugin
const builtinPlugin = "builtin"

// loadConfig can be overridden in tests.
var loadConfig = state.LoadWLEDConfig

// storeBackend is the object store behind the preset and store commands:
// the local data directory, or a store plugin when --plugin is set.
type storeBackend struct {
	config   *types.Config
	objects  presets.ObjectStore
	local    *store.Store
	provider plugins.Provider
	client   *plugins.PluginClient
}

// newLocalStore opens the data directory of cfg. A configured quota caps the
// directory size, otherwise free space comes from statfs.
func newLocalStore(cfg *types.Config, metrics *store.Metrics) *store.Store {
	var info store.FSInfo = store.StatfsInfo{Path: cfg.DataDir}
	if cfg.QuotaBytes > 0 {
		info = store.DirQuota{Path: cfg.DataDir, Quota: cfg.QuotaBytes}
	}
	return store.New(store.OSFS{Root: cfg.DataDir},
		store.WithFSInfo(info),
		store.WithMetrics(metrics),
		store.WithLogger(logger.Default().With(logger.Field{Key: "component", Value: "store"})),
	)
}

// openBackend can be overridden in tests.
var openBackend = func(pluginArg string) (*storeBackend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if pluginArg == "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		s := newLocalStore(cfg, nil)
		return &storeBackend{config: cfg, objects: s, local: s}, nil
	}

	path, args, err := resolvePlugin(plugins.NewPluginManager(), pluginArg)
	if err != nil {
		return nil, err
	}
	pc, err := plugins.NewPluginClient(path, args...)
	if err != nil {
		return nil, err
	}
	provider, err := pc.Dispense()
	if err != nil {
		pc.Close()
		return nil, err
	}
	return &storeBackend{
		config:   cfg,
		objects:  &plugins.RemoteStore{Provider: provider},
		provider: provider,
		client:   pc,
	}, nil
}

// resolvePlugin maps a --plugin value to a binary and its arguments
func resolvePlugin(pm *plugins.PluginManager, arg string) (string, []string, error) {
	if arg == builtinPlugin {
		self, err := os.Executable()
		if err != nil {
			return "", nil, fmt.Errorf("failed to locate wled binary: %w", err)
		}
		return self, []string{"plugin", "serve"}, nil
	}
	path, err := pm.Resolve(arg)
	if err != nil {
		return "", nil, err
	}
	return path, nil, nil
}

func (b *storeBackend) presets() *presets.Manager {
	return presets.NewManager(b.objects, b.config.PresetsFile, logger.Default())
}

// stats reports the layout of file, asking the plugin when there is one
func (b *storeBackend) stats(file string) (store.Stats, error) {
	if b.local != nil {
		return b.local.Stats(file)
	}

	raw, err := b.provider.Status(context.Background())
	if err != nil {
		return store.Stats{}, err
	}
	var st plugins.StoreStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return store.Stats{}, fmt.Errorf("invalid plugin status: %w", err)
	}
	if msg, ok := st.Errors[file]; ok {
		return store.Stats{}, fmt.Errorf("%s: %s", file, msg)
	}
	stats, ok := st.Files[file]
	if !ok {
		return store.Stats{}, fmt.Errorf("plugin does not report %s", file)
	}
	return stats, nil
}

func (b *storeBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	if b.local != nil {
		return b.local.Close()
	}
	return nil
}
