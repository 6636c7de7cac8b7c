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

// Package plugins exposes the object store to other processes over
// Hashicorp's go-plugin framework.
package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// BinaryPrefix is prepended to plugin names to form the binary name
const BinaryPrefix = "wled-plugin-"

// PluginManager finds plugin binaries in a list of directories.
type PluginManager struct {
	pluginDirs []string
}

// NewPluginManager creates a plugin manager with the default search directories.
// Search order: ./bin (dev), /usr/lib/wled/plugins (system), /opt/wled/plugins (alt).
func NewPluginManager() *PluginManager {
	return &PluginManager{
		pluginDirs: []string{
			"./bin",                 // Local development
			"/usr/lib/wled/plugins", // System installation
			"/opt/wled/plugins",     // Alternative installation
		},
	}
}

// NewPluginManagerWithDirs creates a plugin manager searching dirs in order
func NewPluginManagerWithDirs(dirs ...string) *PluginManager {
	return &PluginManager{pluginDirs: dirs}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}

// FindPlugin returns the path of the first executable named
// wled-plugin-<name> in the search directories.
func (pm *PluginManager) FindPlugin(name string) (string, error) {
	for _, dir := range pm.pluginDirs {
		path := filepath.Join(dir, BinaryPrefix+name)
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("plugin not found: %s", name)
}

// Resolve turns a --plugin argument into a binary path. Arguments that
// contain a path separator are used as given, anything else is a plugin name.
func (pm *PluginManager) Resolve(arg string) (string, error) {
	if strings.ContainsRune(arg, filepath.Separator) {
		if !isExecutable(arg) {
			return "", fmt.Errorf("plugin is not an executable file: %s", arg)
		}
		return arg, nil
	}
	return pm.FindPlugin(arg)
}

// ListPlugins returns the sorted, unique names of all plugins found.
func (pm *PluginManager) ListPlugins() ([]string, error) {
	seen := make(map[string]bool)

	for _, dir := range pm.pluginDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // Directory might not exist
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, BinaryPrefix) {
				continue
			}
			if isExecutable(filepath.Join(dir, name)) {
				seen[strings.TrimPrefix(name, BinaryPrefix)] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	slices.Sort(result)
	return result, nil
}
